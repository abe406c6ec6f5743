// Package config loads the bot configuration from a JSON5 file, applies
// defaults and environment overrides, and watches the file for changes.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// Env var overrides. The token in particular should live in the
// environment, not the config file.
const (
	EnvToken         = "DISCORD_TOKEN"
	EnvApplicationID = "DISCORD_APPLICATION_ID"
)

const DefaultPrefix = "!"

// Config is the bot configuration. Token, ApplicationID, Intents and the
// gateway settings are fixed at startup; Prefix and AllowedChannels may
// change on hot reload.
type Config struct {
	Token         string `json:"token"`
	ApplicationID string `json:"application_id"`

	// GuildID scopes command registration to one guild when set.
	// Development setups want this; production registers globally.
	GuildID string `json:"guild_id"`

	// Prefix triggers text commands in messages, e.g. "!ping".
	Prefix string `json:"prefix"`

	// Intents overrides the default intent bitmask when non-zero.
	Intents uint64 `json:"intents"`

	// AllowedChannels restricts text command handling to these channel
	// IDs. Empty means every channel.
	AllowedChannels []string `json:"allowed_channels"`

	LogLevel string `json:"log_level"`
}

// Load reads and validates the config file. The file is JSON5, so
// comments and trailing commas are fine. A missing file is an error;
// env overrides are applied afterwards either way.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvApplicationID); v != "" {
		c.ApplicationID = v
	}
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the fields that would otherwise fail deep inside the
// gateway or REST layers.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: token missing (set %s or the token field)", EnvToken)
	}
	if c.ApplicationID != "" {
		if _, err := snowflake.Parse[snowflake.ApplicationMarker](c.ApplicationID); err != nil {
			return fmt.Errorf("config: application_id: %w", err)
		}
	}
	if c.GuildID != "" {
		if _, err := snowflake.Parse[snowflake.GuildMarker](c.GuildID); err != nil {
			return fmt.Errorf("config: guild_id: %w", err)
		}
	}
	for _, ch := range c.AllowedChannels {
		if _, err := snowflake.Parse[snowflake.ChannelMarker](ch); err != nil {
			return fmt.Errorf("config: allowed_channels entry %q: %w", ch, err)
		}
	}
	return nil
}

// GatewayIntents returns the configured intent bitmask, or the default.
func (c *Config) GatewayIntents() protocol.Intents {
	if c.Intents != 0 {
		return protocol.Intents(c.Intents)
	}
	return protocol.DefaultIntents
}

// AppID returns the parsed application ID, zero when unset.
func (c *Config) AppID() snowflake.ApplicationID {
	id, _ := snowflake.Parse[snowflake.ApplicationMarker](c.ApplicationID)
	return id
}

// DevGuildID returns the parsed guild scope, zero when unset.
func (c *Config) DevGuildID() snowflake.GuildID {
	id, _ := snowflake.Parse[snowflake.GuildMarker](c.GuildID)
	return id
}

// ChannelAllowed reports whether text commands should run in the channel.
func (c *Config) ChannelAllowed(id snowflake.ChannelID) bool {
	if len(c.AllowedChannels) == 0 {
		return true
	}
	s := id.String()
	for _, ch := range c.AllowedChannels {
		if ch == s {
			return true
		}
	}
	return false
}
