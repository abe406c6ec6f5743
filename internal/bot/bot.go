// Package bot wires the gateway session, the REST client, and the
// command handlers into a runnable bot.
package bot

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nextlevelbuilder/discgate/internal/config"
	"github.com/nextlevelbuilder/discgate/internal/gateway"
	"github.com/nextlevelbuilder/discgate/internal/rest"
	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// Bot owns one gateway session and the handlers behind it.
type Bot struct {
	cfg   atomic.Pointer[config.Config]
	rest  *rest.Client
	gw    *gateway.Client
	greet *greeter
	log   *slog.Logger

	startedAt time.Time
}

func New(cfg *config.Config, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	rc := rest.NewClient(rest.Options{
		Token:  cfg.Token,
		Logger: log,
	})
	gc := gateway.NewClient(gateway.Options{
		Token:      cfg.Token,
		Intents:    cfg.GatewayIntents(),
		ResolveURL: rc.GatewayURL,
		Logger:     log,
	})

	b := &Bot{
		rest:      rc,
		gw:        gc,
		greet:     newGreeter(),
		log:       log,
		startedAt: time.Now(),
	}
	b.cfg.Store(cfg)
	b.registerHandlers(gc.Dispatcher())
	return b
}

// Run services the gateway session until ctx is cancelled or a fatal
// gateway condition occurs.
func (b *Bot) Run(ctx context.Context) error {
	return b.gw.Run(ctx)
}

// Close stops the gateway session.
func (b *Bot) Close() {
	b.gw.Close()
}

// ApplyConfig swaps in a reloaded config. Only the hot-reloadable fields
// (prefix, allowed channels, log level) take effect; connection settings
// need a restart.
func (b *Bot) ApplyConfig(cfg *config.Config) {
	b.cfg.Store(cfg)
	b.log.Info("bot: config applied", "prefix", cfg.Prefix,
		"allowed_channels", len(cfg.AllowedChannels))
}

func (b *Bot) config() *config.Config {
	return b.cfg.Load()
}

// uptime returns the time since the process started, rounded to seconds.
func (b *Bot) uptime() time.Duration {
	return time.Since(b.startedAt).Round(time.Second)
}

func (b *Bot) registerHandlers(d *gateway.Dispatcher) {
	d.On(protocol.EventReady, func(ctx context.Context, ev gateway.Event) {
		self := b.gw.Self()
		b.log.Info("bot: ready", "user", self.Username, "id", self.ID)
	})
	d.On(protocol.EventMessageCreate, b.onMessageCreate)
	d.On(protocol.EventInteractionCreate, b.onInteractionCreate)
	d.On(protocol.EventGuildCreate, b.onGuildCreate)
	d.On(protocol.EventPresenceUpdate, b.onPresenceUpdate)
}
