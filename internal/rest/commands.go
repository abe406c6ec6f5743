package rest

import (
	"context"
	"net/http"

	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// Application command option types.
const (
	OptionSubcommand = 1
	OptionString     = 3
	OptionInteger    = 4
	OptionBoolean    = 5
	OptionUser       = 6
	OptionChannel    = 7
	OptionRole       = 8
)

// Command is an application command definition. ID and ApplicationID are
// set by the API on registered commands and omitted when registering.
type Command struct {
	ID            snowflake.CommandID     `json:"id,omitzero"`
	ApplicationID snowflake.ApplicationID `json:"application_id,omitzero"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Options       []CommandOption         `json:"options,omitempty"`
}

// CommandOption is one parameter of a command.
type CommandOption struct {
	Type        int             `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required,omitempty"`
	Choices     []CommandChoice `json:"choices,omitempty"`
	Options     []CommandOption `json:"options,omitempty"`
}

// CommandChoice is a fixed value a string or integer option offers.
type CommandChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// GlobalCommands lists the application's registered global commands.
func (c *Client) GlobalCommands(ctx context.Context, appID snowflake.ApplicationID) ([]Command, error) {
	var out []Command
	path := "/applications/" + appID.String() + "/commands"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GuildCommands lists the commands registered for one guild.
func (c *Client) GuildCommands(ctx context.Context, appID snowflake.ApplicationID, guildID snowflake.GuildID) ([]Command, error) {
	var out []Command
	path := "/applications/" + appID.String() + "/guilds/" + guildID.String() + "/commands"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OverwriteGlobalCommands replaces the full global command set. Commands
// absent from cmds are deleted by the API; repeating the same set is a
// no-op.
func (c *Client) OverwriteGlobalCommands(ctx context.Context, appID snowflake.ApplicationID, cmds []Command) ([]Command, error) {
	var out []Command
	path := "/applications/" + appID.String() + "/commands"
	if err := c.do(ctx, http.MethodPut, path, cmds, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OverwriteGuildCommands replaces the full command set of one guild.
func (c *Client) OverwriteGuildCommands(ctx context.Context, appID snowflake.ApplicationID, guildID snowflake.GuildID, cmds []Command) ([]Command, error) {
	var out []Command
	path := "/applications/" + appID.String() + "/guilds/" + guildID.String() + "/commands"
	if err := c.do(ctx, http.MethodPut, path, cmds, &out); err != nil {
		return nil, err
	}
	return out, nil
}
