// Package commands reconciles the application's registered slash commands
// with the set the code defines. Registration is always a full replace:
// the desired set is PUT as one batch, so removed commands disappear and
// re-running a sync is harmless.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextlevelbuilder/discgate/internal/rest"
	"github.com/nextlevelbuilder/discgate/pkg/snowflake"
)

// Scope selects where commands are registered: globally (propagates
// slowly, reaches every guild) or to one guild (instant, good for
// development).
type Scope struct {
	guildID snowflake.GuildID
}

// Global returns the global scope.
func Global() Scope { return Scope{} }

// Guild returns the scope of one guild.
func Guild(id snowflake.GuildID) Scope { return Scope{guildID: id} }

func (s Scope) IsGlobal() bool { return s.guildID.IsZero() }

func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return "guild " + s.guildID.String()
}

// API is the slice of the REST client the registrar needs.
type API interface {
	GlobalCommands(ctx context.Context, appID snowflake.ApplicationID) ([]rest.Command, error)
	GuildCommands(ctx context.Context, appID snowflake.ApplicationID, guildID snowflake.GuildID) ([]rest.Command, error)
	OverwriteGlobalCommands(ctx context.Context, appID snowflake.ApplicationID, cmds []rest.Command) ([]rest.Command, error)
	OverwriteGuildCommands(ctx context.Context, appID snowflake.ApplicationID, guildID snowflake.GuildID, cmds []rest.Command) ([]rest.Command, error)
}

// Registrar syncs command definitions for one application. devGuild names
// the guild used for development registration; it is the guild scope that
// gets cleared when syncing globally.
type Registrar struct {
	api      API
	appID    snowflake.ApplicationID
	devGuild snowflake.GuildID
	log      *slog.Logger
}

func NewRegistrar(api API, appID snowflake.ApplicationID, devGuild snowflake.GuildID, log *slog.Logger) *Registrar {
	if log == nil {
		log = slog.Default()
	}
	return &Registrar{api: api, appID: appID, devGuild: devGuild, log: log}
}

// Sync replaces the command set of the scope with desired and returns the
// registered commands (now carrying API-assigned IDs). The opposite scope
// is emptied afterwards: commands left behind there after switching
// between guild and global registration show up twice in the client.
func (r *Registrar) Sync(ctx context.Context, scope Scope, desired []rest.Command) ([]rest.Command, error) {
	if err := validate(desired); err != nil {
		return nil, err
	}

	if current, err := r.List(ctx, scope); err != nil {
		r.log.Warn("commands: could not fetch current set",
			"scope", scope.String(), "error", err)
	} else if added, removed := diffNames(current, desired); len(added)+len(removed) > 0 {
		r.log.Info("commands: reconciling", "scope", scope.String(),
			"adding", added, "removing", removed)
	}

	var (
		registered []rest.Command
		err        error
	)
	if scope.IsGlobal() {
		registered, err = r.api.OverwriteGlobalCommands(ctx, r.appID, desired)
	} else {
		registered, err = r.api.OverwriteGuildCommands(ctx, r.appID, scope.guildID, desired)
	}
	if err != nil {
		return nil, fmt.Errorf("commands: sync %s: %w", scope, err)
	}
	r.log.Info("commands: synced", "scope", scope.String(), "count", len(registered))

	r.clearOpposite(ctx, scope)
	return registered, nil
}

// clearOpposite empties the scope not being synced. Failure is logged,
// not fatal: the requested sync itself already succeeded.
func (r *Registrar) clearOpposite(ctx context.Context, scope Scope) {
	if scope.IsGlobal() {
		if r.devGuild.IsZero() {
			return
		}
		if _, err := r.api.OverwriteGuildCommands(ctx, r.appID, r.devGuild, nil); err != nil {
			r.log.Warn("commands: clearing guild scope failed",
				"guild", r.devGuild, "error", err)
			return
		}
		r.log.Info("commands: cleared guild scope", "guild", r.devGuild)
		return
	}
	if _, err := r.api.OverwriteGlobalCommands(ctx, r.appID, nil); err != nil {
		r.log.Warn("commands: clearing global scope failed", "error", err)
		return
	}
	r.log.Info("commands: cleared global scope")
}

// diffNames reports which command names desired adds to and removes from
// current.
func diffNames(current, desired []rest.Command) (added, removed []string) {
	have := make(map[string]bool, len(current))
	for _, c := range current {
		have[c.Name] = true
	}
	want := make(map[string]bool, len(desired))
	for _, c := range desired {
		want[c.Name] = true
		if !have[c.Name] {
			added = append(added, c.Name)
		}
	}
	for _, c := range current {
		if !want[c.Name] {
			removed = append(removed, c.Name)
		}
	}
	return added, removed
}

// List fetches the currently registered commands of the scope.
func (r *Registrar) List(ctx context.Context, scope Scope) ([]rest.Command, error) {
	var (
		cmds []rest.Command
		err  error
	)
	if scope.IsGlobal() {
		cmds, err = r.api.GlobalCommands(ctx, r.appID)
	} else {
		cmds, err = r.api.GuildCommands(ctx, r.appID, scope.guildID)
	}
	if err != nil {
		return nil, fmt.Errorf("commands: list %s: %w", scope, err)
	}
	return cmds, nil
}

// validate catches definition mistakes locally instead of burning an API
// call on a guaranteed 400.
func validate(cmds []rest.Command) error {
	seen := make(map[string]bool, len(cmds))
	for _, cmd := range cmds {
		if cmd.Name == "" {
			return fmt.Errorf("commands: command with empty name")
		}
		if cmd.Description == "" {
			return fmt.Errorf("commands: %q missing description", cmd.Name)
		}
		if seen[cmd.Name] {
			return fmt.Errorf("commands: duplicate name %q", cmd.Name)
		}
		seen[cmd.Name] = true
	}
	return nil
}
