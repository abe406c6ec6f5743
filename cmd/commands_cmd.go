package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/discgate/internal/bot"
	"github.com/nextlevelbuilder/discgate/internal/commands"
	"github.com/nextlevelbuilder/discgate/internal/config"
	"github.com/nextlevelbuilder/discgate/internal/rest"
)

func commandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage registered slash commands",
	}
	cmd.AddCommand(commandsSyncCmd())
	cmd.AddCommand(commandsListCmd())
	return cmd
}

func commandsSyncCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replace the registered command set with the built-in one",
		Long: `Sync performs a full replace: commands the bot no longer defines are
removed, and the opposite scope is emptied so switching between guild and
global registration never shows commands twice. By default commands go to
the configured dev guild (instant); use --global to register them
everywhere (propagates slowly).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registrar, scope, err := registrarFromConfig(global)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			registered, err := registrar.Sync(ctx, scope, bot.CommandSet())
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d commands (%s)\n", len(registered), scope)
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "register globally instead of the dev guild")
	return cmd
}

func commandsListCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the currently registered commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			registrar, scope, err := registrarFromConfig(global)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			cmds, err := registrar.List(ctx, scope)
			if err != nil {
				return err
			}
			if len(cmds) == 0 {
				fmt.Printf("No commands registered (%s)\n", scope)
				return nil
			}
			for _, c := range cmds {
				fmt.Printf("%-14s %s\n", "/"+c.Name, c.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "list global commands instead of the dev guild's")
	return cmd
}

func registrarFromConfig(global bool) (*commands.Registrar, commands.Scope, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, commands.Scope{}, err
	}
	appID := cfg.AppID()
	if appID.IsZero() {
		return nil, commands.Scope{}, fmt.Errorf("application_id missing from config (or %s)", config.EnvApplicationID)
	}

	scope := commands.Global()
	if !global {
		guildID := cfg.DevGuildID()
		if guildID.IsZero() {
			return nil, commands.Scope{}, fmt.Errorf("no guild_id configured; use --global for global registration")
		}
		scope = commands.Guild(guildID)
	}

	rc := rest.NewClient(rest.Options{Token: cfg.Token, Logger: slog.Default()})
	return commands.NewRegistrar(rc, appID, cfg.DevGuildID(), slog.Default()), scope, nil
}
