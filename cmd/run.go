package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/discgate/internal/bot"
	"github.com/nextlevelbuilder/discgate/internal/config"
)

func runCmd() *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and serve events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runBot(cfg, !noWatch)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"disable config hot reload")
	return cmd
}

func runBot(cfg *config.Config, watch bool) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bot.New(cfg, slog.Default())
	defer b.Close()

	if watch {
		watcher, err := config.NewWatcher(resolveConfigPath(), slog.Default())
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		watcher.OnChange(b.ApplyConfig)
		if err := watcher.Start(); err != nil {
			// A broken watcher should not keep the bot offline.
			slog.Warn("config watch unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	slog.Info("discgate starting", "version", version)
	if err := b.Run(ctx); err != nil {
		return err
	}
	slog.Info("discgate stopped")
	return nil
}
