// Package cmd holds the discgate CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/discgate/internal/config"
)

const version = "0.1.0"

var configPath string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "discgate",
		Short: "A direct gateway client and bot",
		Long: `discgate runs a bot on a single persistent gateway connection:
it identifies, heartbeats, resumes across disconnects, and routes events
to the built-in command handlers.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the config file (default $DISCGATE_CONFIG or ./discgate.json5)")

	root.AddCommand(runCmd())
	root.AddCommand(commandsCmd())
	root.AddCommand(versionCmd())
	return root
}

// Execute runs the CLI. Called from main.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("DISCGATE_CONFIG"); env != "" {
		return env
	}
	return "discgate.json5"
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// setupLogging installs the process-wide slog handler.
func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("discgate " + version)
		},
	}
}
