// Package main is the wonderfulgo command line: a headless front end for the
// pet profile, chat, outing plans and favorite spots.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
	"github.com/edgard/wonderfulgo/internal/config"
	"github.com/edgard/wonderfulgo/internal/logger"
)

const (
	appName = "wonderfulgo"
	Version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

// open loads configuration and builds a session. The caller must Close it.
func (g *globalFlags) open(cmd *cobra.Command, opts ...app.Option) (*app.App, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Debug("Configuration loaded", "config", g.configPath, "database", cfg.Database.Path)

	return app.Open(cfg, log, opts...)
}

func rootCmd(opts ...app.Option) *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Pet outing assistant",
		Long: `wonderfulgo keeps a pet profile, a chat with the outing assistant,
generated outing plans and favorite spots in a local SQLite file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "./config.yaml", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(
		profileCmd(g, opts),
		chatCmd(g, opts),
		planCmd(g, opts),
		favCmd(g, opts),
		exportCmd(g, opts),
		resetCmd(g, opts),
		maintainCmd(g, opts),
		shellCmd(g, opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// withApp wraps a command body with session setup and teardown.
func withApp(g *globalFlags, opts []app.Option, fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := g.open(cmd, opts...)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a, args)
	}
}
