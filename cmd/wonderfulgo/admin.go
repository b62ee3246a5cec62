package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
	"github.com/edgard/wonderfulgo/internal/assistant"
	"github.com/edgard/wonderfulgo/internal/config"
)

func exportCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print all stored data as YAML",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			return a.Export(cmd.Context(), cmd.OutOrStdout())
		}),
	}
}

func resetCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the profile, avatar, chat, plans and favorites",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if !yes {
				return errors.New("refusing to erase all data without --yes")
			}
			if err := a.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm erasing all data")
	return cmd
}

func maintainCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var (
		now         bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Run scheduled store maintenance until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if now {
				return a.Scheduler.RunNow(cmd.Context(), config.MaintenanceTask)
			}
			return a.Run(cmd.Context(), metricsAddr)
		}),
	}
	cmd.Flags().BoolVar(&now, "now", false, "Run maintenance once and exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func shellCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Chat interactively; each line is sent to the assistant",
		Long: `Chat interactively. Lines starting with a slash are commands:

  /plan <area>   create a plan for area
  /fav <name>    toggle a favorite spot
  /quit          leave the shell`,
		Args: cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			runErr := make(chan error, 1)
			go func() { runErr <- a.Run(ctx, metricsAddr) }()

			err := shellLoop(ctx, cmd, a)
			cancel()
			if rerr := <-runErr; err == nil {
				err = rerr
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func shellLoop(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		switch verb, rest, _ := strings.Cut(line, " "); verb {
		case "/quit", "/exit":
			return nil
		case "/plan":
			var res assistant.Result
			res, err = a.Assistant.CreatePlan(ctx, assistant.Conditions{Area: rest, Transportation: "車", Duration: "半日"})
			if err == nil {
				printPlan(out, *res.Plan, a.View())
			}
		case "/fav":
			name := strings.TrimSpace(rest)
			if name == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Usage: /fav <spot name>")
				continue
			}
			_, err = a.Favorites.Toggle(ctx, lookupSpot(ctx, a, name), "")
		default:
			var res assistant.Result
			_, res, err = a.Assistant.SendChat(ctx, line)
			if err == nil {
				printResult(out, res, a.View())
			}
		}

		if err != nil {
			if !assistant.IsUserVisible(err) {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), userMessage(err))
		}
	}
}

func userMessage(err error) string {
	var aerr *assistant.Error
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	return err.Error()
}
