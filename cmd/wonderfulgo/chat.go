package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
	"github.com/edgard/wonderfulgo/internal/assistant"
	"github.com/edgard/wonderfulgo/internal/chat"
	"github.com/edgard/wonderfulgo/internal/favorites"
)

func chatCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk with the outing assistant",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "send <message>",
		Short: "Send a message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			_, res, err := a.Assistant.SendChat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, a.View())
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the conversation, oldest first",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			msgs := a.Chats.List(cmd.Context())
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages yet.")
			}
			for _, m := range msgs {
				printMessage(cmd.OutOrStdout(), m)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one message",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			return a.Chats.Delete(cmd.Context(), args[0])
		}),
	})

	return cmd
}

func printMessage(w io.Writer, m chat.Message) {
	fmt.Fprintf(w, "[%s] %s: %s  (%s)\n", m.Timestamp, m.Sender, m.Content, m.ID)
}

func printResult(w io.Writer, res assistant.Result, view favorites.View) {
	if res.Reply != nil {
		fmt.Fprintln(w, res.Reply.Content)
	}
	if res.Plan != nil {
		printPlan(w, *res.Plan, view)
	}
}
