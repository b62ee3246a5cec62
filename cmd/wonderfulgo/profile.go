package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
)

func profileCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the pet profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the populated profile fields",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			fields := a.Profiles.Load(ctx).Populated()
			if len(fields) == 0 {
				fmt.Fprintln(out, "No profile saved yet.")
			}
			for _, f := range fields {
				fmt.Fprintf(out, "%s: %s\n", f.Label, f.Value)
			}
			if _, ok := a.Profiles.LoadAvatar(ctx); ok {
				fmt.Fprintln(out, "Avatar: set")
			}
			return nil
		}),
	})

	var fields []string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long: `Update profile fields given as key=value pairs, e.g.

  wonderfulgo profile set -f dog_name=Pochi -f breed=other -f other_breed="Akita mix"

Fields not named keep their current value.`,
		Args: cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			ctx := cmd.Context()
			rec := a.Profiles.Load(ctx)
			for _, kv := range fields {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid field %q, expected key=value", kv)
				}
				if !rec.Set(strings.TrimSpace(key), value) {
					return fmt.Errorf("unknown profile field %q", key)
				}
			}
			if err := a.Profiles.Save(ctx, rec); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile saved.")
			return nil
		}),
	}
	set.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field to set as key=value (repeatable)")
	_ = set.MarkFlagRequired("field")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "avatar <image-file>",
		Short: "Store an image as the pet's avatar",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
			if err := a.Profiles.SaveAvatar(cmd.Context(), uri); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Avatar saved.")
			return nil
		}),
	})

	return cmd
}
