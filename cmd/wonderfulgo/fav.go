package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
	"github.com/edgard/wonderfulgo/internal/favorites"
)

func favCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite spots",
	}

	var ref favorites.SpotRef
	var memo string
	toggle := &cobra.Command{
		Use:   "toggle <spot-name>",
		Short: "Add a spot to favorites, or remove it if already there",
		Long: `Toggle a favorite by spot name. Address and description default to
the most recent plan containing a spot with that name.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			ctx := cmd.Context()
			spot := lookupSpot(ctx, a, args[0])
			if ref.Address != "" {
				spot.Address = ref.Address
			}
			if ref.Description != "" {
				spot.Description = ref.Description
			}

			outcome, err := a.Favorites.Toggle(ctx, spot, memo)
			if err != nil {
				return err
			}
			switch outcome {
			case favorites.Added:
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q to favorites.\n", spot.Name)
			case favorites.Removed:
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from favorites.\n", spot.Name)
			}
			return nil
		}),
	}
	toggle.Flags().StringVar(&ref.Address, "address", "", "Spot address")
	toggle.Flags().StringVar(&ref.Description, "description", "", "Spot description")
	toggle.Flags().StringVar(&memo, "memo", "", "Personal note saved with the favorite")
	cmd.AddCommand(toggle)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print favorites, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			out := cmd.OutOrStdout()
			favs := favorites.Reversed(a.Favorites.List(cmd.Context()))
			if len(favs) == 0 {
				fmt.Fprintln(out, "No favorites yet.")
			}
			for _, f := range favs {
				fmt.Fprintf(out, "%s - %s (saved %s)\n", f.Name, f.Address, f.SavedAt)
				if f.UserMemo != "" {
					fmt.Fprintf(out, "  memo: %s\n", f.UserMemo)
				}
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <spot-name>",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, args []string) error {
			return a.Favorites.Remove(cmd.Context(), args[0])
		}),
	})

	return cmd
}

func lookupSpot(ctx context.Context, a *app.App, name string) favorites.SpotRef {
	for _, p := range a.Plans.List(ctx) {
		for _, s := range p.Spots {
			if s.Name == name {
				return favorites.SpotRef{Name: s.Name, Address: s.Address, Description: s.Description}
			}
		}
	}
	return favorites.SpotRef{Name: name}
}
