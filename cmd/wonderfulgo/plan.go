package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/edgard/wonderfulgo/internal/app"
	"github.com/edgard/wonderfulgo/internal/assistant"
	"github.com/edgard/wonderfulgo/internal/favorites"
	"github.com/edgard/wonderfulgo/internal/plan"
)

func planCmd(g *globalFlags, opts []app.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create and browse outing plans",
	}

	var cond assistant.Conditions
	create := &cobra.Command{
		Use:   "create",
		Short: "Ask the assistant for an outing plan",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			ctx := cmd.Context()
			res, err := a.Assistant.CreatePlan(ctx, cond)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), *res.Plan, a.View())
			return nil
		}),
	}
	create.Flags().StringVar(&cond.Area, "area", "", "Target area (defaults to the profile's residence)")
	create.Flags().StringVar(&cond.Residence, "residence", "", "Place of residence")
	create.Flags().StringVar(&cond.Transportation, "transport", "車", "Means of transport")
	create.Flags().StringVar(&cond.Duration, "duration", "半日", "Time available")
	create.Flags().StringVar(&cond.Mood, "mood", "", "Today's mood or requests")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print stored plans, newest first; favorited spots are starred",
		Args:  cobra.NoArgs,
		RunE: withApp(g, opts, func(cmd *cobra.Command, a *app.App, _ []string) error {
			out := cmd.OutOrStdout()
			guide := a.Guide(cmd.Context())
			if len(guide) == 0 {
				fmt.Fprintln(out, "No plans yet. Create one with `plan create`.")
			}
			for _, pv := range guide {
				printPlanView(out, pv)
			}
			return nil
		}),
	})

	return cmd
}

func printPlan(w io.Writer, p plan.Plan, view favorites.View) {
	pv := app.PlanView{Title: p.Title, GreetingMessage: p.GreetingMessage, Timestamp: p.Timestamp}
	for _, s := range p.Spots {
		pv.Spots = append(pv.Spots, app.SpotView{Spot: s, Favorited: view.IsFavorited(s.Name)})
	}
	printPlanView(w, pv)
}

func printPlanView(w io.Writer, pv app.PlanView) {
	fmt.Fprintf(w, "== %s (%s)\n", pv.Title, pv.Timestamp)
	if pv.GreetingMessage != "" {
		fmt.Fprintln(w, pv.GreetingMessage)
	}
	for i, s := range pv.Spots {
		mark := " "
		if s.Favorited {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d. %s - %s\n", mark, i+1, s.Name, s.Address)
		if s.Description != "" {
			fmt.Fprintf(w, "     %s\n", s.Description)
		}
		if s.PetCondition != "" {
			fmt.Fprintf(w, "     Pets: %s\n", s.PetCondition)
		}
		if s.ParkingInfo != "" {
			fmt.Fprintf(w, "     Parking: %s\n", s.ParkingInfo)
		}
	}
	fmt.Fprintln(w)
}
