package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aerocode/internal/app"
	"aerocode/internal/domain"
	"aerocode/internal/engine"
)

func aircraftCmd() *cobra.Command {
	ac := &cobra.Command{Use: "aircraft", Short: "Manage aircraft"}
	ac.AddCommand(aircraftCreateCmd())
	ac.AddCommand(aircraftListCmd())
	ac.AddCommand(aircraftShowCmd())
	ac.AddCommand(aircraftDeleteCmd())
	ac.AddCommand(aircraftDeliverCmd())
	ac.AddCommand(aircraftProgressCmd())
	return ac
}

func aircraftCreateCmd() *cobra.Command {
	var in engine.AircraftInput
	var category, delivery string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an aircraft with the default stage sequence (engineer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := domain.ParseCategory(category)
			if err != nil {
				return err
			}
			in.Category = c
			if delivery != "" {
				d, err := parseDate(delivery)
				if err != nil {
					return err
				}
				in.DeliveryDate = &d
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				a, stages, err := w.Engine.CreateAircraft(actor, in)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"aircraft": a, "stages": stages})
				}
				fmt.Fprintf(stdout, "aircraft %s created (serial %s)\n", a.Code, a.Serial)
				printStages(stages)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Code, "code", "", "aircraft code (next AER### when omitted)")
	cmd.Flags().StringVar(&in.Model, "model", "", "model")
	cmd.Flags().StringVar(&category, "category", "COMMERCIAL", "COMMERCIAL|MILITARY")
	cmd.Flags().IntVar(&in.Capacity, "capacity", 0, "passenger capacity")
	cmd.Flags().IntVar(&in.Range, "range", 0, "range in km")
	cmd.Flags().StringVar(&in.Client, "client", "", "client")
	cmd.Flags().StringVar(&in.Manufacturer, "manufacturer", "", "manufacturer (config default when omitted)")
	cmd.Flags().IntVar(&in.Year, "year", 0, "manufacturing year (current when omitted)")
	cmd.Flags().StringVar(&in.Serial, "serial", "", "serial number (generated when omitted)")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")
	cmd.Flags().StringVar(&delivery, "delivery", "", "delivery date YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

type aircraftRow struct {
	domain.Aircraft
	Parts    int `json:"parts"`
	Stages   int `json:"stages"`
	Tests    int `json:"tests"`
	Progress int `json:"progress_percent"`
}

func aircraftListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List aircraft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				var rows []aircraftRow
				for _, a := range w.Engine.Aircraft.List() {
					p, _ := w.Engine.Progress(a.Code)
					rows = append(rows, aircraftRow{
						Aircraft: a,
						Parts:    len(w.Engine.PartsOf(a.Code)),
						Stages:   p.Total,
						Tests:    len(w.Engine.TestsOf(a.Code)),
						Progress: p.Percent,
					})
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"Code", "Model", "Category", "Client", "Parts", "Stages", "Tests", "Progress", "Delivery"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.Code, r.Model, r.Category, r.Client, r.Parts, r.Stages, r.Tests, fmt.Sprintf("%d%%", r.Progress), formatDate(r.DeliveryDate)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func aircraftShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show an aircraft with its parts, stages and tests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				a, err := w.Engine.AircraftByCode(args[0])
				if err != nil {
					return err
				}
				parts := w.Engine.PartsOf(a.Code)
				stages := w.Engine.StagesOf(a.Code)
				tests := w.Engine.TestsOf(a.Code)
				if viper.GetBool("json") {
					return printJSON(map[string]any{"aircraft": a, "parts": parts, "stages": stages, "tests": tests})
				}
				fmt.Fprintf(stdout, "%s  %s  %s  client=%s  serial=%s  delivery=%s\n", a.Label(), a.Category, a.Manufacturer, a.Client, a.Serial, formatDate(a.DeliveryDate))
				printParts(parts)
				printStages(stages)
				printTests(tests)
				return nil
			})
		},
	}
}

func aircraftDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete an aircraft with nothing attached (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				return runDelete(w, actor, domain.KindAircraft, args[0])
			})
		},
	}
}

func aircraftDeliverCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "deliver <code>",
		Short: "Set the delivery date (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				a, err := w.Engine.SetDeliveryDate(actor, args[0], d)
				if err != nil {
					return err
				}
				return printJSONOrTable(a)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "delivery date YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func aircraftProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <code>",
		Short: "Show stage progress and the next allowed action per stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				acts, err := w.Engine.StageActions(args[0])
				if err != nil {
					return err
				}
				p, err := w.Engine.Progress(args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"progress": p, "stages": acts})
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"Order", "ID", "Name", "Status", "Next", "Note"})
				for _, a := range acts {
					tw.AppendRow(table.Row{a.Stage.Order, a.Stage.ID, a.Stage.Name, a.Stage.Status, a.Action, a.Reason})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "done", fmt.Sprintf("%d/%d (%d%%)", p.Completed, p.Total, p.Percent)})
				tw.Render()
				return nil
			})
		},
	}
}

func printParts(parts []domain.Part) {
	tw := table.NewWriter()
	tw.SetOutputMirror(stdout)
	tw.AppendHeader(table.Row{"ID", "Name", "Origin", "Supplier", "Status"})
	for _, p := range parts {
		tw.AppendRow(table.Row{p.ID, p.Name, p.Origin, p.Supplier, p.Status})
	}
	tw.Render()
}

func printStages(stages []domain.Stage) {
	tw := table.NewWriter()
	tw.SetOutputMirror(stdout)
	tw.AppendHeader(table.Row{"Order", "ID", "Name", "Status", "Deadline"})
	for _, s := range stages {
		tw.AppendRow(table.Row{s.Order, s.ID, s.Name, s.Status, s.Deadline.Format(dateLayout)})
	}
	tw.Render()
}

func printTests(tests []domain.Test) {
	tw := table.NewWriter()
	tw.SetOutputMirror(stdout)
	tw.AppendHeader(table.Row{"ID", "Kind", "Result", "Date"})
	for _, t := range tests {
		tw.AppendRow(table.Row{t.ID, t.Kind, t.Result, t.Date.Format(dateLayout)})
	}
	tw.Render()
}
