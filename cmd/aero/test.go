package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aerocode/internal/app"
	"aerocode/internal/domain"
	"aerocode/internal/engine"
)

func testCmd() *cobra.Command {
	t := &cobra.Command{Use: "test", Short: "Manage aircraft tests"}
	t.AddCommand(testAddCmd())
	t.AddCommand(testCreateCmd())
	t.AddCommand(testListCmd())
	t.AddCommand(testAttachCmd())
	t.AddCommand(testDetachCmd())
	t.AddCommand(testDeleteCmd())
	return t
}

// testFlags binds the flags shared by add and create.
func testFlags(cmd *cobra.Command, in *engine.TestInput, kind, result, date *string) {
	cmd.Flags().StringVar(&in.ID, "id", "", "test id (generated when omitted)")
	cmd.Flags().StringVar(kind, "kind", "", "ELECTRICAL|HYDRAULIC|AERODYNAMIC")
	cmd.Flags().StringVar(result, "result", "", "APPROVED|REJECTED")
	cmd.Flags().StringVar(date, "date", "", "test date YYYY-MM-DD (today when omitted)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("result")
}

func parseTestInput(in *engine.TestInput, kind, result, date string) error {
	k, err := domain.ParseTestKind(kind)
	if err != nil {
		return err
	}
	r, err := domain.ParseTestResult(result)
	if err != nil {
		return err
	}
	in.Kind, in.Result = k, r
	if date != "" {
		d, err := parseDate(date)
		if err != nil {
			return err
		}
		in.Date = d
	}
	return nil
}

func testAddCmd() *cobra.Command {
	var in engine.TestInput
	var kind, result, date string
	cmd := &cobra.Command{
		Use:   "add <aircraft-code>",
		Short: "Record a test result on an aircraft (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := parseTestInput(&in, kind, result, date); err != nil {
				return err
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				t, err := w.Engine.AddTest(actor, args[0], in)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	testFlags(cmd, &in, &kind, &result, &date)
	return cmd
}

func testCreateCmd() *cobra.Command {
	var in engine.TestInput
	var kind, result, date string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a test without attaching it (engineer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := parseTestInput(&in, kind, result, date); err != nil {
				return err
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				t, err := w.Engine.CreateTest(actor, in)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	testFlags(cmd, &in, &kind, &result, &date)
	return cmd
}

func testListCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				tests := w.Engine.Tests.List()
				if code != "" {
					a, err := w.Engine.AircraftByCode(code)
					if err != nil {
						return err
					}
					tests = w.Engine.TestsOf(a.Code)
				}
				if viper.GetBool("json") {
					return printJSON(tests)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"ID", "Kind", "Result", "Date"})
				for _, t := range tests {
					tw.AppendRow(table.Row{t.ID, t.Kind, t.Result, t.Date.Format(dateLayout)})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "aircraft", "", "only tests of this aircraft")
	return cmd
}

func testAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <aircraft-code> <test-id>",
		Short: "Attach a registered test to an aircraft (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.AttachTest(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "test attached", "test already attached")
			})
		},
	}
}

func testDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <aircraft-code> <test-id>",
		Short: "Detach a test from an aircraft (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.DetachTest(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "test detached", "test was not attached")
			})
		},
	}
}

func testDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a test no aircraft uses (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				return runDelete(w, actor, domain.KindTest, args[0])
			})
		},
	}
}
