package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aerocode/internal/app"
	"aerocode/internal/catalog"
	"aerocode/internal/domain"
	"aerocode/internal/engine"
)

func partCmd() *cobra.Command {
	part := &cobra.Command{Use: "part", Short: "Manage parts"}
	part.AddCommand(partCreateCmd())
	part.AddCommand(partListCmd())
	part.AddCommand(partStatusCmd())
	part.AddCommand(partAssignCmd())
	part.AddCommand(partUnassignCmd())
	part.AddCommand(partAttachCmd())
	part.AddCommand(partDetachCmd())
	part.AddCommand(partDeleteCmd())
	return part
}

func partCreateCmd() *cobra.Command {
	var in engine.PartInput
	var origin, status string
	var fromCatalog int
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a part, by hand or from the catalog (engineer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry *catalog.Entry
			if fromCatalog > 0 {
				e, ok := catalog.Get(fromCatalog - 1)
				if !ok {
					return fmt.Errorf("catalog has no entry %d (1-%d)", fromCatalog, catalog.Len())
				}
				entry = &e
			} else {
				if err := requireFlag("name", in.Name); err != nil {
					return err
				}
				if err := requireFlag("supplier", in.Supplier); err != nil {
					return err
				}
				o, err := domain.ParseOrigin(origin)
				if err != nil {
					return err
				}
				s, err := domain.ParsePartStatus(status)
				if err != nil {
					return err
				}
				in.Origin, in.Status = o, s
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				var p domain.Part
				var err error
				if entry != nil {
					p, err = w.Engine.CreatePartFromCatalog(actor, *entry, in.Responsible)
				} else {
					p, err = w.Engine.CreatePart(actor, in)
				}
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "part id (generated when omitted)")
	cmd.Flags().StringVar(&in.Name, "name", "", "part name")
	cmd.Flags().StringVar(&origin, "origin", "DOMESTIC", "DOMESTIC|IMPORTED")
	cmd.Flags().StringVar(&in.Supplier, "supplier", "", "supplier")
	cmd.Flags().StringVar(&status, "status", "IN_PRODUCTION", "IN_PRODUCTION|IN_TRANSIT|READY")
	cmd.Flags().IntVar(&fromCatalog, "catalog", 0, "catalog entry number (see 'aero catalog list')")
	cmd.Flags().StringSliceVar(&in.Responsible, "responsible", nil, "responsible employee ids")
	return cmd
}

func partListCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				parts := w.Engine.Parts.List()
				if code != "" {
					a, err := w.Engine.AircraftByCode(code)
					if err != nil {
						return err
					}
					parts = w.Engine.PartsOf(a.Code)
				}
				if viper.GetBool("json") {
					return printJSON(parts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Origin", "Supplier", "Status", "Responsible"})
				for _, p := range parts {
					tw.AppendRow(table.Row{p.ID, p.Name, p.Origin, p.Supplier, p.Status, crewNames(w.Engine.PartCrewOf(p.ID))})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "aircraft", "", "only parts attached to this aircraft")
	return cmd
}

func partStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <IN_PRODUCTION|IN_TRANSIT|READY>",
		Short: "Update a part's status (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := domain.ParsePartStatus(args[1])
			if err != nil {
				return err
			}
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				p, err := w.Engine.UpdatePartStatus(actor, args[0], st)
				if err != nil {
					return err
				}
				return printJSONOrTable(p)
			})
		},
	}
}

func partAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <part-id> <employee-id>",
		Short: "Make an employee responsible for a part (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.AssignPartEmployee(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "employee assigned", "employee already responsible for this part")
			})
		},
	}
}

func partUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <part-id> <employee-id>",
		Short: "Remove an employee from a part (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.UnassignPartEmployee(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "employee unassigned", "employee was not responsible for this part")
			})
		},
	}
}

func partAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <aircraft-code> <part-id>",
		Short: "Attach a part to an aircraft (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.AttachPart(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "part attached", "part already attached")
			})
		},
	}
}

func partDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <aircraft-code> <part-id>",
		Short: "Detach a part from an aircraft (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.DetachPart(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "part detached", "part was not attached")
			})
		},
	}
}

func partDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a part no aircraft uses (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				return runDelete(w, actor, domain.KindPart, args[0])
			})
		},
	}
}

func crewNames(emps []domain.Employee) string {
	if len(emps) == 0 {
		return "-"
	}
	out := make([]string, len(emps))
	for i, e := range emps {
		out[i] = e.Name
	}
	return strings.Join(out, ", ")
}
