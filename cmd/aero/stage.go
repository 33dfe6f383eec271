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

func stageCmd() *cobra.Command {
	st := &cobra.Command{Use: "stage", Short: "Manage production stages"}
	st.AddCommand(stageCreateCmd())
	st.AddCommand(stageListCmd())
	st.AddCommand(stageStartCmd())
	st.AddCommand(stageCompleteCmd())
	st.AddCommand(stageAssignCmd())
	st.AddCommand(stageUnassignCmd())
	st.AddCommand(stageAttachCmd())
	st.AddCommand(stageDetachCmd())
	st.AddCommand(stageDeleteCmd())
	return st
}

func stageCreateCmd() *cobra.Command {
	var in engine.StageInput
	var deadline string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a stage (engineer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(deadline)
			if err != nil {
				return err
			}
			in.Deadline = d
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				st, err := w.Engine.CreateStage(actor, in)
				if err != nil {
					return err
				}
				return printJSONOrTable(st)
			})
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "stage id (generated when omitted)")
	cmd.Flags().StringVar(&in.Name, "name", "", "stage name")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline YYYY-MM-DD")
	cmd.Flags().IntVar(&in.Order, "order", 1, "position in the aircraft's sequence")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func stageListCmd() *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				stages := w.Engine.Stages.List()
				if code != "" {
					a, err := w.Engine.AircraftByCode(code)
					if err != nil {
						return err
					}
					stages = w.Engine.StagesOf(a.Code)
				}
				if viper.GetBool("json") {
					return printJSON(stages)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"Order", "ID", "Name", "Status", "Deadline", "Crew"})
				for _, s := range stages {
					tw.AppendRow(table.Row{s.Order, s.ID, s.Name, s.Status, s.Deadline.Format(dateLayout), crewNames(w.Engine.StageCrewOf(s.ID))})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&code, "aircraft", "", "only stages of this aircraft, in order")
	return cmd
}

func stageStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start a pending stage (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				st, err := w.Engine.StartStage(actor, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(st)
			})
		},
	}
}

func stageCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a stage once the previous one is done (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				st, err := w.Engine.CompleteStage(actor, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(st)
			})
		},
	}
}

func stageAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <stage-id> <employee-id>",
		Short: "Put an employee on a stage (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.AssignStageEmployee(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "employee assigned", "employee already on this stage")
			})
		},
	}
}

func stageUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <stage-id> <employee-id>",
		Short: "Take an employee off a stage (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.UnassignStageEmployee(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "employee unassigned", "employee was not on this stage")
			})
		},
	}
}

func stageAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <aircraft-code> <stage-id>",
		Short: "Add a stage to an aircraft's sequence (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.AttachStage(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "stage attached", "stage already attached")
			})
		},
	}
}

func stageDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <aircraft-code> <stage-id>",
		Short: "Remove a stage from an aircraft's sequence (engineer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				changed, err := w.Engine.DetachStage(actor, args[0], args[1])
				if err != nil {
					return err
				}
				return printLink(changed, "stage detached", "stage was not attached")
			})
		},
	}
}

func stageDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stage no aircraft uses (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				return runDelete(w, actor, domain.KindStage, args[0])
			})
		},
	}
}
