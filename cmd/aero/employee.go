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

func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session on this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = readLine("username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = readLine("password: "); err != nil {
					return err
				}
			}
			return withWorkspace(cmd.Context(), func(ctx context.Context, w *app.Workspace) error {
				emp, err := w.Login(ctx, username, password)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(emp)
				}
				fmt.Fprintf(stdout, "logged in as %s (%s)\n", emp.Name, emp.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, w *app.Workspace) error {
				return w.Logout(ctx)
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, emp domain.Employee) error {
				return printJSONOrTable(emp)
			})
		},
	}
}

func employeeCmd() *cobra.Command {
	emp := &cobra.Command{Use: "employee", Short: "Manage employees"}
	emp.AddCommand(employeeCreateCmd())
	emp.AddCommand(employeeListCmd())
	emp.AddCommand(employeeGetCmd())
	emp.AddCommand(employeeDeleteCmd())
	emp.AddCommand(employeeReactivateCmd())
	return emp
}

func employeeCreateCmd() *cobra.Command {
	var in engine.EmployeeInput
	var role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an employee (administrator)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			in.Role = r
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				created, err := w.Engine.CreateEmployee(actor, in)
				if err != nil {
					return err
				}
				return printJSONOrTable(created)
			})
		},
	}
	cmd.Flags().StringVar(&in.ID, "id", "", "employee id (next number when omitted)")
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&in.Address, "address", "", "address")
	cmd.Flags().StringVar(&in.Username, "username", "", "login username")
	cmd.Flags().StringVar(&in.Secret, "password", "", "login password")
	cmd.Flags().StringVar(&role, "role", "OPERATOR", "OPERATOR|ENGINEER|ADMINISTRATOR")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// employeeView hides credentials from operators.
type employeeView struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	Active   bool        `json:"active"`
	Username string      `json:"username,omitempty"`
	Phone    string      `json:"phone,omitempty"`
	Address  string      `json:"address,omitempty"`
}

func viewEmployee(e domain.Employee, viewer domain.Employee) employeeView {
	v := employeeView{ID: e.ID, Name: e.Name, Role: e.Role, Active: e.Active}
	if viewer.Role != domain.RoleOperator || viewer.ID == e.ID {
		v.Username, v.Phone, v.Address = e.Username, e.Phone, e.Address
	}
	return v
}

func employeeListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, viewer domain.Employee) error {
				var views []employeeView
				for _, e := range w.Engine.Employees.List() {
					if !all && !e.Active {
						continue
					}
					views = append(views, viewEmployee(e, viewer))
				}
				if viper.GetBool("json") {
					return printJSON(views)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Role", "Username", "Phone", "Active"})
				for _, v := range views {
					tw.AppendRow(table.Row{v.ID, v.Name, v.Role, v.Username, v.Phone, v.Active})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated employees")
	return cmd
}

func employeeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, viewer domain.Employee) error {
				e, err := w.Engine.Employee(args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(viewEmployee(e, viewer))
			})
		},
	}
}

func employeeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate an employee (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				return runDelete(w, actor, domain.KindEmployee, args[0])
			})
		},
	}
}

func employeeReactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate <id>",
		Short: "Reactivate a deactivated employee (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd.Context(), func(ctx context.Context, w *app.Workspace, actor domain.Actor) error {
				e, err := w.Engine.ReactivateEmployee(actor, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(e)
			})
		},
	}
}

// runDelete applies restrictive deletion and prints the outcome.
func runDelete(w *app.Workspace, actor domain.Actor, kind domain.EntityKind, id string) error {
	res, err := w.Engine.Delete(actor, kind, id)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(res)
	}
	if res.SoftDeleted {
		fmt.Fprintf(stdout, "%s %s deactivated\n", res.Kind, res.ID)
		if len(res.Advisories) > 0 {
			fmt.Fprintln(stdout, "warning: still assigned to:")
			for _, a := range res.Advisories {
				fmt.Fprintln(stdout, "  ", a)
			}
		}
		return nil
	}
	fmt.Fprintf(stdout, "%s %s deleted\n", res.Kind, res.ID)
	return nil
}
