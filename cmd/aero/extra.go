package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"aerocode/internal/app"
	"aerocode/internal/catalog"
	"aerocode/internal/config"
	"aerocode/internal/domain"
	"aerocode/internal/report"
	"aerocode/internal/repo"
)

func catalogCmd() *cobra.Command {
	c := &cobra.Command{Use: "catalog", Short: "Browse the standard parts catalog"}
	var group string
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := catalog.All()
			if group != "" {
				entries = catalog.ByGroup(group)
			}
			return printCatalog(entries)
		},
	}
	list.Flags().StringVar(&group, "group", "", "only this group (ENGINES, AVIONICS, ...)")
	search := &cobra.Command{
		Use:   "search <term>",
		Short: "Search catalog names and suppliers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(catalog.Search(args[0]))
		},
	}
	c.AddCommand(list, search)
	return c
}

func printCatalog(entries []catalog.Entry) error {
	if viper.GetBool("json") {
		return printJSON(entries)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(stdout)
	tw.AppendHeader(table.Row{"#", "Name", "Origin", "Supplier", "Group"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Index + 1, e.Name, e.Origin, e.Supplier, e.Group})
	}
	tw.Render()
	return nil
}

func reportCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "report <aircraft-code>",
		Short: "Render the final production report of an aircraft (engineer)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, emp domain.Employee) error {
				d, err := w.Engine.Dossier(emp.Actor(), args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(d)
				}
				if !save {
					fmt.Fprint(stdout, report.Render(nil, d, w.Engine.Now()))
					return nil
				}
				path, err := report.Save(w.Dir, d.Aircraft.Code, report.Render(report.Plain(), d, w.Engine.Now()))
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "report saved to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write to reports/<code>.txt instead of stdout")
	return cmd
}

func configCmd() *cobra.Command {
	c := &cobra.Command{Use: "config", Short: "Inspect and initialise workspace configuration"}
	c.AddCommand(configShowCmd())
	c.AddCommand(configInitCmd())
	c.AddCommand(configSecretCmd())
	return c
}

type stageView struct {
	Name       string `yaml:"name" json:"name"`
	OffsetDays int    `yaml:"offset_days" json:"offset_days"`
}

// configView is the effective config with the secrets left out.
type configView struct {
	Manufacturer  string      `yaml:"manufacturer" json:"manufacturer"`
	Stages        []stageView `yaml:"stages" json:"stages"`
	AdminUsername string      `yaml:"admin_username" json:"admin_username"`
	SessionTTL    string      `yaml:"session_ttl" json:"session_ttl"`
	SessionSecret string      `yaml:"session_secret" json:"session_secret"`
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v := configView{
				Manufacturer:  cfg.Production.Manufacturer,
				AdminUsername: cfg.Bootstrap.Username,
				SessionTTL:    cfg.Session.TTL.String(),
				SessionSecret: "generated",
			}
			if cfg.Session.Secret != "" {
				v.SessionSecret = "configured"
			}
			for _, st := range cfg.Production.Stages {
				v.Stages = append(v.Stages, stageView(st))
			}
			if viper.GetBool("json") {
				return printJSON(v)
			}
			out, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, string(out))
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default aerocode.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(viper.GetString("workspace"), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret <value>",
		Short: "Store the session signing secret in the workspace .env",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if err := config.SetEnv(workspace, "AEROCODE_SESSION_SECRET", args[0]); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "set AEROCODE_SESSION_SECRET in %s/.env; existing sessions are no longer valid\n", workspace)
			return nil
		},
	}
}

func logCmd() *cobra.Command {
	c := &cobra.Command{Use: "log", Short: "Inspect the event journal"}
	var f repo.EventFilter
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the latest accepted changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, w *app.Workspace, _ domain.Employee) error {
				evts, err := w.Repo.LatestEvents(ctx, f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(evts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(stdout)
				tw.AppendHeader(table.Row{"ID", "Time", "Type", "Entity", "Actor", "Payload"})
				for _, e := range evts {
					tw.AppendRow(table.Row{e.ID, e.TS, e.Type, e.EntityKind + " " + e.EntityID, e.ActorID, e.Payload})
				}
				tw.Render()
				return nil
			})
		},
	}
	tail.Flags().IntVarP(&f.Limit, "n", "n", 20, "number of events")
	tail.Flags().StringVar(&f.EntityKind, "entity-kind", "", "filter by entity kind")
	tail.Flags().StringVar(&f.EntityID, "entity-id", "", "filter by entity id")
	tail.Flags().StringVar(&f.ActorID, "actor", "", "filter by actor id")
	c.AddCommand(tail)
	return c
}
