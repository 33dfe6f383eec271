package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aerocode/internal/app"
	"aerocode/internal/config"
	"aerocode/internal/db"
	"aerocode/internal/domain"
)

// stdout receives command output. mutate points it at a buffer until the
// change is saved.
var stdout io.Writer = os.Stdout

// Rejections already surface as the command's error.
const defaultLogLevel = "error"

var rootCmd = &cobra.Command{
	Use:   "aero",
	Short: "Aerocode production CLI",
	Long: `Aerocode tracks aircraft production: employees, parts, production stages and tests.
- Roles: OPERATOR < ENGINEER < ADMINISTRATOR; every change checks the caller's rank first.
- Restrictive deletion: parts, stages, tests and aircraft cannot be removed while something still references them.
- Employees are never removed; deleting one deactivates it.
- Stages run in order: a stage completes only after the one before it.
- Session: run 'aero login' once per workspace; the first login is admin/123456 unless aerocode.yml says otherwise.
- Event log: every accepted change, view with 'aero log tail'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return config.LoadEnv(workspace)
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("AEROCODE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("log-level", defaultLogLevel, "log level (debug|info|warn|error)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(employeeCmd())
	rootCmd.AddCommand(aircraftCmd())
	rootCmd.AddCommand(partCmd())
	rootCmd.AddCommand(stageCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelError
	}
	return level
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(viper.GetString("log-level"))}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if secret := viper.GetString("session-secret"); secret != "" {
		cfg.Session.Secret = secret
	}
	return cfg, nil
}

func withWorkspace(ctx context.Context, fn func(context.Context, *app.Workspace) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w, err := app.Open(ctx, viper.GetString("workspace"), cfg, newLogger())
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(ctx, w)
}

// withActor runs fn as the logged-in employee.
func withActor(ctx context.Context, fn func(context.Context, *app.Workspace, domain.Employee) error) error {
	return withWorkspace(ctx, func(ctx context.Context, w *app.Workspace) error {
		emp, err := w.CurrentEmployee(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, w, emp)
	})
}

// mutate runs one engine operation as the logged-in employee and commits the
// model plus its events when the operation succeeds.
func mutate(ctx context.Context, fn func(context.Context, *app.Workspace, domain.Actor) error) error {
	return withActor(ctx, func(ctx context.Context, w *app.Workspace, emp domain.Employee) error {
		return afterCommit(
			func() error { return fn(ctx, w, emp.Actor()) },
			func() error { return w.Commit(ctx) },
		)
	})
}

// afterCommit holds back what run prints and releases it only once commit
// succeeds.
func afterCommit(run, commit func() error) error {
	prev := stdout
	var buf bytes.Buffer
	stdout = &buf
	err := run()
	stdout = prev
	if err != nil {
		return err
	}
	if err := commit(); err != nil {
		return err
	}
	_, err = buf.WriteTo(stdout)
	return err
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(stdout, string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printLink reports the outcome of an idempotent link operation.
func printLink(changed bool, done, noop string) error {
	if viper.GetBool("json") {
		return printJSON(map[string]any{"changed": changed})
	}
	if changed {
		fmt.Fprintln(stdout, done)
	} else {
		fmt.Fprintln(stdout, noop)
	}
	return nil
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s required", name)
	}
	return nil
}
