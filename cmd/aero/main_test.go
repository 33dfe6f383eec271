package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/domain"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate(" 2024-05-01 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", formatDate(&d))

	_, err = parseDate("01/05/2024")
	require.Error(t, err)
	assert.Equal(t, "-", formatDate(nil))
}

func TestViewEmployeeHidesCredentialsFromOperators(t *testing.T) {
	target := domain.Employee{ID: "2", Name: "Ana", Username: "ana", Phone: "555", Address: "Rua 1", Role: domain.RoleEngineer, Active: true}
	operator := domain.Employee{ID: "3", Role: domain.RoleOperator}
	admin := domain.Employee{ID: "1", Role: domain.RoleAdministrator}

	v := viewEmployee(target, operator)
	assert.Empty(t, v.Username)
	assert.Empty(t, v.Phone)
	assert.Equal(t, "Ana", v.Name)

	v = viewEmployee(target, admin)
	assert.Equal(t, "ana", v.Username)
	assert.Equal(t, "Rua 1", v.Address)

	self := viewEmployee(operator, operator)
	assert.Equal(t, "3", self.ID)
}

func TestCommandTreeRegistersEveryGroup(t *testing.T) {
	registerCommands()
	t.Cleanup(func() { rootCmd.ResetCommands() })
	for _, name := range []string{"login", "employee", "aircraft", "part", "stage", "test", "catalog", "report", "config", "log"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	cmd, _, err := rootCmd.Find([]string{"stage", "complete"})
	require.NoError(t, err)
	assert.Equal(t, "complete", cmd.Name())
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestAfterCommitPrintsOnlyOnceSaved(t *testing.T) {
	out := captureStdout(t)
	emit := func() error {
		fmt.Fprintln(stdout, "part P001 deleted")
		return nil
	}

	err := afterCommit(emit, func() error { return errors.New("save model: disk full") })
	require.ErrorContains(t, err, "disk full")
	assert.Empty(t, out.String())

	require.NoError(t, afterCommit(emit, func() error { return nil }))
	assert.Equal(t, "part P001 deleted\n", out.String())
}

func TestAfterCommitSkipsCommitWhenRunFails(t *testing.T) {
	out := captureStdout(t)
	committed := false
	err := afterCommit(
		func() error {
			fmt.Fprintln(stdout, "partial")
			return errors.New("denied")
		},
		func() error { committed = true; return nil },
	)
	require.EqualError(t, err, "denied")
	assert.False(t, committed)
	assert.Empty(t, out.String())
}

func TestDefaultLogLevelHidesRejectionWarnings(t *testing.T) {
	level := logLevel(defaultLogLevel)
	h := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: level})
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, slog.LevelWarn, logLevel("warn"))
	assert.Equal(t, slog.LevelError, logLevel("bogus"))
}
