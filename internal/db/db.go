// Package db locates and opens the SQLite file behind an aerocode workspace.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	stateDir = ".aerocode"
	fileName = "aerocode.db"
)

// Config selects the workspace. InMemory opens a private database that
// vanishes with the connection.
type Config struct {
	Workspace string
	InMemory  bool
}

func root(workspace string) string {
	if workspace == "" {
		return "."
	}
	return workspace
}

// Path returns the database file of a workspace.
func Path(workspace string) string {
	return filepath.Join(root(workspace), stateDir, fileName)
}

// EnsureWorkspace creates <workspace>/.aerocode and returns its path.
func EnsureWorkspace(workspace string) (string, error) {
	dir := filepath.Join(root(workspace), stateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace %s: %w", dir, err)
	}
	return dir, nil
}

func dsn(cfg Config) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if cfg.InMemory {
		return "file::memory:?" + pragmas
	}
	return fmt.Sprintf("file:%s?%s", Path(cfg.Workspace), pragmas)
}

// Open opens the workspace database and checks that it answers.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if !cfg.InMemory {
		if _, err := EnsureWorkspace(cfg.Workspace); err != nil {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, err
	}
	// the model is loaded and saved whole; one connection also keeps an
	// in-memory database alive
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", Path(cfg.Workspace), err)
	}
	return conn, nil
}
