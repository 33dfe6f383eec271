package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aerocode/internal/config"
	"aerocode/internal/db"
	"aerocode/internal/domain"
	"aerocode/internal/engine"
	"aerocode/internal/engine/auth"
	"aerocode/internal/migrate"
	"aerocode/internal/repo"
)

var ErrNotLoggedIn = errors.New("not logged in; run `aero login`")

const sessionSecretKey = "session_secret"

// Workspace binds the rules engine to its SQLite store for one command.
type Workspace struct {
	Dir    string
	Config *config.Config
	Repo   repo.Repo
	Engine *engine.Engine
	Logger *slog.Logger
	Now    func() time.Time

	conn *sql.DB
}

// Open loads the stored model into a fresh engine and seeds the bootstrap
// administrator on first use.
func Open(ctx context.Context, dir string, cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := db.Open(ctx, db.Config{Workspace: dir})
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	applied, err := migrate.Migrate(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("workspace schema migrated", "path", db.Path(dir), "applied", applied)
	}
	w := &Workspace{
		Dir:    dir,
		Config: cfg,
		Repo:   repo.Repo{DB: conn},
		Engine: engine.New(cfg, logger),
		Logger: logger,
		Now:    time.Now,
		conn:   conn,
	}
	w.Engine.Now = w.now
	snap, err := w.Repo.Load(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := w.Engine.Import(snap); err != nil {
		conn.Close()
		return nil, fmt.Errorf("load model: %w", err)
	}
	admin, created, err := w.Engine.BootstrapAdmin()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if created {
		logger.Info("bootstrap administrator created", "id", admin.ID, "username", admin.Username)
		if err := w.Commit(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Commit persists the model together with the events raised since the last
// commit.
func (w *Workspace) Commit(ctx context.Context) error {
	evts := w.Engine.DrainEvents()
	if err := w.Repo.Save(ctx, w.Engine.Export(), evts); err != nil {
		w.Logger.Error("save failed", "err", err, "events", len(evts))
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

func (w *Workspace) Close() error {
	if w.conn == nil {
		return nil
	}
	return w.conn.Close()
}

func (w *Workspace) sessionSecret(ctx context.Context) (string, error) {
	if w.Config.Session.Secret != "" {
		return w.Config.Session.Secret, nil
	}
	secret, err := w.Repo.GetSetting(ctx, sessionSecretKey)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", err
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	secret = hex.EncodeToString(buf)
	if err := w.Repo.PutSetting(ctx, sessionSecretKey, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Login checks credentials and stores a signed session for later commands.
func (w *Workspace) Login(ctx context.Context, username, secret string) (domain.Employee, error) {
	emp, err := w.Engine.Authenticate(username, secret)
	if err != nil {
		w.Logger.Warn("login rejected", "username", username)
		return domain.Employee{}, err
	}
	key, err := w.sessionSecret(ctx)
	if err != nil {
		return domain.Employee{}, err
	}
	now := w.now()
	token, err := auth.IssueSession(key, emp, now, w.Config.Session.TTL)
	if err != nil {
		return domain.Employee{}, err
	}
	if err := w.Repo.SaveSession(ctx, repo.StoredSession{Token: token, EmployeeID: emp.ID, CreatedAt: now.UTC().Format(time.RFC3339)}); err != nil {
		return domain.Employee{}, err
	}
	w.Logger.Info("login", "employee", emp.ID, "role", emp.Role)
	return emp, nil
}

func (w *Workspace) Logout(ctx context.Context) error {
	return w.Repo.ClearSession(ctx)
}

// CurrentEmployee resolves the stored session to an active employee.
func (w *Workspace) CurrentEmployee(ctx context.Context) (domain.Employee, error) {
	stored, err := w.Repo.LoadSession(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Employee{}, ErrNotLoggedIn
	}
	if err != nil {
		return domain.Employee{}, err
	}
	key, err := w.sessionSecret(ctx)
	if err != nil {
		return domain.Employee{}, err
	}
	sess, err := auth.ParseSession(stored.Token, key, w.now())
	if err != nil {
		return domain.Employee{}, fmt.Errorf("%w (%v)", ErrNotLoggedIn, err)
	}
	emp, err := w.Engine.Employee(sess.EmployeeID)
	if err != nil || !emp.Active {
		return domain.Employee{}, ErrNotLoggedIn
	}
	return emp, nil
}
