package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/app"
	"aerocode/internal/config"
	"aerocode/internal/domain"
	"aerocode/internal/engine"
	"aerocode/internal/repo"
)

func open(t *testing.T, dir string) *app.Workspace {
	t.Helper()
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := app.Open(context.Background(), dir, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpenSeedsAdministratorOnce(t *testing.T) {
	dir := t.TempDir()
	w := open(t, dir)
	require.Equal(t, 1, w.Engine.Employees.Len())
	admin, err := w.Engine.Employee("1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, admin.Role)
	require.NoError(t, w.Close())

	again := open(t, dir)
	assert.Equal(t, 1, again.Engine.Employees.Len())

	evts, err := again.Repo.LatestEvents(context.Background(), repo.EventFilter{})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "employee.bootstrapped", evts[0].Type)
}

func TestCommitPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	w := open(t, dir)
	admin, _ := w.Engine.Employee("1")
	_, stages, err := w.Engine.CreateAircraft(admin.Actor(), engine.AircraftInput{Code: "EMB195", Model: "E195-E2", Category: domain.CategoryCommercial})
	require.NoError(t, err)
	_, err = w.Engine.CompleteStage(admin.Actor(), stages[0].ID)
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Close())

	again := open(t, dir)
	got := again.Engine.StagesOf("EMB195")
	require.Len(t, got, 5)
	assert.Equal(t, domain.StageCompleted, got[0].Status)
	assert.Equal(t, domain.StagePending, got[1].Status)

	_, err = again.Engine.Delete(admin.Actor(), domain.KindAircraft, "EMB195")
	assert.ErrorIs(t, err, engine.ErrDependencyExists)
}

func TestLoginSession(t *testing.T) {
	ctx := context.Background()
	w := open(t, t.TempDir())

	_, err := w.CurrentEmployee(ctx)
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)

	_, err = w.Login(ctx, "admin", "bad")
	assert.Error(t, err)

	emp, err := w.Login(ctx, "admin", "123456")
	require.NoError(t, err)
	cur, err := w.CurrentEmployee(ctx)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, cur.ID)

	// sessions expire after the configured ttl
	w.Now = func() time.Time { return time.Now().Add(9 * time.Hour) }
	_, err = w.CurrentEmployee(ctx)
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)

	w.Now = time.Now
	require.NoError(t, w.Logout(ctx))
	_, err = w.CurrentEmployee(ctx)
	assert.ErrorIs(t, err, app.ErrNotLoggedIn)
}
