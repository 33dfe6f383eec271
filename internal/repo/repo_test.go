package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/db"
	"aerocode/internal/domain"
	"aerocode/internal/migrate"
	"aerocode/internal/repo"
)

func newRepo(t *testing.T) repo.Repo {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	return repo.Repo{DB: conn}
}

func sampleSnapshot() domain.Snapshot {
	deadline := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	delivery := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return domain.Snapshot{
		Employees: []domain.EmployeeRecord{
			{ID: "1", Name: "Admin", Username: "admin", Secret: "hash", Role: domain.RoleAdministrator, Active: true},
			{ID: "2", Name: "Op", Phone: "555", Address: "Hangar 2", Username: "op", Secret: "hash", Role: domain.RoleOperator, Active: false},
		},
		Parts: []domain.PartRecord{
			{ID: "P001", Name: "Wing", Origin: domain.OriginDomestic, Supplier: "Embraer", Status: domain.PartReady, ResponsibleEmployeeIDs: []string{"2", "1"}},
		},
		Stages: []domain.StageRecord{
			{ID: "S1", Name: "Fuselage Assembly", Deadline: deadline, Status: domain.StageCompleted, Order: 1, AssignedEmployeeIDs: []string{"2"}},
			{ID: "S2", Name: "Wing Installation", Deadline: deadline.AddDate(0, 0, 7), Status: domain.StagePending, Order: 2},
		},
		Tests: []domain.TestRecord{
			{ID: "T1", Kind: domain.TestHydraulic, Result: domain.TestApproved, Date: deadline},
		},
		Aircraft: []domain.AircraftRecord{
			{
				Code: "EMB195", Model: "E195-E2", Category: domain.CategoryCommercial, Capacity: 146, Range: 4800,
				Client: "Azul", Manufacturer: "Aerocode", Year: 2024, Serial: "EMB195-24-000001", DeliveryDate: &delivery,
				PartIDs: []string{"P001"}, StageIDs: []string{"S1", "S2"}, TestIDs: []string{"T1"},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	want := sampleSnapshot()
	require.NoError(t, r.Save(ctx, want, nil))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, sampleSnapshot(), nil))

	smaller := sampleSnapshot()
	smaller.Aircraft = nil
	smaller.Parts = nil
	require.NoError(t, r.Save(ctx, smaller, nil))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Aircraft)
	assert.Empty(t, got.Parts)
	assert.Len(t, got.Stages, 2)
}

func TestSaveIsAtomic(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Save(ctx, sampleSnapshot(), nil))

	broken := sampleSnapshot()
	broken.Stages[0].AssignedEmployeeIDs = []string{"ghost"}
	err := r.Save(ctx, broken, []domain.Event{{TS: "2024-01-01T00:00:00Z", Type: "x", EntityKind: "stage", ActorID: "1"}})
	require.Error(t, err)

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	evts, err := r.LatestEvents(ctx, repo.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, evts)
}

func TestLatestEvents(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	evts := []domain.Event{
		{TS: "2024-01-01T00:00:00Z", Type: "part.created", EntityKind: "part", EntityID: "P001", ActorID: "2", Payload: `{"name":"Wing"}`},
		{TS: "2024-01-01T00:01:00Z", Type: "stage.started", EntityKind: "stage", EntityID: "S1", ActorID: "2"},
		{TS: "2024-01-01T00:02:00Z", Type: "part.deleted", EntityKind: "part", EntityID: "P001", ActorID: "1"},
	}
	require.NoError(t, r.Save(ctx, sampleSnapshot(), evts))

	all, err := r.LatestEvents(ctx, repo.EventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "part.deleted", all[0].Type)
	assert.Equal(t, "{}", all[1].Payload)

	parts, err := r.LatestEvents(ctx, repo.EventFilter{EntityKind: "part", Limit: 1})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "1", parts[0].ActorID)
}

func TestSessionAndSettings(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	_, err := r.LoadSession(ctx)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, r.SaveSession(ctx, repo.StoredSession{Token: "a", EmployeeID: "1"}))
	require.NoError(t, r.SaveSession(ctx, repo.StoredSession{Token: "b", EmployeeID: "2"}))
	s, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", s.Token)
	assert.Equal(t, "2", s.EmployeeID)

	require.NoError(t, r.ClearSession(ctx))
	_, err = r.LoadSession(ctx)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.GetSetting(ctx, "session_secret")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, r.PutSetting(ctx, "session_secret", "s3"))
	v, err := r.GetSetting(ctx, "session_secret")
	require.NoError(t, err)
	assert.Equal(t, "s3", v)
}
