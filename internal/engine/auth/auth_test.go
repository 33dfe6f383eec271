package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/domain"
	"aerocode/internal/engine/auth"
)

var roles = []domain.Role{domain.RoleOperator, domain.RoleEngineer, domain.RoleAdministrator}

func TestSatisfiesMatchesRankOrder(t *testing.T) {
	for _, actor := range roles {
		for _, required := range roles {
			want := auth.Rank(actor) >= auth.Rank(required)
			assert.Equal(t, want, auth.Satisfies(actor, required), "%s vs %s", actor, required)
		}
	}
	assert.True(t, auth.Satisfies(domain.RoleAdministrator, domain.RoleOperator))
	assert.False(t, auth.Satisfies(domain.RoleOperator, domain.RoleEngineer))
}

func TestSatisfiesIsMonotonic(t *testing.T) {
	for _, required := range roles {
		for _, r := range roles {
			if !auth.Satisfies(r, required) {
				continue
			}
			for _, higher := range roles {
				if auth.Rank(higher) >= auth.Rank(r) {
					assert.True(t, auth.Satisfies(higher, required), "%s should satisfy %s", higher, required)
				}
			}
		}
	}
}

func TestUnknownRoleFailsClosed(t *testing.T) {
	assert.False(t, auth.Satisfies("", domain.RoleOperator))
	assert.False(t, auth.Satisfies("PILOT", domain.RoleOperator))
}

func TestRequire(t *testing.T) {
	require.NoError(t, auth.Require(domain.RoleEngineer, "delete part", domain.RoleEngineer))

	err := auth.Require(domain.RoleOperator, "delete stage", domain.RoleEngineer)
	var denied auth.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, domain.RoleEngineer, denied.RequiredRole)
	assert.Equal(t, "delete stage", denied.Operation)
}

func TestSecretHashing(t *testing.T) {
	hash, err := auth.HashSecret("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	require.NoError(t, auth.CheckSecret(hash, "123456"))
	require.ErrorIs(t, auth.CheckSecret(hash, "wrong"), auth.ErrInvalidCredentials)

	_, err = auth.HashSecret("")
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	emp := domain.Employee{ID: "7", Role: domain.RoleEngineer}
	token, err := auth.IssueSession("s3cret", emp, now, time.Hour)
	require.NoError(t, err)

	s, err := auth.ParseSession(token, "s3cret", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "7", s.EmployeeID)
	assert.Equal(t, domain.RoleEngineer, s.Role)

	_, err = auth.ParseSession(token, "s3cret", now.Add(2*time.Hour))
	require.Error(t, err, "expired token must be rejected")

	_, err = auth.ParseSession(token, "other", now)
	require.Error(t, err, "foreign signature must be rejected")
}
