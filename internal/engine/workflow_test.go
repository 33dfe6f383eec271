package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/domain"
	"aerocode/internal/engine"
)

func stage(order int, status domain.StageStatus) domain.Stage {
	return domain.Stage{ID: "s", Name: "Stage", Order: order, Status: status}
}

func TestStartOnlyFromPending(t *testing.T) {
	st, err := engine.Start(stage(1, domain.StagePending))
	require.NoError(t, err)
	assert.Equal(t, domain.StageInProgress, st.Status)

	for _, s := range []domain.StageStatus{domain.StageInProgress, domain.StageCompleted} {
		got, err := engine.Start(stage(1, s))
		var bad engine.InvalidTransitionError
		require.ErrorAs(t, err, &bad)
		assert.Equal(t, s, bad.From)
		assert.Equal(t, s, got.Status)
	}
}

func TestCanComplete(t *testing.T) {
	done := stage(1, domain.StageCompleted)
	running := stage(1, domain.StageInProgress)
	cases := []struct {
		name string
		st   domain.Stage
		prev *domain.Stage
		want bool
	}{
		{"first in progress", stage(1, domain.StageInProgress), nil, true},
		{"first pending", stage(1, domain.StagePending), nil, false},
		{"predecessor completed", stage(2, domain.StageInProgress), &done, true},
		{"predecessor running", stage(2, domain.StageInProgress), &running, false},
		{"already completed", stage(2, domain.StageCompleted), &done, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.CanComplete(tc.st, tc.prev))
		})
	}
}

func TestCompleteAutoStartsOnlyOnSuccess(t *testing.T) {
	pending := stage(2, domain.StagePending)
	prev := stage(1, domain.StagePending)

	got, err := engine.Complete(pending, &prev)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	assert.Equal(t, domain.StagePending, got.Status)

	prev.Status = domain.StageCompleted
	got, err = engine.Complete(pending, &prev)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCompleted, got.Status)
	assert.Equal(t, domain.StagePending, pending.Status)
}
