package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGoalApplyDerivesCompleted(t *testing.T) {
	goal := Goal{ID: 1, UserID: 7, Title: "Run 10k", Target: 10}

	cases := []struct {
		name  string
		patch GoalPatch
		want  bool
	}{
		{name: "below target", patch: GoalPatch{Current: ptr(4.0)}, want: false},
		{name: "reaches target", patch: GoalPatch{Current: ptr(10.0)}, want: true},
		{name: "exceeds target", patch: GoalPatch{Current: ptr(12.5)}, want: true},
		{name: "title only keeps derived state", patch: GoalPatch{Title: ptr("Run 12k")}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			updated := goal.Apply(tc.patch)
			require.Equal(t, tc.want, updated.Completed)
			require.Equal(t, updated.Current >= updated.Target, updated.Completed)
		})
	}
}

func TestGoalApplyRecomputesWhenTargetMoves(t *testing.T) {
	goal := Goal{Target: 10, Current: 10, Completed: true}

	raised := goal.Apply(GoalPatch{Target: ptr(20.0)})
	require.False(t, raised.Completed)

	lowered := raised.Apply(GoalPatch{Target: ptr(5.0)})
	require.True(t, lowered.Completed)
}

func TestWorkoutApplyTracksCompletedAt(t *testing.T) {
	created := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	workout := Workout{ID: 3, UserID: 1, Title: "Legs", CreatedAt: created, UpdatedAt: created}

	done := created.Add(time.Hour)
	completed := workout.Apply(WorkoutPatch{Completed: ptr(true)}, done)
	require.True(t, completed.Completed)
	require.NotNil(t, completed.CompletedAt)
	require.Equal(t, done, *completed.CompletedAt)

	again := completed.Apply(WorkoutPatch{Completed: ptr(true)}, done.Add(time.Hour))
	require.Equal(t, done, *again.CompletedAt, "re-completing keeps the original timestamp")

	reopened := again.Apply(WorkoutPatch{Completed: ptr(false)}, done.Add(2*time.Hour))
	require.False(t, reopened.Completed)
	require.Nil(t, reopened.CompletedAt)
}

func TestWorkoutEffectiveDateFallback(t *testing.T) {
	created := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(24 * time.Hour)
	completed := created.Add(48 * time.Hour)

	require.Equal(t, created, Workout{CreatedAt: created}.EffectiveDate())
	require.Equal(t, updated, Workout{CreatedAt: created, UpdatedAt: updated}.EffectiveDate())
	require.Equal(t, completed, Workout{CreatedAt: created, UpdatedAt: updated, CompletedAt: &completed}.EffectiveDate())
}

func TestFriendLinkHelpers(t *testing.T) {
	link := FriendLink{UserID: 1, FriendID: 2}
	require.True(t, link.Connects(1, 2))
	require.True(t, link.Connects(2, 1))
	require.False(t, link.Connects(1, 3))
	require.Equal(t, int64(2), link.Counterpart(1))
	require.Equal(t, int64(1), link.Counterpart(2))
	require.True(t, link.Involves(2))
}
