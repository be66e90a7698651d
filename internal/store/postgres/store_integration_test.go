//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/events"
	"github.com/dev0919/Fitness-App1/internal/service"
	"github.com/dev0919/Fitness-App1/internal/store/postgres"
	"github.com/dev0919/Fitness-App1/internal/store/postgres/pgtest"
)

func ptr[T any](v T) *T { return &v }

func newUser(t *testing.T, store *postgres.Store, username string) *domain.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), domain.User{
		Username: username,
		Password: "hash",
		Name:     username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func TestUserUniquenessIsCaseInsensitive(t *testing.T) {
	pool, _ := pgtest.Start(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	ada := newUser(t, store, "ada")
	require.Equal(t, domain.DefaultProfilePicture, ada.ProfilePicture)

	_, err := store.CreateUser(ctx, domain.User{Username: " ADA ", Password: "x", Name: "n", Email: "x@example.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	found, err := store.FindUserByEmail(ctx, "Ada@Example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, ada.ID, found.ID)

	missing, err := store.GetUser(ctx, 9999)
	require.NoError(t, err)
	require.Nil(t, missing)

	updated, err := store.UpdateUser(ctx, ada.ID, domain.UserPatch{Bio: ptr("runner")})
	require.NoError(t, err)
	require.Equal(t, "runner", *updated.Bio)
}

func TestFriendPairIsUniqueInEitherDirection(t *testing.T) {
	pool, _ := pgtest.Start(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()
	ada := newUser(t, store, "ada")
	bob := newUser(t, store, "bob")

	link, err := store.CreateFriendLink(ctx, domain.FriendLink{UserID: ada.ID, FriendID: bob.ID, Status: domain.FriendStatusPending})
	require.NoError(t, err)

	_, err = store.CreateFriendLink(ctx, domain.FriendLink{UserID: bob.ID, FriendID: ada.ID, Status: domain.FriendStatusPending})
	require.ErrorIs(t, err, domain.ErrConflict)

	found, err := store.FindFriendLink(ctx, bob.ID, ada.ID)
	require.NoError(t, err)
	require.Equal(t, link.ID, found.ID)

	accepted, err := store.UpdateFriendLinkStatus(ctx, link.ID, domain.FriendStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, accepted.Status)
}

func TestNestedAtomicRollsBackOnlyItsOwnWrites(t *testing.T) {
	pool, _ := pgtest.Start(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()
	ada := newUser(t, store, "ada")

	errBoom := errors.New("boom")
	err := store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := tx.CreateGoal(ctx, domain.Goal{UserID: ada.ID, Title: "kept", Type: domain.GoalTypeCustom, Target: 1}); err != nil {
			return err
		}
		nested := tx.Atomic(ctx, func(inner domain.Store) error {
			if _, err := inner.CreateGoal(ctx, domain.Goal{UserID: ada.ID, Title: "dropped", Type: domain.GoalTypeCustom, Target: 1}); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, nested, errBoom)
		return nil
	})
	require.NoError(t, err)

	goals, err := store.ListGoals(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Equal(t, "kept", goals[0].Title)
	require.True(t, goals[0].Completed == (goals[0].Current >= goals[0].Target))

	err = store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := tx.CreateGoal(ctx, domain.Goal{UserID: ada.ID, Title: "gone", Type: domain.GoalTypeCustom, Target: 1}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	goals, err = store.ListGoals(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
}

func TestAppendOnlyWritesEnqueueOutboxEvents(t *testing.T) {
	pool, _ := pgtest.Start(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()
	ada := newUser(t, store, "ada")

	activity, err := store.CreateActivity(ctx, domain.Activity{
		UserID:   ada.ID,
		Type:     domain.ActivityStatusUpdate,
		Content:  "hello",
		Metadata: domain.Metadata{"mood": "good"},
	})
	require.NoError(t, err)
	_, err = store.CreateAchievement(ctx, domain.Achievement{UserID: ada.ID, Title: "First Workout", Description: "d", Icon: "dumbbell"})
	require.NoError(t, err)

	listed, err := store.ListActivities(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, activity.ID, listed[0].ID)
	require.Equal(t, "good", listed[0].Metadata["mood"])

	rows, err := pool.Query(ctx, `SELECT event_type, topic, partition_key FROM outbox ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var eventType, topic, key string
		require.NoError(t, rows.Scan(&eventType, &topic, &key))
		require.Equal(t, events.PartitionKey(ada.ID), key)
		route, ok := events.RouteFor(eventType)
		require.True(t, ok)
		require.Equal(t, route.Topic, topic)
		got = append(got, eventType)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{events.TypeActivityRecorded, events.TypeAchievementEarned}, got)
}

func TestWorkoutCascadeOverPostgres(t *testing.T) {
	pool, _ := pgtest.Start(t)
	now := time.Date(2026, time.September, 9, 12, 0, 0, 0, time.UTC)
	store := postgres.NewStore(pool, postgres.WithClock(func() time.Time { return now }))
	svc := service.New(store,
		service.WithClock(func() time.Time { return now }),
		service.WithPasswordHasher(func(s string) (string, error) { return "h:" + s, nil }),
		service.WithLogger(zap.NewNop()),
	)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{Username: "ada", Password: "pw", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	workout, _, err := svc.CreateWorkout(ctx, user.ID, service.WorkoutInput{
		Title:      "Legs",
		Duration:   45,
		Difficulty: domain.DifficultyIntermediate,
		Type:       domain.WorkoutTypeStrength,
	})
	require.NoError(t, err)
	exercise, err := svc.CreateExercise(ctx, user.ID, workout.ID, service.ExerciseInput{Name: "Squat", Sets: 5, Reps: 5})
	require.NoError(t, err)

	_, effects, err := svc.UpdateExercise(ctx, user.ID, exercise.ID, domain.ExercisePatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.False(t, effects.Degraded())

	reloaded, err := svc.GetWorkout(ctx, user.ID, workout.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Completed)
	require.NotNil(t, reloaded.CompletedAt)

	held, err := svc.ListAchievements(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	require.Equal(t, "First Workout", held[0].Title)

	require.NoError(t, svc.DeleteWorkout(ctx, user.ID, workout.ID))
	gone, err := store.GetExercise(ctx, exercise.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}
