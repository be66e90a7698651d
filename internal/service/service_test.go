package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/catalog"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/feed"
	"github.com/dev0919/Fitness-App1/internal/friends"
	"github.com/dev0919/Fitness-App1/internal/rules"
	"github.com/dev0919/Fitness-App1/internal/store/memory"
)

var clock = time.Date(2026, time.September, 9, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func fastHash(s string) (string, error) { return "h:" + s, nil }

func newService(t *testing.T, store domain.Store) *Service {
	t.Helper()
	return New(store,
		WithClock(func() time.Time { return clock }),
		WithPasswordHasher(fastHash),
		WithLogger(zap.NewNop()),
	)
}

func register(t *testing.T, svc *Service, username string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "pw",
		Name:     username + " name",
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func achievementTitles(t *testing.T, svc *Service, userID int64) []string {
	t.Helper()
	held, err := svc.ListAchievements(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(held))
	for _, a := range held {
		out = append(out, a.Title)
	}
	return out
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	register(t, svc, "ada")

	_, err := svc.Register(ctx, RegisterInput{Username: "ADA", Password: "x", Name: "n", Email: "other@example.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "x", Name: "n", Email: "Ada@Example.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Password: "x", Name: "n", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUpdateProfileConflicts(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	ada := register(t, svc, "ada")
	register(t, svc, "bob")

	_, err := svc.UpdateProfile(ctx, ada.ID, domain.UserPatch{Username: ptr("bob")})
	require.ErrorIs(t, err, domain.ErrConflict)

	updated, err := svc.UpdateProfile(ctx, ada.ID, domain.UserPatch{Username: ptr("ada"), Bio: ptr("runner")})
	require.NoError(t, err)
	require.Equal(t, "runner", *updated.Bio)
}

func TestExerciseCascadeCompletesWorkout(t *testing.T) {
	store := memory.NewStore(memory.WithClock(func() time.Time { return clock }))
	svc := newService(t, store)
	ctx := context.Background()
	user := register(t, svc, "ada")

	workout, effects, err := svc.CreateWorkout(ctx, user.ID, WorkoutInput{
		Title:      "Intervals",
		Duration:   30,
		Difficulty: domain.DifficultyBeginner,
		Type:       domain.WorkoutTypeCardio,
	})
	require.NoError(t, err)
	require.False(t, effects.Degraded())
	require.Len(t, effects.Activities, 1)
	require.Equal(t, "Created a new workout: Intervals", effects.Activities[0].Content)

	first, err := svc.CreateExercise(ctx, user.ID, workout.ID, ExerciseInput{Name: "Sprint", Sets: 4, Reps: 1})
	require.NoError(t, err)
	second, err := svc.CreateExercise(ctx, user.ID, workout.ID, ExerciseInput{Name: "Jog", Sets: 4, Reps: 1})
	require.NoError(t, err)

	_, effects, err = svc.UpdateExercise(ctx, user.ID, first.ID, domain.ExercisePatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.Empty(t, effects.Events)

	reloaded, err := svc.GetWorkout(ctx, user.ID, workout.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Completed)

	_, effects, err = svc.UpdateExercise(ctx, user.ID, second.ID, domain.ExercisePatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.Len(t, effects.Events, 1)
	require.IsType(t, domain.ExerciseCascadeCompleted{}, effects.Events[0])

	reloaded, err = svc.GetWorkout(ctx, user.ID, workout.ID)
	require.NoError(t, err)
	require.True(t, reloaded.Completed)
	require.NotNil(t, reloaded.CompletedAt)

	activities, err := svc.ListActivities(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ActivityWorkoutCompleted, activities[0].Type)
	require.Equal(t, []string{rules.FirstWorkoutTitle}, achievementTitles(t, svc, user.ID))
}

func TestConsistencyChampionOnlyAtFive(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	user := register(t, svc, "ada")

	for i := 0; i < 7; i++ {
		w, _, err := svc.CreateWorkout(ctx, user.ID, WorkoutInput{
			Title: "Run", Duration: 20, Difficulty: domain.DifficultyBeginner, Type: domain.WorkoutTypeCardio,
		})
		require.NoError(t, err)
		_, _, err = svc.UpdateWorkout(ctx, user.ID, w.ID, domain.WorkoutPatch{Completed: ptr(true)})
		require.NoError(t, err)

		// Repeating the completion is not a transition.
		_, effects, err := svc.UpdateWorkout(ctx, user.ID, w.ID, domain.WorkoutPatch{Completed: ptr(true)})
		require.NoError(t, err)
		require.Empty(t, effects.Events)
	}

	require.ElementsMatch(t, []string{rules.FirstWorkoutTitle, rules.ConsistencyTitle}, achievementTitles(t, svc, user.ID))
}

func TestGoalCompletionTransition(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	user := register(t, svc, "ada")

	goal, effects, err := svc.CreateGoal(ctx, user.ID, GoalInput{Title: "Ten runs", Type: domain.GoalTypeWorkoutCount, Target: 10})
	require.NoError(t, err)
	require.False(t, goal.Completed)
	require.Equal(t, "Set a new goal: Ten runs", effects.Activities[0].Content)

	updated, effects, err := svc.UpdateGoal(ctx, user.ID, goal.ID, domain.GoalPatch{Current: ptr(10.0)})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Len(t, effects.Activities, 1)
	require.Equal(t, domain.ActivityGoalAchieved, effects.Activities[0].Type)
	require.Len(t, effects.Achievements, 1)
	require.Equal(t, rules.GoalCrusherTitle, effects.Achievements[0].Title)

	updated, effects, err = svc.UpdateGoal(ctx, user.ID, goal.ID, domain.GoalPatch{Current: ptr(12.0)})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Empty(t, effects.Achievements)

	require.Equal(t, []string{rules.GoalCrusherTitle}, achievementTitles(t, svc, user.ID))
}

func TestOwnershipChecks(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	ada := register(t, svc, "ada")
	bob := register(t, svc, "bob")

	w, _, err := svc.CreateWorkout(ctx, ada.ID, WorkoutInput{Title: "Mine", Duration: 10, Difficulty: domain.DifficultyAdvanced, Type: domain.WorkoutTypeHIIT})
	require.NoError(t, err)
	g, _, err := svc.CreateGoal(ctx, ada.ID, GoalInput{Title: "Mine", Type: domain.GoalTypeCustom, Target: 1})
	require.NoError(t, err)

	_, err = svc.GetWorkout(ctx, bob.ID, w.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = svc.UpdateGoal(ctx, bob.ID, g.ID, domain.GoalPatch{Current: ptr(1.0)})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.CreateExercise(ctx, bob.ID, w.ID, ExerciseInput{Name: "x"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.ErrorIs(t, svc.DeleteWorkout(ctx, bob.ID, w.ID), domain.ErrForbidden)
	require.ErrorIs(t, svc.DeleteGoal(ctx, ada.ID, 999), domain.ErrNotFound)

	_, _, err = svc.CreateWorkout(ctx, ada.ID, WorkoutInput{Title: "Bad", Duration: 0, Difficulty: domain.DifficultyAdvanced, Type: domain.WorkoutTypeHIIT})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = svc.UpdateWorkout(ctx, ada.ID, w.ID, domain.WorkoutPatch{Type: ptr(domain.WorkoutType("yoga"))})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeleteWorkoutCascadesExercises(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, store)
	ctx := context.Background()
	ada := register(t, svc, "ada")

	w, _, err := svc.CreateWorkout(ctx, ada.ID, WorkoutInput{Title: "Legs", Duration: 30, Difficulty: domain.DifficultyBeginner, Type: domain.WorkoutTypeStrength})
	require.NoError(t, err)
	ex, err := svc.CreateExercise(ctx, ada.ID, w.ID, ExerciseInput{Name: "Squat", Sets: 3, Reps: 5})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWorkout(ctx, ada.ID, w.ID))

	gone, err := store.GetExercise(ctx, ex.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestCloneTemplate(t *testing.T) {
	store := memory.NewStore()
	_, err := catalog.Seed(context.Background(), store)
	require.NoError(t, err)
	svc := newService(t, store)
	ctx := context.Background()
	ada := register(t, svc, "ada")

	templates, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, templates)
	tpl := templates[0]

	clone, effects, err := svc.CloneTemplate(ctx, ada.ID, tpl.ID)
	require.NoError(t, err)
	require.Equal(t, ada.ID, clone.UserID)
	require.Equal(t, tpl.Title, clone.Title)
	require.Equal(t, "ada name created a new workout from the '"+tpl.Title+"' template", effects.Activities[0].Content)
	require.Equal(t, tpl.ID, effects.Activities[0].Metadata["templateId"])

	original, err := svc.ListExercises(ctx, ada.ID, tpl.ID)
	require.NoError(t, err)
	copied, err := svc.ListExercises(ctx, ada.ID, clone.ID)
	require.NoError(t, err)
	require.Len(t, copied, len(original))

	_, _, err = svc.CloneTemplate(ctx, ada.ID, clone.ID)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, _, err = svc.CloneTemplate(ctx, ada.ID, 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.UpdateWorkout(ctx, ada.ID, tpl.ID, domain.WorkoutPatch{Title: ptr("mine now")})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFeedScenario(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, store)
	ctx := context.Background()
	a := register(t, svc, "a")
	b := register(t, svc, "b")

	link, err := svc.RequestFriend(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = svc.RequestFriend(ctx, b.ID, a.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
	_, _, err = svc.RespondToFriend(ctx, a.ID, link.ID, domain.FriendStatusAccepted)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, effects, err := svc.RespondToFriend(ctx, b.ID, link.ID, domain.FriendStatusAccepted)
	require.NoError(t, err)
	require.False(t, effects.Degraded())
	require.Len(t, effects.Activities, 2)

	for i := 0; i < 2; i++ {
		_, err := store.CreateActivity(ctx, domain.Activity{UserID: a.ID, Type: domain.ActivityStatusUpdate, Content: "a", Timestamp: clock.Add(-time.Duration(2*i+1) * time.Hour)})
		require.NoError(t, err)
		_, err = store.CreateActivity(ctx, domain.Activity{UserID: b.ID, Type: domain.ActivityStatusUpdate, Content: "b", Timestamp: clock.Add(-time.Duration(2*i+2) * time.Hour)})
		require.NoError(t, err)
	}

	page, err := svc.Feed(ctx, a.ID, feed.Query{})
	require.NoError(t, err)
	// Two friend_added activities plus two posts from each side.
	require.Len(t, page.Items, 6)
	for i := 1; i < len(page.Items); i++ {
		require.False(t, page.Items[i].Timestamp.After(page.Items[i-1].Timestamp))
	}
	for _, item := range page.Items {
		require.NotNil(t, item.User)
		require.Equal(t, item.UserID, item.User.ID)
	}

	summary, err := svc.SummaryStats(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 3, summary.FriendActivitiesCount)
	require.Zero(t, summary.GoalProgress)
}

func TestPostActivity(t *testing.T) {
	svc := newService(t, memory.NewStore())
	ctx := context.Background()
	ada := register(t, svc, "ada")

	item, err := svc.PostActivity(ctx, ada.ID, "", "Feeling strong", nil)
	require.NoError(t, err)
	require.Equal(t, domain.ActivityStatusUpdate, item.Type)
	require.Equal(t, "ada", item.User.Username)

	_, err = svc.PostActivity(ctx, ada.ID, "", "  ", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.PostActivity(ctx, ada.ID, "dance", "hi", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// achievementFailingStore rejects every achievement write, including inside units of work.
type achievementFailingStore struct {
	domain.Store
}

func (s achievementFailingStore) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	return s.Store.Atomic(ctx, func(tx domain.Store) error {
		return fn(achievementFailingStore{tx})
	})
}

func (achievementFailingStore) CreateAchievement(context.Context, domain.Achievement) (*domain.Achievement, error) {
	return nil, errors.New("achievements table unavailable")
}

func TestSideEffectFailureKeepsPrimaryWrite(t *testing.T) {
	base := memory.NewStore()
	svc := newService(t, achievementFailingStore{base})
	ctx := context.Background()
	ada := register(t, svc, "ada")

	w, _, err := svc.CreateWorkout(ctx, ada.ID, WorkoutInput{Title: "Run", Duration: 20, Difficulty: domain.DifficultyBeginner, Type: domain.WorkoutTypeCardio})
	require.NoError(t, err)

	updated, effects, err := svc.UpdateWorkout(ctx, ada.ID, w.ID, domain.WorkoutPatch{Completed: ptr(true)})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.True(t, effects.Degraded())
	require.Empty(t, effects.Activities)

	stored, err := base.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	require.True(t, stored.Completed)

	// The workout_completed activity written before the failure was rolled back with it.
	activities, err := base.ListActivities(ctx, ada.ID)
	require.NoError(t, err)
	for _, a := range activities {
		require.NotEqual(t, domain.ActivityWorkoutCompleted, a.Type)
	}
}

// activityFailingStore rejects every activity write, including inside units of work.
type activityFailingStore struct {
	domain.Store
}

func (s activityFailingStore) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	return s.Store.Atomic(ctx, func(tx domain.Store) error {
		return fn(activityFailingStore{tx})
	})
}

func (activityFailingStore) CreateActivity(context.Context, domain.Activity) (*domain.Activity, error) {
	return nil, errors.New("activities table unavailable")
}

func TestAcceptIsDegradedWhenActivityWriteFails(t *testing.T) {
	base := memory.NewStore()
	svc := newService(t, activityFailingStore{base})
	ctx := context.Background()
	a := register(t, svc, "a")
	b := register(t, svc, "b")

	link, err := svc.RequestFriend(ctx, a.ID, b.ID)
	require.NoError(t, err)

	accepted, effects, err := svc.RespondToFriend(ctx, b.ID, link.ID, domain.FriendStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, accepted.Status)
	require.True(t, effects.Degraded())
	require.Empty(t, effects.Activities)

	stored, err := base.GetFriendLink(ctx, link.ID)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, stored.Status)

	result, effects, err := svc.ImportContacts(ctx, a.ID, "gmail", []friends.Contact{{Name: "Carol", Email: "carol@example.com"}})
	require.NoError(t, err)
	require.Len(t, result.Friends, 1)
	require.True(t, effects.Degraded())
}

func TestFailedImportDoesNotDiscardConcurrentPosts(t *testing.T) {
	store := memory.NewStore()
	svc := newService(t, store)
	ctx := context.Background()
	ada := register(t, svc, "ada")

	const posts = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < posts; i++ {
			_, err := svc.PostActivity(ctx, ada.ID, "", fmt.Sprintf("post %d", i), nil)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, _, err := svc.ImportContacts(ctx, ada.ID, "gmail", []friends.Contact{
				{Name: "New", Email: fmt.Sprintf("new%d@example.com", i)},
				{Name: "Broken", Email: "not-an-email"},
			})
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		}
	}()
	wg.Wait()

	activities, err := svc.ListActivities(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, activities, posts)

	leftover, err := store.FindUserByEmail(ctx, "new0@example.com")
	require.NoError(t, err)
	require.Nil(t, leftover)
}
