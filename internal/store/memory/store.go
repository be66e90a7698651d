// Package memory is an in-process implementation of domain.Store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// Store keeps every entity in maps guarded by a RWMutex. Units of work started with
// Atomic and single writes made outside one are serialised by a writer lock, so
// check-then-act sequences never interleave.
type Store struct {
	writer *sync.Mutex
	data   *tables
	inTx   bool
	undo   *undoLog
	now    func() time.Time
}

type tables struct {
	mu           sync.RWMutex
	seq          sequences
	users        map[int64]domain.User
	workouts     map[int64]domain.Workout
	exercises    map[int64]domain.Exercise
	goals        map[int64]domain.Goal
	friends      map[int64]domain.FriendLink
	activities   map[int64]domain.Activity
	achievements map[int64]domain.Achievement
}

// sequences are never rolled back, so ids are not reused after a failed unit of work.
type sequences struct {
	user, workout, exercise, goal, friend, activity, achievement int64
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the clock used to fill missing timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore constructs an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		writer: &sync.Mutex{},
		data: &tables{
			users:        make(map[int64]domain.User),
			workouts:     make(map[int64]domain.Workout),
			exercises:    make(map[int64]domain.Exercise),
			goals:        make(map[int64]domain.Goal),
			friends:      make(map[int64]domain.FriendLink),
			activities:   make(map[int64]domain.Activity),
			achievements: make(map[int64]domain.Achievement),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Atomic implements domain.Store. A failed fn has exactly its own writes undone;
// writes committed concurrently by other callers are untouched.
func (s *Store) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.inTx {
		s.writer.Lock()
		defer s.writer.Unlock()
	}

	log := &undoLog{}
	if err := fn(&Store{writer: s.writer, data: s.data, inTx: true, undo: log, now: s.now}); err != nil {
		s.data.mu.Lock()
		log.rollback()
		s.data.mu.Unlock()
		return err
	}
	if s.undo != nil {
		s.undo.entries = append(s.undo.entries, log.entries...)
	}
	return nil
}

// undoLog records how to revert every row a unit of work touched, oldest first.
type undoLog struct {
	entries []func()
}

func (l *undoLog) rollback() {
	for i := len(l.entries) - 1; i >= 0; i-- {
		l.entries[i]()
	}
	l.entries = nil
}

// remember records the current state of table[key] in the unit's undo log.
// Callers hold the table lock.
func remember[V any](s *Store, table map[int64]V, key int64) {
	if s.undo == nil {
		return
	}
	prev, existed := table[key]
	s.undo.entries = append(s.undo.entries, func() {
		if existed {
			table[key] = prev
		} else {
			delete(table, key)
		}
	})
}

// lock takes the table write lock. Outside a unit of work it also takes the writer
// lock, so a single write never interleaves with a running unit of work.
func (s *Store) lock() func() {
	if !s.inTx {
		s.writer.Lock()
	}
	s.data.mu.Lock()
	return func() {
		s.data.mu.Unlock()
		if !s.inTx {
			s.writer.Unlock()
		}
	}
}

// GetUser implements domain.UserRepository.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	user, ok := s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindUserByUsername matches case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	for _, user := range s.data.users {
		if domain.SameIdentity(user.Username, username) {
			return &user, nil
		}
	}
	return nil, nil
}

// FindUserByEmail matches case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	for _, user := range s.data.users {
		if domain.SameIdentity(user.Email, email) {
			return &user, nil
		}
	}
	return nil, nil
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	defer s.lock()()

	s.data.seq.user++
	user.ID = s.data.seq.user
	if user.ProfilePicture == "" {
		user.ProfilePicture = domain.DefaultProfilePicture
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	remember(s, s.data.users, user.ID)
	s.data.users[user.ID] = user
	return &user, nil
}

// UpdateUser implements domain.UserRepository.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	defer s.lock()()

	user, ok := s.data.users[id]
	if !ok {
		return nil, nil
	}
	user = user.Apply(patch)
	remember(s, s.data.users, id)
	s.data.users[id] = user
	return &user, nil
}

// GetWorkout implements domain.WorkoutRepository.
func (s *Store) GetWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	workout, ok := s.data.workouts[id]
	if !ok {
		return nil, nil
	}
	return &workout, nil
}

// ListWorkouts returns the user's workouts ordered by id.
func (s *Store) ListWorkouts(ctx context.Context, userID int64) ([]domain.Workout, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, workout := range s.data.workouts {
		if workout.UserID == userID {
			out = append(out, workout)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateWorkout implements domain.WorkoutRepository.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) (*domain.Workout, error) {
	defer s.lock()()

	s.data.seq.workout++
	workout.ID = s.data.seq.workout
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = s.now()
	}
	if workout.UpdatedAt.IsZero() {
		workout.UpdatedAt = workout.CreatedAt
	}
	remember(s, s.data.workouts, workout.ID)
	s.data.workouts[workout.ID] = workout
	return &workout, nil
}

// UpdateWorkout implements domain.WorkoutRepository.
func (s *Store) UpdateWorkout(ctx context.Context, id int64, patch domain.WorkoutPatch) (*domain.Workout, error) {
	defer s.lock()()

	workout, ok := s.data.workouts[id]
	if !ok {
		return nil, nil
	}
	workout = workout.Apply(patch, s.now())
	remember(s, s.data.workouts, id)
	s.data.workouts[id] = workout
	return &workout, nil
}

// DeleteWorkout implements domain.WorkoutRepository.
func (s *Store) DeleteWorkout(ctx context.Context, id int64) (bool, error) {
	defer s.lock()()

	if _, ok := s.data.workouts[id]; !ok {
		return false, nil
	}
	remember(s, s.data.workouts, id)
	delete(s.data.workouts, id)
	return true, nil
}

// GetExercise implements domain.ExerciseRepository.
func (s *Store) GetExercise(ctx context.Context, id int64) (*domain.Exercise, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	exercise, ok := s.data.exercises[id]
	if !ok {
		return nil, nil
	}
	return &exercise, nil
}

// ListExercises returns the workout's exercises ordered by id.
func (s *Store) ListExercises(ctx context.Context, workoutID int64) ([]domain.Exercise, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, exercise := range s.data.exercises {
		if exercise.WorkoutID == workoutID {
			out = append(out, exercise)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (s *Store) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	defer s.lock()()

	s.data.seq.exercise++
	exercise.ID = s.data.seq.exercise
	remember(s, s.data.exercises, exercise.ID)
	s.data.exercises[exercise.ID] = exercise
	return &exercise, nil
}

// UpdateExercise implements domain.ExerciseRepository.
func (s *Store) UpdateExercise(ctx context.Context, id int64, patch domain.ExercisePatch) (*domain.Exercise, error) {
	defer s.lock()()

	exercise, ok := s.data.exercises[id]
	if !ok {
		return nil, nil
	}
	exercise = exercise.Apply(patch)
	remember(s, s.data.exercises, id)
	s.data.exercises[id] = exercise
	return &exercise, nil
}

// DeleteExercise implements domain.ExerciseRepository.
func (s *Store) DeleteExercise(ctx context.Context, id int64) (bool, error) {
	defer s.lock()()

	if _, ok := s.data.exercises[id]; !ok {
		return false, nil
	}
	remember(s, s.data.exercises, id)
	delete(s.data.exercises, id)
	return true, nil
}

// GetGoal implements domain.GoalRepository.
func (s *Store) GetGoal(ctx context.Context, id int64) (*domain.Goal, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	goal, ok := s.data.goals[id]
	if !ok {
		return nil, nil
	}
	return &goal, nil
}

// ListGoals returns the user's goals ordered by id.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]domain.Goal, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]domain.Goal, 0)
	for _, goal := range s.data.goals {
		if goal.UserID == userID {
			out = append(out, goal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateGoal implements domain.GoalRepository.
func (s *Store) CreateGoal(ctx context.Context, goal domain.Goal) (*domain.Goal, error) {
	defer s.lock()()

	s.data.seq.goal++
	goal.ID = s.data.seq.goal
	goal.Completed = goal.Current >= goal.Target
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = s.now()
	}
	remember(s, s.data.goals, goal.ID)
	s.data.goals[goal.ID] = goal
	return &goal, nil
}

// UpdateGoal implements domain.GoalRepository.
func (s *Store) UpdateGoal(ctx context.Context, id int64, patch domain.GoalPatch) (*domain.Goal, error) {
	defer s.lock()()

	goal, ok := s.data.goals[id]
	if !ok {
		return nil, nil
	}
	goal = goal.Apply(patch)
	remember(s, s.data.goals, id)
	s.data.goals[id] = goal
	return &goal, nil
}

// DeleteGoal implements domain.GoalRepository.
func (s *Store) DeleteGoal(ctx context.Context, id int64) (bool, error) {
	defer s.lock()()

	if _, ok := s.data.goals[id]; !ok {
		return false, nil
	}
	remember(s, s.data.goals, id)
	delete(s.data.goals, id)
	return true, nil
}

// GetFriendLink implements domain.FriendRepository.
func (s *Store) GetFriendLink(ctx context.Context, id int64) (*domain.FriendLink, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	link, ok := s.data.friends[id]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

// FindFriendLink implements domain.FriendRepository.
func (s *Store) FindFriendLink(ctx context.Context, a, b int64) (*domain.FriendLink, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	for _, link := range s.data.friends {
		if link.Connects(a, b) {
			return &link, nil
		}
	}
	return nil, nil
}

// ListFriendLinks implements domain.FriendRepository.
func (s *Store) ListFriendLinks(ctx context.Context, userID int64) ([]domain.FriendLink, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]domain.FriendLink, 0)
	for _, link := range s.data.friends {
		if link.Involves(userID) {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateFriendLink implements domain.FriendRepository.
func (s *Store) CreateFriendLink(ctx context.Context, link domain.FriendLink) (*domain.FriendLink, error) {
	defer s.lock()()

	s.data.seq.friend++
	link.ID = s.data.seq.friend
	if link.CreatedAt.IsZero() {
		link.CreatedAt = s.now()
	}
	remember(s, s.data.friends, link.ID)
	s.data.friends[link.ID] = link
	return &link, nil
}

// UpdateFriendLinkStatus implements domain.FriendRepository.
func (s *Store) UpdateFriendLinkStatus(ctx context.Context, id int64, status domain.FriendStatus) (*domain.FriendLink, error) {
	defer s.lock()()

	link, ok := s.data.friends[id]
	if !ok {
		return nil, nil
	}
	link.Status = status
	remember(s, s.data.friends, id)
	s.data.friends[id] = link
	return &link, nil
}

// CreateActivity implements domain.ActivityRepository.
func (s *Store) CreateActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	defer s.lock()()

	s.data.seq.activity++
	activity.ID = s.data.seq.activity
	if activity.Timestamp.IsZero() {
		activity.Timestamp = s.now()
	}
	if activity.Metadata == nil {
		activity.Metadata = domain.Metadata{}
	}
	remember(s, s.data.activities, activity.ID)
	s.data.activities[activity.ID] = activity
	return &activity, nil
}

// ListActivities implements domain.ActivityRepository.
func (s *Store) ListActivities(ctx context.Context, userIDs ...int64) ([]domain.Activity, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	out := make([]domain.Activity, 0)
	for _, activity := range s.data.activities {
		if _, ok := wanted[activity.UserID]; ok {
			out = append(out, activity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// CreateAchievement implements domain.AchievementRepository.
func (s *Store) CreateAchievement(ctx context.Context, achievement domain.Achievement) (*domain.Achievement, error) {
	defer s.lock()()

	s.data.seq.achievement++
	achievement.ID = s.data.seq.achievement
	if achievement.EarnedAt.IsZero() {
		achievement.EarnedAt = s.now()
	}
	remember(s, s.data.achievements, achievement.ID)
	s.data.achievements[achievement.ID] = achievement
	return &achievement, nil
}

// ListAchievements implements domain.AchievementRepository.
func (s *Store) ListAchievements(ctx context.Context, userID int64) ([]domain.Achievement, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	out := make([]domain.Achievement, 0)
	for _, achievement := range s.data.achievements {
		if achievement.UserID == userID {
			out = append(out, achievement)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.After(out[j].EarnedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

var _ domain.Store = (*Store)(nil)
