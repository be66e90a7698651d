// Package domain defines the entities, events and persistence contracts of the fitness service.
package domain

import "context"

// Repositories return (nil, nil) from Get/Find/Update when the row does not exist.
// Create assigns the id and fills zero timestamps.

// UserRepository persists users.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error)
}

// WorkoutRepository persists workouts. ListWorkouts(TemplateOwnerID) returns the template catalogue.
type WorkoutRepository interface {
	GetWorkout(ctx context.Context, id int64) (*Workout, error)
	ListWorkouts(ctx context.Context, userID int64) ([]Workout, error)
	CreateWorkout(ctx context.Context, workout Workout) (*Workout, error)
	UpdateWorkout(ctx context.Context, id int64, patch WorkoutPatch) (*Workout, error)
	DeleteWorkout(ctx context.Context, id int64) (bool, error)
}

// ExerciseRepository persists exercises.
type ExerciseRepository interface {
	GetExercise(ctx context.Context, id int64) (*Exercise, error)
	ListExercises(ctx context.Context, workoutID int64) ([]Exercise, error)
	CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	UpdateExercise(ctx context.Context, id int64, patch ExercisePatch) (*Exercise, error)
	DeleteExercise(ctx context.Context, id int64) (bool, error)
}

// GoalRepository persists goals. UpdateGoal must apply the patch through Goal.Apply.
type GoalRepository interface {
	GetGoal(ctx context.Context, id int64) (*Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]Goal, error)
	CreateGoal(ctx context.Context, goal Goal) (*Goal, error)
	UpdateGoal(ctx context.Context, id int64, patch GoalPatch) (*Goal, error)
	DeleteGoal(ctx context.Context, id int64) (bool, error)
}

// FriendRepository persists friend links.
type FriendRepository interface {
	GetFriendLink(ctx context.Context, id int64) (*FriendLink, error)
	// FindFriendLink returns the link between a and b in either direction.
	FindFriendLink(ctx context.Context, a, b int64) (*FriendLink, error)
	// ListFriendLinks returns every link where userID is either party.
	ListFriendLinks(ctx context.Context, userID int64) ([]FriendLink, error)
	CreateFriendLink(ctx context.Context, link FriendLink) (*FriendLink, error)
	UpdateFriendLinkStatus(ctx context.Context, id int64, status FriendStatus) (*FriendLink, error)
}

// ActivityRepository persists the append-only activity log.
type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity Activity) (*Activity, error)
	// ListActivities returns activities of the given users, newest first.
	ListActivities(ctx context.Context, userIDs ...int64) ([]Activity, error)
}

// AchievementRepository persists the append-only achievement log.
type AchievementRepository interface {
	CreateAchievement(ctx context.Context, achievement Achievement) (*Achievement, error)
	// ListAchievements returns the user's achievements, newest first.
	ListAchievements(ctx context.Context, userID int64) ([]Achievement, error)
}

// Store is the full entity store. Atomic runs fn as one unit of work; calling
// Atomic on the Store handed to fn nests, and a failed nested unit only undoes its own writes.
type Store interface {
	UserRepository
	WorkoutRepository
	ExerciseRepository
	GoalRepository
	FriendRepository
	ActivityRepository
	AchievementRepository

	Atomic(ctx context.Context, fn func(Store) error) error
}
