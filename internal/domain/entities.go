package domain

import (
	"strings"
	"time"
)

// TemplateOwnerID marks workouts that belong to the system template catalogue.
const TemplateOwnerID int64 = 0

// DefaultProfilePicture is assigned to users that register without one.
const DefaultProfilePicture = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?ixlib=rb-4.0.3&auto=format&fit=crop&w=80&h=80&q=80"

// Difficulty grades a workout.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// WorkoutType classifies a workout.
type WorkoutType string

const (
	WorkoutTypeStrength    WorkoutType = "strength"
	WorkoutTypeCardio      WorkoutType = "cardio"
	WorkoutTypeFlexibility WorkoutType = "flexibility"
	WorkoutTypeHIIT        WorkoutType = "hiit"
	WorkoutTypeCrossfit    WorkoutType = "crossfit"
)

// Valid reports whether t is a known workout type.
func (t WorkoutType) Valid() bool {
	switch t {
	case WorkoutTypeStrength, WorkoutTypeCardio, WorkoutTypeFlexibility, WorkoutTypeHIIT, WorkoutTypeCrossfit:
		return true
	}
	return false
}

// GoalType classifies what a goal measures.
type GoalType string

const (
	GoalTypeWorkoutCount GoalType = "workout_count"
	GoalTypeWeight       GoalType = "weight"
	GoalTypeTime         GoalType = "time"
	GoalTypeCustom       GoalType = "custom"
)

// Valid reports whether t is a known goal type.
func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeWorkoutCount, GoalTypeWeight, GoalTypeTime, GoalTypeCustom:
		return true
	}
	return false
}

// FriendStatus is the state of a FriendLink.
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
	FriendStatusRejected FriendStatus = "rejected"
)

// ActivityType tags feed items.
type ActivityType string

const (
	ActivityWorkoutCreated   ActivityType = "workout_created"
	ActivityWorkoutCompleted ActivityType = "workout_completed"
	ActivityWorkoutCloned    ActivityType = "workout_cloned"
	ActivityGoalCreated      ActivityType = "goal_created"
	ActivityGoalAchieved     ActivityType = "goal_achieved"
	ActivityFriendAdded      ActivityType = "friend_added"
	ActivityFriendsImported  ActivityType = "friends_imported"
	ActivityStatusUpdate     ActivityType = "status_update"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityWorkoutCreated, ActivityWorkoutCompleted, ActivityWorkoutCloned,
		ActivityGoalCreated, ActivityGoalAchieved, ActivityFriendAdded,
		ActivityFriendsImported, ActivityStatusUpdate:
		return true
	}
	return false
}

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	Bio            *string   `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary returns the public profile fields embedded in feeds and friend lists.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}

// UserSummary is the public projection of a User.
type UserSummary struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// SameIdentity compares usernames and emails the way uniqueness is enforced.
func SameIdentity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Workout is a planned or performed training session.
type Workout struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"userId"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Duration    int         `json:"duration"`
	Difficulty  Difficulty  `json:"difficulty"`
	Type        WorkoutType `json:"type"`
	Completed   bool        `json:"completed"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// IsTemplate reports whether the workout belongs to the template catalogue.
func (w Workout) IsTemplate() bool {
	return w.UserID == TemplateOwnerID
}

// EffectiveDate is completedAt, falling back to updatedAt and then createdAt.
func (w Workout) EffectiveDate() time.Time {
	if w.CompletedAt != nil && !w.CompletedAt.IsZero() {
		return *w.CompletedAt
	}
	if !w.UpdatedAt.IsZero() {
		return w.UpdatedAt
	}
	return w.CreatedAt
}

// Exercise is a single movement inside a workout.
type Exercise struct {
	ID        int64    `json:"id"`
	WorkoutID int64    `json:"workoutId"`
	Name      string   `json:"name"`
	Sets      int      `json:"sets"`
	Reps      int      `json:"reps"`
	Weight    *float64 `json:"weight,omitempty"`
	Duration  *int     `json:"duration,omitempty"`
	RestTime  *int     `json:"restTime,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Completed bool     `json:"completed"`
}

// Goal is a measurable target owned by a user.
type Goal struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Type        GoalType   `json:"type"`
	Target      float64    `json:"target"`
	Current     float64    `json:"current"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FriendLink is the edge between two users. UserID requested, FriendID received.
type FriendLink struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"userId"`
	FriendID  int64        `json:"friendId"`
	Status    FriendStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Involves reports whether the user is either party of the link.
func (l FriendLink) Involves(userID int64) bool {
	return l.UserID == userID || l.FriendID == userID
}

// Connects reports whether the link joins a and b in either direction.
func (l FriendLink) Connects(a, b int64) bool {
	return (l.UserID == a && l.FriendID == b) || (l.UserID == b && l.FriendID == a)
}

// Counterpart returns the other party relative to userID.
func (l FriendLink) Counterpart(userID int64) int64 {
	if l.UserID == userID {
		return l.FriendID
	}
	return l.UserID
}

// Metadata is the opaque key-value bag attached to activities.
type Metadata map[string]any

// Activity is an append-only feed item.
type Activity struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"userId"`
	Type      ActivityType `json:"type"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Metadata  Metadata     `json:"metadata"`
}

// Achievement is an append-only award.
type Achievement struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}
