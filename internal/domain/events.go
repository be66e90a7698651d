package domain

// Event is emitted by a mutation and consumed by the achievement rules.
type Event interface {
	// Owner is the user the event belongs to.
	Owner() int64
	isEvent()
}

// WorkoutCompleted fires when a workout is directly marked completed.
type WorkoutCompleted struct {
	UserID    int64
	WorkoutID int64
	Title     string
}

// GoalCompleted fires when a goal crosses from incomplete to complete.
type GoalCompleted struct {
	UserID int64
	GoalID int64
	Title  string
}

// ExerciseCascadeCompleted fires when completing the last open exercise completes its workout.
type ExerciseCascadeCompleted struct {
	UserID     int64
	WorkoutID  int64
	ExerciseID int64
	Title      string
}

func (e WorkoutCompleted) Owner() int64         { return e.UserID }
func (e GoalCompleted) Owner() int64            { return e.UserID }
func (e ExerciseCascadeCompleted) Owner() int64 { return e.UserID }

func (WorkoutCompleted) isEvent()         {}
func (GoalCompleted) isEvent()            {}
func (ExerciseCascadeCompleted) isEvent() {}
