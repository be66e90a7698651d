// Package rules turns mutation events into activity feed entries and achievements.
package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

const (
	FirstWorkoutTitle = "First Workout"
	ConsistencyTitle  = "Consistency Champion"
	GoalCrusherTitle  = "Goal Crusher"

	// ConsistencyThreshold is the completed workout count that earns ConsistencyTitle.
	ConsistencyThreshold = 5
)

type threshold struct {
	count       int
	title       string
	description string
	icon        string
}

var workoutThresholds = []threshold{
	{count: 1, title: FirstWorkoutTitle, description: "Completed your first workout!", icon: "ri-award-line"},
	{count: ConsistencyThreshold, title: ConsistencyTitle, description: "Completed 5 workouts!", icon: "ri-trophy-line"},
}

// Outcome lists the records an event produced.
type Outcome struct {
	Activities   []domain.Activity
	Achievements []domain.Achievement
}

func (o *Outcome) merge(other Outcome) {
	o.Activities = append(o.Activities, other.Activities...)
	o.Achievements = append(o.Achievements, other.Achievements...)
}

// Engine evaluates achievement rules.
type Engine struct {
	now func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source for created records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply evaluates a single event against store. Callers run it inside a unit of work
// so a failure leaves no partial records behind.
func (e *Engine) Apply(ctx context.Context, store domain.Store, event domain.Event) (Outcome, error) {
	switch ev := event.(type) {
	case domain.WorkoutCompleted:
		return e.workoutCompleted(ctx, store, ev.UserID, ev.WorkoutID, ev.Title)
	case domain.ExerciseCascadeCompleted:
		return e.workoutCompleted(ctx, store, ev.UserID, ev.WorkoutID, ev.Title)
	case domain.GoalCompleted:
		return e.goalCompleted(ctx, store, ev)
	default:
		return Outcome{}, fmt.Errorf("rules: unsupported event %T", event)
	}
}

func (e *Engine) workoutCompleted(ctx context.Context, store domain.Store, userID, workoutID int64, title string) (Outcome, error) {
	var out Outcome

	activity, err := store.CreateActivity(ctx, domain.Activity{
		UserID:    userID,
		Type:      domain.ActivityWorkoutCompleted,
		Content:   "Completed workout: " + title,
		Timestamp: e.now(),
		Metadata:  domain.Metadata{"workoutId": workoutID},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("record workout completion: %w", err)
	}
	out.Activities = append(out.Activities, *activity)

	workouts, err := store.ListWorkouts(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("count completed workouts: %w", err)
	}
	completed := 0
	for _, w := range workouts {
		if w.Completed {
			completed++
		}
	}

	for _, th := range workoutThresholds {
		if completed != th.count {
			continue
		}
		held, err := hasAchievement(ctx, store, userID, th.title)
		if err != nil {
			return Outcome{}, err
		}
		if held {
			continue
		}
		achievement, err := store.CreateAchievement(ctx, domain.Achievement{
			UserID:      userID,
			Title:       th.title,
			Description: th.description,
			Icon:        th.icon,
			EarnedAt:    e.now(),
		})
		if err != nil {
			return Outcome{}, fmt.Errorf("award %q: %w", th.title, err)
		}
		out.Achievements = append(out.Achievements, *achievement)
	}
	return out, nil
}

func (e *Engine) goalCompleted(ctx context.Context, store domain.Store, ev domain.GoalCompleted) (Outcome, error) {
	var out Outcome
	now := e.now()

	activity, err := store.CreateActivity(ctx, domain.Activity{
		UserID:    ev.UserID,
		Type:      domain.ActivityGoalAchieved,
		Content:   "Achieved goal: " + ev.Title,
		Timestamp: now,
		Metadata:  domain.Metadata{"goalId": ev.GoalID},
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("record goal completion: %w", err)
	}
	out.Activities = append(out.Activities, *activity)

	achievement, err := store.CreateAchievement(ctx, domain.Achievement{
		UserID:      ev.UserID,
		Title:       GoalCrusherTitle,
		Description: "Achieved your goal: " + ev.Title,
		Icon:        "ri-flag-line",
		EarnedAt:    now,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("award %q: %w", GoalCrusherTitle, err)
	}
	out.Achievements = append(out.Achievements, *achievement)
	return out, nil
}

// ApplyAll evaluates events in order and stops at the first failure.
func (e *Engine) ApplyAll(ctx context.Context, store domain.Store, events []domain.Event) (Outcome, error) {
	var out Outcome
	for _, event := range events {
		res, err := e.Apply(ctx, store, event)
		if err != nil {
			return out, err
		}
		out.merge(res)
	}
	return out, nil
}

func hasAchievement(ctx context.Context, store domain.Store, userID int64, title string) (bool, error) {
	held, err := store.ListAchievements(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list achievements: %w", err)
	}
	for _, a := range held {
		if a.Title == title {
			return true, nil
		}
	}
	return false, nil
}
