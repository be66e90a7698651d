// Package catalog holds the built-in workout templates users can clone.
package catalog

import (
	"context"
	"fmt"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// Template is a workout definition together with its exercises.
type Template struct {
	Workout   domain.Workout
	Exercises []domain.Exercise
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// Templates returns the default catalogue. Each call returns fresh values.
func Templates() []Template {
	return []Template{
		{
			Workout: domain.Workout{
				Title:       "Full Body Basics",
				Description: strPtr("A beginner friendly full body strength session."),
				Duration:    45,
				Difficulty:  domain.DifficultyBeginner,
				Type:        domain.WorkoutTypeStrength,
			},
			Exercises: []domain.Exercise{
				{Name: "Bodyweight Squat", Sets: 3, Reps: 12, RestTime: intPtr(60)},
				{Name: "Push-up", Sets: 3, Reps: 10, RestTime: intPtr(60)},
				{Name: "Glute Bridge", Sets: 3, Reps: 15, RestTime: intPtr(45)},
				{Name: "Plank", Sets: 3, Reps: 1, Duration: intPtr(45), RestTime: intPtr(30)},
			},
		},
		{
			Workout: domain.Workout{
				Title:       "20 Minute HIIT",
				Description: strPtr("Short intervals with minimal rest."),
				Duration:    20,
				Difficulty:  domain.DifficultyIntermediate,
				Type:        domain.WorkoutTypeHIIT,
			},
			Exercises: []domain.Exercise{
				{Name: "Burpee", Sets: 4, Reps: 10, RestTime: intPtr(20)},
				{Name: "Mountain Climber", Sets: 4, Reps: 30, RestTime: intPtr(20)},
				{Name: "Jump Squat", Sets: 4, Reps: 15, RestTime: intPtr(20)},
			},
		},
		{
			Workout: domain.Workout{
				Title:       "Easy Run",
				Description: strPtr("Conversational pace run."),
				Duration:    30,
				Difficulty:  domain.DifficultyBeginner,
				Type:        domain.WorkoutTypeCardio,
			},
			Exercises: []domain.Exercise{
				{Name: "Run", Sets: 1, Reps: 1, Duration: intPtr(1800), Notes: strPtr("Keep heart rate in zone 2")},
			},
		},
		{
			Workout: domain.Workout{
				Title:       "Mobility Flow",
				Description: strPtr("Stretching for hips, hamstrings and shoulders."),
				Duration:    25,
				Difficulty:  domain.DifficultyBeginner,
				Type:        domain.WorkoutTypeFlexibility,
			},
			Exercises: []domain.Exercise{
				{Name: "World's Greatest Stretch", Sets: 2, Reps: 5},
				{Name: "Hamstring Stretch", Sets: 2, Reps: 1, Duration: intPtr(60)},
				{Name: "Thread the Needle", Sets: 2, Reps: 8},
			},
		},
	}
}

// Seed inserts the catalogue unless the store already has templates.
// It reports how many templates were created.
func Seed(ctx context.Context, store domain.Store) (int, error) {
	created := 0
	err := store.Atomic(ctx, func(tx domain.Store) error {
		existing, err := tx.ListWorkouts(ctx, domain.TemplateOwnerID)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, tpl := range Templates() {
			workout := tpl.Workout
			workout.UserID = domain.TemplateOwnerID
			saved, err := tx.CreateWorkout(ctx, workout)
			if err != nil {
				return fmt.Errorf("create template %q: %w", workout.Title, err)
			}
			for _, exercise := range tpl.Exercises {
				exercise.WorkoutID = saved.ID
				if _, err := tx.CreateExercise(ctx, exercise); err != nil {
					return fmt.Errorf("create template exercise %q: %w", exercise.Name, err)
				}
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
