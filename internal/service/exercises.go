package service

import (
	"context"
	"strings"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// ExerciseInput carries a new exercise.
type ExerciseInput struct {
	Name     string
	Sets     int
	Reps     int
	Weight   *float64
	Duration *int
	RestTime *int
	Notes    *string
}

func (in ExerciseInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.InvalidArgumentf("name is required")
	case in.Sets < 0 || in.Reps < 0:
		return domain.InvalidArgumentf("sets and reps must not be negative")
	}
	return nil
}

// ListExercises returns the exercises of a workout the actor can read.
func (s *Service) ListExercises(ctx context.Context, actorID, workoutID int64) ([]domain.Exercise, error) {
	if _, err := readableWorkout(ctx, s.store, actorID, workoutID); err != nil {
		return nil, err
	}
	return s.store.ListExercises(ctx, workoutID)
}

// CreateExercise adds an exercise to one of the actor's workouts.
func (s *Service) CreateExercise(ctx context.Context, actorID, workoutID int64, in ExerciseInput) (*domain.Exercise, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var created *domain.Exercise
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := ownedWorkout(ctx, tx, actorID, workoutID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateExercise(ctx, domain.Exercise{
			WorkoutID: workoutID,
			Name:      strings.TrimSpace(in.Name),
			Sets:      in.Sets,
			Reps:      in.Reps,
			Weight:    in.Weight,
			Duration:  in.Duration,
			RestTime:  in.RestTime,
			Notes:     in.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateExercise applies a partial update. Completing the last open exercise of a
// workout completes the workout and emits ExerciseCascadeCompleted.
func (s *Service) UpdateExercise(ctx context.Context, actorID, exerciseID int64, patch domain.ExercisePatch) (*domain.Exercise, Effects, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, Effects{}, domain.InvalidArgumentf("name must not be empty")
	}

	var (
		updated *domain.Exercise
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		exercise, err := tx.GetExercise(ctx, exerciseID)
		if err != nil {
			return err
		}
		if exercise == nil {
			return domain.NotFoundf("exercise %d", exerciseID)
		}
		workout, err := ownedWorkout(ctx, tx, actorID, exercise.WorkoutID)
		if err != nil {
			return err
		}

		updated, err = tx.UpdateExercise(ctx, exerciseID, patch)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.NotFoundf("exercise %d", exerciseID)
		}

		if patch.Completed != nil && *patch.Completed && !workout.Completed {
			if err := s.cascadeCompletion(ctx, tx, workout, updated.ID, &effects); err != nil {
				return err
			}
		}
		s.applyRules(ctx, tx, &effects)
		return nil
	})
	if err != nil {
		return nil, Effects{}, err
	}
	observe(effects)
	return updated, effects, nil
}

func (s *Service) cascadeCompletion(ctx context.Context, tx domain.Store, workout *domain.Workout, exerciseID int64, effects *Effects) error {
	siblings, err := tx.ListExercises(ctx, workout.ID)
	if err != nil {
		return err
	}
	for _, e := range siblings {
		if !e.Completed {
			return nil
		}
	}

	completed := true
	if _, err := tx.UpdateWorkout(ctx, workout.ID, domain.WorkoutPatch{Completed: &completed}); err != nil {
		return err
	}
	effects.Events = append(effects.Events, domain.ExerciseCascadeCompleted{
		UserID:     workout.UserID,
		WorkoutID:  workout.ID,
		ExerciseID: exerciseID,
		Title:      workout.Title,
	})
	return nil
}

// DeleteExercise removes an exercise from one of the actor's workouts.
func (s *Service) DeleteExercise(ctx context.Context, actorID, exerciseID int64) error {
	return s.store.Atomic(ctx, func(tx domain.Store) error {
		exercise, err := tx.GetExercise(ctx, exerciseID)
		if err != nil {
			return err
		}
		if exercise == nil {
			return domain.NotFoundf("exercise %d", exerciseID)
		}
		if _, err := ownedWorkout(ctx, tx, actorID, exercise.WorkoutID); err != nil {
			return err
		}
		_, err = tx.DeleteExercise(ctx, exerciseID)
		return err
	})
}
