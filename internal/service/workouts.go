package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// WorkoutInput carries a new workout. Workouts always start incomplete.
type WorkoutInput struct {
	Title       string
	Description *string
	Duration    int
	Difficulty  domain.Difficulty
	Type        domain.WorkoutType
}

func (in WorkoutInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.InvalidArgumentf("title is required")
	case in.Duration <= 0:
		return domain.InvalidArgumentf("duration must be > 0")
	case !in.Difficulty.Valid():
		return domain.InvalidArgumentf("invalid difficulty %q", in.Difficulty)
	case !in.Type.Valid():
		return domain.InvalidArgumentf("invalid workout type %q", in.Type)
	}
	return nil
}

func validateWorkoutPatch(p domain.WorkoutPatch) error {
	switch {
	case p.Title != nil && strings.TrimSpace(*p.Title) == "":
		return domain.InvalidArgumentf("title must not be empty")
	case p.Duration != nil && *p.Duration <= 0:
		return domain.InvalidArgumentf("duration must be > 0")
	case p.Difficulty != nil && !p.Difficulty.Valid():
		return domain.InvalidArgumentf("invalid difficulty %q", *p.Difficulty)
	case p.Type != nil && !p.Type.Valid():
		return domain.InvalidArgumentf("invalid workout type %q", *p.Type)
	}
	return nil
}

// ListWorkouts returns the actor's workouts.
func (s *Service) ListWorkouts(ctx context.Context, actorID int64) ([]domain.Workout, error) {
	return s.store.ListWorkouts(ctx, actorID)
}

// ListTemplates returns the template catalogue.
func (s *Service) ListTemplates(ctx context.Context) ([]domain.Workout, error) {
	return s.store.ListWorkouts(ctx, domain.TemplateOwnerID)
}

// GetWorkout returns a workout owned by the actor, or a template.
func (s *Service) GetWorkout(ctx context.Context, actorID, workoutID int64) (*domain.Workout, error) {
	return readableWorkout(ctx, s.store, actorID, workoutID)
}

// CreateWorkout stores a new workout and records a workout_created activity.
func (s *Service) CreateWorkout(ctx context.Context, actorID int64, in WorkoutInput) (*domain.Workout, Effects, error) {
	if err := in.validate(); err != nil {
		return nil, Effects{}, err
	}

	var (
		created *domain.Workout
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		now := s.now()
		var err error
		created, err = tx.CreateWorkout(ctx, domain.Workout{
			UserID:      actorID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Duration:    in.Duration,
			Difficulty:  in.Difficulty,
			Type:        in.Type,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		s.recordActivity(ctx, tx, &effects, domain.Activity{
			UserID:   actorID,
			Type:     domain.ActivityWorkoutCreated,
			Content:  "Created a new workout: " + created.Title,
			Metadata: domain.Metadata{"workoutId": created.ID},
		})
		return nil
	})
	if err != nil {
		return nil, Effects{}, err
	}
	observe(effects)
	return created, effects, nil
}

// UpdateWorkout applies a partial update. Marking an incomplete workout completed
// emits WorkoutCompleted to the achievement rules.
func (s *Service) UpdateWorkout(ctx context.Context, actorID, workoutID int64, patch domain.WorkoutPatch) (*domain.Workout, Effects, error) {
	if err := validateWorkoutPatch(patch); err != nil {
		return nil, Effects{}, err
	}

	var (
		updated *domain.Workout
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		before, err := ownedWorkout(ctx, tx, actorID, workoutID)
		if err != nil {
			return err
		}
		updated, err = tx.UpdateWorkout(ctx, workoutID, patch)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.NotFoundf("workout %d", workoutID)
		}
		if !before.Completed && updated.Completed {
			effects.Events = append(effects.Events, domain.WorkoutCompleted{
				UserID:    actorID,
				WorkoutID: updated.ID,
				Title:     updated.Title,
			})
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

// DeleteWorkout removes a workout and its exercises.
func (s *Service) DeleteWorkout(ctx context.Context, actorID, workoutID int64) error {
	return s.store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := ownedWorkout(ctx, tx, actorID, workoutID); err != nil {
			return err
		}
		exercises, err := tx.ListExercises(ctx, workoutID)
		if err != nil {
			return err
		}
		for _, exercise := range exercises {
			if _, err := tx.DeleteExercise(ctx, exercise.ID); err != nil {
				return fmt.Errorf("delete exercise %d: %w", exercise.ID, err)
			}
		}
		deleted, err := tx.DeleteWorkout(ctx, workoutID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.NotFoundf("workout %d", workoutID)
		}
		return nil
	})
}

// CloneTemplate copies a template and its exercises into a workout owned by the actor.
func (s *Service) CloneTemplate(ctx context.Context, actorID, templateID int64) (*domain.Workout, Effects, error) {
	var (
		clone   *domain.Workout
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		template, err := tx.GetWorkout(ctx, templateID)
		if err != nil {
			return err
		}
		if template == nil {
			return domain.NotFoundf("template workout %d", templateID)
		}
		if !template.IsTemplate() {
			return domain.InvalidArgumentf("workout %d is not a template", templateID)
		}
		actor, err := tx.GetUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return domain.NotFoundf("user %d", actorID)
		}

		now := s.now()
		clone, err = tx.CreateWorkout(ctx, domain.Workout{
			UserID:      actorID,
			Title:       template.Title,
			Description: template.Description,
			Duration:    template.Duration,
			Difficulty:  template.Difficulty,
			Type:        template.Type,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}

		exercises, err := tx.ListExercises(ctx, templateID)
		if err != nil {
			return err
		}
		for _, exercise := range exercises {
			exercise.ID = 0
			exercise.WorkoutID = clone.ID
			exercise.Completed = false
			if _, err := tx.CreateExercise(ctx, exercise); err != nil {
				return fmt.Errorf("copy exercise %q: %w", exercise.Name, err)
			}
		}

		s.recordActivity(ctx, tx, &effects, domain.Activity{
			UserID:   actorID,
			Type:     domain.ActivityWorkoutCloned,
			Content:  fmt.Sprintf("%s created a new workout from the '%s' template", actor.Name, template.Title),
			Metadata: domain.Metadata{"workoutId": clone.ID, "templateId": templateID},
		})
		return nil
	})
	if err != nil {
		return nil, Effects{}, err
	}
	observe(effects)
	return clone, effects, nil
}
