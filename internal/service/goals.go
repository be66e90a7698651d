package service

import (
	"context"
	"strings"
	"time"

	"github.com/dev0919/Fitness-App1/internal/domain"
)

// GoalInput carries a new goal.
type GoalInput struct {
	Title       string
	Description *string
	Type        domain.GoalType
	Target      float64
	Current     float64
	Deadline    *time.Time
}

func (in GoalInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return domain.InvalidArgumentf("title is required")
	case !in.Type.Valid():
		return domain.InvalidArgumentf("invalid goal type %q", in.Type)
	case in.Target <= 0:
		return domain.InvalidArgumentf("target must be > 0")
	case in.Current < 0:
		return domain.InvalidArgumentf("current must not be negative")
	}
	return nil
}

func validateGoalPatch(p domain.GoalPatch) error {
	switch {
	case p.Title != nil && strings.TrimSpace(*p.Title) == "":
		return domain.InvalidArgumentf("title must not be empty")
	case p.Type != nil && !p.Type.Valid():
		return domain.InvalidArgumentf("invalid goal type %q", *p.Type)
	case p.Target != nil && *p.Target <= 0:
		return domain.InvalidArgumentf("target must be > 0")
	case p.Current != nil && *p.Current < 0:
		return domain.InvalidArgumentf("current must not be negative")
	}
	return nil
}

// ListGoals returns the actor's goals.
func (s *Service) ListGoals(ctx context.Context, actorID int64) ([]domain.Goal, error) {
	return s.store.ListGoals(ctx, actorID)
}

// CreateGoal stores a goal and records a goal_created activity. A goal created at
// or above its target starts completed without a completion event.
func (s *Service) CreateGoal(ctx context.Context, actorID int64, in GoalInput) (*domain.Goal, Effects, error) {
	if err := in.validate(); err != nil {
		return nil, Effects{}, err
	}

	var (
		created *domain.Goal
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		var err error
		created, err = tx.CreateGoal(ctx, domain.Goal{
			UserID:      actorID,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Type:        in.Type,
			Target:      in.Target,
			Current:     in.Current,
			Completed:   in.Current >= in.Target,
			Deadline:    in.Deadline,
			CreatedAt:   s.now(),
		})
		if err != nil {
			return err
		}
		s.recordActivity(ctx, tx, &effects, domain.Activity{
			UserID:   actorID,
			Type:     domain.ActivityGoalCreated,
			Content:  "Set a new goal: " + created.Title,
			Metadata: domain.Metadata{"goalId": created.ID},
		})
		return nil
	})
	if err != nil {
		return nil, Effects{}, err
	}
	observe(effects)
	return created, effects, nil
}

// UpdateGoal applies a partial update and re-derives completion. Crossing from
// incomplete to complete emits GoalCompleted.
func (s *Service) UpdateGoal(ctx context.Context, actorID, goalID int64, patch domain.GoalPatch) (*domain.Goal, Effects, error) {
	if err := validateGoalPatch(patch); err != nil {
		return nil, Effects{}, err
	}

	var (
		updated *domain.Goal
		effects Effects
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		before, err := s.ownedGoal(ctx, tx, actorID, goalID)
		if err != nil {
			return err
		}
		updated, err = tx.UpdateGoal(ctx, goalID, patch)
		if err != nil {
			return err
		}
		if updated == nil {
			return domain.NotFoundf("goal %d", goalID)
		}
		if !before.Completed && updated.Completed {
			effects.Events = append(effects.Events, domain.GoalCompleted{
				UserID: actorID,
				GoalID: updated.ID,
				Title:  updated.Title,
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

// DeleteGoal removes one of the actor's goals.
func (s *Service) DeleteGoal(ctx context.Context, actorID, goalID int64) error {
	return s.store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := s.ownedGoal(ctx, tx, actorID, goalID); err != nil {
			return err
		}
		_, err := tx.DeleteGoal(ctx, goalID)
		return err
	})
}

func (s *Service) ownedGoal(ctx context.Context, repo domain.GoalRepository, actorID, goalID int64) (*domain.Goal, error) {
	goal, err := repo.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, domain.NotFoundf("goal %d", goalID)
	}
	if goal.UserID != actorID {
		return nil, domain.Forbiddenf("goal %d belongs to another user", goalID)
	}
	return goal, nil
}
