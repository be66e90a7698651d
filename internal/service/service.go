// Package service orchestrates fitness workflows on top of the entity store.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/feed"
	"github.com/dev0919/Fitness-App1/internal/friends"
	"github.com/dev0919/Fitness-App1/internal/observability"
	"github.com/dev0919/Fitness-App1/internal/rules"
	"github.com/dev0919/Fitness-App1/internal/stats"
)

// Effects reports what a mutation triggered beyond its primary write.
type Effects struct {
	Events       []domain.Event
	Activities   []domain.Activity
	Achievements []domain.Achievement
	// Failures are side effects that were rolled back while the mutation itself committed.
	Failures []error
}

// Degraded reports whether any side effect failed.
func (e Effects) Degraded() bool {
	return len(e.Failures) > 0
}

func (e *Effects) add(out rules.Outcome) {
	e.Activities = append(e.Activities, out.Activities...)
	e.Achievements = append(e.Achievements, out.Achievements...)
}

// Service coordinates the entity store with the rule, friend, feed and statistics engines.
type Service struct {
	store   domain.Store
	rules   *rules.Engine
	friends *friends.Engine
	feed    *feed.Composer
	stats   *stats.Aggregator
	logger  *zap.Logger
	now     func() time.Time
	hash    func(string) (string, error)
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger used for side effect failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the clock for every engine the Service builds.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithPasswordHasher overrides password hashing.
func WithPasswordHasher(hash func(string) (string, error)) Option {
	return func(s *Service) {
		s.hash = hash
	}
}

// WithRules replaces the achievement rule engine.
func WithRules(engine *rules.Engine) Option {
	return func(s *Service) {
		s.rules = engine
	}
}

// New constructs a Service.
func New(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hash == nil {
		s.hash = auth.HashPassword
	}
	if s.rules == nil {
		s.rules = rules.NewEngine(rules.WithClock(s.now))
	}
	s.friends = friends.NewEngine(store, friends.WithClock(s.now), friends.WithPasswordHasher(s.hash))
	s.feed = feed.NewComposer(store)
	s.stats = stats.NewAggregator(store, stats.WithClock(s.now))
	return s
}

// sideEffect runs fn in a nested unit of work. A failure rolls back only fn's writes
// and is recorded on effects instead of failing the caller.
func (s *Service) sideEffect(ctx context.Context, tx domain.Store, effects *Effects, name string, fn func(domain.Store) (rules.Outcome, error)) {
	var out rules.Outcome
	err := tx.Atomic(ctx, func(nested domain.Store) error {
		var err error
		out, err = fn(nested)
		return err
	})
	if err != nil {
		s.reportFailure(effects, name, fmt.Errorf("%s: %w", name, err))
		return
	}
	effects.add(out)
}

func (s *Service) reportFailure(effects *Effects, name string, err error) {
	s.logger.Error("side effect rolled back",
		zap.String("effect", name),
		zap.Error(err),
	)
	observability.RecordSideEffectFailure(name)
	effects.Failures = append(effects.Failures, err)
}

func (s *Service) recordActivity(ctx context.Context, tx domain.Store, effects *Effects, activity domain.Activity) {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = s.now()
	}
	s.sideEffect(ctx, tx, effects, string(activity.Type), func(nested domain.Store) (rules.Outcome, error) {
		saved, err := nested.CreateActivity(ctx, activity)
		if err != nil {
			return rules.Outcome{}, err
		}
		return rules.Outcome{Activities: []domain.Activity{*saved}}, nil
	})
}

func (s *Service) applyRules(ctx context.Context, tx domain.Store, effects *Effects) {
	for _, event := range effects.Events {
		event := event
		s.sideEffect(ctx, tx, effects, "achievement_rules", func(nested domain.Store) (rules.Outcome, error) {
			return s.rules.Apply(ctx, nested, event)
		})
	}
}

// observe publishes metrics for records that were committed.
func observe(effects Effects) {
	for _, a := range effects.Activities {
		observability.RecordActivity(string(a.Type), a.Timestamp)
	}
	for _, a := range effects.Achievements {
		observability.RecordAchievement(a.Title)
	}
}

func ownedWorkout(ctx context.Context, repo domain.WorkoutRepository, actorID, workoutID int64) (*domain.Workout, error) {
	workout, err := repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, domain.NotFoundf("workout %d", workoutID)
	}
	if workout.UserID != actorID {
		return nil, domain.Forbiddenf("workout %d belongs to another user", workoutID)
	}
	return workout, nil
}

// readableWorkout also admits templates.
func readableWorkout(ctx context.Context, repo domain.WorkoutRepository, actorID, workoutID int64) (*domain.Workout, error) {
	workout, err := repo.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout == nil {
		return nil, domain.NotFoundf("workout %d", workoutID)
	}
	if workout.UserID != actorID && !workout.IsTemplate() {
		return nil, domain.Forbiddenf("workout %d belongs to another user", workoutID)
	}
	return workout, nil
}
