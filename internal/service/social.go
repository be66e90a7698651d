package service

import (
	"context"
	"strings"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/feed"
	"github.com/dev0919/Fitness-App1/internal/friends"
	"github.com/dev0919/Fitness-App1/internal/stats"
)

// RequestFriend sends a friend request from the actor to targetID.
func (s *Service) RequestFriend(ctx context.Context, actorID, targetID int64) (*domain.FriendLink, error) {
	return s.friends.RequestFriend(ctx, actorID, targetID)
}

// RespondToFriend accepts or rejects a request addressed to the actor.
func (s *Service) RespondToFriend(ctx context.Context, actorID, linkID int64, decision domain.FriendStatus) (*domain.FriendLink, Effects, error) {
	resp, err := s.friends.Respond(ctx, linkID, actorID, decision)
	if err != nil {
		return nil, Effects{}, err
	}
	effects := Effects{Activities: resp.Activities}
	for _, failure := range resp.Failures {
		s.reportFailure(&effects, string(domain.ActivityFriendAdded), failure)
	}
	observe(effects)
	return resp.Link, effects, nil
}

// ListFriends returns every link involving the actor.
func (s *Service) ListFriends(ctx context.Context, actorID int64) ([]friends.Friend, error) {
	return s.friends.ListFriends(ctx, actorID)
}

// ImportContacts sends friend requests to the given contacts.
func (s *Service) ImportContacts(ctx context.Context, actorID int64, source string, contacts []friends.Contact) (*friends.ImportResult, Effects, error) {
	result, err := s.friends.ImportContacts(ctx, actorID, source, contacts)
	if err != nil {
		return nil, Effects{}, err
	}
	var effects Effects
	if result.Activity != nil {
		effects.Activities = append(effects.Activities, *result.Activity)
	}
	for _, failure := range result.Failures {
		s.reportFailure(&effects, string(domain.ActivityFriendsImported), failure)
	}
	observe(effects)
	return result, effects, nil
}

// Feed returns a page of the actor's feed.
func (s *Service) Feed(ctx context.Context, actorID int64, q feed.Query) (feed.Page, error) {
	return s.feed.Compose(ctx, actorID, q)
}

// PostActivity appends a free-form activity for the actor and returns it with the
// actor's profile attached. The type defaults to status_update.
func (s *Service) PostActivity(ctx context.Context, actorID int64, activityType domain.ActivityType, content string, metadata domain.Metadata) (*feed.Item, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.InvalidArgumentf("content is required")
	}
	if activityType == "" {
		activityType = domain.ActivityStatusUpdate
	}
	if !activityType.Valid() {
		return nil, domain.InvalidArgumentf("invalid activity type %q", activityType)
	}
	if metadata == nil {
		metadata = domain.Metadata{}
	}

	activity, err := s.store.CreateActivity(ctx, domain.Activity{
		UserID:    actorID,
		Type:      activityType,
		Content:   content,
		Timestamp: s.now(),
		Metadata:  metadata,
	})
	if err != nil {
		return nil, err
	}
	observe(Effects{Activities: []domain.Activity{*activity}})

	item, err := feed.Enrich(ctx, s.store, *activity)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListActivities returns the actor's own activities, newest first.
func (s *Service) ListActivities(ctx context.Context, actorID int64) ([]domain.Activity, error) {
	return s.store.ListActivities(ctx, actorID)
}

// ListAchievements returns the actor's achievements, newest first.
func (s *Service) ListAchievements(ctx context.Context, actorID int64) ([]domain.Achievement, error) {
	return s.store.ListAchievements(ctx, actorID)
}

// SummaryStats returns the actor's dashboard headline.
func (s *Service) SummaryStats(ctx context.Context, actorID int64) (stats.Summary, error) {
	return s.stats.SummaryStats(ctx, actorID)
}

// WorkoutStats returns the actor's workout time series.
func (s *Service) WorkoutStats(ctx context.Context, actorID int64) (stats.WorkoutStats, error) {
	return s.stats.WorkoutStats(ctx, actorID)
}
