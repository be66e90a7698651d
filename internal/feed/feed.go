// Package feed composes the activity feed of a user and their accepted friends.
package feed

import (
	"context"
	"fmt"
	"sort"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/friends"
)

// Item is an activity enriched with its author's public profile.
type Item struct {
	domain.Activity
	User *domain.UserSummary `json:"user"`
}

// Query selects a page of the feed. A zero Limit returns everything after Cursor.
type Query struct {
	Limit  int
	Cursor *Cursor
}

// Page is one slice of the feed.
type Page struct {
	Items      []Item  `json:"items"`
	NextCursor *Cursor `json:"-"`
}

// Source is the read access the Composer needs.
type Source interface {
	domain.UserRepository
	domain.FriendRepository
	domain.ActivityRepository
}

// Composer builds feeds.
type Composer struct {
	source Source
}

// NewComposer constructs a Composer.
func NewComposer(source Source) *Composer {
	return &Composer{source: source}
}

// Compose returns the user's own activities merged with those of accepted friends,
// newest first with ties broken by the higher id.
func (c *Composer) Compose(ctx context.Context, userID int64, q Query) (Page, error) {
	friendIDs, err := friends.AcceptedFriendIDs(ctx, c.source, userID)
	if err != nil {
		return Page{}, fmt.Errorf("list friends: %w", err)
	}
	activities, err := c.source.ListActivities(ctx, append([]int64{userID}, friendIDs...)...)
	if err != nil {
		return Page{}, fmt.Errorf("list activities: %w", err)
	}
	sort.SliceStable(activities, func(i, j int) bool {
		if !activities[i].Timestamp.Equal(activities[j].Timestamp) {
			return activities[i].Timestamp.After(activities[j].Timestamp)
		}
		return activities[i].ID > activities[j].ID
	})

	page := Page{Items: make([]Item, 0)}
	authors := make(map[int64]*domain.UserSummary)
	for _, activity := range activities {
		if !q.Cursor.after(activity) {
			continue
		}
		if q.Limit > 0 && len(page.Items) == q.Limit {
			last := page.Items[len(page.Items)-1]
			page.NextCursor = &Cursor{Timestamp: last.Timestamp, ID: last.ID}
			break
		}
		author, ok := authors[activity.UserID]
		if !ok {
			user, err := c.source.GetUser(ctx, activity.UserID)
			if err != nil {
				return Page{}, fmt.Errorf("load author %d: %w", activity.UserID, err)
			}
			author = user.Summary()
			authors[activity.UserID] = author
		}
		page.Items = append(page.Items, Item{Activity: activity, User: author})
	}
	return page, nil
}

// Enrich attaches the author's public profile to a single activity.
func Enrich(ctx context.Context, users domain.UserRepository, activity domain.Activity) (Item, error) {
	user, err := users.GetUser(ctx, activity.UserID)
	if err != nil {
		return Item{}, err
	}
	return Item{Activity: activity, User: user.Summary()}, nil
}
