// Package friends implements the friend request state machine and contact import.
package friends

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
)

// Friend is a link as seen by one of its parties.
type Friend struct {
	ID          int64               `json:"id"`
	Status      domain.FriendStatus `json:"status"`
	IsRequester bool                `json:"isRequester"`
	Friend      *domain.UserSummary `json:"friend"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// Contact is an address book entry offered for import.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ImportedFriend describes a pending link created by ImportContacts.
type ImportedFriend struct {
	ID     int64               `json:"id"`
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Status domain.FriendStatus `json:"status"`
}

// ImportResult summarises an import run.
type ImportResult struct {
	Friends  []ImportedFriend `json:"friends"`
	Skipped  int              `json:"skipped"`
	Activity *domain.Activity `json:"activity"`
	// Failures holds activity writes that were rolled back while the import committed.
	Failures []error `json:"-"`
}

// Response is the outcome of accepting or rejecting a friend request.
type Response struct {
	Link       *domain.FriendLink
	Activities []domain.Activity
	// Failures holds activity writes that were rolled back while the decision committed.
	Failures []error
}

// Engine applies friend operations against a store.
type Engine struct {
	store domain.Store
	now   func() time.Time
	hash  func(string) (string, error)
}

// Option configures the Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPasswordHasher overrides how placeholder credentials are hashed.
func WithPasswordHasher(hash func(string) (string, error)) Option {
	return func(e *Engine) {
		e.hash = hash
	}
}

// NewEngine constructs an Engine.
func NewEngine(store domain.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		hash:  auth.HashPassword,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RequestFriend creates a pending link from requester to target.
func (e *Engine) RequestFriend(ctx context.Context, requesterID, targetID int64) (*domain.FriendLink, error) {
	if requesterID == targetID {
		return nil, domain.InvalidArgumentf("cannot send a friend request to yourself")
	}

	var created *domain.FriendLink
	err := e.store.Atomic(ctx, func(tx domain.Store) error {
		target, err := tx.GetUser(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.NotFoundf("user %d", targetID)
		}

		existing, err := tx.FindFriendLink(ctx, requesterID, targetID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflictf("friend request already exists")
		}

		created, err = tx.CreateFriendLink(ctx, domain.FriendLink{
			UserID:    requesterID,
			FriendID:  targetID,
			Status:    domain.FriendStatusPending,
			CreatedAt: e.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Respond accepts or rejects a pending link. Only the recipient may respond.
// Accepting records a friend_added activity for both parties. The activity writes
// run in their own nested unit so a failure there leaves the decision committed.
func (e *Engine) Respond(ctx context.Context, linkID, responderID int64, decision domain.FriendStatus) (*Response, error) {
	resp := &Response{}
	err := e.store.Atomic(ctx, func(tx domain.Store) error {
		link, err := tx.GetFriendLink(ctx, linkID)
		if err != nil {
			return err
		}
		if link == nil {
			return domain.NotFoundf("friend request %d", linkID)
		}
		if link.FriendID != responderID {
			return domain.Forbiddenf("only the recipient can respond to friend request %d", linkID)
		}
		if decision != domain.FriendStatusAccepted && decision != domain.FriendStatusRejected {
			return domain.InvalidArgumentf("invalid status %q", decision)
		}
		if link.Status != domain.FriendStatusPending {
			return domain.Conflictf("friend request %d is already %s", linkID, link.Status)
		}

		resp.Link, err = tx.UpdateFriendLinkStatus(ctx, linkID, decision)
		if err != nil {
			return err
		}
		if decision != domain.FriendStatusAccepted {
			return nil
		}

		requester, err := tx.GetUser(ctx, link.UserID)
		if err != nil {
			return err
		}
		recipient, err := tx.GetUser(ctx, link.FriendID)
		if err != nil {
			return err
		}
		if requester == nil || recipient == nil {
			return nil
		}

		now := e.now()
		var activities []domain.Activity
		err = tx.Atomic(ctx, func(nested domain.Store) error {
			for _, pair := range [][2]*domain.User{{requester, recipient}, {recipient, requester}} {
				activity, err := nested.CreateActivity(ctx, domain.Activity{
					UserID:    pair[0].ID,
					Type:      domain.ActivityFriendAdded,
					Content:   "You are now friends with " + pair[1].Name,
					Timestamp: now,
					Metadata:  domain.Metadata{"friendId": pair[1].ID},
				})
				if err != nil {
					return err
				}
				activities = append(activities, *activity)
			}
			return nil
		})
		if err != nil {
			resp.Failures = append(resp.Failures, fmt.Errorf("%s: %w", domain.ActivityFriendAdded, err))
			return nil
		}
		resp.Activities = activities
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListFriends returns every link involving userID with the counterpart's public profile.
func (e *Engine) ListFriends(ctx context.Context, userID int64) ([]Friend, error) {
	links, err := e.store.ListFriendLinks(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Friend, 0, len(links))
	for _, link := range links {
		other, err := e.store.GetUser(ctx, link.Counterpart(userID))
		if err != nil {
			return nil, err
		}
		out = append(out, Friend{
			ID:          link.ID,
			Status:      link.Status,
			IsRequester: link.UserID == userID,
			Friend:      other.Summary(),
			CreatedAt:   link.CreatedAt,
		})
	}
	return out, nil
}

// AcceptedFriendIDs returns the ids of users with an accepted link to userID.
func AcceptedFriendIDs(ctx context.Context, store domain.FriendRepository, userID int64) ([]int64, error) {
	links, err := store.ListFriendLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		if link.Status == domain.FriendStatusAccepted {
			ids = append(ids, link.Counterpart(userID))
		}
	}
	return ids, nil
}

// ImportContacts resolves each contact to a user, creating placeholder accounts for
// unknown emails, and sends a pending request to each. Pairs that already have a link are skipped.
func (e *Engine) ImportContacts(ctx context.Context, userID int64, source string, contacts []Contact) (*ImportResult, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, domain.InvalidArgumentf("source is required")
	}

	result := &ImportResult{Friends: make([]ImportedFriend, 0, len(contacts))}
	err := e.store.Atomic(ctx, func(tx domain.Store) error {
		importer, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if importer == nil {
			return domain.NotFoundf("user %d", userID)
		}

		for _, contact := range contacts {
			contactUser, err := e.resolveContact(ctx, tx, contact)
			if err != nil {
				return err
			}
			if contactUser.ID == userID {
				result.Skipped++
				continue
			}
			existing, err := tx.FindFriendLink(ctx, userID, contactUser.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Skipped++
				continue
			}
			link, err := tx.CreateFriendLink(ctx, domain.FriendLink{
				UserID:    userID,
				FriendID:  contactUser.ID,
				Status:    domain.FriendStatusPending,
				CreatedAt: e.now(),
			})
			if err != nil {
				return err
			}
			result.Friends = append(result.Friends, ImportedFriend{
				ID:     link.ID,
				Name:   contactUser.Name,
				Email:  contactUser.Email,
				Status: link.Status,
			})
		}

		count := len(result.Friends)
		err = tx.Atomic(ctx, func(nested domain.Store) error {
			var err error
			result.Activity, err = nested.CreateActivity(ctx, domain.Activity{
				UserID:    userID,
				Type:      domain.ActivityFriendsImported,
				Content:   fmt.Sprintf("%s imported %d contacts from %s", importer.Name, count, source),
				Timestamp: e.now(),
				Metadata:  domain.Metadata{"source": source, "count": count},
			})
			return err
		})
		if err != nil {
			result.Activity = nil
			result.Failures = append(result.Failures, fmt.Errorf("%s: %w", domain.ActivityFriendsImported, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) resolveContact(ctx context.Context, tx domain.Store, contact Contact) (*domain.User, error) {
	email := strings.TrimSpace(contact.Email)
	local, _, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return nil, domain.InvalidArgumentf("invalid contact email %q", contact.Email)
	}

	existing, err := tx.FindUserByEmail(ctx, email)
	if err != nil || existing != nil {
		return existing, err
	}

	username, err := uniqueUsername(ctx, tx, local)
	if err != nil {
		return nil, err
	}
	hash, err := e.hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	name := strings.TrimSpace(contact.Name)
	if name == "" {
		name = local
	}
	return tx.CreateUser(ctx, domain.User{
		Username:  username,
		Password:  hash,
		Name:      name,
		Email:     email,
		CreatedAt: e.now(),
	})
}

func uniqueUsername(ctx context.Context, users domain.UserRepository, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := users.FindUserByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
}
