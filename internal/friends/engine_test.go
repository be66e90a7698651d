package friends

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/store/memory"
)

func plainHasher(s string) (string, error) { return "hashed:" + s, nil }

func setup(t *testing.T) (*Engine, *memory.Store, *domain.User, *domain.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	alice, err := store.CreateUser(ctx, domain.User{Username: "alice", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, domain.User{Username: "bob", Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	return NewEngine(store, WithPasswordHasher(plainHasher)), store, alice, bob
}

func TestRequestFriendCreatesPendingLink(t *testing.T) {
	engine, _, alice, bob := setup(t)

	link, err := engine.RequestFriend(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, link.UserID)
	require.Equal(t, bob.ID, link.FriendID)
	require.Equal(t, domain.FriendStatusPending, link.Status)
}

func TestRequestFriendConflictsInEitherDirection(t *testing.T) {
	engine, _, alice, bob := setup(t)
	ctx := context.Background()

	_, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = engine.RequestFriend(ctx, bob.ID, alice.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRequestFriendValidation(t *testing.T) {
	engine, _, alice, _ := setup(t)
	ctx := context.Background()

	_, err := engine.RequestFriend(ctx, alice.ID, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = engine.RequestFriend(ctx, alice.ID, alice.ID)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRespondOnlyByRecipient(t *testing.T) {
	engine, _, alice, bob := setup(t)
	ctx := context.Background()

	link, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = engine.Respond(ctx, link.ID, alice.ID, domain.FriendStatusAccepted)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = engine.Respond(ctx, link.ID, bob.ID, "maybe")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = engine.Respond(ctx, 999, bob.ID, domain.FriendStatusAccepted)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcceptRecordsActivityForBothParties(t *testing.T) {
	engine, store, alice, bob := setup(t)
	ctx := context.Background()

	link, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resp, err := engine.Respond(ctx, link.ID, bob.ID, domain.FriendStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, resp.Link.Status)
	require.Len(t, resp.Activities, 2)
	require.Empty(t, resp.Failures)

	aliceFeed, err := store.ListActivities(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFeed, 1)
	require.Equal(t, "You are now friends with Bob", aliceFeed[0].Content)
	require.Equal(t, bob.ID, aliceFeed[0].Metadata["friendId"])

	bobFeed, err := store.ListActivities(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "You are now friends with Alice", bobFeed[0].Content)

	_, err = engine.Respond(ctx, link.ID, bob.ID, domain.FriendStatusRejected)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRejectRecordsNothing(t *testing.T) {
	engine, store, alice, bob := setup(t)
	ctx := context.Background()

	link, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resp, err := engine.Respond(ctx, link.ID, bob.ID, domain.FriendStatusRejected)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusRejected, resp.Link.Status)
	require.Empty(t, resp.Activities)

	items, err := store.ListActivities(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	// A rejected link still blocks new requests for the pair.
	_, err = engine.RequestFriend(ctx, bob.ID, alice.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestListFriendsMarksRequester(t *testing.T) {
	engine, _, alice, bob := setup(t)
	ctx := context.Background()

	_, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	fromAlice, err := engine.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, fromAlice, 1)
	require.True(t, fromAlice[0].IsRequester)
	require.Equal(t, "bob", fromAlice[0].Friend.Username)

	fromBob, err := engine.ListFriends(ctx, bob.ID)
	require.NoError(t, err)
	require.False(t, fromBob[0].IsRequester)
	require.Equal(t, alice.ID, fromBob[0].Friend.ID)

	ids, err := AcceptedFriendIDs(ctx, engine.store, alice.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestImportContacts(t *testing.T) {
	engine, store, alice, bob := setup(t)
	ctx := context.Background()

	result, err := engine.ImportContacts(ctx, alice.ID, "gmail", []Contact{
		{Name: "Bob", Email: "BOB@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
		{Name: "Alice Again", Email: "alice@example.com"},
		{Name: "Other Bob", Email: "bob@elsewhere.org"},
	})
	require.NoError(t, err)
	require.Len(t, result.Friends, 3)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, "Alice imported 3 contacts from gmail", result.Activity.Content)
	require.Equal(t, domain.ActivityFriendsImported, result.Activity.Type)

	carol, err := store.FindUserByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	require.NotNil(t, carol)
	require.Equal(t, "carol", carol.Username)
	require.Contains(t, carol.Password, "hashed:")

	otherBob, err := store.FindUserByEmail(ctx, "bob@elsewhere.org")
	require.NoError(t, err)
	require.Equal(t, "bob1", otherBob.Username)

	link, err := store.FindFriendLink(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusPending, link.Status)

	again, err := engine.ImportContacts(ctx, alice.ID, "gmail", []Contact{{Name: "Carol", Email: "carol@example.com"}})
	require.NoError(t, err)
	require.Empty(t, again.Friends)
	require.Equal(t, 1, again.Skipped)
}

func TestImportContactsRequiresSource(t *testing.T) {
	engine, _, alice, _ := setup(t)
	_, err := engine.ImportContacts(context.Background(), alice.ID, " ", nil)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// activityFailingStore rejects activity writes after the first allowed ones, including inside units of work.
type activityFailingStore struct {
	domain.Store
	allowed *int
}

func (s activityFailingStore) Atomic(ctx context.Context, fn func(domain.Store) error) error {
	return s.Store.Atomic(ctx, func(tx domain.Store) error {
		return fn(activityFailingStore{Store: tx, allowed: s.allowed})
	})
}

func (s activityFailingStore) CreateActivity(ctx context.Context, a domain.Activity) (*domain.Activity, error) {
	if *s.allowed <= 0 {
		return nil, errors.New("activities table unavailable")
	}
	*s.allowed--
	return s.Store.CreateActivity(ctx, a)
}

func TestAcceptCommitsWhenActivityWriteFails(t *testing.T) {
	_, store, alice, bob := setup(t)
	ctx := context.Background()
	allowed := 1
	engine := NewEngine(activityFailingStore{Store: store, allowed: &allowed}, WithPasswordHasher(plainHasher))

	link, err := engine.RequestFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resp, err := engine.Respond(ctx, link.ID, bob.ID, domain.FriendStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, resp.Link.Status)
	require.Empty(t, resp.Activities)
	require.Len(t, resp.Failures, 1)

	stored, err := store.GetFriendLink(ctx, link.ID)
	require.NoError(t, err)
	require.Equal(t, domain.FriendStatusAccepted, stored.Status)

	// The first friend_added row was written before the failure and rolled back with it.
	items, err := store.ListActivities(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestImportCommitsWhenActivityWriteFails(t *testing.T) {
	_, store, alice, bob := setup(t)
	ctx := context.Background()
	allowed := 0
	engine := NewEngine(activityFailingStore{Store: store, allowed: &allowed}, WithPasswordHasher(plainHasher))

	result, err := engine.ImportContacts(ctx, alice.ID, "gmail", []Contact{{Name: "Bob", Email: "bob@example.com"}})
	require.NoError(t, err)
	require.Len(t, result.Friends, 1)
	require.Nil(t, result.Activity)
	require.Len(t, result.Failures, 1)

	link, err := store.FindFriendLink(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, link)
	require.Equal(t, domain.FriendStatusPending, link.Status)
}

func TestPlaceholderAccountsUseAccountPasswordHashing(t *testing.T) {
	_, store, alice, _ := setup(t)
	ctx := context.Background()
	engine := NewEngine(store)

	_, err := engine.ImportContacts(ctx, alice.ID, "gmail", []Contact{{Name: "Dana", Email: "dana@example.com"}})
	require.NoError(t, err)

	dana, err := store.FindUserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, dana)
	require.True(t, strings.HasPrefix(dana.Password, "$2"), "stored as a bcrypt hash")
	ok, err := auth.CheckPassword(dana.Password, "guess")
	require.NoError(t, err)
	require.False(t, ok)
}
