package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
)

func newTestFriendship(t *testing.T, s *Store, id, requesterID, addresseeID string, status domain.FriendshipStatus) *domain.Friendship {
	t.Helper()

	f := &domain.Friendship{
		ID:          id,
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.CreateFriendship(context.Background(), f))
	return f
}

func TestCreateFriendship_DuplicatePairRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	newTestFriendship(t, s, "frnd-1", "usr-a", "usr-b", domain.FriendshipPending)

	// Same pair, opposite direction.
	dup := &domain.Friendship{
		ID:          "frnd-2",
		RequesterID: "usr-b",
		AddresseeID: "usr-a",
		Status:      domain.FriendshipPending,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.CreateFriendship(ctx, dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))
}

func TestGetFriendshipBetween(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := newTestFriendship(t, s, "frnd-1", "usr-a", "usr-b", domain.FriendshipPending)

	// Order of the pair doesn't matter.
	found, err := s.GetFriendshipBetween(ctx, "usr-b", "usr-a")
	require.NoError(t, err)
	assert.Equal(t, f.ID, found.ID)

	_, err = s.GetFriendshipBetween(ctx, "usr-a", "usr-c")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateFriendship_Accept(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	f := newTestFriendship(t, s, "frnd-1", "usr-a", "usr-b", domain.FriendshipPending)

	acceptedAt := time.Now().UTC()
	f.Status = domain.FriendshipAccepted
	f.AcceptedAt = &acceptedAt
	require.NoError(t, s.UpdateFriendship(ctx, f))

	retrieved, err := s.GetFriendship(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, retrieved.Status)
	require.NotNil(t, retrieved.AcceptedAt)
}

func TestListFriendshipsForUser_BothDirections(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	newTestFriendship(t, s, "frnd-1", "usr-a", "usr-b", domain.FriendshipAccepted)
	newTestFriendship(t, s, "frnd-2", "usr-c", "usr-a", domain.FriendshipPending)
	newTestFriendship(t, s, "frnd-3", "usr-b", "usr-c", domain.FriendshipAccepted)

	edges, err := s.ListFriendshipsForUser(ctx, "usr-a")
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestAcceptedFriendIDs(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// usr-a sent one accepted edge, received another, and has one pending.
	newTestFriendship(t, s, "frnd-1", "usr-a", "usr-b", domain.FriendshipAccepted)
	newTestFriendship(t, s, "frnd-2", "usr-c", "usr-a", domain.FriendshipAccepted)
	newTestFriendship(t, s, "frnd-3", "usr-a", "usr-d", domain.FriendshipPending)

	ids, err := s.AcceptedFriendIDs(ctx, "usr-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-b", "usr-c"}, ids)
}
