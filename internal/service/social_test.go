package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

func setupSocial(t *testing.T) (*SocialService, *store.Store) {
	t.Helper()

	s := setupTestStore(t)
	stats := NewStatsService(s, testLogger(), "UTC")
	svc := NewSocialService(s, stats, testLogger(), 50)

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	stats.now = fixedNow(now)
	svc.now = fixedNow(now)
	return svc, s
}

func TestSendFriendRequest(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")

	f, err := svc.SendFriendRequest(ctx, "usr-a", "usr-b")
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipPending, f.Status)
	assert.Equal(t, "usr-a", f.RequesterID)
	assert.Equal(t, "usr-b", f.AddresseeID)

	// Duplicate in the opposite direction is rejected.
	_, err = svc.SendFriendRequest(ctx, "usr-b", "usr-a")
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	// Self-friending is rejected.
	_, err = svc.SendFriendRequest(ctx, "usr-a", "usr-a")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	// Unknown addressee is rejected.
	_, err = svc.SendFriendRequest(ctx, "usr-a", "usr-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAcceptFriendRequest(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")

	f, err := svc.SendFriendRequest(ctx, "usr-a", "usr-b")
	require.NoError(t, err)

	// The requester can't accept their own request.
	_, err = svc.AcceptFriendRequest(ctx, "usr-a", f.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	accepted, err := svc.AcceptFriendRequest(ctx, "usr-b", f.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	// Accepting twice is a conflict.
	_, err = svc.AcceptFriendRequest(ctx, "usr-b", f.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestRemoveFriend(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")
	createTestUser(t, s, "usr-c", "UTC")

	f := acceptedFriendship(t, s, "frnd-1", "usr-a", "usr-b")

	// Outsiders can't remove an edge they're not on.
	err := svc.RemoveFriend(ctx, "usr-c", f.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	// Either participant may.
	require.NoError(t, svc.RemoveFriend(ctx, "usr-b", f.ID))

	ids, err := s.AcceptedFriendIDs(ctx, "usr-a")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// The pair can friend again after removal.
	_, err = svc.SendFriendRequest(ctx, "usr-a", "usr-b")
	require.NoError(t, err)

	// Removing an unknown edge reports not found.
	err = svc.RemoveFriend(ctx, "usr-a", "frnd-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetLeaderboard_RanksFriendsAndKeepsRequester(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")
	createTestUser(t, s, "usr-c", "UTC")
	acceptedFriendship(t, s, "frnd-1", "usr-b", "usr-a")
	acceptedFriendship(t, s, "frnd-2", "usr-b", "usr-c")

	// This week: A read 50, C read 30, B nothing.
	createTestLog(t, s, "rlog-1", "usr-a", 50, time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC))
	createTestLog(t, s, "rlog-2", "usr-c", 30, time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC))

	lb, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-b",
		Period:      domain.StatsPeriodWeek,
		Sort:        domain.LeaderboardSortPages,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, lb.AudienceSize)
	require.Len(t, lb.Entries, 3)

	assert.Equal(t, "usr-a", lb.Entries[0].OwnerID)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.Equal(t, 50, lb.Entries[0].TotalPages)

	assert.Equal(t, "usr-c", lb.Entries[1].OwnerID)
	assert.Equal(t, 2, lb.Entries[1].Rank)

	// The requester stays visible even with zero pages.
	assert.Equal(t, "usr-b", lb.Entries[2].OwnerID)
	assert.Equal(t, 3, lb.Entries[2].Rank)
	assert.True(t, lb.Entries[2].IsRequester)
	assert.Equal(t, "User usr-b", lb.Entries[2].DisplayName)
}

func TestGetLeaderboard_ExcludesNonFriends(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")
	createTestUser(t, s, "usr-x", "UTC")

	acceptedFriendship(t, s, "frnd-1", "usr-a", "usr-b")
	// usr-x reads a lot but is nobody's friend.
	createTestLog(t, s, "rlog-1", "usr-x", 500, time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC))

	lb, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-a",
		Period:      domain.StatsPeriodWeek,
		Sort:        domain.LeaderboardSortPages,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, lb.AudienceSize)
	for _, e := range lb.Entries {
		assert.NotEqual(t, "usr-x", e.OwnerID)
	}
}

func TestGetLeaderboard_PendingFriendsExcluded(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")

	_, err := svc.SendFriendRequest(ctx, "usr-a", "usr-b")
	require.NoError(t, err)

	lb, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-a",
		Period:      domain.StatsPeriodWeek,
		Sort:        domain.LeaderboardSortPages,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lb.AudienceSize)
}

func TestGetLeaderboard_SubsetAlwaysIncludesRequester(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")
	createTestUser(t, s, "usr-b", "UTC")
	createTestUser(t, s, "usr-c", "UTC")
	acceptedFriendship(t, s, "frnd-1", "usr-a", "usr-b")
	acceptedFriendship(t, s, "frnd-2", "usr-a", "usr-c")

	lb, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-a",
		Period:      domain.StatsPeriodWeek,
		Sort:        domain.LeaderboardSortPages,
		Subset:      []string{"usr-b"},
	})
	require.NoError(t, err)

	// Narrowed to usr-b plus the requester; usr-c is out.
	assert.Equal(t, 2, lb.AudienceSize)
}

func TestGetLeaderboard_BucketsEveryoneInRequesterZone(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	// Requester is in Tokyo, friend in New York. The friend's log at
	// 23:00 UTC June 14 is June 15 in Tokyo: for a Tokyo requester
	// asking for "day", it counts.
	stats := NewStatsService(s, testLogger(), "UTC")
	now := time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC) // June 15 11:00 in Tokyo
	stats.now = fixedNow(now)
	svc = NewSocialService(s, stats, testLogger(), 50)
	svc.now = fixedNow(now)

	createTestUser(t, s, "usr-tokyo", "Asia/Tokyo")
	createTestUser(t, s, "usr-ny", "America/New_York")
	acceptedFriendship(t, s, "frnd-1", "usr-tokyo", "usr-ny")

	createTestLog(t, s, "rlog-1", "usr-ny", 25, time.Date(2024, 6, 14, 23, 0, 0, 0, time.UTC))

	lb, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-tokyo",
		Period:      domain.StatsPeriodDay,
		Sort:        domain.LeaderboardSortPages,
	})
	require.NoError(t, err)

	require.Len(t, lb.Entries, 2)
	assert.Equal(t, "usr-ny", lb.Entries[0].OwnerID)
	assert.Equal(t, 25, lb.Entries[0].TotalPages)
}

func TestGetLeaderboard_InvalidInputs(t *testing.T) {
	svc, s := setupSocial(t)
	ctx := context.Background()

	createTestUser(t, s, "usr-a", "UTC")

	_, err := svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-a",
		Period:      "fortnight",
		Sort:        domain.LeaderboardSortPages,
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = svc.GetLeaderboard(ctx, GetLeaderboardInput{
		RequesterID: "usr-a",
		Period:      domain.StatsPeriodWeek,
		Sort:        "altitude",
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
