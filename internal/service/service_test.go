package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	log := logger.New(logger.Config{Writer: io.Discard})
	s, err := store.New(t.TempDir(), log)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Writer: io.Discard})
}

func createTestUser(t *testing.T, s *store.Store, id, timezone string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:       id + "@test.com",
		DisplayName: "User " + id,
		Role:        domain.RoleMember,
		Timezone:    timezone,
	}
	user.ID = id
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createTestLog(t *testing.T, s *store.Store, id, userID string, pages int, loggedAt time.Time) *domain.ReadingLog {
	t.Helper()

	l := domain.NewReadingLog(id, userID, "", pages, loggedAt)
	require.NoError(t, s.CreateReadingLog(context.Background(), l))
	return l
}

func acceptedFriendship(t *testing.T, s *store.Store, id, a, b string) *domain.Friendship {
	t.Helper()

	now := time.Now().UTC()
	f := &domain.Friendship{
		ID:          id,
		RequesterID: a,
		AddresseeID: b,
		Status:      domain.FriendshipAccepted,
		CreatedAt:   now,
		AcceptedAt:  &now,
	}
	require.NoError(t, s.CreateFriendship(context.Background(), f))
	return f
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
