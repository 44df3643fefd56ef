package store

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/logger"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	log := logger.New(logger.Config{Writer: io.Discard})
	s, err := New(t.TempDir(), log)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func newTestUser(t *testing.T, s *Store, id, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:       email,
		DisplayName: "Test " + id,
		Role:        domain.RoleMember,
	}
	user.ID = id
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newTestLog(t *testing.T, s *Store, id, userID string, pages int, loggedAt time.Time) *domain.ReadingLog {
	t.Helper()

	l := domain.NewReadingLog(id, userID, "", pages, loggedAt)
	require.NoError(t, s.CreateReadingLog(context.Background(), l))
	return l
}
