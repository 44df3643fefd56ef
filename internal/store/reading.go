package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// initReadingLogs initializes the ReadingLogs entity.
// The user index key includes the log ID since a user has many logs.
func (s *Store) initReadingLogs() {
	s.ReadingLogs = NewEntity[domain.ReadingLog](s, "rlog:").
		WithIndex("user", func(l *domain.ReadingLog) []string {
			return []string{l.UserID + ":" + l.ID}
		})
}

// CreateReadingLog stores a new reading log. Logs are append-only;
// there is no update path.
func (s *Store) CreateReadingLog(ctx context.Context, log *domain.ReadingLog) error {
	if err := s.ReadingLogs.Create(ctx, log.ID, log); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return errors.AlreadyExists(fmt.Sprintf("reading log %s already exists", log.ID))
		}
		return fmt.Errorf("creating reading log %s: %w", log.ID, err)
	}
	return nil
}

// GetReadingLog retrieves a reading log by ID.
func (s *Store) GetReadingLog(ctx context.Context, id string) (*domain.ReadingLog, error) {
	log, err := s.ReadingLogs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("reading log %s not found", id)
		}
		return nil, fmt.Errorf("getting reading log %s: %w", id, err)
	}
	return log, nil
}

// DeleteReadingLog removes a reading log. Idempotent.
func (s *Store) DeleteReadingLog(ctx context.Context, id string) error {
	if err := s.ReadingLogs.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting reading log %s: %w", id, err)
	}
	return nil
}

// GetLogsForUser returns all of a user's reading logs sorted by
// LoggedAt descending.
func (s *Store) GetLogsForUser(ctx context.Context, userID string) ([]*domain.ReadingLog, error) {
	logs, err := s.ReadingLogs.GetAllByIndexPrefix(ctx, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding logs for user %s: %w", userID, err)
	}

	slices.SortFunc(logs, func(a, b *domain.ReadingLog) int {
		return b.LoggedAt.Compare(a.LoggedAt)
	})
	return logs, nil
}

// GetLogsForUserSince returns a user's logs with LoggedAt at or after
// since, sorted by LoggedAt ascending. Useful as a date floor when the
// caller only needs recent history.
func (s *Store) GetLogsForUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.ReadingLog, error) {
	logs, err := s.ReadingLogs.GetAllByIndexPrefix(ctx, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding logs for user %s: %w", userID, err)
	}

	filtered := logs[:0]
	for _, log := range logs {
		if log.LoggedAt.Before(since) {
			continue
		}
		filtered = append(filtered, log)
	}

	slices.SortFunc(filtered, func(a, b *domain.ReadingLog) int {
		return a.LoggedAt.Compare(b.LoggedAt)
	})
	return filtered, nil
}

// GetLogsForUserInRange returns a user's logs with LoggedAt in
// [start, end). A zero start means no lower bound. Results are sorted
// by LoggedAt ascending.
//
// Filtering happens on UTC instants; callers convert calendar-day
// bounds to instants in the owner's zone before querying.
func (s *Store) GetLogsForUserInRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.ReadingLog, error) {
	logs, err := s.ReadingLogs.GetAllByIndexPrefix(ctx, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding logs for user %s: %w", userID, err)
	}

	filtered := logs[:0]
	for _, log := range logs {
		if !start.IsZero() && log.LoggedAt.Before(start) {
			continue
		}
		if !log.LoggedAt.Before(end) {
			continue
		}
		filtered = append(filtered, log)
	}

	slices.SortFunc(filtered, func(a, b *domain.ReadingLog) int {
		return a.LoggedAt.Compare(b.LoggedAt)
	})
	return filtered, nil
}
