package service

import (
	"context"
	"slices"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/calendar"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// ReadingService handles reading log ingestion and retrieval.
type ReadingService struct {
	store  *store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewReadingService creates a new reading service.
func NewReadingService(store *store.Store, log *logger.Logger) *ReadingService {
	return &ReadingService{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// LogReadingInput holds the fields for recording a reading session.
type LogReadingInput struct {
	UserID string `json:"user_id" validate:"required"`
	BookID string `json:"book_id"`
	Pages  int    `json:"pages" validate:"gte=0"`

	// LoggedAt is when the reading happened. Zero means now. Clients
	// may backdate logs; analytics re-derive everything at query time
	// so backdated entries slot into the right day automatically.
	LoggedAt time.Time `json:"logged_at"`
}

// LogReading records a reading session for a user.
func (s *ReadingService) LogReading(ctx context.Context, input LogReadingInput) (*domain.ReadingLog, error) {
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	// Reject logs for unknown users so orphaned activity can't accumulate.
	if _, err := s.store.GetUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	loggedAt := input.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = s.now()
	}
	if loggedAt.After(s.now().Add(time.Minute)) {
		return nil, errors.Validation("logged_at cannot be in the future")
	}

	logID, err := id.Generate("rlog")
	if err != nil {
		return nil, errors.Internal("failed to generate log ID").WithCause(err)
	}

	log := domain.NewReadingLog(logID, input.UserID, input.BookID, input.Pages, loggedAt)
	if err := s.store.CreateReadingLog(ctx, log); err != nil {
		return nil, err
	}

	s.logger.Info("reading logged",
		"user_id", input.UserID,
		"log_id", log.ID,
		"pages", log.Pages,
	)
	return log, nil
}

// GetLogsForUser returns a user's reading logs, newest first.
// Limit caps the result (0 = all).
func (s *ReadingService) GetLogsForUser(ctx context.Context, userID string, limit int) ([]*domain.ReadingLog, error) {
	logs, err := s.store.GetLogsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// ListLogsInput holds the filters for listing a user's reading logs.
type ListLogsInput struct {
	UserID string `validate:"required"`

	// From and To are optional local calendar days (YYYY-MM-DD) in the
	// user's timezone. From is the first day included, To the last.
	From string
	To   string

	Limit int
}

// ListLogs returns a user's reading logs, newest first, optionally
// restricted to a local calendar-day window.
func (s *ReadingService) ListLogs(ctx context.Context, input ListLogsInput) ([]*domain.ReadingLog, error) {
	if input.From == "" && input.To == "" {
		return s.GetLogsForUser(ctx, input.UserID, input.Limit)
	}

	user, err := s.store.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	loc := time.UTC
	if user.Timezone != "" {
		if l, err := calendar.LoadZone(user.Timezone); err == nil {
			loc = l
		}
	}

	var start time.Time
	if input.From != "" {
		day, err := calendar.ParseDay(input.From)
		if err != nil {
			return nil, err
		}
		start = calendar.StartOfDay(day, loc)
	}

	var logs []*domain.ReadingLog
	if input.To == "" {
		logs, err = s.store.GetLogsForUserSince(ctx, input.UserID, start)
	} else {
		day, perr := calendar.ParseDay(input.To)
		if perr != nil {
			return nil, perr
		}
		// The stored range read is end-exclusive; To is an inclusive
		// local day, so the bound is the following midnight.
		end := calendar.StartOfDay(calendar.AddDays(day, 1), loc)
		logs, err = s.store.GetLogsForUserInRange(ctx, input.UserID, start, end)
	}
	if err != nil {
		return nil, err
	}

	slices.Reverse(logs)
	if input.Limit > 0 && len(logs) > input.Limit {
		logs = logs[:input.Limit]
	}
	return logs, nil
}

// DeleteLog removes a reading log. Only the owner or an admin may
// delete a log.
func (s *ReadingService) DeleteLog(ctx context.Context, requesterID, logID string) error {
	log, err := s.store.GetReadingLog(ctx, logID)
	if err != nil {
		return err
	}

	if log.UserID != requesterID {
		requester, err := s.store.GetUser(ctx, requesterID)
		if err != nil {
			return err
		}
		if !requester.IsAdmin() {
			return errors.Forbidden("cannot delete another user's reading log")
		}
	}

	return s.store.DeleteReadingLog(ctx, logID)
}
