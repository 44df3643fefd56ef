package domain

import "time"

// ReadingLog is the atomic, immutable record of reading activity: one
// logged session's page count at one instant. Logs are append-only -
// daily totals, streaks and leaderboards all derive from them.
type ReadingLog struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// BookID is an opaque reference into the book catalog, which lives
	// outside this server. Logs are valid without it.
	BookID string `json:"book_id,omitempty"`

	// Pages is the number of pages read in this session. Never negative.
	Pages int `json:"pages"`

	// LoggedAt is the UTC instant the reading happened. Daily bucketing
	// converts it to the owner's local calendar day at query time.
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReadingLog creates a reading log with computed fields.
func NewReadingLog(id, userID, bookID string, pages int, loggedAt time.Time) *ReadingLog {
	return &ReadingLog{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		Pages:     pages,
		LoggedAt:  loggedAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
}
