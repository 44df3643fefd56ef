package domain

import "time"

// FriendshipStatus is the lifecycle state of a friend request.
type FriendshipStatus string

const (
	// FriendshipPending is a request awaiting the addressee's response.
	FriendshipPending FriendshipStatus = "pending"
	// FriendshipAccepted is a confirmed friendship. Accepted friendships
	// count in either direction for audience construction.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship links two users. RequesterID sent the request, AddresseeID
// received it; once accepted the edge is undirected.
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	AddresseeID string           `json:"addressee_id"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
}

// Other returns the user on the other side of the friendship from userID.
func (f *Friendship) Other(userID string) string {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// LeaderboardSort defines the ranking metric.
type LeaderboardSort string

const (
	// LeaderboardSortPages ranks by total pages read in the period.
	LeaderboardSortPages LeaderboardSort = "pages"
	// LeaderboardSortSpeed ranks by average pages per active day.
	LeaderboardSortSpeed LeaderboardSort = "speed"
	// LeaderboardSortStreak ranks by current consecutive-day streak.
	LeaderboardSortStreak LeaderboardSort = "streak"
)

// Valid checks if the sort key is valid.
func (s LeaderboardSort) Valid() bool {
	switch s {
	case LeaderboardSortPages, LeaderboardSortSpeed, LeaderboardSortStreak:
		return true
	default:
		return false
	}
}

// LeaderboardEntry is one ranked row: a user's period metrics plus their
// position. Ranks are positional 1..N over the filtered set.
type LeaderboardEntry struct {
	PeriodMetric
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name,omitempty"`
	IsRequester bool   `json:"is_requester"`
}

// Leaderboard contains the ranked entries and query context.
type Leaderboard struct {
	Sort    LeaderboardSort    `json:"sort"`
	Period  StatsPeriod        `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`

	// AudienceSize is the number of users eligible before zero-filtering.
	AudienceSize int `json:"audience_size"`
}
