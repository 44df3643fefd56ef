package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/social/leaderboard",
		Summary:     "Get leaderboard",
		Description: "Ranks you and your accepted friends over the period. All participants are bucketed in your timezone.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleGetLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID:   "sendFriendRequest",
		Method:        http.MethodPost,
		Path:          "/api/v1/friends",
		Summary:       "Send a friend request",
		Tags:          []string{"Social"},
		Security:      []map[string][]string{{"userHeader": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/{id}/accept",
		Summary:     "Accept a friend request",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/{id}",
		Summary:     "Remove a friendship",
		Description: "Deletes the edge whatever its status, so it also cancels or declines a pending request.",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleRemoveFriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFriendships",
		Method:      http.MethodGet,
		Path:        "/api/v1/friends",
		Summary:     "List my friendships",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleListFriendships)
}

// === DTOs ===

// GetLeaderboardInput contains parameters for getting the leaderboard.
type GetLeaderboardInput struct {
	UserID string   `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	Period string   `query:"period" enum:"day,week,month,year,all" default:"week" doc:"Time period"`
	Sort   string   `query:"sort" enum:"pages,speed,streak" default:"pages" doc:"Ranking metric"`
	Users  []string `query:"users" doc:"Optional audience subset; you are always included"`
	Limit  int      `query:"limit" minimum:"0" maximum:"50" doc:"Max entries (0 = server maximum)"`
}

// LeaderboardEntryResponse represents a single leaderboard entry.
type LeaderboardEntryResponse struct {
	Rank            int     `json:"rank" doc:"Position in leaderboard, 1..N"`
	UserID          string  `json:"user_id"`
	DisplayName     string  `json:"display_name,omitempty"`
	TotalPages      int     `json:"total_pages"`
	ActiveDays      int     `json:"active_days"`
	AvgPerActiveDay float64 `json:"avg_per_active_day"`
	CurrentStreak   int     `json:"current_streak"`
	IsRequester     bool    `json:"is_requester" doc:"Whether this is the requesting user"`
}

// LeaderboardResponse contains the full leaderboard data.
type LeaderboardResponse struct {
	Sort         string                     `json:"sort"`
	Period       string                     `json:"period"`
	Entries      []LeaderboardEntryResponse `json:"entries"`
	AudienceSize int                        `json:"audience_size" doc:"Eligible users before zero-activity filtering"`
}

// LeaderboardOutput wraps the leaderboard response for Huma.
type LeaderboardOutput struct {
	Body LeaderboardResponse
}

// FriendRequestInput contains the friend request payload.
type FriendRequestInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	Body   struct {
		UserID string `json:"user_id" doc:"User to send the request to"`
	}
}

// AcceptFriendInput identifies the request to accept.
type AcceptFriendInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	ID     string `path:"id" doc:"Friendship ID"`
}

// FriendshipResponse is the public view of a friendship edge.
type FriendshipResponse struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	AddresseeID string     `json:"addressee_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

// FriendshipOutput wraps a friendship response for Huma.
type FriendshipOutput struct {
	Body FriendshipResponse
}

// FriendshipListOutput wraps a list of friendships for Huma.
type FriendshipListOutput struct {
	Body struct {
		Friendships []FriendshipResponse `json:"friendships"`
	}
}

func toFriendshipResponse(f *domain.Friendship) FriendshipResponse {
	return FriendshipResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt,
		AcceptedAt:  f.AcceptedAt,
	}
}

// === Handlers ===

func (s *Server) handleGetLeaderboard(ctx context.Context, input *GetLeaderboardInput) (*LeaderboardOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.services.Social.GetLeaderboard(ctx, service.GetLeaderboardInput{
		RequesterID: userID,
		Period:      domain.StatsPeriod(input.Period),
		Sort:        domain.LeaderboardSort(input.Sort),
		Subset:      input.Users,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntryResponse, len(leaderboard.Entries))
	for i, e := range leaderboard.Entries {
		entries[i] = LeaderboardEntryResponse{
			Rank:            e.Rank,
			UserID:          e.OwnerID,
			DisplayName:     e.DisplayName,
			TotalPages:      e.TotalPages,
			ActiveDays:      e.ActiveDays,
			AvgPerActiveDay: e.AvgPerActiveDay,
			CurrentStreak:   e.CurrentStreak,
			IsRequester:     e.IsRequester,
		}
	}

	return &LeaderboardOutput{Body: LeaderboardResponse{
		Sort:         string(leaderboard.Sort),
		Period:       string(leaderboard.Period),
		Entries:      entries,
		AudienceSize: leaderboard.AudienceSize,
	}}, nil
}

func (s *Server) handleSendFriendRequest(ctx context.Context, input *FriendRequestInput) (*FriendshipOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	f, err := s.services.Social.SendFriendRequest(ctx, userID, input.Body.UserID)
	if err != nil {
		return nil, err
	}
	return &FriendshipOutput{Body: toFriendshipResponse(f)}, nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *AcceptFriendInput) (*FriendshipOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	f, err := s.services.Social.AcceptFriendRequest(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FriendshipOutput{Body: toFriendshipResponse(f)}, nil
}

// RemoveFriendInput identifies the friendship to remove.
type RemoveFriendInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	ID     string `path:"id" doc:"Friendship ID"`
}

func (s *Server) handleRemoveFriend(ctx context.Context, input *RemoveFriendInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.RemoveFriend(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleListFriendships(ctx context.Context, input *AuthedInput) (*FriendshipListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	friendships, err := s.services.Social.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &FriendshipListOutput{}
	out.Body.Friendships = make([]FriendshipResponse, len(friendships))
	for i, f := range friendships {
		out.Body.Friendships[i] = toFriendshipResponse(f)
	}
	return out, nil
}
