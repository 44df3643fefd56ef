package service

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageturnapp/pageturn-server/internal/analytics"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// metricWorkers caps concurrent per-user metric computations for a
// single leaderboard request.
const metricWorkers = 8

// SocialService provides friendships and leaderboards.
type SocialService struct {
	store  *store.Store
	stats  *StatsService
	logger *logger.Logger

	// maxLeaderboardSize caps how many ranked rows one query returns.
	maxLeaderboardSize int

	now func() time.Time
}

// NewSocialService creates a new social service.
func NewSocialService(store *store.Store, stats *StatsService, log *logger.Logger, maxLeaderboardSize int) *SocialService {
	if maxLeaderboardSize <= 0 {
		maxLeaderboardSize = 50
	}
	return &SocialService{
		store:              store,
		stats:              stats,
		logger:             log,
		maxLeaderboardSize: maxLeaderboardSize,
		now:                time.Now,
	}
}

// SendFriendRequest creates a pending friendship from requester to
// addressee. At most one edge exists per user pair.
func (s *SocialService) SendFriendRequest(ctx context.Context, requesterID, addresseeID string) (*domain.Friendship, error) {
	if requesterID == addresseeID {
		return nil, errors.Validation("cannot friend yourself")
	}

	if _, err := s.store.GetUser(ctx, addresseeID); err != nil {
		return nil, err
	}

	// Check for an existing edge up front so the caller gets a message
	// that says which state it is in. The pair index still rejects
	// racing duplicates at the store.
	existing, err := s.store.GetFriendshipBetween(ctx, requesterID, addresseeID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.FriendshipAccepted {
			return nil, errors.AlreadyExists("users are already friends")
		}
		return nil, errors.AlreadyExists("friend request already pending")
	}

	friendshipID, err := id.Generate("frnd")
	if err != nil {
		return nil, errors.Internal("failed to generate friendship ID").WithCause(err)
	}

	f := &domain.Friendship{
		ID:          friendshipID,
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      domain.FriendshipPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("friend request sent",
		"friendship_id", f.ID,
		"requester_id", requesterID,
		"addressee_id", addresseeID,
	)
	return f, nil
}

// AcceptFriendRequest accepts a pending request. Only the addressee may
// accept; accepting an already-accepted edge is a conflict.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, userID, friendshipID string) (*domain.Friendship, error) {
	f, err := s.store.GetFriendship(ctx, friendshipID)
	if err != nil {
		return nil, err
	}

	if f.AddresseeID != userID {
		return nil, errors.Forbidden("only the addressee can accept a friend request")
	}
	if f.Status == domain.FriendshipAccepted {
		return nil, errors.Conflict("friend request already accepted")
	}

	acceptedAt := s.now().UTC()
	f.Status = domain.FriendshipAccepted
	f.AcceptedAt = &acceptedAt

	if err := s.store.UpdateFriendship(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("friend request accepted", "friendship_id", f.ID, "user_id", userID)
	return f, nil
}

// ListFriendships returns every edge touching the user, newest first.
func (s *SocialService) ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	return s.store.ListFriendshipsForUser(ctx, userID)
}

// RemoveFriend deletes a friendship edge in any status, so it also
// cancels a pending request or declines one. Only a participant may
// remove the edge.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, friendshipID string) error {
	f, err := s.store.GetFriendship(ctx, friendshipID)
	if err != nil {
		return err
	}
	if f.RequesterID != userID && f.AddresseeID != userID {
		return errors.Forbidden("cannot remove another user's friendship")
	}

	if err := s.store.DeleteFriendship(ctx, f.ID); err != nil {
		return err
	}

	s.logger.Info("friendship removed",
		"friendship_id", f.ID,
		"user_id", userID,
		"other_id", f.Other(userID),
	)
	return nil
}

// GetLeaderboardInput holds the leaderboard query parameters.
type GetLeaderboardInput struct {
	RequesterID string
	Period      domain.StatsPeriod
	Sort        domain.LeaderboardSort

	// Subset optionally narrows the audience to these user IDs. The
	// requester is always included regardless; non-audience IDs are
	// silently dropped.
	Subset []string

	// Limit caps the number of ranked rows (0 = server maximum).
	Limit int
}

// GetLeaderboard ranks the requester and their accepted friends over
// the period. Every participant's days are bucketed in the requester's
// timezone, so all rows cover the same instant range and the comparison
// is apples to apples. The requester always appears, even with zero
// activity; other zero-metric users are dropped.
func (s *SocialService) GetLeaderboard(ctx context.Context, input GetLeaderboardInput) (*domain.Leaderboard, error) {
	if !input.Period.Valid() {
		return nil, errors.Validationf("invalid period %q", input.Period)
	}
	if !input.Sort.Valid() {
		return nil, errors.Validationf("invalid sort %q", input.Sort)
	}

	limit := input.Limit
	if limit <= 0 || limit > s.maxLeaderboardSize {
		limit = s.maxLeaderboardSize
	}

	requester, err := s.store.GetUser(ctx, input.RequesterID)
	if err != nil {
		return nil, err
	}
	loc, _ := s.stats.resolveZone(requester)
	now := s.now()

	audience, err := s.buildAudience(ctx, input.RequesterID, input.Subset)
	if err != nil {
		return nil, err
	}

	// Compute each participant's metric concurrently. Results land in
	// pre-sized slots, so no mutex is needed.
	metrics := make([]domain.PeriodMetric, len(audience))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metricWorkers)

	for i, userID := range audience {
		g.Go(func() error {
			m, err := s.stats.MetricForUser(gctx, userID, input.Period, now, loc)
			if err != nil {
				return err
			}
			metrics[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := analytics.Rank(metrics, input.Sort, input.RequesterID)
	entries = capEntries(entries, limit)

	if err := s.attachDisplayNames(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Debug("leaderboard computed",
		"requester_id", input.RequesterID,
		"period", input.Period,
		"sort", input.Sort,
		"audience_size", len(audience),
		"entries", len(entries),
	)

	return &domain.Leaderboard{
		Sort:         input.Sort,
		Period:       input.Period,
		Entries:      entries,
		AudienceSize: len(audience),
	}, nil
}

// buildAudience resolves who participates: the requester plus everyone
// they share an accepted friendship with, optionally narrowed to a
// subset. The result is sorted and deduplicated.
func (s *SocialService) buildAudience(ctx context.Context, requesterID string, subset []string) ([]string, error) {
	friendIDs, err := s.store.AcceptedFriendIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	audience := append([]string{requesterID}, friendIDs...)

	if len(subset) > 0 {
		allowed := make(map[string]bool, len(subset))
		for _, id := range subset {
			allowed[id] = true
		}
		narrowed := audience[:0]
		for _, id := range audience {
			if id == requesterID || allowed[id] {
				narrowed = append(narrowed, id)
			}
		}
		audience = narrowed
	}

	slices.Sort(audience)
	return slices.Compact(audience), nil
}

// capEntries trims to limit while keeping the requester's row. If their
// row falls below the cut it replaces the last kept row, rank intact.
func capEntries(entries []domain.LeaderboardEntry, limit int) []domain.LeaderboardEntry {
	if len(entries) <= limit {
		return entries
	}

	var requester *domain.LeaderboardEntry
	for i := limit; i < len(entries); i++ {
		if entries[i].IsRequester {
			requester = &entries[i]
			break
		}
	}

	kept := entries[:limit]
	if requester != nil {
		kept[limit-1] = *requester
	}
	return kept
}

// attachDisplayNames fills in each entry's display name. Rows whose
// user has vanished keep an empty name rather than failing the query.
func (s *SocialService) attachDisplayNames(ctx context.Context, entries []domain.LeaderboardEntry) error {
	for i := range entries {
		user, err := s.store.GetUser(ctx, entries[i].OwnerID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return err
		}
		entries[i].DisplayName = user.Name()
	}
	return nil
}
