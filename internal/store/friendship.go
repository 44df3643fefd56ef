package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// initFriendships initializes the Friendships entity.
// The pair index stores the two user IDs in canonical order so at most
// one edge exists per pair regardless of who sent the request. The
// user index is written for both sides so either user's friendships
// can be scanned by prefix.
func (s *Store) initFriendships() {
	s.Friendships = NewEntity[domain.Friendship](s, "friend:").
		WithIndex("pair", func(f *domain.Friendship) []string {
			return []string{pairKey(f.RequesterID, f.AddresseeID)}
		}).
		WithIndex("user", func(f *domain.Friendship) []string {
			return []string{
				f.RequesterID + ":" + f.ID,
				f.AddresseeID + ":" + f.ID,
			}
		})
}

// pairKey returns the canonical index key for an unordered user pair.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// CreateFriendship stores a new friendship edge.
// Returns ErrAlreadyExists if any edge between the two users exists,
// in either direction and regardless of status.
func (s *Store) CreateFriendship(ctx context.Context, f *domain.Friendship) error {
	if err := s.Friendships.Create(ctx, f.ID, f); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return errors.AlreadyExists("friendship already exists between these users")
		}
		return fmt.Errorf("creating friendship %s: %w", f.ID, err)
	}
	return nil
}

// GetFriendship retrieves a friendship by ID.
func (s *Store) GetFriendship(ctx context.Context, id string) (*domain.Friendship, error) {
	f, err := s.Friendships.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("friendship %s not found", id)
		}
		return nil, fmt.Errorf("getting friendship %s: %w", id, err)
	}
	return f, nil
}

// GetFriendshipBetween retrieves the edge between two users, if any.
func (s *Store) GetFriendshipBetween(ctx context.Context, userA, userB string) (*domain.Friendship, error) {
	f, err := s.Friendships.GetByIndex(ctx, "pair", pairKey(userA, userB))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFound("friendship not found")
		}
		return nil, fmt.Errorf("getting friendship between %s and %s: %w", userA, userB, err)
	}
	return f, nil
}

// UpdateFriendship updates an existing friendship edge.
func (s *Store) UpdateFriendship(ctx context.Context, f *domain.Friendship) error {
	if err := s.Friendships.Update(ctx, f.ID, f); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NotFoundf("friendship %s not found", f.ID)
		}
		return fmt.Errorf("updating friendship %s: %w", f.ID, err)
	}
	return nil
}

// DeleteFriendship removes a friendship edge. Idempotent.
func (s *Store) DeleteFriendship(ctx context.Context, id string) error {
	if err := s.Friendships.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting friendship %s: %w", id, err)
	}
	return nil
}

// ListFriendshipsForUser returns every edge touching the user, newest
// first, in any status.
func (s *Store) ListFriendshipsForUser(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	edges, err := s.Friendships.GetAllByIndexPrefix(ctx, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding friendships for user %s: %w", userID, err)
	}

	slices.SortFunc(edges, func(a, b *domain.Friendship) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return edges, nil
}

// AcceptedFriendIDs returns the IDs of everyone the user has an
// accepted friendship with, counting edges in either direction.
func (s *Store) AcceptedFriendIDs(ctx context.Context, userID string) ([]string, error) {
	edges, err := s.Friendships.GetAllByIndexPrefix(ctx, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding friendships for user %s: %w", userID, err)
	}

	var ids []string
	for _, f := range edges {
		if f.Status == domain.FriendshipAccepted {
			ids = append(ids, f.Other(userID))
		}
	}
	slices.Sort(ids)
	return ids, nil
}
