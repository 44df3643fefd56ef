package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// initUsers initializes the Users entity.
// Email lookups are case-insensitive via normalizeEmail.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail,
		)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user.
// Returns ErrAlreadyExists if the ID or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return errors.AlreadyExists(fmt.Sprintf("user %s already exists", user.ID))
		}
		return fmt.Errorf("creating user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("user %s not found", id)
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("user with email %s not found", email)
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Update(ctx, user.ID, user); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.NotFoundf("user %s not found", user.ID)
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	return nil
}

// ListUsers returns all users.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// TouchUserLastSeen records that the user was active at the given time.
// Missing users are ignored; presence tracking is best effort.
func (s *Store) TouchUserLastSeen(ctx context.Context, id string, at time.Time) error {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("touching user %s: %w", id, err)
	}
	user.LastSeenAt = at.UTC()
	user.Touch()
	return s.Users.Update(ctx, id, user)
}
