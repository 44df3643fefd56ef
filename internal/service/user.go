// Package service contains the application's business logic, sitting
// between the HTTP handlers and the store.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/store"
	"github.com/pageturnapp/pageturn-server/internal/validation"
)

// validate checks service inputs against their struct tags. Handlers
// validate the wire format; this is the backstop for callers that
// bypass HTTP (seeding, tests, future RPC surfaces).
var validate = validation.New()

// UserService manages user profiles.
type UserService struct {
	store  *store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, log *logger.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// CreateUserInput holds the fields for registering a profile.
type CreateUserInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"max=100"`
	FirstName   string `json:"first_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"max=100"`
	// Timezone is checked separately so callers get the dedicated
	// invalid-timezone error code rather than a generic validation one.
	Timezone string `json:"timezone"`
}

// CreateUser registers a new user profile. The first user becomes admin.
// An invalid timezone is rejected rather than silently defaulted, since
// it silently shifts every daily stat the user will ever see.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := validate.Validate(input); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)

	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			return nil, errors.InvalidTimezonef("unknown timezone %q", input.Timezone).WithCause(err)
		}
	}

	role := domain.RoleMember
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		role = domain.RoleAdmin
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, errors.Internal("failed to generate user ID").WithCause(err)
	}

	user := &domain.User{
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Role:        role,
		Timezone:    input.Timezone,
		LastSeenAt:  s.now().UTC(),
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateTimezoneInput holds the fields for a timezone change.
type UpdateTimezoneInput struct {
	UserID   string
	Timezone string
}

// UpdateTimezone changes the zone a user's daily analytics are bucketed
// in. Past logs are untouched; their day assignment shifts because
// bucketing happens at query time.
func (s *UserService) UpdateTimezone(ctx context.Context, input UpdateTimezoneInput) (*domain.User, error) {
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return nil, errors.InvalidTimezonef("unknown timezone %q", input.Timezone).WithCause(err)
	}

	user, err := s.store.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	user.Timezone = input.Timezone
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user timezone updated", "user_id", user.ID, "timezone", user.Timezone)
	return user, nil
}

// TouchLastSeen records user activity. Best effort; errors are logged
// and swallowed so presence tracking never fails a request.
func (s *UserService) TouchLastSeen(ctx context.Context, userID string) {
	if err := s.store.TouchUserLastSeen(ctx, userID, s.now()); err != nil {
		s.logger.Warn("failed to touch last seen", "user_id", userID, "error", err)
	}
}
