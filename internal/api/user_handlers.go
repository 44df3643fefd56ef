package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register a user profile",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTimezone",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/timezone",
		Summary:     "Update current user's timezone",
		Description: "Changes the IANA zone daily stats are bucketed in. Takes effect on the next stats query.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleUpdateTimezone)
}

// === DTOs ===

// CreateUserInput contains the registration payload.
type CreateUserInput struct {
	Body struct {
		Email       string `json:"email" format:"email" doc:"User email, unique case-insensitively"`
		DisplayName string `json:"display_name,omitempty" maxLength:"100" doc:"Public display name"`
		FirstName   string `json:"first_name,omitempty" maxLength:"100"`
		LastName    string `json:"last_name,omitempty" maxLength:"100"`
		Timezone    string `json:"timezone,omitempty" doc:"IANA timezone, e.g. America/New_York"`
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	Timezone    string    `json:"timezone,omitempty" doc:"IANA zone daily stats are bucketed in"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Timezone:    u.Timezone,
		CreatedAt:   u.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.CreateUser(ctx, service.CreateUserInput{
		Email:       input.Body.Email,
		DisplayName: input.Body.DisplayName,
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
		Timezone:    input.Body.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

// AuthedInput is the common input for endpoints that only need identity.
type AuthedInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthedInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

// UpdateTimezoneInput contains the timezone change payload.
type UpdateTimezoneInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	Body   struct {
		Timezone string `json:"timezone" doc:"IANA timezone, e.g. Europe/Paris"`
	}
}

func (s *Server) handleUpdateTimezone(ctx context.Context, input *UpdateTimezoneInput) (*UserOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.UpdateTimezone(ctx, service.UpdateTimezoneInput{
		UserID:   userID,
		Timezone: input.Body.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}
