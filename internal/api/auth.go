package api

import (
	"context"

	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// authenticateRequest resolves the calling user from the X-User-ID
// header. Authentication itself happens upstream (a reverse proxy or
// gateway verifies credentials and injects the header); this server
// only checks the identity refers to a real user.
func (s *Server) authenticateRequest(ctx context.Context, userIDHeader string) (string, error) {
	if userIDHeader == "" {
		return "", errors.Unauthorized("missing X-User-ID header")
	}

	if _, err := s.store.GetUser(ctx, userIDHeader); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.Unauthorized("unknown user")
		}
		return "", err
	}

	s.services.Users.TouchLastSeen(ctx, userIDHeader)
	return userIDHeader, nil
}
