package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

func (s *Server) registerReadingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "logReading",
		Method:        http.MethodPost,
		Path:          "/api/v1/reading-logs",
		Summary:       "Log a reading session",
		Tags:          []string{"Reading"},
		Security:      []map[string][]string{{"userHeader": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleLogReading)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyReadingLogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/reading-logs",
		Summary:     "List my reading logs",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleListMyReadingLogs)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReadingLog",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reading-logs/{id}",
		Summary:     "Delete a reading log",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleDeleteReadingLog)
}

// === DTOs ===

// LogReadingInput contains the reading log payload.
type LogReadingInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	Body   struct {
		BookID   string     `json:"book_id,omitempty" doc:"Opaque book reference, optional"`
		Pages    int        `json:"pages" minimum:"0" doc:"Pages read in this session"`
		LoggedAt *time.Time `json:"logged_at,omitempty" doc:"When the reading happened; omit for now. Backdating is allowed."`
	}
}

// ReadingLogResponse is the public view of a reading log.
type ReadingLogResponse struct {
	ID       string    `json:"id"`
	BookID   string    `json:"book_id,omitempty"`
	Pages    int       `json:"pages"`
	LoggedAt time.Time `json:"logged_at"`
}

// ReadingLogOutput wraps a reading log response for Huma.
type ReadingLogOutput struct {
	Body ReadingLogResponse
}

// ReadingLogListOutput wraps a list of reading logs for Huma.
type ReadingLogListOutput struct {
	Body struct {
		Logs []ReadingLogResponse `json:"logs"`
	}
}

func toReadingLogResponse(l *domain.ReadingLog) ReadingLogResponse {
	return ReadingLogResponse{
		ID:       l.ID,
		BookID:   l.BookID,
		Pages:    l.Pages,
		LoggedAt: l.LoggedAt,
	}
}

// === Handlers ===

func (s *Server) handleLogReading(ctx context.Context, input *LogReadingInput) (*ReadingLogOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var loggedAt time.Time
	if input.Body.LoggedAt != nil {
		loggedAt = *input.Body.LoggedAt
	}

	log, err := s.services.Reading.LogReading(ctx, service.LogReadingInput{
		UserID:   userID,
		BookID:   input.Body.BookID,
		Pages:    input.Body.Pages,
		LoggedAt: loggedAt,
	})
	if err != nil {
		return nil, err
	}
	return &ReadingLogOutput{Body: toReadingLogResponse(log)}, nil
}

// ListReadingLogsInput contains list query parameters.
type ListReadingLogsInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	From   string `query:"from" pattern:"^\\d{4}-\\d{2}-\\d{2}$" doc:"First local calendar day to include (YYYY-MM-DD)"`
	To     string `query:"to" pattern:"^\\d{4}-\\d{2}-\\d{2}$" doc:"Last local calendar day to include (YYYY-MM-DD)"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Max logs to return (0 = all)"`
}

func (s *Server) handleListMyReadingLogs(ctx context.Context, input *ListReadingLogsInput) (*ReadingLogListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	logs, err := s.services.Reading.ListLogs(ctx, service.ListLogsInput{
		UserID: userID,
		From:   input.From,
		To:     input.To,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := &ReadingLogListOutput{}
	out.Body.Logs = make([]ReadingLogResponse, len(logs))
	for i, l := range logs {
		out.Body.Logs[i] = toReadingLogResponse(l)
	}
	return out, nil
}

// DeleteReadingLogInput identifies the log to delete.
type DeleteReadingLogInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	ID     string `path:"id" doc:"Reading log ID"`
}

func (s *Server) handleDeleteReadingLog(ctx context.Context, input *DeleteReadingLogInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reading.DeleteLog(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}
