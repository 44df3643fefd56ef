package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
)

func TestLogReading(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = fixedNow(now)

	createTestUser(t, s, "usr-1", "UTC")

	l, err := svc.LogReading(context.Background(), LogReadingInput{
		UserID: "usr-1",
		Pages:  42,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, l.Pages)
	assert.True(t, l.LoggedAt.Equal(now), "zero LoggedAt defaults to now")
	assert.NotEmpty(t, l.ID)
}

func TestLogReading_Backdated(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())
	svc.now = fixedNow(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))

	createTestUser(t, s, "usr-1", "UTC")

	past := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	l, err := svc.LogReading(context.Background(), LogReadingInput{
		UserID:   "usr-1",
		Pages:    10,
		LoggedAt: past,
	})
	require.NoError(t, err)
	assert.True(t, l.LoggedAt.Equal(past))
}

func TestLogReading_Rejections(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = fixedNow(now)

	createTestUser(t, s, "usr-1", "UTC")
	ctx := context.Background()

	_, err := svc.LogReading(ctx, LogReadingInput{UserID: "usr-1", Pages: -5})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = svc.LogReading(ctx, LogReadingInput{
		UserID:   "usr-1",
		Pages:    10,
		LoggedAt: now.Add(2 * time.Hour),
	})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = svc.LogReading(ctx, LogReadingInput{UserID: "usr-missing", Pages: 10})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetLogsForUser_Limit(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())

	createTestUser(t, s, "usr-1", "UTC")
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		createTestLog(t, s, "rlog-"+string(rune('a'+i)), "usr-1", 10, base.Add(time.Duration(i)*time.Hour))
	}

	logs, err := svc.GetLogsForUser(context.Background(), "usr-1", 3)
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	all, err := svc.GetLogsForUser(context.Background(), "usr-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListLogs_DayWindowInUserZone(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())
	ctx := context.Background()

	// 2024-06-15 03:00 UTC is still June 14 in New York, so it belongs
	// to a from=/to= window ending June 14.
	createTestUser(t, s, "usr-ny", "America/New_York")
	createTestLog(t, s, "rlog-1", "usr-ny", 10, time.Date(2024, 6, 13, 12, 0, 0, 0, time.UTC))
	createTestLog(t, s, "rlog-2", "usr-ny", 20, time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC))
	createTestLog(t, s, "rlog-3", "usr-ny", 30, time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC))

	logs, err := svc.ListLogs(ctx, ListLogsInput{
		UserID: "usr-ny",
		From:   "2024-06-14",
		To:     "2024-06-14",
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "rlog-2", logs[0].ID)

	// Open-ended from= keeps everything at or after the floor,
	// newest first.
	logs, err = svc.ListLogs(ctx, ListLogsInput{UserID: "usr-ny", From: "2024-06-14"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "rlog-3", logs[0].ID)
	assert.Equal(t, "rlog-2", logs[1].ID)

	// A malformed day is rejected.
	_, err = svc.ListLogs(ctx, ListLogsInput{UserID: "usr-ny", From: "June 14"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestListLogs_NoFiltersDelegatesToFullListing(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())

	createTestUser(t, s, "usr-1", "UTC")
	base := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)
	createTestLog(t, s, "rlog-1", "usr-1", 10, base)
	createTestLog(t, s, "rlog-2", "usr-1", 20, base.Add(time.Hour))

	logs, err := svc.ListLogs(context.Background(), ListLogsInput{UserID: "usr-1"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "rlog-2", logs[0].ID)
}

func TestDeleteLog_OwnerAndAdminOnly(t *testing.T) {
	s := setupTestStore(t)
	svc := NewReadingService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "usr-1", "UTC")
	createTestUser(t, s, "usr-2", "UTC")

	admin := createTestUser(t, s, "usr-admin", "UTC")
	admin.Role = domain.RoleAdmin
	require.NoError(t, s.UpdateUser(ctx, admin))

	l := createTestLog(t, s, "rlog-1", "usr-1", 10, time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC))

	// A different non-admin user may not delete it.
	err := svc.DeleteLog(ctx, "usr-2", l.ID)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	// An admin may.
	require.NoError(t, svc.DeleteLog(ctx, "usr-admin", l.ID))

	// The owner may delete their own.
	l2 := createTestLog(t, s, "rlog-2", "usr-1", 10, time.Date(2024, 6, 14, 11, 0, 0, 0, time.UTC))
	require.NoError(t, svc.DeleteLog(ctx, "usr-1", l2.ID))
}

func TestCreateUserService(t *testing.T) {
	s := setupTestStore(t)
	svc := NewUserService(s, testLogger())

	ctx := context.Background()

	// First user becomes admin.
	first, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "first@example.com",
		Timezone: "Europe/Paris",
	})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())
	assert.Equal(t, "Europe/Paris", first.Timezone)

	second, err := svc.CreateUser(ctx, CreateUserInput{Email: "second@example.com"})
	require.NoError(t, err)
	assert.False(t, second.IsAdmin())

	// Bad timezone is rejected up front.
	_, err = svc.CreateUser(ctx, CreateUserInput{
		Email:    "third@example.com",
		Timezone: "Mars/Olympus_Mons",
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidTimezone))

	// Missing email is rejected.
	_, err = svc.CreateUser(ctx, CreateUserInput{})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestUpdateTimezone(t *testing.T) {
	s := setupTestStore(t)
	svc := NewUserService(s, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "usr-1", "UTC")

	updated, err := svc.UpdateTimezone(ctx, UpdateTimezoneInput{
		UserID:   user.ID,
		Timezone: "Asia/Tokyo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", updated.Timezone)

	_, err = svc.UpdateTimezone(ctx, UpdateTimezoneInput{
		UserID:   user.ID,
		Timezone: "Nowhere/Land",
	})
	assert.True(t, errors.Is(err, errors.ErrInvalidTimezone))
}
