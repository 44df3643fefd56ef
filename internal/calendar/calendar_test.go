package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageturnapp/pageturn-server/internal/errors"
)

func TestLoadZone(t *testing.T) {
	loc, err := LoadZone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = LoadZone("Not/AZone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTimezone))

	_, err = LoadZone("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTimezone))
}

func TestDayOf_TimezoneBoundary(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// 2024-06-15 03:00 UTC is still 2024-06-14 23:00 in New York.
	instant := time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, Day{2024, time.June, 15}, DayOf(instant, time.UTC))
	assert.Equal(t, Day{2024, time.June, 14}, DayOf(instant, ny))
}

func TestDayOf_MidnightEdge(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	midnight := time.Date(2024, 6, 15, 0, 0, 0, 0, ny)
	justBefore := midnight.Add(-time.Nanosecond)

	assert.Equal(t, Day{2024, time.June, 15}, DayOf(midnight, ny))
	assert.Equal(t, Day{2024, time.June, 14}, DayOf(justBefore, ny))
}

func TestStartOfDay_RoundTrip(t *testing.T) {
	zones := []string{"UTC", "America/New_York", "Asia/Tokyo", "Australia/Lord_Howe"}
	for _, name := range zones {
		loc, err := LoadZone(name)
		require.NoError(t, err)

		d := Day{2024, time.March, 15}
		start := StartOfDay(d, loc)
		assert.Equal(t, d, DayOf(start, loc), "round trip in %s", name)
	}
}

func TestStartOfDay_DSTSpringForward(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// DST started 2024-03-10 in New York; 02:00-03:00 local didn't exist.
	// The day is 23 hours long but midnight itself is fine.
	d := Day{2024, time.March, 10}
	start := StartOfDay(d, ny)
	assert.Equal(t, d, DayOf(start, ny))

	next := StartOfDay(AddDays(d, 1), ny)
	assert.Equal(t, 23*time.Hour, next.Sub(start))
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name string
		day  Day
		n    int
		want Day
	}{
		{"simple", Day{2024, time.June, 15}, 1, Day{2024, time.June, 16}},
		{"backward", Day{2024, time.June, 15}, -1, Day{2024, time.June, 14}},
		{"month boundary", Day{2024, time.January, 31}, 1, Day{2024, time.February, 1}},
		{"year boundary", Day{2023, time.December, 31}, 1, Day{2024, time.January, 1}},
		{"leap day", Day{2024, time.February, 28}, 1, Day{2024, time.February, 29}},
		{"non-leap", Day{2023, time.February, 28}, 1, Day{2023, time.March, 1}},
		{"big jump", Day{2024, time.January, 1}, 365, Day{2024, time.December, 31}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddDays(tt.day, tt.n))
		})
	}
}

func TestCompare(t *testing.T) {
	a := Day{2024, time.June, 15}
	b := Day{2024, time.June, 16}
	c := Day{2024, time.July, 1}
	d := Day{2025, time.January, 1}

	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.True(t, c.Before(d))
	assert.True(t, d.After(a))
}

func TestString_ParseDay(t *testing.T) {
	d := Day{2024, time.June, 5}
	assert.Equal(t, "2024-06-05", d.String())

	parsed, err := ParseDay("2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseDay("June 5, 2024")
	assert.Error(t, err)
}
