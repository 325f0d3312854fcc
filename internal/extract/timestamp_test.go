package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_FormatLadder(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-05-01 07:20:00", time.Date(2025, 5, 1, 7, 20, 0, 0, time.Local)},
		{"5/1/2025 07:20:00", time.Date(2025, 5, 1, 7, 20, 0, 0, time.Local)},
		{"05/01/2025 7:20:00 AM", time.Date(2025, 5, 1, 7, 20, 0, 0, time.Local)},
		{"5/1/2025 4:15 PM", time.Date(2025, 5, 1, 16, 15, 0, 0, time.Local)},
		{"2025-05-01T07:20:00", time.Date(2025, 5, 1, 7, 20, 0, 0, time.Local)},
		{"5/1/25 16:45", time.Date(2025, 5, 1, 16, 45, 0, 0, time.Local)},
		{"2025-05-01", time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		require.True(t, ok, "parse %q", tt.in)
		assert.True(t, tt.want.Equal(got), "parse %q: got %v", tt.in, got)
	}
}

func TestParseTimestamp_Unparseable(t *testing.T) {
	for _, in := range []string{"", "nan", "not a time", "99/99/9999"} {
		_, ok := ParseTimestamp(in)
		assert.False(t, ok, "%q", in)
	}
}

func TestParseClock(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)

	got, ok := ParseClock("07:00", date)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 1, 7, 0, 0, 0, time.Local), got)

	got, ok = ParseClock("4:30 PM", date)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 1, 16, 30, 0, 0, time.Local), got)

	// Full timestamps are re-anchored to the target date.
	got, ok = ParseClock("2025-04-30 06:45:00", date)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 1, 6, 45, 0, 0, time.Local), got)

	_, ok = ParseClock("bogus", date)
	assert.False(t, ok)
}
