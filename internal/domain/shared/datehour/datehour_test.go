package datehour_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/domain/shared/datehour"
)

func TestParseInstant(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"rfc3339 utc", "2025-03-10T08:00:00Z", "2025-03-10T08:00:00Z", true},
		{"rfc3339 offset", "2025-03-10T05:00:00-03:00", "2025-03-10T08:00:00Z", true},
		{"no zone", "2025-03-10T08:00:00", "2025-03-10T08:00:00Z", true},
		{"space separator", "2025-03-10 08:00:00", "2025-03-10T08:00:00Z", true},
		{"minute precision", "2025-03-10T08:00", "2025-03-10T08:00:00Z", true},
		{"bare date rejected", "2025-03-10", "", false},
		{"garbage", "not-a-date", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := datehour.ParseInstant(tc.input)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got.Format(time.RFC3339))
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	date, ok := datehour.ParseDate(" 2025-03-10 ")
	require.True(t, ok)
	assert.Equal(t, "2025-03-10", date)

	_, ok = datehour.ParseDate("2025-03-10T08:00:00Z")
	assert.False(t, ok)
}

func TestSplitTruncatesToMinute(t *testing.T) {
	instant, ok := datehour.ParseInstant("2025-03-10T08:30:45Z")
	require.True(t, ok)
	date, hour := datehour.Split(instant)
	assert.Equal(t, "2025-03-10", date)
	assert.Equal(t, "08:30", hour)
}

func TestSplitNormalizesToUTC(t *testing.T) {
	instant, ok := datehour.ParseInstant("2025-03-10T23:00:00-03:00")
	require.True(t, ok)
	date, hour := datehour.Split(instant)
	assert.Equal(t, "2025-03-11", date)
	assert.Equal(t, "02:00", hour)
}

func TestCombine(t *testing.T) {
	instant, ok := datehour.Combine("2025-03-10", "08:00")
	require.True(t, ok)
	date, hour := datehour.Split(instant)
	assert.Equal(t, "2025-03-10", date)
	assert.Equal(t, "08:00", hour)

	_, ok = datehour.Combine("2025-03-10", "8h-9h")
	assert.False(t, ok)
}
