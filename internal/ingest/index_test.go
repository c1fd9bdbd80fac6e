package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := ParseTimestamp(s)
	require.NoError(t, err)
	return v
}

func TestParseResolution(t *testing.T) {
	for _, code := range []string{"P1Y", "P1M", "P7D", "P1D", "PT60M", "PT30M", "PT15M", "PT1M"} {
		r, err := ParseResolution(code)
		require.NoError(t, err, code)
		assert.Equal(t, Resolution(code), r)
	}

	_, err := ParseResolution("PT5M")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	var re *InvalidResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "PT5M", re.Code)
}

func TestBuildIndexLength(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		res   Resolution
		want  int
	}{
		{"day of hours", "2024-01-01T00:00Z", "2024-01-02T00:00Z", ResolutionHour, 24},
		{"day of quarter hours", "2024-01-01T00:00Z", "2024-01-02T00:00Z", ResolutionQuarterHour, 96},
		{"half hours", "2024-01-01T00:00Z", "2024-01-01T03:00Z", ResolutionHalfHour, 6},
		{"minutes", "2024-01-01T00:00Z", "2024-01-01T00:10Z", ResolutionMinute, 10},
		{"partial step", "2024-01-01T00:00Z", "2024-01-01T01:10Z", ResolutionHour, 2},
		{"week of days", "2024-01-01T00:00Z", "2024-01-08T00:00Z", ResolutionDay, 7},
		{"weeks", "2024-01-01T00:00Z", "2024-02-01T00:00Z", ResolutionWeek, 5},
		{"months", "2024-01-01T00:00Z", "2025-01-01T00:00Z", ResolutionMonth, 12},
		{"years", "2020-01-01T00:00Z", "2024-01-01T00:00Z", ResolutionYear, 4},
		{"zero length", "2024-01-01T00:00Z", "2024-01-01T00:00Z", ResolutionHour, 1},
		{"quarter hour across midnight", "2018-02-28T23:45Z", "2018-03-01T00:00Z", ResolutionQuarterHour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := BuildIndex(Period{Start: mustTime(t, tt.start), End: mustTime(t, tt.end), Resolution: tt.res})
			require.NoError(t, err)
			assert.Len(t, idx, tt.want)
			assert.Equal(t, mustTime(t, tt.start), idx[0])
			for _, ts := range idx {
				if tt.want > 1 {
					assert.True(t, ts.Before(mustTime(t, tt.end)), "end is exclusive")
				}
			}
		})
	}
}

func TestBuildIndexMonthEndsDoNotDrift(t *testing.T) {
	idx, err := BuildIndex(Period{
		Start:      mustTime(t, "2024-01-31T00:00Z"),
		End:        mustTime(t, "2024-05-01T00:00Z"),
		Resolution: ResolutionMonth,
	})
	require.NoError(t, err)
	require.Len(t, idx, 4)
	assert.Equal(t, mustTime(t, "2024-02-29T00:00Z"), idx[1])
	assert.Equal(t, mustTime(t, "2024-03-31T00:00Z"), idx[2])
	assert.Equal(t, mustTime(t, "2024-04-30T00:00Z"), idx[3])
}

func TestBuildIndexErrors(t *testing.T) {
	_, err := BuildIndex(Period{Start: mustTime(t, "2024-01-02T00:00Z"), End: mustTime(t, "2024-01-01T00:00Z"), Resolution: ResolutionHour})
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = BuildIndex(Period{Start: mustTime(t, "2024-01-01T00:00Z"), End: mustTime(t, "2024-01-02T00:00Z"), Resolution: "PT7M"})
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestBuildIndexRejectsOverlongPeriods(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		res   Resolution
	}{
		{"three centuries of hours", "1700-01-01T00:00Z", "2000-01-01T00:00Z", ResolutionHour},
		{"five millennia of days", "0001-01-01T00:00Z", "5000-01-01T00:00Z", ResolutionDay},
		{"just over the cap", "2024-01-01T00:00Z", "2026-01-01T00:00Z", ResolutionMinute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildIndex(Period{Start: mustTime(t, tt.start), End: mustTime(t, tt.end), Resolution: tt.res})
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestBuildIndexLongWeeklyPeriod(t *testing.T) {
	// Three centuries of weeks overflows a time.Duration but stays under the cap.
	start := mustTime(t, "1700-01-01T00:00Z")
	end := mustTime(t, "2000-01-01T00:00Z")
	idx, err := BuildIndex(Period{Start: start, End: end, Resolution: ResolutionWeek})
	require.NoError(t, err)
	require.NotEmpty(t, idx)
	assert.Equal(t, start, idx[0])
	for i := 1; i < len(idx); i++ {
		require.True(t, idx[i].After(idx[i-1]))
	}
	last := idx[len(idx)-1]
	assert.True(t, last.Before(end))
	assert.False(t, last.Add(7*24*time.Hour).Before(end))
}

func TestPeriodAt(t *testing.T) {
	p := &Period{Start: mustTime(t, "2018-02-28T23:45Z"), End: mustTime(t, "2018-03-01T01:00Z"), Resolution: ResolutionQuarterHour}
	ts, err := p.at(3)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2018-03-01T00:15Z"), ts)

	m := &Period{Start: mustTime(t, "2023-01-31T00:00Z"), Resolution: ResolutionMonth}
	ts, err = m.at(2)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2023-02-28T00:00Z"), ts)

	_, err = p.at(MaxIndexLength + 1)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestParseTimestamp(t *testing.T) {
	a, err := ParseTimestamp("2018-02-28T23:45Z")
	require.NoError(t, err)
	b, err := ParseTimestamp("2018-03-01T00:45:00+01:00")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, time.UTC, b.Location())

	_, err = ParseTimestamp("yesterday")
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
