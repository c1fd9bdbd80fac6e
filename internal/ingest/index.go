package ingest

import (
	"strconv"
	"strings"
	"time"
)

// Resolution is a sampling interval code as published in period descriptors.
type Resolution string

const (
	ResolutionYear        Resolution = "P1Y"
	ResolutionMonth       Resolution = "P1M"
	ResolutionWeek        Resolution = "P7D"
	ResolutionDay         Resolution = "P1D"
	ResolutionHour        Resolution = "PT60M"
	ResolutionHalfHour    Resolution = "PT30M"
	ResolutionQuarterHour Resolution = "PT15M"
	ResolutionMinute      Resolution = "PT1M"
)

// step is either a calendar step in months or a fixed duration.
type step struct {
	months int
	fixed  time.Duration
}

var resolutionSteps = map[Resolution]step{
	ResolutionYear:        {months: 12},
	ResolutionMonth:       {months: 1},
	ResolutionWeek:        {fixed: 7 * 24 * time.Hour},
	ResolutionDay:         {fixed: 24 * time.Hour},
	ResolutionHour:        {fixed: 60 * time.Minute},
	ResolutionHalfHour:    {fixed: 30 * time.Minute},
	ResolutionQuarterHour: {fixed: 15 * time.Minute},
	ResolutionMinute:      {fixed: time.Minute},
}

// ParseResolution validates a resolution code.
func ParseResolution(code string) (Resolution, error) {
	r := Resolution(strings.TrimSpace(code))
	if _, ok := resolutionSteps[r]; !ok {
		return "", &InvalidResolutionError{Code: code}
	}
	return r, nil
}

// Period is the time window of one period node.
type Period struct {
	Start      time.Time
	End        time.Time
	Resolution Resolution
}

// MaxIndexLength bounds the number of timestamps one period may expand to.
// A year at minute resolution fits.
const MaxIndexLength = 1 << 20

// at maps a 1-based position to its timestamp.
func (p *Period) at(position int) (time.Time, error) {
	s, ok := resolutionSteps[p.Resolution]
	if !ok {
		return time.Time{}, &InvalidResolutionError{Code: string(p.Resolution)}
	}
	if position < 1 || position > MaxIndexLength {
		return time.Time{}, malformed("position %d outside 1..%d", position, MaxIndexLength)
	}
	return s.advance(p.Start, position-1), nil
}

// advance returns start moved k steps, 0 <= k <= MaxIndexLength. Calendar
// steps are computed from start, not chained, and clamp to the last day of the
// target month.
func (s step) advance(start time.Time, k int) time.Time {
	if s.months == 0 {
		return start.Add(time.Duration(k) * s.fixed)
	}
	y, m, d := start.Date()
	hh, mm, ss := start.Clock()
	total := int(m) - 1 + k*s.months
	ty := y + total/12
	tm := total % 12
	if tm < 0 {
		tm += 12
		ty--
	}
	month := time.Month(tm + 1)
	if last := daysIn(ty, month); d > last {
		d = last
	}
	return time.Date(ty, month, d, hh, mm, ss, start.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildIndex returns every start + k*step strictly before End. A zero-length
// period yields the single timestamp Start. Periods longer than MaxIndexLength
// steps are malformed.
func BuildIndex(p Period) ([]time.Time, error) {
	s, ok := resolutionSteps[p.Resolution]
	if !ok {
		return nil, &InvalidResolutionError{Code: string(p.Resolution)}
	}
	start, end := p.Start.UTC(), p.End.UTC()
	if end.Before(start) {
		return nil, malformed("period end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if start.Equal(end) {
		return []time.Time{start}, nil
	}

	tooLong := func() error {
		return malformed("period %s to %s exceeds %d %s steps",
			start.Format(time.RFC3339), end.Format(time.RFC3339), MaxIndexLength, p.Resolution)
	}

	if s.months == 0 {
		// end.Sub saturates past ~292 years; the loop below enforces the cap
		// for spans this estimate undercounts.
		n := end.Sub(start) / s.fixed
		if n > MaxIndexLength {
			return nil, tooLong()
		}
		idx := make([]time.Time, 0, int(n)+1)
		for t := start; t.Before(end); t = t.Add(s.fixed) {
			if len(idx) == MaxIndexLength {
				return nil, tooLong()
			}
			idx = append(idx, t)
		}
		return idx, nil
	}

	var idx []time.Time
	for k := 0; ; k++ {
		if k == MaxIndexLength {
			return nil, tooLong()
		}
		t := s.advance(start, k)
		if !t.Before(end) {
			break
		}
		idx = append(idx, t)
	}
	return idx, nil
}

var timeLayouts = []string{
	"2006-01-02T15:04Z",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
}

// ParseTimestamp parses the interval timestamps found in period descriptors.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, malformed("invalid timestamp %q", s)
}

// ParsePeriod reads a period descriptor from the interval node (children
// start/end) and the resolution text.
func ParsePeriod(interval *Node, resolution string) (Period, error) {
	if interval == nil {
		return Period{}, malformed("period has no time interval")
	}
	start, err := ParseTimestamp(interval.TextAt("start"))
	if err != nil {
		return Period{}, err
	}
	end, err := ParseTimestamp(interval.TextAt("end"))
	if err != nil {
		return Period{}, err
	}
	res, err := ParseResolution(resolution)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end, Resolution: res}, nil
}

// parsePosition parses a 1-based point position.
func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || pos < 1 {
		return 0, malformed("invalid point position %q", s)
	}
	return pos, nil
}
