// Package merge fills recording gaps in a track with points from a second
// recording of the same activity.
package merge

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/planbiir/trailstats/internal/geo"
	"github.com/planbiir/trailstats/internal/profile"
)

var (
	// ErrNoPrimary is returned when the primary track has no points.
	ErrNoPrimary = errors.New("primary track has no points")

	// ErrNoTimestamps is returned when the primary track carries no time.
	ErrNoTimestamps = errors.New("primary track lacks timestamped points")
)

// Config controls how gaps are filled.
type Config struct {
	// GapThreshold is the minimum pause between two primary points that is
	// treated as a gap. Zero means DefaultConfig().GapThreshold.
	GapThreshold time.Duration

	// MaxDeviationMeters drops secondary points farther than this from both
	// primary points framing the gap. Zero means the default; negative
	// disables the guard.
	MaxDeviationMeters float64
}

// Stats reports what Fill did.
type Stats struct {
	GapsDetected   int `json:"gaps_detected"`
	GapsFilled     int `json:"gaps_filled"`
	InsertedPoints int `json:"inserted_points"`
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		GapThreshold:       2 * time.Minute,
		MaxDeviationMeters: 60,
	}
}

// Fill inserts secondary points into every primary gap longer than the
// threshold. Only secondary points inside the primary time window are
// used, so leading and trailing segments the primary never recorded are
// not added. Untimed secondary points are ignored.
func Fill(primary, secondary []profile.Point, cfg Config) ([]profile.Point, Stats, error) {
	if len(primary) == 0 {
		return nil, Stats{}, ErrNoPrimary
	}

	defaults := DefaultConfig()
	if cfg.GapThreshold <= 0 {
		cfg.GapThreshold = defaults.GapThreshold
	}
	if cfg.MaxDeviationMeters == 0 {
		cfg.MaxDeviationMeters = defaults.MaxDeviationMeters
	}

	start, end := timeBounds(primary)
	if start.IsZero() {
		return nil, Stats{}, ErrNoTimestamps
	}

	candidates := within(secondary, start, end)
	if len(candidates) == 0 {
		return clonePoints(primary), Stats{}, nil
	}

	var stats Stats
	merged := make([]profile.Point, 0, len(primary)+len(candidates))
	next := 0

	for i, current := range primary {
		merged = append(merged, current)
		if i == len(primary)-1 {
			break
		}

		following := primary[i+1]
		if current.Time.IsZero() || following.Time.IsZero() {
			continue
		}
		if following.Time.Sub(current.Time) <= cfg.GapThreshold {
			continue
		}
		stats.GapsDetected++

		for next < len(candidates) && !candidates[next].Time.After(current.Time) {
			next++
		}

		inserted := 0
		idx := next
		for ; idx < len(candidates); idx++ {
			candidate := candidates[idx]
			if !candidate.Time.Before(following.Time) {
				break
			}
			if samePoint(merged[len(merged)-1], candidate) {
				continue
			}
			if cfg.MaxDeviationMeters > 0 &&
				meters(current, candidate) > cfg.MaxDeviationMeters &&
				meters(candidate, following) > cfg.MaxDeviationMeters {
				continue
			}
			merged = append(merged, candidate)
			inserted++
		}

		if inserted > 0 {
			stats.GapsFilled++
			stats.InsertedPoints += inserted
			next = idx
		}
	}

	return merged, stats, nil
}

// within returns the timed points inside [start, end], with one second of
// tolerance, sorted by time.
func within(points []profile.Point, start, end time.Time) []profile.Point {
	const tolerance = time.Second

	out := make([]profile.Point, 0, len(points))
	for _, p := range points {
		if p.Time.IsZero() {
			continue
		}
		if p.Time.Before(start.Add(-tolerance)) || p.Time.After(end.Add(tolerance)) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

func timeBounds(points []profile.Point) (start, end time.Time) {
	for _, p := range points {
		if p.Time.IsZero() {
			continue
		}
		if start.IsZero() || p.Time.Before(start) {
			start = p.Time
		}
		if end.IsZero() || p.Time.After(end) {
			end = p.Time
		}
	}
	return start, end
}

func meters(a, b profile.Point) float64 {
	return geo.Distance(a.Orb(), b.Orb()) * 1000
}

func samePoint(a, b profile.Point) bool {
	const epsilon = 1e-9
	return math.Abs(a.Lat-b.Lat) < epsilon &&
		math.Abs(a.Lon-b.Lon) < epsilon &&
		a.Time.Equal(b.Time)
}

func clonePoints(src []profile.Point) []profile.Point {
	dst := make([]profile.Point, len(src))
	copy(dst, src)
	return dst
}
