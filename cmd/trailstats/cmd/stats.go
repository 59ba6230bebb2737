package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/planbiir/trailstats/internal/pipeline"
)

type trackStats struct {
	RunID      string  `json:"run_id"`
	Source     string  `json:"source"`
	Points     int     `json:"points"`
	Kilometers int     `json:"kilometers"`
	Window     int     `json:"window"`
	Unresolved int     `json:"timezone_unresolved"`
	Clean      any     `json:"clean,omitempty"`
	Fill       any     `json:"fill,omitempty"`
	DistanceKm float64 `json:"distance_km"`
}

func printStats(w io.Writer, res *pipeline.Result, asJSON bool) error {
	stats := trackStats{
		RunID:      res.RunID,
		Source:     res.Source,
		Points:     len(res.Records),
		Kilometers: len(res.Summary),
		Window:     res.Window,
		Unresolved: res.Unresolved,
	}
	if n := len(res.Records); n > 0 {
		stats.DistanceKm = res.Records[n-1].Distance
	}
	if res.CleanStats != nil {
		stats.Clean = res.CleanStats
	}
	if res.FillStats != nil {
		stats.Fill = res.FillStats
	}

	if asJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "\n📊 Track Statistics: %s\n", res.Source)
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "📍 Points: %d over %.2f km (%d kilometers)\n", stats.Points, stats.DistanceKm, stats.Kilometers)
	if stats.Window > 0 {
		fmt.Fprintf(w, "〰️  Smoothing window: %d\n", stats.Window)
	} else {
		fmt.Fprintf(w, "〰️  Smoothing skipped: track too short\n")
	}
	if stats.Unresolved > 0 {
		fmt.Fprintf(w, "🌐 Timezone unresolved for %d points (UTC used)\n", stats.Unresolved)
	}
	if c := res.CleanStats; c != nil {
		fmt.Fprintf(w, "🎯 Activity Type: %s\n", c.ActivityType)
		fmt.Fprintf(w, "🧹 Cleaned: %d → %d points (%d removed, %.1f%%)\n",
			c.OriginalPoints, c.FinalPoints, c.PointsRemoved, c.PointsPercent)
		fmt.Fprintf(w, "⚡ Speed Detection: P95=%.1f m/s, Max=%.1f m/s\n", c.P95Speed, c.DetectedMaxSpeed)
		if c.SafetyOverride {
			fmt.Fprintf(w, "⚠️  Safety override: original points kept\n")
		}
	}
	if fs := res.FillStats; fs != nil {
		fmt.Fprintf(w, "🔗 Gaps: %d detected, %d filled, %d points inserted\n",
			fs.GapsDetected, fs.GapsFilled, fs.InsertedPoints)
	}
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	return nil
}
