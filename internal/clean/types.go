package clean

import (
	"time"

	"github.com/planbiir/trailstats/internal/profile"
)

// Config holds the outlier filter parameters.
type Config struct {
	// Speed thresholds
	MinSpeed float64 // m/s - minimum valid speed
	MaxSpeed float64 // m/s - maximum valid speed (auto-detected if 0)

	// Pause rescue
	PauseSpeed float64 // m/s - below this on both legs a point is a pause

	// Geometric filters
	MaxHairpinDegrees float64 // degrees - allow sharp trail switchbacks
	TeleportMeters    float64 // meters - jump guard for missing timestamps

	// Safety limit
	MaxRemovedPercent float64 // never remove >X% of points
}

// DefaultConfig returns production-tested configuration
func DefaultConfig() Config {
	return Config{
		MinSpeed:          0.1,   // 0.36 km/h - allows extended stops
		MaxSpeed:          0,     // auto-detect based on activity type
		PauseSpeed:        0.7,   // slightly higher for robustness
		MaxHairpinDegrees: 160.0, // allow sharp trail switchbacks
		TeleportMeters:    120.0,
		MaxRemovedPercent: 20.0,
	}
}

// Stats summarises a filter run
type Stats struct {
	OriginalPoints   int     `json:"original_points"`
	OriginalDistance float64 `json:"original_distance_km"`
	FinalPoints      int     `json:"final_points"`
	FinalDistance    float64 `json:"final_distance_km"`
	PointsRemoved    int     `json:"points_removed"`
	PointsPercent    float64 `json:"points_removed_percent"`

	// Activity detection
	ActivityType     string  `json:"activity_type"`
	DetectedMaxSpeed float64 `json:"detected_max_speed_ms"`
	P95Speed         float64 `json:"p95_speed_ms"`

	SafetyOverride bool          `json:"safety_override"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
}

// Result contains the kept points and statistics
type Result struct {
	Points []profile.Point
	Stats  Stats
}
