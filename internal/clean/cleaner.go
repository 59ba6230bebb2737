// Package clean removes GPS outliers from a track before it is profiled.
package clean

import (
	"time"

	"go.uber.org/zap"

	"github.com/planbiir/trailstats/internal/geo"
	"github.com/planbiir/trailstats/internal/profile"
)

// Clean drops impossible jumps from the track. Tracks shorter than three
// points are returned unchanged.
func Clean(points []profile.Point, config Config, logger *zap.Logger) Result {
	if len(points) < 3 {
		return Result{
			Points: points,
			Stats: Stats{
				OriginalPoints: len(points),
				FinalPoints:    len(points),
			},
		}
	}

	startTime := time.Now()
	originalDistance := trackDistance(points)

	activityType, maxSpeed, p95Speed := detectActivityType(points)
	if config.MaxSpeed > 0 {
		maxSpeed = config.MaxSpeed
	}

	logger.Debug("velocity filter",
		zap.String("activity", activityType),
		zap.Float64("p95_speed", p95Speed),
		zap.Float64("speed_limit", maxSpeed))

	kept := velocityOutlierFilter(points, maxSpeed, config)

	stats := Stats{
		OriginalPoints:   len(points),
		OriginalDistance: originalDistance,
		ActivityType:     activityType,
		DetectedMaxSpeed: maxSpeed,
		P95Speed:         p95Speed,
	}

	removalPercent := float64(len(points)-len(kept)) / float64(len(points)) * 100
	if removalPercent > config.MaxRemovedPercent {
		logger.Warn("safety override: keeping original track",
			zap.Float64("would_remove_percent", removalPercent),
			zap.Float64("limit_percent", config.MaxRemovedPercent))
		kept = points
		stats.SafetyOverride = true
	}

	stats.FinalPoints = len(kept)
	stats.FinalDistance = trackDistance(kept)
	stats.PointsRemoved = len(points) - len(kept)
	stats.PointsPercent = float64(stats.PointsRemoved) / float64(len(points)) * 100
	stats.ProcessingTime = time.Since(startTime)

	logger.Info("track cleaned",
		zap.Int("original_points", stats.OriginalPoints),
		zap.Int("final_points", stats.FinalPoints),
		zap.Float64("original_km", stats.OriginalDistance),
		zap.Float64("final_km", stats.FinalDistance))

	return Result{Points: kept, Stats: stats}
}

// trackDistance sums the haversine length of a track in km
func trackDistance(points []profile.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.Distance(points[i-1].Orb(), points[i].Orb())
	}
	return total
}
