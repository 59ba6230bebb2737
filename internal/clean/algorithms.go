package clean

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/planbiir/trailstats/internal/geo"
	"github.com/planbiir/trailstats/internal/profile"
)

// velocityOutlierFilter keeps points whose speeds to both neighbours are
// plausible and that do not form a sharp out-and-back spike.
func velocityOutlierFilter(points []profile.Point, maxSpeed float64, config Config) []profile.Point {
	kept := []profile.Point{points[0]} // Always keep first point

	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]

		distToPrev := distance3D(prev, curr)
		distToNext := distance3D(curr, next)

		timeToPrev := curr.Time.Sub(prev.Time).Seconds()
		timeToNext := next.Time.Sub(curr.Time).Seconds()
		validPrev := timeToPrev > 0
		validNext := timeToNext > 0

		turnAngle := turnAngle(prev, curr, next)
		directionOK := turnAngle <= config.MaxHairpinDegrees

		speedOK := true
		switch {
		case validPrev && validNext:
			speedFromPrev := distToPrev / timeToPrev
			speedToNext := distToNext / timeToNext
			speedOK = inRange(speedFromPrev, config.MinSpeed, maxSpeed) &&
				inRange(speedToNext, config.MinSpeed, maxSpeed)

			if speedOK {
				base := geo.Distance(prev.Orb(), next.Orb()) * 1000
				// boomerang: both legs long, base short, big turn
				if distToPrev > 120 && distToNext > 120 && base < 40 && turnAngle > 100 {
					speedOK = false
				} else if (distToPrev+distToNext)/math.Max(base, 1) > 6 && turnAngle > 90 {
					speedOK = false
				}
			}
		case validPrev:
			speedOK = inRange(distToPrev/timeToPrev, config.MinSpeed, maxSpeed)
		case validNext:
			speedOK = inRange(distToNext/timeToNext, config.MinSpeed, maxSpeed)
		default:
			speedOK = distToPrev <= config.TeleportMeters && distToNext <= config.TeleportMeters
		}

		if speedOK && directionOK {
			kept = append(kept, curr)
			continue
		}

		// Rescue only clear pauses, never geometry
		if validPrev && validNext &&
			distToPrev/timeToPrev <= config.PauseSpeed &&
			distToNext/timeToNext <= config.PauseSpeed {
			kept = append(kept, curr)
		}
	}

	return append(kept, points[len(points)-1]) // Always keep last point
}

// detectActivityType classifies the track by its P95 speed and returns the
// matching speed limit
func detectActivityType(points []profile.Point) (string, float64, float64) {
	speeds := pointSpeeds(points)
	if len(speeds) == 0 {
		return "unknown", 12.0, 0.0
	}

	sort.Float64s(speeds)
	p95 := stat.Quantile(0.95, stat.LinInterp, speeds, nil)

	switch {
	case p95 <= 8.0: // 28.8 km/h
		return "running/hiking", 12.0, p95
	case p95 <= 20.0: // 72 km/h
		return "cycling", 30.0, p95
	default: // skiing, motorsports
		return "high-speed", 50.0, p95
	}
}

// pointSpeeds computes speeds between consecutive timestamped points
func pointSpeeds(points []profile.Point) []float64 {
	var speeds []float64
	for i := 1; i < len(points); i++ {
		if points[i].Time.IsZero() || points[i-1].Time.IsZero() {
			continue
		}
		dt := points[i].Time.Sub(points[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		speed := distance3D(points[i-1], points[i]) / dt
		if speed > 0 && speed < 100 { // reasonable bounds
			speeds = append(speeds, speed)
		}
	}
	return speeds
}

// distance3D returns the meters between two points including the altitude change
func distance3D(a, b profile.Point) float64 {
	horizontal := geo.Distance(a.Orb(), b.Orb()) * 1000
	vertical := b.Altitude - a.Altitude
	return math.Hypot(horizontal, vertical)
}

// turnAngle computes the heading change at p2 in degrees
func turnAngle(p1, p2, p3 profile.Point) float64 {
	angle := math.Abs(bearing(p2, p3) - bearing(p1, p2))
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// bearing computes the initial bearing from a to b in degrees
func bearing(a, b profile.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
