// Package geo holds the geodetic helpers used by the track pipeline.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius (IUGG) used by the haversine formula.
const EarthRadiusKm = 6371.0088

// Distance returns the great-circle distance in kilometers between two
// orb points ([lon, lat] in degrees) on a spherical Earth.
func Distance(a, b orb.Point) float64 {
	if a == b {
		return 0
	}

	lat1 := deg2rad(a.Lat())
	lat2 := deg2rad(b.Lat())
	dLat := lat2 - lat1
	dLon := deg2rad(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h a hair outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// ElevationDelta splits the altitude change from prev to curr into a gain and
// a loss. At most one of the two is non-zero.
func ElevationDelta(prev, curr float64) (gain, loss float64) {
	diff := curr - prev
	switch {
	case diff > 0:
		gain = diff
	case diff < 0:
		loss = -diff
	}
	return gain, loss
}

// Bound returns the bounding box of the given points. An empty slice yields
// the zero bound.
func Bound(points []orb.Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	return orb.MultiPoint(points).Bound()
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
