package profile

import (
	"fmt"
	"math"
	"time"

	"github.com/planbiir/trailstats/internal/geo"
)

// ZoneResolver finds the timezone of a coordinate and converts UTC instants
// into it. *tz.Resolver satisfies it.
type ZoneResolver interface {
	Resolve(lat, lon float64) (string, error)
	ToLocal(ts time.Time, zoneID string) (time.Time, error)
}

// Ingest walks the points in order and accumulates distance, vertical gain
// and loss, local time and pace. Every delta is taken against the
// immediately preceding point; the first point is compared with itself.
//
// Timezone failures are recovered per point: the record keeps an empty
// TimeZone and a UTC TimeOfDay. A nil resolver leaves every point unresolved.
func Ingest(points []Point, zones ZoneResolver) ([]Record, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no track points", ErrInvalidInput)
	}

	start := points[0].Time
	preceding := points[0]

	var distance, gain, loss float64
	records := make([]Record, len(points))

	for i, point := range points {
		step := geo.Distance(preceding.Orb(), point.Orb())
		distance += step

		g, l := geo.ElevationDelta(preceding.Altitude, point.Altitude)
		gain += g
		loss += l

		zone, local := localTime(zones, point)

		records[i] = Record{
			Index:        i,
			Altitude:     point.Altitude,
			Longitude:    point.Lon,
			Latitude:     point.Lat,
			Pace:         pace(step, point.Time.Sub(preceding.Time)),
			TimeOfDay:    local,
			TimeZone:     zone,
			Elapsed:      point.Time.Sub(start),
			Distance:     distance,
			VerticalGain: gain,
			VerticalLoss: loss,
			Km:           KilometerOf(distance),
			HourOfDay:    local.Hour(),
		}

		preceding = point
	}

	return records, nil
}

// KilometerOf returns the 1-indexed kilometer bucket for a cumulative
// distance in km, so the first meters belong to bucket 1.
func KilometerOf(distance float64) int {
	return int(math.Floor(distance)) + 1
}

// pace converts a step in km over dt into m/s.
func pace(stepKm float64, dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return stepKm * 1000 / dt.Seconds()
}

func localTime(zones ZoneResolver, p Point) (string, time.Time) {
	utc := p.Time.UTC()
	if zones == nil {
		return "", utc
	}

	zone, err := zones.Resolve(p.Lat, p.Lon)
	if err != nil {
		return "", utc
	}

	local, err := zones.ToLocal(p.Time, zone)
	if err != nil {
		return "", utc
	}

	return zone, local
}
