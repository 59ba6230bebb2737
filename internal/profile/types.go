// Package profile turns an ordered GPS track into per-point, smoothed and
// per-kilometer activity tables.
package profile

import (
	"time"

	"github.com/paulmach/orb"
)

// Point is one raw track sample. Time is a UTC instant.
type Point struct {
	Lat      float64
	Lon      float64
	Altitude float64 // meters
	Time     time.Time
}

// Orb returns the point as an orb.Point ([lon, lat]).
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Record is the per-point row produced by Ingest.
type Record struct {
	Index     int
	Altitude  float64
	Longitude float64
	Latitude  float64

	// Pace is the speed in m/s over the interval ending at this point.
	// It is 0 for the first point and for non-positive time steps.
	Pace float64

	// TimeOfDay is the local wall-clock time. It stays in UTC when the
	// timezone could not be resolved.
	TimeOfDay time.Time
	// TimeZone is the IANA zone id, empty when unresolved.
	TimeZone string

	Elapsed      time.Duration
	Distance     float64 // cumulative, km
	VerticalGain float64 // cumulative, m
	VerticalLoss float64 // cumulative, m

	Km        int
	HourOfDay int
}

// Resolved reports whether the point's timezone was found.
func (r Record) Resolved() bool {
	return r.TimeZone != ""
}

// SmoothedRecord extends Record with the filtered series.
type SmoothedRecord struct {
	Record

	AltitudeSmooth float64
	PaceSmooth     float64
	// MinPerKm is derived from PaceSmooth; +Inf when PaceSmooth is 0.
	MinPerKm float64

	VerticalGainSmooth float64
	VerticalLossSmooth float64
}

// KilometerSummary aggregates all points of one kilometer bucket.
type KilometerSummary struct {
	Km int

	Distance  float64 // max, 2 decimals
	AltMax    float64 // max raw altitude
	AltMin    float64 // min smoothed altitude, 1 decimal
	Pace      float64 // mean, 2 decimals
	HourOfDay int     // min
	Elapsed   time.Duration

	VerticalGain       float64
	VerticalLoss       float64
	VerticalGainSmooth float64 // 1 decimal
	VerticalLossSmooth float64 // 1 decimal

	// MinPerKm is the mean minutes-per-km truncated to whole seconds, zero
	// when the mean is not a finite duration.
	MinPerKm time.Duration
	// Split is the elapsed time spent in this bucket.
	Split time.Duration
}
