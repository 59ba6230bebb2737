package profile

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

type bucket struct {
	summary  KilometerSummary
	paces    []float64
	minPerKm []float64
}

// Aggregate groups smoothed records by kilometer bucket and reduces each
// field. Buckets without points are not emitted. Split is the difference of
// consecutive maximum elapsed times; the first bucket's split is its own
// maximum elapsed time.
func Aggregate(records []SmoothedRecord) []KilometerSummary {
	buckets := make(map[int]*bucket)

	for _, r := range records {
		b, ok := buckets[r.Km]
		if !ok {
			b = &bucket{summary: KilometerSummary{
				Km:        r.Km,
				Distance:  r.Distance,
				AltMax:    r.Altitude,
				AltMin:    r.AltitudeSmooth,
				HourOfDay: r.HourOfDay,
				Elapsed:   r.Elapsed,
			}}
			buckets[r.Km] = b
		}

		s := &b.summary
		s.Distance = math.Max(s.Distance, r.Distance)
		s.AltMax = math.Max(s.AltMax, r.Altitude)
		s.AltMin = math.Min(s.AltMin, r.AltitudeSmooth)
		s.HourOfDay = min(s.HourOfDay, r.HourOfDay)
		s.Elapsed = max(s.Elapsed, r.Elapsed)
		s.VerticalGain = math.Max(s.VerticalGain, r.VerticalGain)
		s.VerticalLoss = math.Max(s.VerticalLoss, r.VerticalLoss)
		s.VerticalGainSmooth = math.Max(s.VerticalGainSmooth, r.VerticalGainSmooth)
		s.VerticalLossSmooth = math.Max(s.VerticalLossSmooth, r.VerticalLossSmooth)

		b.paces = append(b.paces, r.Pace)
		b.minPerKm = append(b.minPerKm, r.MinPerKm)
	}

	kms := make([]int, 0, len(buckets))
	for km := range buckets {
		kms = append(kms, km)
	}
	sort.Ints(kms)

	out := make([]KilometerSummary, 0, len(kms))
	var previous time.Duration

	for i, km := range kms {
		b := buckets[km]
		s := b.summary

		s.Distance = round(s.Distance, 2)
		s.Pace = round(stat.Mean(b.paces, nil), 2)
		s.AltMin = round(s.AltMin, 1)
		s.VerticalGainSmooth = round(s.VerticalGainSmooth, 1)
		s.VerticalLossSmooth = round(s.VerticalLossSmooth, 1)
		s.MinPerKm = minutesToDuration(stat.Mean(b.minPerKm, nil))

		s.Split = s.Elapsed
		if i > 0 {
			s.Split = s.Elapsed - previous
		}
		previous = s.Elapsed

		out = append(out, s)
	}

	return out
}

// maxDurationSeconds keeps the float to Duration conversion in range.
const maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))

func minutesToDuration(minutes float64) time.Duration {
	secs := math.Trunc(minutes * 60)
	if math.IsNaN(secs) || math.Abs(secs) > maxDurationSeconds {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// round rounds half to even at the given number of decimals.
func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.RoundToEven(v*p) / p
}
