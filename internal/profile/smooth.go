package profile

import (
	"fmt"
	"math"

	"github.com/planbiir/trailstats/internal/smooth"
)

// SmoothOptions configures the smoothing stage.
type SmoothOptions struct {
	Window   int
	Order    int
	Epsilon  float64
	Strategy smooth.Strategy
}

// DefaultSmoothOptions returns a 51-sample cubic filter and the
// reset-each-sample vertical strategy with no dead band.
func DefaultSmoothOptions() SmoothOptions {
	return SmoothOptions{
		Window:   smooth.DefaultWindow,
		Order:    smooth.DefaultOrder,
		Strategy: smooth.ResetEachSample,
	}
}

// Smooth filters altitude and pace and derives minutes-per-km and the
// smoothed vertical gain/loss. It fails with smooth.ErrInsufficientData when
// the track is shorter than the window.
func Smooth(records []Record, opts SmoothOptions) ([]SmoothedRecord, error) {
	filter, err := smooth.NewFilter(opts.Window, opts.Order)
	if err != nil {
		return nil, err
	}

	altitudes := make([]float64, len(records))
	paces := make([]float64, len(records))
	for i, r := range records {
		altitudes[i] = r.Altitude
		paces[i] = r.Pace
	}

	altSmooth, err := filter.Apply(altitudes)
	if err != nil {
		return nil, fmt.Errorf("altitude: %w", err)
	}
	paceSmooth, err := filter.Apply(paces)
	if err != nil {
		return nil, fmt.Errorf("pace: %w", err)
	}

	return assemble(records, altSmooth, paceSmooth, opts), nil
}

// PassThrough builds smoothed records from the raw series. It is used for
// tracks too short for any filter window.
func PassThrough(records []Record, opts SmoothOptions) []SmoothedRecord {
	altitudes := make([]float64, len(records))
	paces := make([]float64, len(records))
	for i, r := range records {
		altitudes[i] = r.Altitude
		paces[i] = r.Pace
	}
	return assemble(records, altitudes, paces, opts)
}

// MinutesPerKm converts a speed in m/s into minutes per kilometer.
func MinutesPerKm(pace float64) float64 {
	if pace == 0 {
		return math.Inf(1)
	}
	return 60 / (3.6 * pace)
}

func assemble(records []Record, altSmooth, paceSmooth []float64, opts SmoothOptions) []SmoothedRecord {
	gain, loss := smooth.AdjustVertical(altSmooth, opts.Epsilon, opts.Strategy)

	out := make([]SmoothedRecord, len(records))
	for i, r := range records {
		out[i] = SmoothedRecord{
			Record:             r,
			AltitudeSmooth:     altSmooth[i],
			PaceSmooth:         paceSmooth[i],
			MinPerKm:           MinutesPerKm(paceSmooth[i]),
			VerticalGainSmooth: gain[i],
			VerticalLossSmooth: loss[i],
		}
	}
	return out
}
