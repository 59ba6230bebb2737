package smooth

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how AdjustVertical moves its reference altitude.
type Strategy int

const (
	// ResetEachSample moves the reference to every sample, so epsilon only
	// suppresses single-step noise. This is the historical behaviour.
	ResetEachSample Strategy = iota
	// DeadBand keeps the reference until a step beyond epsilon is counted,
	// so a run of small steps in one direction eventually accumulates.
	DeadBand
)

func (s Strategy) String() string {
	switch s {
	case ResetEachSample:
		return "reset-each-sample"
	case DeadBand:
		return "dead-band"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the names produced by Strategy.String.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reset-each-sample":
		return ResetEachSample, nil
	case "dead-band", "deadband":
		return DeadBand, nil
	default:
		return 0, fmt.Errorf("unknown vertical strategy: %s", s)
	}
}

// AdjustVertical walks the altitude series once and returns the running
// vertical gain and loss after each sample. Both series are non-decreasing.
// A negative epsilon is treated as zero.
func AdjustVertical(altitudes []float64, epsilon float64, strategy Strategy) (gain, loss []float64) {
	if len(altitudes) == 0 {
		return nil, nil
	}
	epsilon = math.Max(epsilon, 0)

	gain = make([]float64, len(altitudes))
	loss = make([]float64, len(altitudes))

	var countPos, countNeg float64
	ref := altitudes[0]

	for i, alt := range altitudes {
		diff := alt - ref
		triggered := true

		switch {
		case diff > epsilon:
			countPos += diff
		case diff < -epsilon:
			countNeg -= diff
		default:
			triggered = false
		}

		gain[i] = countPos
		loss[i] = countNeg

		if strategy == ResetEachSample || triggered {
			ref = alt
		}
	}

	return gain, loss
}
