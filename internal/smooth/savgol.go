// Package smooth implements the noise filters applied to altitude and pace
// series: a Savitzky-Golay local polynomial filter and the cumulative
// vertical gain/loss derivation.
package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Default filter shape used for altitude and pace.
const (
	DefaultWindow = 51
	DefaultOrder  = 3
)

// Filter is a Savitzky-Golay filter of a fixed window and polynomial order.
type Filter struct {
	window int
	order  int

	// weights[k] evaluates the fitted polynomial at offset k-half from the
	// window center.
	weights [][]float64
}

// NewFilter precomputes the least-squares weights for an odd window larger
// than the polynomial order.
func NewFilter(window, order int) (*Filter, error) {
	if err := validate(window, order); err != nil {
		return nil, err
	}

	half := window / 2
	vander := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		x := float64(i - half)
		p := 1.0
		for j := 0; j <= order; j++ {
			vander.Set(i, j, p)
			p *= x
		}
	}

	ones := make([]float64, window)
	for i := range ones {
		ones[i] = 1
	}

	// Least-squares solve against the identity gives the pseudo-inverse,
	// mapping window samples to polynomial coefficients.
	var pinv mat.Dense
	if err := pinv.Solve(vander, mat.NewDiagDense(window, ones)); err != nil {
		return nil, fmt.Errorf("%w: window=%d order=%d: %v", ErrInvalidWindow, window, order, err)
	}

	weights := make([][]float64, window)
	for k := range weights {
		x := float64(k - half)
		w := make([]float64, window)
		p := 1.0
		for j := 0; j <= order; j++ {
			for c := 0; c < window; c++ {
				w[c] += p * pinv.At(j, c)
			}
			p *= x
		}
		weights[k] = w
	}

	return &Filter{window: window, order: order, weights: weights}, nil
}

// Window returns the number of samples the filter spans.
func (f *Filter) Window() int { return f.window }

// Order returns the polynomial order.
func (f *Filter) Order() int { return f.order }

// Apply smooths values. Interior samples use the centered fit; the first and
// last window/2 samples are evaluated on the polynomial fitted to the first
// and last full window respectively.
func (f *Filter) Apply(values []float64) ([]float64, error) {
	n := len(values)
	if n < f.window {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrInsufficientData, n, f.window)
	}

	half := f.window / 2
	out := make([]float64, n)

	for i := range values {
		start, k := i-half, half
		switch {
		case i < half:
			start, k = 0, i
		case i >= n-half:
			start, k = n-f.window, i-(n-f.window)
		}

		var sum float64
		for c, w := range f.weights[k] {
			sum += w * values[start+c]
		}
		out[i] = sum
	}

	return out, nil
}

// SavitzkyGolay is a one-shot helper around NewFilter and Apply.
func SavitzkyGolay(values []float64, window, order int) ([]float64, error) {
	f, err := NewFilter(window, order)
	if err != nil {
		return nil, err
	}
	return f.Apply(values)
}

// FitWindow returns the largest usable odd window not above want for n
// samples, or false when no window longer than order fits.
func FitWindow(n, want, order int) (int, bool) {
	w := min(want, n)
	if w%2 == 0 {
		w--
	}
	if w <= order || w < 1 {
		return 0, false
	}
	return w, true
}

func validate(window, order int) error {
	switch {
	case window < 1:
		return fmt.Errorf("%w: window %d must be positive", ErrInvalidWindow, window)
	case window%2 == 0:
		return fmt.Errorf("%w: window %d must be odd", ErrInvalidWindow, window)
	case order < 0:
		return fmt.Errorf("%w: order %d must not be negative", ErrInvalidWindow, order)
	case order >= window:
		return fmt.Errorf("%w: order %d must be less than window %d", ErrInvalidWindow, order, window)
	}
	return nil
}
