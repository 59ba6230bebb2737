package activity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Activity is one prepared activity.
type Activity struct {
	ID          string
	Date        time.Time
	Year        int
	Type        string
	Distance    float64 // km
	MovingTime  time.Duration
	ElapsedTime time.Duration
	MaxSpeed    float64
	Elevation   float64 // m gained
	MaxIncline  float64 // %
	AvgSpeed    float64 // m/s
	KmEffort    float64 // km plus 100 m of ascent per km
	AvgIncline  float64 // %
}

// Prepare derives the report columns, keeps only the activity types listed
// in types and renames them, and sorts the result by date.
func Prepare(rows []Row, types map[string]string) []Activity {
	acts := make([]Activity, 0, len(rows))
	for _, row := range rows {
		name, ok := types[row.Type]
		if !ok {
			continue
		}

		distance := float64(row.Distance)
		moving := float64(row.MovingTime)
		elevation := round(float64(row.Elevation), 1)

		a := Activity{
			ID:          row.ID,
			Date:        row.Date.Time,
			Year:        row.Date.Year(),
			Type:        name,
			Distance:    distance,
			MovingTime:  seconds(moving),
			ElapsedTime: seconds(float64(row.ElapsedTime)),
			MaxSpeed:    float64(row.MaxSpeed),
			Elevation:   elevation,
			MaxIncline:  round(float64(row.MaxGrade), 1),
			KmEffort:    round(distance+float64(row.Elevation)/100, 2),
		}
		if moving > 0 {
			a.AvgSpeed = round(1000*distance/moving, 1)
		}
		if distance > 0 {
			a.AvgIncline = round(elevation/(10*distance), 1)
		}
		acts = append(acts, a)
	}

	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Date.Before(acts[j].Date)
	})
	return acts
}

// Group names accepted by Cumulative.
const (
	GroupType = "type"
	GroupYear = "year"
)

// CumulativeActivity carries running totals within its group.
type CumulativeActivity struct {
	Activity
	DistanceCum    float64
	ElevationCum   float64
	KmEffortCum    float64
	MovingTimeCum  time.Duration
	ElapsedTimeCum time.Duration
	DayOfYear      int // set when grouped by year
}

type totals struct {
	distance, elevation, effort float64
	moving, elapsed             time.Duration
}

// Cumulative adds running sums per group in the order of acts, which
// Prepare leaves sorted by date.
func Cumulative(acts []Activity, group string) ([]CumulativeActivity, error) {
	var key func(Activity) string
	switch group {
	case GroupType:
		key = func(a Activity) string { return a.Type }
	case GroupYear:
		key = func(a Activity) string { return fmt.Sprint(a.Year) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}

	running := make(map[string]*totals)
	out := make([]CumulativeActivity, len(acts))
	for i, a := range acts {
		k := key(a)
		t, ok := running[k]
		if !ok {
			t = &totals{}
			running[k] = t
		}
		t.distance += a.Distance
		t.elevation += a.Elevation
		t.effort += a.KmEffort
		t.moving += a.MovingTime
		t.elapsed += a.ElapsedTime

		out[i] = CumulativeActivity{
			Activity:       a,
			DistanceCum:    t.distance,
			ElevationCum:   t.elevation,
			KmEffortCum:    t.effort,
			MovingTimeCum:  t.moving,
			ElapsedTimeCum: t.elapsed,
		}
		if group == GroupYear {
			out[i].DayOfYear = a.Date.YearDay()
		}
	}
	return out, nil
}

// Total summarises one activity type.
type Total struct {
	Type       string
	Count      int
	Distance   float64
	Elevation  float64
	MovingTime time.Duration
}

// Totals returns per-type totals ordered by type name.
func Totals(acts []Activity) []Total {
	byType := make(map[string]*Total)
	for _, a := range acts {
		t, ok := byType[a.Type]
		if !ok {
			t = &Total{Type: a.Type}
			byType[a.Type] = t
		}
		t.Count++
		t.Distance += a.Distance
		t.Elevation += a.Elevation
		t.MovingTime += a.MovingTime
	}

	out := make([]Total, 0, len(byType))
	for _, t := range byType {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Columns usable in a Trend.
var columns = map[string]func(Activity) float64{
	"distance":     func(a Activity) float64 { return a.Distance },
	"elevation":    func(a Activity) float64 { return a.Elevation },
	"km_effort":    func(a Activity) float64 { return a.KmEffort },
	"avg_speed":    func(a Activity) float64 { return a.AvgSpeed },
	"max_speed":    func(a Activity) float64 { return a.MaxSpeed },
	"avg_incline":  func(a Activity) float64 { return a.AvgIncline },
	"max_incline":  func(a Activity) float64 { return a.MaxIncline },
	"moving_time":  func(a Activity) float64 { return a.MovingTime.Minutes() },
	"elapsed_time": func(a Activity) float64 { return a.ElapsedTime.Minutes() },
}

// Trend fits y = Intercept + Slope*x over the activities of one type.
// Time columns are in minutes.
type Trend struct {
	Intercept float64
	Slope     float64
	N         int
}

// FitTrend returns the least-squares line of column y against column x for
// activities of the given type. An empty type uses every activity.
func FitTrend(acts []Activity, activityType, x, y string) (Trend, error) {
	fx, ok := columns[x]
	if !ok {
		return Trend{}, fmt.Errorf("%w: %q", ErrUnknownColumn, x)
	}
	fy, ok := columns[y]
	if !ok {
		return Trend{}, fmt.Errorf("%w: %q", ErrUnknownColumn, y)
	}

	var xs, ys []float64
	for _, a := range acts {
		if activityType != "" && a.Type != activityType {
			continue
		}
		xs = append(xs, fx(a))
		ys = append(ys, fy(a))
	}
	if len(xs) < 2 {
		return Trend{}, fmt.Errorf("%w: %d", ErrTooFewActivities, len(xs))
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Trend{Intercept: alpha, Slope: beta, N: len(xs)}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s)) * time.Second
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
