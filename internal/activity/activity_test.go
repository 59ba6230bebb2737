package activity

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const export = `Activity ID,Activity Date,Activity Name,Activity Type,Elapsed Time,Distance,Max Speed,Moving Time,Elevation Gain,Max Grade,Elapsed Time,Distance
3,"Mar 3, 2021, 7:00:00 AM",Hill,Run,3700,"10,5",4.2,3600,250.04,12.34,3700.0,10500.0
1,"Jan 5, 2021, 6:30:00 PM",Commute,Ride,1900,20,11.1,1800,100,5,1900.0,20000.0
2,"Feb 1, 2021, 9:15:00 AM",Swim,Swim,1800,2,1.0,1700,0,0,1800.0,2000.0
4,"Dec 31, 2021, 8:00:00 AM",Manual,Run,,5,,0,,,,
5,"Jan 2, 2022, 8:00:00 AM",New year,Run,1500,5,3.9,1500,40,6,1500.0,5000.0
`

var types = map[string]string{"Run": "running", "Ride": "cycling", "Hike": "hiking"}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLoad(t *testing.T) {
	rows, err := Load(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("Load() rows = %d, want 5", len(rows))
	}

	first := rows[0]
	if first.ID != "3" || first.Type != "Run" {
		t.Errorf("first row = %+v", first)
	}
	if float64(first.Distance) != 10.5 {
		t.Errorf("decimal comma distance = %v, want 10.5", first.Distance)
	}
	if float64(first.ElapsedTime) != 3700 {
		t.Errorf("elapsed time = %v, want first occurrence 3700", first.ElapsedTime)
	}
	want := time.Date(2021, 3, 3, 7, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Errorf("date = %v, want %v", first.Date.Time, want)
	}

	manual := rows[3]
	if manual.Elevation != 0 || manual.MaxSpeed != 0 || manual.ElapsedTime != 0 {
		t.Errorf("empty cells should be zero, got %+v", manual)
	}
}

func TestLoadEmpty(t *testing.T) {
	rows, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Load() rows = %d, want 0", len(rows))
	}
}

func TestLoadInvalidNumber(t *testing.T) {
	bad := "Activity ID,Activity Date,Activity Type,Distance\n1,2021-01-01,Run,ten\n"
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Error("expected error for non-numeric distance")
	}
}

func TestPrepare(t *testing.T) {
	rows, err := Load(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	acts := Prepare(rows, types)

	if len(acts) != 4 {
		t.Fatalf("Prepare() = %d activities, want 4 (swim dropped)", len(acts))
	}
	wantOrder := []string{"1", "3", "4", "5"}
	for i, id := range wantOrder {
		if acts[i].ID != id {
			t.Errorf("acts[%d].ID = %s, want %s", i, acts[i].ID, id)
		}
	}

	ride := acts[0]
	if ride.Type != "cycling" || ride.Year != 2021 {
		t.Errorf("ride = %+v", ride)
	}
	// 1000*20/1800 = 11.11
	if !approx(ride.AvgSpeed, 11.1) {
		t.Errorf("ride AvgSpeed = %v, want 11.1", ride.AvgSpeed)
	}
	if ride.MovingTime != 30*time.Minute {
		t.Errorf("ride MovingTime = %v, want 30m", ride.MovingTime)
	}

	run := acts[1]
	if !approx(run.Elevation, 250.0) {
		t.Errorf("run Elevation = %v, want 250.0", run.Elevation)
	}
	// 10.5 + 250.04/100 = 13.0004
	if !approx(run.KmEffort, 13.0) {
		t.Errorf("run KmEffort = %v, want 13.0", run.KmEffort)
	}
	if !approx(run.MaxIncline, 12.3) {
		t.Errorf("run MaxIncline = %v, want 12.3", run.MaxIncline)
	}
	// 250/(10*10.5) = 2.38
	if !approx(run.AvgIncline, 2.4) {
		t.Errorf("run AvgIncline = %v, want 2.4", run.AvgIncline)
	}

	manual := acts[2]
	if manual.AvgSpeed != 0 {
		t.Errorf("zero moving time should give AvgSpeed 0, got %v", manual.AvgSpeed)
	}
	if manual.AvgIncline != 0 || manual.KmEffort != 5 {
		t.Errorf("manual = %+v", manual)
	}
}

func TestCumulative(t *testing.T) {
	rows, _ := Load(strings.NewReader(export))
	acts := Prepare(rows, types)

	t.Run("by type", func(t *testing.T) {
		cum, err := Cumulative(acts, GroupType)
		if err != nil {
			t.Fatalf("Cumulative() error = %v", err)
		}
		// cycling 20; running 10.5, 15.5, 20.5
		want := []float64{20, 10.5, 15.5, 20.5}
		for i, w := range want {
			if !approx(cum[i].DistanceCum, w) {
				t.Errorf("cum[%d].DistanceCum = %v, want %v", i, cum[i].DistanceCum, w)
			}
			if cum[i].DayOfYear != 0 {
				t.Errorf("cum[%d].DayOfYear = %d, want 0 for type grouping", i, cum[i].DayOfYear)
			}
		}
		if cum[3].MovingTimeCum != 85*time.Minute {
			t.Errorf("running MovingTimeCum = %v, want 1h25m", cum[3].MovingTimeCum)
		}
	})

	t.Run("by year", func(t *testing.T) {
		cum, err := Cumulative(acts, GroupYear)
		if err != nil {
			t.Fatalf("Cumulative() error = %v", err)
		}
		// 2021: 20, 30.5, 35.5; 2022: 5
		want := []float64{20, 30.5, 35.5, 5}
		for i, w := range want {
			if !approx(cum[i].DistanceCum, w) {
				t.Errorf("cum[%d].DistanceCum = %v, want %v", i, cum[i].DistanceCum, w)
			}
		}
		if cum[2].DayOfYear != 365 || cum[3].DayOfYear != 2 {
			t.Errorf("DayOfYear = %d, %d, want 365, 2", cum[2].DayOfYear, cum[3].DayOfYear)
		}
		if !approx(cum[2].ElevationCum, 350.0) {
			t.Errorf("ElevationCum = %v, want 350", cum[2].ElevationCum)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := Cumulative(acts, "month")
		if !errors.Is(err, ErrUnknownGroup) {
			t.Errorf("Cumulative() error = %v, want ErrUnknownGroup", err)
		}
	})
}

func TestTotals(t *testing.T) {
	rows, _ := Load(strings.NewReader(export))
	totals := Totals(Prepare(rows, types))

	if len(totals) != 2 {
		t.Fatalf("Totals() = %d types, want 2", len(totals))
	}
	if totals[0].Type != "cycling" || totals[1].Type != "running" {
		t.Errorf("Totals() order = %s, %s", totals[0].Type, totals[1].Type)
	}
	if totals[1].Count != 3 || !approx(totals[1].Distance, 20.5) {
		t.Errorf("running total = %+v", totals[1])
	}
}

func TestFitTrend(t *testing.T) {
	acts := []Activity{
		{Type: "running", Distance: 5, Elevation: 60},
		{Type: "running", Distance: 10, Elevation: 110},
		{Type: "running", Distance: 20, Elevation: 210},
		{Type: "cycling", Distance: 50, Elevation: 0},
	}

	trend, err := FitTrend(acts, "running", "distance", "elevation")
	if err != nil {
		t.Fatalf("FitTrend() error = %v", err)
	}
	if math.Abs(trend.Slope-10) > 1e-9 || math.Abs(trend.Intercept-10) > 1e-9 {
		t.Errorf("FitTrend() = %+v, want slope 10 intercept 10", trend)
	}
	if trend.N != 3 {
		t.Errorf("FitTrend() N = %d, want 3", trend.N)
	}

	if _, err := FitTrend(acts, "running", "distance", "cadence"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("unknown column error = %v", err)
	}
	if _, err := FitTrend(acts, "cycling", "distance", "elevation"); !errors.Is(err, ErrTooFewActivities) {
		t.Errorf("single activity error = %v", err)
	}
}
