package profile

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/planbiir/trailstats/internal/tz"
)

// fixedZone resolves every coordinate east of lonLimit to zone and
// everything else as open water.
type fixedZone struct {
	zone     string
	offset   time.Duration
	lonLimit float64
}

func (f fixedZone) Resolve(lat, lon float64) (string, error) {
	if lon < f.lonLimit {
		return "", tz.ErrUnresolved
	}
	return f.zone, nil
}

func (f fixedZone) ToLocal(ts time.Time, zoneID string) (time.Time, error) {
	return ts.In(time.FixedZone(zoneID, int(f.offset.Seconds()))), nil
}

func threePointTrack() []Point {
	base := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	return []Point{
		{Lat: 0, Lon: 0, Altitude: 100, Time: base},
		{Lat: 0, Lon: 0.001, Altitude: 101, Time: base.Add(60 * time.Second)},
		{Lat: 0, Lon: 0.002, Altitude: 99, Time: base.Add(120 * time.Second)},
	}
}

func TestIngestThreePoints(t *testing.T) {
	records, err := Ingest(threePointTrack(), fixedZone{zone: "Test/Plus2", offset: 2 * time.Hour, lonLimit: -1})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if d := records[2].Distance; math.Abs(d-0.2224) > 0.0001 {
		t.Errorf("expected cumulative distance ~0.2224km, got %.5f", d)
	}

	wantGain := []float64{0, 1, 1}
	wantLoss := []float64{0, 0, 2}
	for i, r := range records {
		if r.VerticalGain != wantGain[i] || r.VerticalLoss != wantLoss[i] {
			t.Errorf("record %d: gain/loss = %v/%v, expected %v/%v",
				i, r.VerticalGain, r.VerticalLoss, wantGain[i], wantLoss[i])
		}
		if r.Km != 1 {
			t.Errorf("record %d: expected km bucket 1, got %d", i, r.Km)
		}
		if r.Index != i {
			t.Errorf("record %d: index %d", i, r.Index)
		}
		if r.HourOfDay != 8 {
			t.Errorf("record %d: expected local hour 8, got %d", i, r.HourOfDay)
		}
		if r.TimeZone != "Test/Plus2" {
			t.Errorf("record %d: expected zone Test/Plus2, got %q", i, r.TimeZone)
		}
	}

	if records[0].Pace != 0 {
		t.Errorf("first point pace must be 0, got %f", records[0].Pace)
	}
	// ~111.2m in 60s
	if p := records[1].Pace; math.Abs(p-1.853) > 0.01 {
		t.Errorf("expected pace ~1.853 m/s, got %f", p)
	}

	if records[2].Elapsed != 2*time.Minute {
		t.Errorf("expected elapsed 2m, got %v", records[2].Elapsed)
	}
}

func TestIngestEmpty(t *testing.T) {
	_, err := Ingest(nil, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestUnresolvedTimezone(t *testing.T) {
	points := threePointTrack()
	// The first point sits west of the covered area.
	records, err := Ingest(points, fixedZone{zone: "Test/Plus2", offset: 2 * time.Hour, lonLimit: 0.0005})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if records[0].Resolved() {
		t.Errorf("first point should be unresolved")
	}
	if records[0].HourOfDay != 6 || records[0].TimeOfDay.Location() != time.UTC {
		t.Errorf("unresolved point should keep UTC time, got %v", records[0].TimeOfDay)
	}
	if !records[1].Resolved() || records[1].HourOfDay != 8 {
		t.Errorf("second point should resolve to local hour 8, got %d (%q)", records[1].HourOfDay, records[1].TimeZone)
	}
}

func TestIngestMonotonic(t *testing.T) {
	base := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	points := make([]Point, 500)
	for i := range points {
		points[i] = Point{
			Lat:      46.0 + float64(i)*0.0001,
			Lon:      7.0 + math.Sin(float64(i)/10)*0.001,
			Altitude: 1000 + 50*math.Sin(float64(i)/25),
			Time:     base.Add(time.Duration(i) * 5 * time.Second),
		}
	}

	records, err := Ingest(points, nil)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	for i := 1; i < len(records); i++ {
		prev, curr := records[i-1], records[i]
		if curr.Distance < prev.Distance {
			t.Fatalf("distance decreased at %d: %f -> %f", i, prev.Distance, curr.Distance)
		}
		if curr.VerticalGain < prev.VerticalGain || curr.VerticalLoss < prev.VerticalLoss {
			t.Fatalf("vertical accumulators decreased at %d", i)
		}
		if curr.Km < prev.Km {
			t.Fatalf("km bucket decreased at %d", i)
		}
	}
}

func TestIngestRepeatedTimestamp(t *testing.T) {
	base := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	points := []Point{
		{Lat: 46.0, Lon: 7.0, Time: base},
		{Lat: 46.001, Lon: 7.0, Time: base},
	}

	records, err := Ingest(points, nil)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if records[1].Pace != 0 {
		t.Errorf("expected pace 0 for a zero time step, got %f", records[1].Pace)
	}
}

func TestKilometerOf(t *testing.T) {
	tests := []struct {
		distance float64
		km       int
	}{
		{0, 1},
		{0.5, 1},
		{1.999, 2},
		{2.0, 3},
		{10.25, 11},
	}

	for _, tt := range tests {
		if got := KilometerOf(tt.distance); got != tt.km {
			t.Errorf("KilometerOf(%v) = %d, expected %d", tt.distance, got, tt.km)
		}
	}
}
