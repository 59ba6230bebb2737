package gpx

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/trailstats/internal/profile"
)

const twoSegments = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
	<trk>
		<name>Test Track</name>
		<trkseg>
			<trkpt lat="46.0" lon="7.0">
				<ele>1000</ele>
				<time>2025-01-01T10:00:00Z</time>
			</trkpt>
			<trkpt lat="46.001" lon="7.001">
				<ele>1005</ele>
				<time>2025-01-01T10:01:00Z</time>
			</trkpt>
		</trkseg>
		<trkseg>
			<trkpt lat="46.002" lon="7.002">
				<time>2025-01-01T10:02:00Z</time>
			</trkpt>
		</trkseg>
	</trk>
</gpx>`

func TestParseReader(t *testing.T) {
	gpxData, err := ParseReader(strings.NewReader(twoSegments))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if len(gpxData.Tracks) != 1 {
		t.Errorf("Expected 1 track, got %d", len(gpxData.Tracks))
	}

	points, err := FirstSegment(gpxData)
	if err != nil {
		t.Fatalf("FirstSegment failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("Expected 2 points in first segment, got %d", len(points))
	}

	point := points[0]
	if point.Lat != 46.0 || point.Lon != 7.0 {
		t.Errorf("Expected lat=46.0, lon=7.0, got lat=%f, lon=%f", point.Lat, point.Lon)
	}
	if point.Altitude != 1000.0 {
		t.Errorf("Expected altitude=1000.0, got %f", point.Altitude)
	}
	if !point.Time.Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected time %v", point.Time)
	}
}

func TestParseReaderInvalid(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("not xml")); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestFlattenPoints(t *testing.T) {
	gpxData, err := ParseReader(strings.NewReader(twoSegments))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	points := FlattenPoints(gpxData)
	if len(points) != 3 {
		t.Fatalf("Expected 3 flattened points, got %d", len(points))
	}

	// Missing elevation reads as zero
	if points[2].Altitude != 0 {
		t.Errorf("Expected altitude 0 for a point without <ele>, got %f", points[2].Altitude)
	}
}

func TestFirstSegmentEmpty(t *testing.T) {
	_, err := FirstSegment(&gogpx.GPX{})
	if !errors.Is(err, ErrNoTrack) {
		t.Errorf("expected ErrNoTrack, got %v", err)
	}
}

func TestStats(t *testing.T) {
	gpxData, err := ParseReader(strings.NewReader(twoSegments))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	s := Stats(gpxData)

	if s.Points != 3 {
		t.Errorf("Expected 3 points, got %d", s.Points)
	}
	if s.Tracks != 1 {
		t.Errorf("Expected 1 track, got %d", s.Tracks)
	}
	if s.Segments != 2 {
		t.Errorf("Expected 2 segments, got %d", s.Segments)
	}
	if s.Duration != 2*time.Minute {
		t.Errorf("Expected 2 minutes duration, got %v", s.Duration)
	}
	// two diagonal steps of ~0.136km
	if s.Distance < 0.25 || s.Distance > 0.30 {
		t.Errorf("Expected ~0.27km, got %f", s.Distance)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	points := []profile.Point{
		{Lat: 46.0, Lon: 7.0, Altitude: 1000, Time: base},
		{Lat: 46.002, Lon: 7.002, Altitude: 1010, Time: base.Add(time.Minute)},
	}

	source, err := ParseReader(strings.NewReader(twoSegments))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cleaned.gpx")
	if err := Write(path, source, points); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reread, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if reread.Tracks[0].Name != "Test Track" {
		t.Errorf("Expected track name to be preserved, got %q", reread.Tracks[0].Name)
	}

	got, err := FirstSegment(reread)
	if err != nil {
		t.Fatalf("FirstSegment failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 points after round trip, got %d", len(got))
	}
	if got[1].Altitude != 1010 || !got[1].Time.Equal(points[1].Time) {
		t.Errorf("Point not preserved: %+v", got[1])
	}
}

func TestWriteToWriterWithoutSource(t *testing.T) {
	var buf bytes.Buffer
	err := WriteToWriter(&buf, nil, []profile.Point{{Lat: 1, Lon: 2, Time: time.Unix(0, 0).UTC()}})
	if err != nil {
		t.Fatalf("WriteToWriter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "trkpt") {
		t.Errorf("expected a track point in the output")
	}
}
