package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/trailstats/internal/gpx"
	"github.com/planbiir/trailstats/internal/profile"
)

const activityExport = `Activity ID,Activity Date,Activity Type,Distance,Moving Time,Elapsed Time,Max Speed,Elevation Gain,Max Grade
1,"Jan 5, 2021, 6:30:00 PM",Run,10.2,3000,3100,4.1,120,8
2,"Feb 5, 2021, 6:30:00 PM",Run,12.0,3600,3700,4.0,220,10
3,"Mar 5, 2021, 6:30:00 PM",Ride,40.5,5400,6000,12.0,600,9
4,"Mar 6, 2021, 6:30:00 PM",Swim,2,1800,1800,1,0,0
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TRAILSTATS_LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestActivitiesCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "activities.csv")
	if err := os.WriteFile(input, []byte(activityExport), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "activities", "-i", input, "--group", "year", "--out", dir, "--trend", "distance:elevation", "--type", "running")
	if err != nil {
		t.Fatalf("activities failed: %v\n%s", err, out)
	}

	for _, want := range []string{"running", "cycling", "elevation = "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Swim") {
		t.Errorf("unlisted activity type should be dropped:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "activities_cum_by_year.csv"))
	if err != nil {
		t.Fatalf("cumulative file not written: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 4 {
		t.Errorf("cumulative file has %d lines, want header + 3", len(lines))
	}
}

func TestActivitiesCommandUnknownGroup(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "activities.csv")
	if err := os.WriteFile(input, []byte(activityExport), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "activities", "-i", input, "--group", "month", "--dry-run"); err == nil {
		t.Error("expected error for unknown group")
	}
}

func TestTrackCommandRequiresInput(t *testing.T) {
	if _, err := execute(t, "track"); err == nil {
		t.Error("expected error without --input")
	}
}

func TestTrackCommandFillFromNeedsOneInput(t *testing.T) {
	_, err := execute(t, "track", "-i", "a.gpx", "-i", "b.gpx", "--fill-from", "c.gpx")
	if err == nil || !strings.Contains(err.Error(), "exactly one input") {
		t.Errorf("error = %v, want fill-from input count error", err)
	}
}

func TestTrackCommandRejectsDuplicateNames(t *testing.T) {
	a := filepath.Join("a", "run.gpx")
	b := filepath.Join("b", "run.gpx")

	_, err := execute(t, "track", "-i", a, "-i", b)
	if err == nil || !strings.Contains(err.Error(), "run_*.csv") {
		t.Errorf("error = %v, want duplicate output name error", err)
	}
}

func TestUniqueBases(t *testing.T) {
	if err := uniqueBases([]string{"a/run.gpx", "a/ride.gpx", "b/hike.gpx"}); err != nil {
		t.Errorf("distinct names rejected: %v", err)
	}
	if err := uniqueBases([]string{"a/run.gpx", "b/run.gpx"}); err == nil {
		t.Error("expected error for shared base name")
	}
}

func TestTrackCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the timezone index")
	}

	dir := t.TempDir()
	input := filepath.Join(dir, "morning.gpx")
	start := time.Date(2023, 7, 1, 6, 0, 0, 0, time.UTC)
	points := make([]profile.Point, 150)
	for i := range points {
		points[i] = profile.Point{
			Lat:      46.0 + float64(i)*0.0001,
			Lon:      7.5,
			Altitude: 500 + float64(i),
			Time:     start.Add(time.Duration(i) * 4 * time.Second),
		}
	}
	source := &gogpx.GPX{
		Name:   "Morning run",
		Tracks: []gogpx.GPXTrack{{Name: "Ridge loop", Type: "running"}},
	}
	if err := gpx.Write(input, source, points); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	out, err := execute(t, "track", "-i", input, "--out", outDir, "--geojson", "--stats", "--write-gpx")
	if err != nil {
		t.Fatalf("track failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "morning.gpx") || !strings.Contains(out, "Track Statistics") {
		t.Errorf("unexpected output:\n%s", out)
	}

	for _, name := range []string{"morning_records.csv", "morning_smoothed.csv", "morning_km.csv", "morning.geojson"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	written, err := gpx.ParseFile(filepath.Join(dir, "morning_cleaned.gpx"))
	if err != nil {
		t.Fatalf("cleaned GPX not readable: %v", err)
	}
	if written.Name != "Morning run" || written.Tracks[0].Name != "Ridge loop" {
		t.Errorf("metadata not carried over: name %q, track %q", written.Name, written.Tracks[0].Name)
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("warn", false); err != nil {
		t.Errorf("newLogger(warn) error = %v", err)
	}
	if _, err := newLogger("loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := newLogger("loud", true); err != nil {
		t.Errorf("verbose logger should ignore the level, got %v", err)
	}
}

func TestTrackBase(t *testing.T) {
	tests := map[string]string{
		"morning.gpx":          "morning",
		"/tmp/runs/My Run.gpx": "My Run",
		"noext":                "noext",
		"dir.v2/track.tar.gpx": "track.tar",
	}
	for in, want := range tests {
		if got := trackBase(in); got != want {
			t.Errorf("trackBase(%q) = %q, want %q", in, got, want)
		}
	}
}
