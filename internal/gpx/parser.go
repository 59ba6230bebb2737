// Package gpx reads GPS-exchange files into ordered track points and writes
// filtered tracks back out.
package gpx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gogpx "github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/trailstats/internal/geo"
	"github.com/planbiir/trailstats/internal/profile"
)

// ErrNoTrack is returned when a file has no track segment with points.
var ErrNoTrack = errors.New("no track points")

// ParseFile reads and parses a GPX file.
func ParseFile(filename string) (*gogpx.GPX, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return ParseReader(file)
}

// ParseReader parses GPX from an io.Reader.
func ParseReader(r io.Reader) (*gogpx.GPX, error) {
	g, err := gogpx.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	return g, nil
}

// FirstSegment returns the points of the first segment of the first track,
// which is what a single recorded activity contains.
func FirstSegment(g *gogpx.GPX) ([]profile.Point, error) {
	if len(g.Tracks) == 0 || len(g.Tracks[0].Segments) == 0 || len(g.Tracks[0].Segments[0].Points) == 0 {
		return nil, ErrNoTrack
	}
	return convert(g.Tracks[0].Segments[0].Points), nil
}

// FlattenPoints returns all points from all tracks and segments in order.
func FlattenPoints(g *gogpx.GPX) []profile.Point {
	var points []profile.Point
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			points = append(points, convert(segment.Points)...)
		}
	}
	return points
}

// Summary holds basic statistics about a GPX file.
type Summary struct {
	Points   int           `json:"points"`
	Tracks   int           `json:"tracks"`
	Segments int           `json:"segments"`
	Duration time.Duration `json:"duration"`
	Distance float64       `json:"distance_km"`
}

// Stats returns basic statistics about the GPX data.
func Stats(g *gogpx.GPX) Summary {
	points := FlattenPoints(g)
	s := Summary{
		Points: len(points),
		Tracks: len(g.Tracks),
	}

	for _, track := range g.Tracks {
		s.Segments += len(track.Segments)
	}

	if len(points) >= 2 {
		s.Duration = points[len(points)-1].Time.Sub(points[0].Time)
		for i := 1; i < len(points); i++ {
			s.Distance += geo.Distance(points[i-1].Orb(), points[i].Orb())
		}
	}

	return s
}

// Write saves points as a single-track, single-segment GPX file. Name and
// creator metadata are taken from the source file when present.
func Write(filename string, source *gogpx.GPX, points []profile.Point) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return WriteToWriter(file, source, points)
}

// WriteToWriter writes points as GPX to an io.Writer.
func WriteToWriter(w io.Writer, source *gogpx.GPX, points []profile.Point) error {
	out := &gogpx.GPX{Creator: "trailstats", Version: "1.1"}
	track := gogpx.GPXTrack{}

	if source != nil {
		out.Name = source.Name
		out.Description = source.Description
		out.Time = source.Time
		if len(source.Tracks) > 0 {
			track.Name = source.Tracks[0].Name
			track.Type = source.Tracks[0].Type
		}
	}

	segment := gogpx.GPXTrackSegment{Points: make([]gogpx.GPXPoint, len(points))}
	for i, p := range points {
		segment.Points[i] = gogpx.GPXPoint{
			Point: gogpx.Point{
				Latitude:  p.Lat,
				Longitude: p.Lon,
				Elevation: *gogpx.NewNullableFloat64(p.Altitude),
			},
			Timestamp: p.Time,
		}
	}
	track.Segments = []gogpx.GPXTrackSegment{segment}
	out.Tracks = []gogpx.GPXTrack{track}

	data, err := out.ToXml(gogpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write GPX: %w", err)
	}
	return nil
}

func convert(src []gogpx.GPXPoint) []profile.Point {
	points := make([]profile.Point, len(src))
	for i, pt := range src {
		var altitude float64
		if ele := pt.GetElevation(); ele.NotNull() {
			altitude = ele.Value()
		}
		points[i] = profile.Point{
			Lat:      pt.GetLatitude(),
			Lon:      pt.GetLongitude(),
			Altitude: altitude,
			Time:     pt.Timestamp.UTC(),
		}
	}
	return points
}
