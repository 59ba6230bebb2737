package export

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/planbiir/trailstats/internal/geo"
	"github.com/planbiir/trailstats/internal/profile"
)

// Extent returns [min lon, max lon, min lat, max lat] of the track, the
// order image overlays expect. It is all zeros for an empty track.
func Extent(records []profile.Record) [4]float64 {
	b := geo.Bound(positions(records))
	return [4]float64{b.Min.Lon(), b.Max.Lon(), b.Min.Lat(), b.Max.Lat()}
}

// TrackGeoJSON builds a FeatureCollection holding the track as a
// LineString and one Point marking where each kilometer bucket starts.
func TrackGeoJSON(records []profile.Record) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(records) == 0 {
		return fc
	}

	line := orb.LineString(positions(records))
	fc.BBox = geojson.NewBBox(line.Bound())

	last := records[len(records)-1]
	track := geojson.NewFeature(line)
	track.Properties["kind"] = "track"
	track.Properties["extent"] = Extent(records)
	track.Properties["distance_km"] = last.Distance
	track.Properties["elapsed_s"] = last.Elapsed.Seconds()
	track.Properties["vertical_gain"] = last.VerticalGain
	track.Properties["vertical_loss"] = last.VerticalLoss
	fc.Append(track)

	km := 0
	for _, r := range records {
		if r.Km == km {
			continue
		}
		km = r.Km

		marker := geojson.NewFeature(orb.Point{r.Longitude, r.Latitude})
		marker.Properties["kind"] = "kilometer"
		marker.Properties["km"] = r.Km
		marker.Properties["altitude"] = r.Altitude
		marker.Properties["elapsed_s"] = r.Elapsed.Seconds()
		marker.Properties["time_of_day"] = r.TimeOfDay.Format(time.RFC3339)
		fc.Append(marker)
	}

	return fc
}

func positions(records []profile.Record) []orb.Point {
	points := make([]orb.Point, len(records))
	for i, r := range records {
		points[i] = orb.Point{r.Longitude, r.Latitude}
	}
	return points
}
