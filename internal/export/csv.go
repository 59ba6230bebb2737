// Package export writes profile tables as CSV and tracks as GeoJSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jszwec/csvutil"

	"github.com/planbiir/trailstats/internal/activity"
	"github.com/planbiir/trailstats/internal/profile"
)

// RecordRow is the CSV form of profile.Record.
type RecordRow struct {
	Index        int     `csv:"index"`
	Altitude     float64 `csv:"altitude"`
	Longitude    float64 `csv:"longitude"`
	Latitude     float64 `csv:"latitude"`
	Pace         float64 `csv:"pace"`
	TimeOfDay    string  `csv:"time_of_day"`
	TimeZone     string  `csv:"time_zone"`
	Elapsed      float64 `csv:"elapsed_time"`
	Distance     float64 `csv:"distance"`
	VerticalGain float64 `csv:"vertical_gain"`
	VerticalLoss float64 `csv:"vertical_loss"`
	Km           int     `csv:"km"`
	HourOfDay    int     `csv:"hour_of_day"`
}

// SmoothedRow is the CSV form of profile.SmoothedRecord.
type SmoothedRow struct {
	RecordRow
	AltitudeSmooth     float64 `csv:"altitude_smooth"`
	PaceSmooth         float64 `csv:"pace_smooth"`
	MinPerKm           float64 `csv:"min_per_km"`
	VerticalGainSmooth float64 `csv:"vertical_gain_smooth"`
	VerticalLossSmooth float64 `csv:"vertical_loss_smooth"`
}

// SummaryRow is the CSV form of profile.KilometerSummary.
type SummaryRow struct {
	Km                 int     `csv:"km"`
	Distance           float64 `csv:"distance"`
	AltMax             float64 `csv:"alt_max"`
	AltMin             float64 `csv:"alt_min"`
	Pace               float64 `csv:"pace"`
	HourOfDay          int     `csv:"hour_of_day"`
	Elapsed            float64 `csv:"elapsed_time"`
	VerticalGain       float64 `csv:"vertical_gain"`
	VerticalLoss       float64 `csv:"vertical_loss"`
	VerticalGainSmooth float64 `csv:"vertical_gain_smooth"`
	VerticalLossSmooth float64 `csv:"vertical_loss_smooth"`
	MinPerKm           float64 `csv:"min_per_km"`
	Split              float64 `csv:"split"`
}

// CumulativeRow is the CSV form of activity.CumulativeActivity.
type CumulativeRow struct {
	ID             string  `csv:"id"`
	Date           string  `csv:"date"`
	Year           int     `csv:"year"`
	Type           string  `csv:"type"`
	Distance       float64 `csv:"distance"`
	MovingTime     float64 `csv:"moving_time"`
	ElapsedTime    float64 `csv:"elapsed_time"`
	MaxSpeed       float64 `csv:"max_speed"`
	Elevation      float64 `csv:"elevation"`
	MaxIncline     float64 `csv:"max_incline"`
	AvgSpeed       float64 `csv:"avg_speed"`
	KmEffort       float64 `csv:"km_effort"`
	AvgIncline     float64 `csv:"avg_incline"`
	DistanceCum    float64 `csv:"distance_cum"`
	ElevationCum   float64 `csv:"elevation_cum"`
	KmEffortCum    float64 `csv:"km_effort_cum"`
	MovingTimeCum  float64 `csv:"moving_time_cum"`
	ElapsedTimeCum float64 `csv:"elapsed_time_cum"`
	DayOfYear      int     `csv:"dayofyear,omitempty"`
}

func recordRow(r profile.Record) RecordRow {
	return RecordRow{
		Index:        r.Index,
		Altitude:     r.Altitude,
		Longitude:    r.Longitude,
		Latitude:     r.Latitude,
		Pace:         r.Pace,
		TimeOfDay:    r.TimeOfDay.Format(time.RFC3339),
		TimeZone:     r.TimeZone,
		Elapsed:      r.Elapsed.Seconds(),
		Distance:     r.Distance,
		VerticalGain: r.VerticalGain,
		VerticalLoss: r.VerticalLoss,
		Km:           r.Km,
		HourOfDay:    r.HourOfDay,
	}
}

// WriteRecords writes per-point records as CSV.
func WriteRecords(w io.Writer, records []profile.Record) error {
	rows := make([]RecordRow, len(records))
	for i, r := range records {
		rows[i] = recordRow(r)
	}
	return writeCSV(w, rows)
}

// WriteSmoothed writes smoothed records as CSV.
func WriteSmoothed(w io.Writer, records []profile.SmoothedRecord) error {
	rows := make([]SmoothedRow, len(records))
	for i, r := range records {
		rows[i] = SmoothedRow{
			RecordRow:          recordRow(r.Record),
			AltitudeSmooth:     r.AltitudeSmooth,
			PaceSmooth:         r.PaceSmooth,
			MinPerKm:           r.MinPerKm,
			VerticalGainSmooth: r.VerticalGainSmooth,
			VerticalLossSmooth: r.VerticalLossSmooth,
		}
	}
	return writeCSV(w, rows)
}

// WriteSummary writes kilometer summaries as CSV. MinPerKm and Split are
// written in minutes and seconds respectively.
func WriteSummary(w io.Writer, summaries []profile.KilometerSummary) error {
	rows := make([]SummaryRow, len(summaries))
	for i, s := range summaries {
		rows[i] = SummaryRow{
			Km:                 s.Km,
			Distance:           s.Distance,
			AltMax:             s.AltMax,
			AltMin:             s.AltMin,
			Pace:               s.Pace,
			HourOfDay:          s.HourOfDay,
			Elapsed:            s.Elapsed.Seconds(),
			VerticalGain:       s.VerticalGain,
			VerticalLoss:       s.VerticalLoss,
			VerticalGainSmooth: s.VerticalGainSmooth,
			VerticalLossSmooth: s.VerticalLossSmooth,
			MinPerKm:           s.MinPerKm.Minutes(),
			Split:              s.Split.Seconds(),
		}
	}
	return writeCSV(w, rows)
}

// WriteCumulative writes cumulative activities as CSV.
func WriteCumulative(w io.Writer, acts []activity.CumulativeActivity) error {
	rows := make([]CumulativeRow, len(acts))
	for i, a := range acts {
		rows[i] = CumulativeRow{
			ID:             a.ID,
			Date:           a.Date.Format(time.RFC3339),
			Year:           a.Year,
			Type:           a.Type,
			Distance:       a.Distance,
			MovingTime:     a.MovingTime.Seconds(),
			ElapsedTime:    a.ElapsedTime.Seconds(),
			MaxSpeed:       a.MaxSpeed,
			Elevation:      a.Elevation,
			MaxIncline:     a.MaxIncline,
			AvgSpeed:       a.AvgSpeed,
			KmEffort:       a.KmEffort,
			AvgIncline:     a.AvgIncline,
			DistanceCum:    a.DistanceCum,
			ElevationCum:   a.ElevationCum,
			KmEffortCum:    a.KmEffortCum,
			MovingTimeCum:  a.MovingTimeCum.Seconds(),
			ElapsedTimeCum: a.ElapsedTimeCum.Seconds(),
			DayOfYear:      a.DayOfYear,
		}
	}
	return writeCSV(w, rows)
}

func writeCSV[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates path, including missing parent directories, and fills it
// with write.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return write(f)
}
