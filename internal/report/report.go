// Package report renders terminal tables for processed tracks and activity
// logs.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/planbiir/trailstats/internal/activity"
	"github.com/planbiir/trailstats/internal/profile"
)

// Splits prints one row per kilometer bucket with a totals footer.
func Splits(w io.Writer, title string, summaries []profile.KilometerSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Km", "Distance", "Split", "Min/km", "Pace m/s", "Alt max", "Alt min", "Gain", "Loss"})

	var gain, loss float64
	var distance float64
	var elapsed time.Duration
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.Km,
			fmt.Sprintf("%.2f", s.Distance),
			clock(s.Split),
			clock(s.MinPerKm),
			fmt.Sprintf("%.2f", s.Pace),
			fmt.Sprintf("%.1f", s.AltMax),
			fmt.Sprintf("%.1f", s.AltMin),
			fmt.Sprintf("%.1f", s.VerticalGainSmooth),
			fmt.Sprintf("%.1f", s.VerticalLossSmooth),
		})
		distance = s.Distance
		elapsed = s.Elapsed
		gain = s.VerticalGainSmooth
		loss = s.VerticalLossSmooth
	}

	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.2f", distance), clock(elapsed), "", "", "", "",
		fmt.Sprintf("%.1f", gain), fmt.Sprintf("%.1f", loss)})
	t.SetStyle(table.StyleLight)
	t.Render()
}

// Activities prints per-type activity totals.
func Activities(w io.Writer, totals []activity.Total) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Type", "Count", "Distance km", "Elevation m", "Moving time"})

	var count int
	var distance, elevation float64
	var moving time.Duration
	for _, tot := range totals {
		t.AppendRow(table.Row{
			tot.Type,
			tot.Count,
			fmt.Sprintf("%.1f", tot.Distance),
			fmt.Sprintf("%.0f", tot.Elevation),
			clock(tot.MovingTime),
		})
		count += tot.Count
		distance += tot.Distance
		elevation += tot.Elevation
		moving += tot.MovingTime
	}

	t.AppendFooter(table.Row{"Total", count, fmt.Sprintf("%.1f", distance), fmt.Sprintf("%.0f", elevation), clock(moving)})
	t.SetStyle(table.StyleLight)
	t.Render()
}

// clock formats d as h:mm:ss, or m:ss under an hour.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
