// Package activity prepares a bulk activity export for cumulative and
// per-type reporting.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

// Row is one line of the activity export, restricted to the columns used.
type Row struct {
	ID          string `csv:"Activity ID"`
	Date        Date   `csv:"Activity Date"`
	Type        string `csv:"Activity Type"`
	Distance    Number `csv:"Distance"`
	MovingTime  Number `csv:"Moving Time"`
	ElapsedTime Number `csv:"Elapsed Time"`
	MaxSpeed    Number `csv:"Max Speed"`
	Elevation   Number `csv:"Elevation Gain"`
	MaxGrade    Number `csv:"Max Grade"`
}

// Number is a lenient numeric cell: empty means 0 and a decimal comma is
// accepted.
type Number float64

// UnmarshalCSV implements csvutil.Unmarshaler.
func (n *Number) UnmarshalCSV(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		*n = 0
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = Number(v)
	return nil
}

// dateLayouts are tried in order when parsing Activity Date.
var dateLayouts = []string{
	"Jan 2, 2006, 3:04:05 PM",
	"2 Jan 2006, 15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is an export timestamp, interpreted as UTC when it carries no zone.
type Date struct {
	time.Time
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (d *Date) UnmarshalCSV(data []byte) error {
	s := strings.TrimSpace(string(data))
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid activity date %q", s)
}

// Load decodes an activity export. Repeated header names, which the export
// uses for the detailed copies of some columns, keep their first occurrence.
func Load(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dec, err := csvutil.NewDecoder(reader, dedupeHeader(header)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	var rows []Row
	for {
		var row Row
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}
		out[i] = name
	}
	return out
}
