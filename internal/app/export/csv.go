package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/jszwec/csvutil"
)

// TimestampLayout is ISO-8601 in UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Row - one CSV line per sample
type Row struct {
	SondeID            string  `csv:"Sonde ID"`
	Timestamp          string  `csv:"Timestamp"`
	Latitude           float64 `csv:"Latitude"`
	Longitude          float64 `csv:"Longitude"`
	Altitude           float64 `csv:"Altitude (m)"`
	HorizontalVelocity float64 `csv:"Horizontal Speed (km/h)"`
	VerticalVelocity   float64 `csv:"Vertical Speed (m/s)"`
	Direction          float64 `csv:"Direction (°)"`
}

// Rows flattens flights into one row per sample, flights in the given order.
func Rows(flights []*app.Flight) []Row {
	var rows []Row
	for _, f := range flights {
		for _, s := range f.Samples {
			rows = append(rows, Row{
				SondeID:            f.Name,
				Timestamp:          s.Timestamp.UTC().Format(TimestampLayout),
				Latitude:           s.Lat,
				Longitude:          s.Lon,
				Altitude:           s.Altitude,
				HorizontalVelocity: s.HorizontalVelocity,
				VerticalVelocity:   s.VerticalVelocity,
				Direction:          s.Direction,
			})
		}
	}
	return rows
}

// WriteCSV writes the header and one row per sample of flights.
func WriteCSV(w io.Writer, flights []*app.Flight) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	rows := Rows(flights)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(Row{}); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	} else if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("csv rows: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
