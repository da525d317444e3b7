package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
)

// StdOutSinker prints the active flights as a table after every change.
type StdOutSinker struct {
	Log *logrus.Logger
	Out io.Writer
}

func New(log *logrus.Logger) app.Sinker {
	//init the logger here
	return &StdOutSinker{Log: log, Out: os.Stdout}
}

func (s *StdOutSinker) Init(ctx context.Context, params interface{}) error {
	//Nothing to do here
	return nil
}

func (s *StdOutSinker) Sink(ctx context.Context, t time.Time, flights app.FlightReader) error {
	active := flights.ActiveFlights()
	summary := app.Summarize(active)

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"number of Flights": len(active),
		"max altitude (m)":  summary.MaxAltitude,
	}).Info("========Active Sondes=============")

	if len(active) == 0 {
		s.Log.WithContext(ctx).Info("No active sonde")
		return nil
	}

	_, err := io.WriteString(s.Out, Render(t, active, summary)+"\n")
	return err
}

// Render formats flights and their summary as a text table.
func Render(t time.Time, flights []*app.Flight, summary app.Summary) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Sondes at " + t.Format("2006-01-02 15:04:05"))
	tbl.AppendHeader(table.Row{
		"Sonde", "Points", "Launch", "Max Alt (m)", "Max Speed (km/h)", "Duration (min)",
		"Distance (km)", "Speed (km/h)", "Alt (m)", "Ascent (m/s)",
	})

	for _, f := range flights {
		tbl.AppendRow(table.Row{
			f.Name,
			f.Len(),
			f.LaunchTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.1f", f.MaxAltitude),
			fmt.Sprintf("%.1f", f.MaxSpeed),
			fmt.Sprintf("%.1f", f.Duration),
			fmt.Sprintf("%.2f", f.Distance),
			fmt.Sprintf("%.1f", f.CurrentSpeed),
			fmt.Sprintf("%.1f", f.CurrentAltitude),
			fmt.Sprintf("%.1f", f.AscentRate),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d", summary.TotalFlights), "", "",
		fmt.Sprintf("%.1f", summary.MaxAltitude),
		fmt.Sprintf("%.1f", summary.MaxSpeed),
		fmt.Sprintf("avg %.1f", summary.AvgDuration),
	})

	return tbl.Render()
}
