package service

import (
	"io"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "360px"
	xAxisLabel  = "Time (minutes from launch)"
)

// RenderCharts writes an HTML page with one chart per metric over flights.
func RenderCharts(w io.Writer, flights []*app.Flight) error {
	page := components.NewPage()
	page.PageTitle = "Radiosonde flights"

	for _, m := range Metrics {
		if m == Direction {
			page.AddCharts(directionChart(flights))
			continue
		}
		page.AddCharts(lineChart(flights, m))
	}

	return page.Render(w)
}

func lineChart(flights []*app.Flight, m Metric) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: m.Title()}),
		charts.WithXAxisOpts(opts.XAxis{Name: xAxisLabel, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: m.Label()}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	for _, s := range BuildSeries(flights, m) {
		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}
		line.AddSeries(s.Label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
		)
	}
	return line
}

func directionChart(flights []*app.Flight) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: Direction.Title()}),
		charts.WithXAxisOpts(opts.XAxis{Name: xAxisLabel, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: Direction.Label(), Min: 0, Max: 360}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	for _, s := range BuildSeries(flights, Direction) {
		data := make([]opts.ScatterData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		scatter.AddSeries(s.Label, data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}
	return scatter
}
