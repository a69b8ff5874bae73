package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

const eventsSeries = "collision events"

// HTML renders tracks as small markers per vessel and events as larger red
// markers on a lon/lat plane.
func HTML(w io.Writer, title string, lines []Line, events []model.CollisionEvent) error {
	b := extent(lines, events).padded()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("vessels=%d events=%d", len(lines), len(events)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "lon", Type: "value", Min: b.minLon, Max: b.maxLon, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "lat", Type: "value", Min: b.minLat, Max: b.maxLat, NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}, YAxisIndex: []int{0}}),
	)

	for _, l := range lines {
		data := make([]opts.ScatterData, 0, len(l.Points))
		for _, p := range l.Points {
			data = append(data, opts.ScatterData{Value: []interface{}{p.Lon, p.Lat}})
		}
		scatter.AddSeries(string(l.Vessel), data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}

	data := make([]opts.ScatterData, 0, len(events))
	for _, e := range events {
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("%s-%s %.3f km", e.VesselA, e.VesselB, e.DistanceKm),
			Value: []interface{}{e.Longitude, e.Latitude},
		})
	}
	scatter.AddSeries(eventsSeries, data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)

	return scatter.Render(w)
}
