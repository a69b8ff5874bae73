package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// Plot builds a gonum plot with one line per vessel and a red point per
// event.
func Plot(title string, lines []Line, events []model.CollisionEvent) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "lon"
	p.Y.Label.Text = "lat"
	p.Add(plotter.NewGrid())

	b := extent(lines, events).padded()
	p.X.Min, p.X.Max = b.minLon, b.maxLon
	p.Y.Min, p.Y.Max = b.minLat, b.maxLat

	for i, l := range lines {
		if len(l.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(l.Points))
		for j, pt := range l.Points {
			xys[j].X, xys[j].Y = pt.Lon, pt.Lat
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("track %s: %w", l.Vessel, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)
	}

	if len(events) > 0 {
		xys := make(plotter.XYs, len(events))
		for i, e := range events {
			xys[i].X, xys[i].Y = e.Longitude, e.Latitude
		}
		pts, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("events: %w", err)
		}
		pts.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		pts.GlyphStyle.Radius = vg.Points(3)
		pts.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(pts)
		p.Legend.Add(eventsSeries, pts)
	}
	return p, nil
}

// PNG writes the plot of lines and events as a PNG image.
func PNG(w io.Writer, title string, lines []Line, events []model.CollisionEvent) error {
	p, err := Plot(title, lines, events)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 7*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
