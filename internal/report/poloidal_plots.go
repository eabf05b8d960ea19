package report

import (
	"fmt"
	"image/color"

	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/parser"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// CreatePoloidalPlot draws two (r, theta) tables in the poloidal plane,
// x = r cos(theta) against y = r sin(theta), with grid lines.
func CreatePoloidalPlot(first, second *parser.Table, marker Marker, title string) (*plot.Plot, error) {
	if err := marker.validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "R-R0"
	p.Y.Label.Text = "Z"
	p.Add(plotter.NewGrid())

	for i, series := range []struct {
		table *parser.Table
		color color.Color
	}{
		{first, FirstSeriesColor},
		{second, SecondSeriesColor},
	} {
		pts, err := analysis.PolarToCartesian(series.table)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i+1, err)
		}
		if _, err := addSeries(p, toXYs(analysis.Finite2(pts)), marker, series.color); err != nil {
			return nil, fmt.Errorf("series %d: %w", i+1, err)
		}
	}
	return p, nil
}

func toXYs(pts []analysis.Point2) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}
