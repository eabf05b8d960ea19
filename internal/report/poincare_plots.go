package report

import (
	"fmt"
	"image/color"

	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/parser"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PoincareSeries is one integrator's Poincaré section, (r, theta) rows.
type PoincareSeries struct {
	Label string
	Table *parser.Table
	Color color.Color
}

// fallbackColors is used for series without a colour.
var fallbackColors = []color.Color{
	FirstSeriesColor,
	SecondSeriesColor,
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 255},
}

// CreatePoincarePlot overlays several Poincaré sections in the poloidal
// plane with a legend entry per series that has data.
func CreatePoincarePlot(series []PoincareSeries, marker Marker, title string) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no Poincaré series to plot")
	}
	if err := marker.validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "R-R0"
	p.Y.Label.Text = "Z"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts, err := analysis.PolarToCartesian(s.Table)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		c := s.Color
		if c == nil {
			c = fallbackColors[i%len(fallbackColors)]
		}
		thumb, err := addSeries(p, toXYs(analysis.Finite2(pts)), marker, c)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		if thumb == nil {
			continue
		}
		// Pixel glyphs are too small to read in the legend.
		if sc, ok := thumb.(*plotter.Scatter); ok && marker == MarkerPixel {
			legendGlyph := *sc
			legendGlyph.GlyphStyle.Radius = vg.Points(2.5)
			thumb = &legendGlyph
		}
		p.Legend.Add(s.Label, thumb)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)
	return p, nil
}
