package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/parser"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// View is the camera of an orthographic 3D projection, angles in degrees.
type View struct {
	Elevation float64
	Azimuth   float64
}

// DefaultView matches matplotlib's initial 3D axes orientation.
var DefaultView = View{Elevation: 30, Azimuth: -60}

// Project maps a point in real space to screen coordinates.
func (v View) Project(pt analysis.Point3) plotter.XY {
	az := v.Azimuth * math.Pi / 180
	el := v.Elevation * math.Pi / 180
	return plotter.XY{
		X: -math.Sin(az)*pt.X + math.Cos(az)*pt.Y,
		Y: -math.Sin(el)*math.Cos(az)*pt.X - math.Sin(el)*math.Sin(az)*pt.Y + math.Cos(el)*pt.Z,
	}
}

// bounds is an axis aligned box in real space.
type bounds struct {
	min, max [3]float64
}

// dataBounds returns the box around pts, [0,1]^3 when there are none.
// Degenerate extents are widened so the box never collapses.
func dataBounds(pts []analysis.Point3) bounds {
	if len(pts) == 0 {
		return bounds{max: [3]float64{1, 1, 1}}
	}
	coords := [3][]float64{}
	for _, pt := range pts {
		coords[0] = append(coords[0], pt.X)
		coords[1] = append(coords[1], pt.Y)
		coords[2] = append(coords[2], pt.Z)
	}
	var b bounds
	for i, c := range coords {
		b.min[i], b.max[i] = floats.Min(c), floats.Max(c)
		if b.min[i] == b.max[i] {
			b.min[i] -= 0.5
			b.max[i] += 0.5
		}
	}
	return b
}

func (b bounds) corner(ix, iy, iz int) analysis.Point3 {
	pick := func(axis, i int) float64 {
		if i == 0 {
			return b.min[axis]
		}
		return b.max[axis]
	}
	return analysis.Point3{X: pick(0, ix), Y: pick(1, iy), Z: pick(2, iz)}
}

// edges lists the twelve box edges as point pairs.
func (b bounds) edges() [][2]analysis.Point3 {
	var out [][2]analysis.Point3
	for _, a := range []int{0, 1} {
		for _, c := range []int{0, 1} {
			out = append(out,
				[2]analysis.Point3{b.corner(0, a, c), b.corner(1, a, c)},
				[2]analysis.Point3{b.corner(a, 0, c), b.corner(a, 1, c)},
				[2]analysis.Point3{b.corner(a, c, 0), b.corner(a, c, 1)},
			)
		}
	}
	return out
}

// CreateSpatialPlot draws two (r, theta, phi) tables in real space using
// the default view. The box edges replace the 2D axes; there is no grid.
func CreateSpatialPlot(first, second *parser.Table, marker Marker, title string) (*plot.Plot, error) {
	return CreateSpatialPlotView(first, second, marker, title, DefaultView)
}

// CreateSpatialPlotView is CreateSpatialPlot with an explicit camera.
func CreateSpatialPlotView(first, second *parser.Table, marker Marker, title string, view View) (*plot.Plot, error) {
	if err := marker.validate(); err != nil {
		return nil, err
	}

	var series [2][]analysis.Point3
	for i, t := range []*parser.Table{first, second} {
		pts, err := analysis.SphericalToCartesian(t)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", i+1, err)
		}
		series[i] = analysis.Finite3(pts)
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	box := dataBounds(append(append([]analysis.Point3{}, series[0]...), series[1]...))
	if err := drawBox(p, box, view); err != nil {
		return nil, err
	}

	for i, c := range []color.Color{FirstSeriesColor, SecondSeriesColor} {
		xys := make(plotter.XYs, len(series[i]))
		for j, pt := range series[i] {
			xys[j] = view.Project(pt)
		}
		if _, err := addSeries(p, xys, marker, c); err != nil {
			return nil, fmt.Errorf("series %d: %w", i+1, err)
		}
	}
	return p, nil
}

// drawBox adds the box edges and the X, Y, Z axis labels.
func drawBox(p *plot.Plot, box bounds, view View) error {
	for _, e := range box.edges() {
		line, err := plotter.NewLine(plotter.XYs{view.Project(e[0]), view.Project(e[1])})
		if err != nil {
			return fmt.Errorf("failed to create box edge: %w", err)
		}
		line.Color = color.Gray{Y: 176}
		line.Width = vg.Points(0.6)
		p.Add(line)
	}

	origin := box.corner(0, 0, 0)
	axes := []struct {
		name string
		end  analysis.Point3
		lo   float64
		hi   float64
	}{
		{"X", box.corner(1, 0, 0), box.min[0], box.max[0]},
		{"Y", box.corner(0, 1, 0), box.min[1], box.max[1]},
		{"Z", box.corner(0, 0, 1), box.min[2], box.max[2]},
	}

	var xys plotter.XYs
	var text []string
	for _, ax := range axes {
		start, end := view.Project(origin), view.Project(ax.end)
		mid := plotter.XY{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
		xys = append(xys, mid, end)
		text = append(text, ax.name, fmt.Sprintf("%.3g", ax.hi))
	}
	xys = append(xys, view.Project(origin))
	text = append(text, fmt.Sprintf("(%.3g, %.3g, %.3g)", axes[0].lo, axes[1].lo, axes[2].lo))

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return fmt.Errorf("failed to create axis labels: %w", err)
	}
	p.Add(labels)
	return nil
}
