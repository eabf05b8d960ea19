package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/user/orbit_check_go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
)

// agreementGrid exposes an agreement matrix as a GridXYZ. Column c is the
// label of the second method, row r the label of the first. Zero counts are
// NaN so empty cells stay blank.
type agreementGrid struct {
	a *analysis.Agreement
}

func (g agreementGrid) Dims() (c, r int) { return len(g.a.Labels), len(g.a.Labels) }
func (g agreementGrid) Z(c, r int) float64 {
	n := g.a.Counts[r][c]
	if n == 0 {
		return math.NaN()
	}
	return math.Log10(float64(n))
}
func (g agreementGrid) X(c int) float64 { return float64(c) }
func (g agreementGrid) Y(r int) float64 { return float64(r) }

// CreateAgreementHeatmap plots how often each pair of classification labels
// occurs. Colour is log10 of the particle count; counts are printed on the
// cells.
func CreateAgreementHeatmap(a *analysis.Agreement, labelA, labelB string) (*plot.Plot, error) {
	if a == nil || len(a.Labels) == 0 {
		return nil, fmt.Errorf("no classification labels to plot")
	}
	n := len(a.Labels)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("classification agreement (%d of %d equal)", a.Diagonal(), a.Total())
	p.X.Label.Text = labelB
	p.Y.Label.Text = labelA

	ticks := make([]plot.Tick, n)
	for i, l := range a.Labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: fmt.Sprint(l)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	maxCount := 1
	for _, row := range a.Counts {
		for _, c := range row {
			maxCount = max(maxCount, c)
		}
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(math.Max(math.Log10(float64(maxCount)), 1))

	hm := plotter.NewHeatMap(agreementGrid{a: a}, cmap.Palette(255))
	hm.Min = cmap.Min()
	hm.Max = cmap.Max()
	hm.NaN = color.Gray{Y: 235}
	p.Add(hm)

	var xys plotter.XYs
	var text []string
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if a.Counts[r][c] == 0 {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			text = append(text, fmt.Sprint(a.Counts[r][c]))
		}
	}
	if len(xys) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
		if err != nil {
			return nil, fmt.Errorf("failed to create count labels: %w", err)
		}
		p.Add(labels)
	}

	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	return p, nil
}
