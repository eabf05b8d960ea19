package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/user/orbit_check_go/internal/parser"

	"gonum.org/v1/gonum/floats"
)

// ClassificationTable is the orbit_kinds.out table with the two label columns
// that are compared.
type ClassificationTable struct {
	table      *parser.Table
	colA, colB int
}

// NewClassificationTable checks that t holds the particle column and both
// label columns.
func NewClassificationTable(t *parser.Table, colA, colB int) (*ClassificationTable, error) {
	if t == nil {
		return nil, fmt.Errorf("classification table is nil")
	}
	if colA < 0 || colB < 0 {
		return nil, fmt.Errorf("label columns must be non-negative, got %d and %d", colA, colB)
	}
	if t.Empty() {
		return nil, ErrNoRows
	}
	need := max(colA, colB, ParticleCol) + 1
	if t.Cols() < need {
		return nil, fmt.Errorf("classification table has %d columns, need %d: %w", t.Cols(), need, ErrTooFewColumns)
	}
	return &ClassificationTable{table: t, colA: colA, colB: colB}, nil
}

func (c *ClassificationTable) Rows() int { return c.table.Rows() }

// LabelDifference returns colA - colB per row.
func (c *ClassificationTable) LabelDifference() []float64 {
	diff := make([]float64, c.table.Rows())
	floats.SubTo(diff, c.table.Col(c.colA), c.table.Col(c.colB))
	return diff
}

// DifferenceFilter marks rows whose labels differ by strictly more than
// threshold. NaN differences are never selected.
func (c *ClassificationTable) DifferenceFilter(threshold float64) []bool {
	diff := c.LabelDifference()
	mask := make([]bool, len(diff))
	for i, d := range diff {
		mask[i] = math.Abs(d) > threshold
	}
	return mask
}

// Mismatches collects the particle indices selected by DifferenceFilter.
// Indices are truncated toward zero and sorted ascending.
func (c *ClassificationTable) Mismatches(threshold float64) *MismatchReport {
	report := &MismatchReport{
		Threshold: threshold,
		Total:     c.table.Rows(),
		Particles: make([]int, 0),
	}
	for i, selected := range c.DifferenceFilter(threshold) {
		if !selected {
			continue
		}
		report.Particles = append(report.Particles, int(c.table.At(i, ParticleCol)))
	}
	sort.Ints(report.Particles)
	report.Count = len(report.Particles)
	return report
}

// AgreementMatrix cross tabulates the two label columns. Labels are rounded
// to the nearest integer class; rows with a non-finite label are skipped.
func (c *ClassificationTable) AgreementMatrix() *Agreement {
	type pair struct{ a, b int }
	counts := make(map[pair]int)
	seen := make(map[int]bool)

	for i := 0; i < c.table.Rows(); i++ {
		va, vb := c.table.At(i, c.colA), c.table.At(i, c.colB)
		if !isFinite(va) || !isFinite(vb) {
			continue
		}
		a, b := int(math.Round(va)), int(math.Round(vb))
		counts[pair{a, b}]++
		seen[a] = true
		seen[b] = true
	}

	labels := make([]int, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	agreement := &Agreement{Labels: labels, Counts: make([][]int, len(labels))}
	for i := range agreement.Counts {
		agreement.Counts[i] = make([]int, len(labels))
	}
	for p, n := range counts {
		agreement.Counts[pos[p.a]][pos[p.b]] = n
	}
	return agreement
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
