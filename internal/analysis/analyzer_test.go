package analysis

import (
	"math"
	"testing"

	"github.com/user/orbit_check_go/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kindsRow builds an orbit_kinds.out row with the given particle and labels.
func kindsRow(particle, a, b float64) []float64 {
	return []float64{particle, 0.1, 0.2, 0.3, 0.4, 0.5, a, b}
}

func mustTable(t *testing.T, rows ...[]float64) *parser.Table {
	t.Helper()
	tab, err := parser.NewTableFromRows(rows)
	require.NoError(t, err)
	return tab
}

func TestNewClassificationTable(t *testing.T) {
	tab := mustTable(t, []float64{1, 2, 3, 4, 5, 6, 7})
	_, err := NewClassificationTable(tab, DefaultLabelColA, DefaultLabelColB)
	assert.ErrorIs(t, err, ErrTooFewColumns)

	_, err = NewClassificationTable(tab, -1, 2)
	assert.Error(t, err)

	_, err = NewClassificationTable(mustTable(t, kindsRow(1, 1, 1)), DefaultLabelColA, DefaultLabelColB)
	assert.NoError(t, err)
}

func TestDifferenceFilter(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"equal", 2, 2, false},
		{"large difference", 1, 3, true},
		{"negative difference", 3, 1, true},
		{"below threshold", 1, 1 + 5e-6, false},
		{"above threshold", 1, 1 + 2e-5, true},
		{"exactly threshold", 0, 1e-5, false},
		{"nan label", math.NaN(), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := NewClassificationTable(mustTable(t, kindsRow(1, tt.a, tt.b)), DefaultLabelColA, DefaultLabelColB)
			require.NoError(t, err)
			assert.Equal(t, []bool{tt.want}, ct.DifferenceFilter(DefaultThreshold))
		})
	}
}

func TestMismatches(t *testing.T) {
	tab := mustTable(t,
		kindsRow(12, 1, 2),
		kindsRow(3, 1, 1),
		kindsRow(7.9, 2, 1),
		kindsRow(5, 0, 3),
		kindsRow(7, 1, 4),
		kindsRow(1, 4, 4),
	)
	ct, err := NewClassificationTable(tab, DefaultLabelColA, DefaultLabelColB)
	require.NoError(t, err)

	report := ct.Mismatches(DefaultThreshold)
	assert.Equal(t, 4, report.Count)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, []int{5, 7, 7, 12}, report.Particles)
	assert.Equal(t, []string{
		"different classifications: 4",
		"[5, 7, 7, 12]",
	}, report.Lines())
}

func TestMismatchesNone(t *testing.T) {
	ct, err := NewClassificationTable(mustTable(t, kindsRow(1, 1, 1)), DefaultLabelColA, DefaultLabelColB)
	require.NoError(t, err)
	report := ct.Mismatches(DefaultThreshold)
	assert.Equal(t, 0, report.Count)
	assert.Equal(t, []string{"different classifications: 0", "[]"}, report.Lines())
}

func TestNewClassificationTableRejectsEmpty(t *testing.T) {
	_, err := NewClassificationTable(parser.NewTable(0, 0), DefaultLabelColA, DefaultLabelColB)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestAgreementMatrix(t *testing.T) {
	tab := mustTable(t,
		kindsRow(1, 1, 1),
		kindsRow(2, 1, 2),
		kindsRow(3, 2, 2),
		kindsRow(4, 3, 1),
		kindsRow(5, 1.0000001, 1),
		kindsRow(6, math.NaN(), 1),
	)
	ct, err := NewClassificationTable(tab, DefaultLabelColA, DefaultLabelColB)
	require.NoError(t, err)

	ag := ct.AgreementMatrix()
	assert.Equal(t, []int{1, 2, 3}, ag.Labels)
	assert.Equal(t, [][]int{
		{2, 1, 0},
		{0, 1, 0},
		{1, 0, 0},
	}, ag.Counts)
	assert.Equal(t, 5, ag.Total())
	assert.Equal(t, 3, ag.Diagonal())
}
