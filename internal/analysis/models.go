package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Default classification layout of orbit_kinds.out.
const (
	DefaultThreshold = 1e-5
	DefaultLabelColA = 6
	DefaultLabelColB = 7
	ParticleCol      = 0
)

var (
	// ErrTooFewColumns is returned when a table lacks a column an operation reads.
	ErrTooFewColumns = errors.New("table has too few columns")
	// ErrNoRows is returned for a classification table without data rows.
	ErrNoRows = errors.New("table has no data rows")
)

// MismatchReport lists the particles whose two classification labels differ.
type MismatchReport struct {
	Threshold float64
	Total     int   // rows inspected
	Count     int   // rows selected by the filter
	Particles []int // ascending, duplicates kept
}

// Lines renders the two diagnostic lines printed after classification.
func (r *MismatchReport) Lines() []string {
	parts := make([]string, len(r.Particles))
	for i, p := range r.Particles {
		parts[i] = fmt.Sprint(p)
	}
	return []string{
		fmt.Sprintf("different classifications: %d", r.Count),
		"[" + strings.Join(parts, ", ") + "]",
	}
}

// Agreement is a cross tabulation of the two classification labels.
// Counts[i][j] is the number of particles with label Labels[i] in the first
// column and Labels[j] in the second.
type Agreement struct {
	Labels []int
	Counts [][]int
}

// Total returns the number of tabulated particles.
func (a *Agreement) Total() int {
	n := 0
	for _, row := range a.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Diagonal returns how many particles got the same label from both methods.
func (a *Agreement) Diagonal() int {
	n := 0
	for i := range a.Counts {
		n += a.Counts[i][i]
	}
	return n
}

// Point2 is a point in the poloidal plane.
type Point2 struct{ X, Y float64 }

// Point3 is a point in real space.
type Point3 struct{ X, Y, Z float64 }
