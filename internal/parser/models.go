package parser

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRaggedRows is returned when a data row has a different number of
	// columns than the first data row.
	ErrRaggedRows = errors.New("rows have inconsistent column counts")
	// ErrBadNumber is returned for a token that is not a floating point number.
	ErrBadNumber = errors.New("could not convert token to float")
)

// LoadError records where a table failed to load.
type LoadError struct {
	Path string
	Line int // 1-based; 0 when the failure is not tied to a line
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Table is a rectangular row-major block of float64 values as read from a
// whitespace-delimited text file.
type Table struct {
	rows, cols int
	data       []float64
}

// NewTable returns a zero-filled table.
func NewTable(rows, cols int) *Table {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("parser: negative table dimensions %dx%d", rows, cols))
	}
	return &Table{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Filled returns a table with every cell set to v.
func Filled(rows, cols int, v float64) *Table {
	t := NewTable(rows, cols)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// NewTableFromRows copies rows into a table. All rows must have the same length.
func NewTableFromRows(rows [][]float64) (*Table, error) {
	if len(rows) == 0 {
		return NewTable(0, 0), nil
	}
	cols := len(rows[0])
	t := NewTable(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(r), cols, ErrRaggedRows)
		}
		copy(t.data[i*cols:], r)
	}
	return t, nil
}

func (t *Table) Rows() int { return t.rows }
func (t *Table) Cols() int { return t.cols }

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return t.rows == 0 }

func (t *Table) At(i, j int) float64 {
	t.check(i, j)
	return t.data[i*t.cols+j]
}

func (t *Table) Set(i, j int, v float64) {
	t.check(i, j)
	t.data[i*t.cols+j] = v
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 {
	t.check(i, 0)
	out := make([]float64, t.cols)
	copy(out, t.data[i*t.cols:(i+1)*t.cols])
	return out
}

// Col returns a copy of column j.
func (t *Table) Col(j int) []float64 {
	if j < 0 || j >= t.cols {
		panic(fmt.Sprintf("parser: column %d out of range for %d columns", j, t.cols))
	}
	out := make([]float64, t.rows)
	for i := 0; i < t.rows; i++ {
		out[i] = t.data[i*t.cols+j]
	}
	return out
}

func (t *Table) check(i, j int) {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic(fmt.Sprintf("parser: index (%d,%d) out of range for %dx%d table", i, j, t.rows, t.cols))
	}
}

// TrajectoryKind distinguishes the two families of per-particle cut files.
type TrajectoryKind int

const (
	// TipCut rows are (radius, poloidal angle, toroidal angle).
	TipCut TrajectoryKind = iota
	// PeriodCut rows are (radius-like, angle-like).
	PeriodCut
)

// PeriodPlaceholderRadius is the radius of the period cut placeholder row.
const PeriodPlaceholderRadius = 0.5

func (k TrajectoryKind) String() string {
	switch k {
	case TipCut:
		return "tip cut"
	case PeriodCut:
		return "period cut"
	}
	return fmt.Sprintf("TrajectoryKind(%d)", int(k))
}

// Placeholder returns the single-row table substituted for unavailable data.
// Its NaN cells make the series render empty.
func (k TrajectoryKind) Placeholder() *Table {
	if k == PeriodCut {
		t := Filled(1, 2, math.NaN())
		t.Set(0, 0, PeriodPlaceholderRadius)
		return t
	}
	return Filled(1, 3, math.NaN())
}

// LoadStatus is the outcome of a trajectory load.
type LoadStatus int

const (
	Loaded LoadStatus = iota
	Missing
	Empty
	Malformed
	Unreadable
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case Malformed:
		return "malformed"
	case Unreadable:
		return "unreadable"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// TrajectoryResult is what LoadTrajectory hands back. Table is never nil:
// when Status is not Loaded it holds the kind's placeholder and Err the cause.
type TrajectoryResult struct {
	Path   string
	Kind   TrajectoryKind
	Status LoadStatus
	Table  *Table
	Err    error
}

// Absent reports whether the placeholder was substituted.
func (r TrajectoryResult) Absent() bool { return r.Status != Loaded }
