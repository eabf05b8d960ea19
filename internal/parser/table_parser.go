package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadTable reads a whitespace-delimited numeric text file into a Table.
// Blank lines and '#' comments are skipped. A file without data rows gives an
// empty table and no error.
func LoadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	t, err := ReadTable(file)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// ReadTable parses table rows from r.
func ReadTable(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var data []float64
	rows, cols := 0, 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if rows == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, &LoadError{Line: lineNo, Err: fmt.Errorf("found %d columns, expected %d: %w", len(fields), cols, ErrRaggedRows)}
		}

		for _, tok := range fields {
			v, err := parseNumber(tok)
			if err != nil {
				return nil, &LoadError{Line: lineNo, Err: fmt.Errorf("%q: %w", tok, ErrBadNumber)}
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table data: %w", err)
	}

	if rows == 0 {
		return NewTable(0, 0), nil
	}
	return &Table{rows: rows, cols: cols, data: data}, nil
}

// parseNumber accepts Go float syntax plus Fortran style D exponents.
func parseNumber(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err == nil {
		return v, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		// Overflow yields ±Inf, same as numpy.
		return v, nil
	}
	if strings.ContainsAny(tok, "dD") {
		return parseNumber(strings.NewReplacer("d", "e", "D", "E").Replace(tok))
	}
	return 0, err
}

// TrajectoryFileName returns the cut file name for a file code ("10", "11",
// "20", "21") and particle index, e.g. fort.10202.
func TrajectoryFileName(code string, particle int) string {
	return "fort." + code + ParticleTag(particle)
}

// ParticleTag formats a particle index as three zero-padded digits.
func ParticleTag(particle int) string {
	return fmt.Sprintf("%03d", particle)
}

// LoadTrajectory loads a tip cut or period cut file. It never fails: when the
// file cannot be used the kind's placeholder is returned together with the
// reason.
func LoadTrajectory(path string, kind TrajectoryKind) TrajectoryResult {
	res := TrajectoryResult{Path: path, Kind: kind}

	t, err := LoadTable(path)
	switch {
	case err == nil && t.Empty():
		res.Status = Empty
		res.Err = &LoadError{Path: path, Err: errors.New("no data rows")}
	case err == nil:
		res.Status = Loaded
		res.Table = t
		return res
	case errors.Is(err, fs.ErrNotExist):
		res.Status = Missing
		res.Err = err
	case errors.Is(err, ErrRaggedRows), errors.Is(err, ErrBadNumber):
		res.Status = Malformed
		res.Err = err
	default:
		res.Status = Unreadable
		res.Err = err
	}
	res.Table = kind.Placeholder()
	return res
}

// TrajectoryPair loads the two files of one cut family for a particle.
func TrajectoryPair(prefix string, kind TrajectoryKind, codes [2]string, particle int) [2]TrajectoryResult {
	var out [2]TrajectoryResult
	for i, code := range codes {
		out[i] = LoadTrajectory(filepath.Join(prefix, TrajectoryFileName(code, particle)), kind)
	}
	return out
}
