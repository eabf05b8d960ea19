package analysis

import (
	"fmt"
	"math"

	"github.com/user/orbit_check_go/internal/parser"
)

// PolarToCartesian maps (r, theta) rows, columns 0 and 1, to x = r cos(theta),
// y = r sin(theta). Extra columns are ignored.
func PolarToCartesian(t *parser.Table) ([]Point2, error) {
	if t.Cols() < 2 {
		return nil, fmt.Errorf("polar transform needs 2 columns, got %d: %w", t.Cols(), ErrTooFewColumns)
	}
	pts := make([]Point2, t.Rows())
	for i := range pts {
		r, theta := t.At(i, 0), t.At(i, 1)
		pts[i] = Point2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return pts, nil
}

// SphericalToCartesian maps (r, theta, phi) rows to real space, where theta
// (column 1) is the poloidal angle measured from the equatorial plane and phi
// (column 2) the toroidal angle.
func SphericalToCartesian(t *parser.Table) ([]Point3, error) {
	if t.Cols() < 3 {
		return nil, fmt.Errorf("spherical transform needs 3 columns, got %d: %w", t.Cols(), ErrTooFewColumns)
	}
	pts := make([]Point3, t.Rows())
	for i := range pts {
		r, theta, phi := t.At(i, 0), t.At(i, 1), t.At(i, 2)
		pts[i] = Point3{
			X: r * math.Cos(phi) * math.Cos(theta),
			Y: r * math.Sin(phi) * math.Cos(theta),
			Z: r * math.Sin(theta),
		}
	}
	return pts, nil
}

// Finite2 drops points with a NaN or infinite coordinate.
func Finite2(pts []Point2) []Point2 {
	out := make([]Point2, 0, len(pts))
	for _, p := range pts {
		if isFinite(p.X) && isFinite(p.Y) {
			out = append(out, p)
		}
	}
	return out
}

// Finite3 drops points with a NaN or infinite coordinate.
func Finite3(pts []Point3) []Point3 {
	out := make([]Point3, 0, len(pts))
	for _, p := range pts {
		if isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z) {
			out = append(out, p)
		}
	}
	return out
}
