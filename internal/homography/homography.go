// Package homography fits and applies the 3x3 projective transform that
// maps image-plane coordinates onto ground-plane coordinates.
package homography

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"plane-mapper/pkg/geometry"
)

// epsilon below which a homogeneous coordinate is treated as zero.
const wEpsilon = 1e-12

// Matrix is a 3x3 homography mapping homogeneous image coordinates to
// homogeneous ground coordinates. It is normalized so that the bottom-right
// element is 1 whenever that element is non-zero; the same convention is
// used for estimation, application and serialization. A Matrix is immutable
// after construction.
type Matrix struct {
	h   [3][3]float64
	inv *Matrix
}

// New creates a Matrix from 9 row-major values.
func New(vals []float64) (*Matrix, error) {
	if len(vals) != 9 {
		return nil, errors.Wrapf(ErrMalformedFile, "need 9 values, got %d", len(vals))
	}
	var m Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.h[i][j] = vals[i*3+j]
		}
	}
	m.normalize()
	return &m, nil
}

// normalize divides through by the bottom-right element so H[2][2] == 1.
// A homography is only defined up to scale, so this does not change the
// transform; it makes matrices comparable and serialization stable.
func (m *Matrix) normalize() {
	s := m.h[2][2]
	if math.Abs(s) < wEpsilon {
		return
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.h[i][j] /= s
		}
	}
}

// At returns the element at the given row and column.
func (m *Matrix) At(row, col int) float64 {
	return m.h[row][col]
}

// Values returns the matrix as 9 row-major values.
func (m *Matrix) Values() []float64 {
	vals := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		vals = append(vals, m.h[i][0], m.h[i][1], m.h[i][2])
	}
	return vals
}

// toHomogeneous lifts 2D points to homogeneous 3-vectors.
func toHomogeneous(pts []geometry.Point2D) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = r3.Vector{X: p.X, Y: p.Y, Z: 1}
	}
	return out
}

// Apply maps a single point through the homography. It fails with
// ErrPointAtInfinity when the homogeneous w coordinate vanishes.
func (m *Matrix) Apply(p geometry.Point2D) (geometry.Point2D, error) {
	v := r3.Vector{X: p.X, Y: p.Y, Z: 1}
	x := m.h[0][0]*v.X + m.h[0][1]*v.Y + m.h[0][2]*v.Z
	y := m.h[1][0]*v.X + m.h[1][1]*v.Y + m.h[1][2]*v.Z
	w := m.h[2][0]*v.X + m.h[2][1]*v.Y + m.h[2][2]*v.Z
	if math.Abs(w) < wEpsilon {
		return geometry.Point2D{}, errors.Wrapf(ErrPointAtInfinity, "point (%g, %g)", p.X, p.Y)
	}
	return geometry.Point2D{X: x / w, Y: y / w}, nil
}

// Project maps a batch of points through the homography. Failure is
// per-point: the first point mapping to infinity aborts with an error
// naming its index.
func (m *Matrix) Project(pts []geometry.Point2D) ([]geometry.Point2D, error) {
	out := make([]geometry.Point2D, len(pts))
	for i, hp := range toHomogeneous(pts) {
		x := m.h[0][0]*hp.X + m.h[0][1]*hp.Y + m.h[0][2]*hp.Z
		y := m.h[1][0]*hp.X + m.h[1][1]*hp.Y + m.h[1][2]*hp.Z
		w := m.h[2][0]*hp.X + m.h[2][1]*hp.Y + m.h[2][2]*hp.Z
		if math.Abs(w) < wEpsilon {
			return nil, errors.Wrapf(ErrPointAtInfinity, "point %d", i)
		}
		out[i] = geometry.Point2D{X: x / w, Y: y / w}
	}
	return out, nil
}

// Inverse returns the inverse homography for ground-to-image reprojection.
// Invertibility is checked once; the result is cached on the Matrix.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.inv != nil {
		return m.inv, nil
	}

	dense := mat.NewDense(3, 3, m.Values())
	var invDense mat.Dense
	if err := invDense.Inverse(dense); err != nil {
		return nil, errors.Wrap(ErrNonInvertible, err.Error())
	}

	var inv Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv.h[i][j] = invDense.At(i, j)
		}
	}
	inv.normalize()
	m.inv = &inv
	return m.inv, nil
}

// ApplyInverse maps a single point through the inverse homography.
func (m *Matrix) ApplyInverse(p geometry.Point2D) (geometry.Point2D, error) {
	inv, err := m.Inverse()
	if err != nil {
		return geometry.Point2D{}, err
	}
	return inv.Apply(p)
}

// ProjectInverse maps a batch of points through the inverse homography.
func (m *Matrix) ProjectInverse(pts []geometry.Point2D) ([]geometry.Point2D, error) {
	inv, err := m.Inverse()
	if err != nil {
		return nil, err
	}
	return inv.Project(pts)
}

// RMSE computes the root-mean-square Euclidean distance between two
// equal-length point sets. Used as the reprojection-error quality metric
// for a fitted homography.
func RMSE(a, b []geometry.Point2D) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Errorf("point count mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, errors.New("no points to compare")
	}

	var sumSq float64
	for i := range a {
		d := a[i].Distance(b[i])
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(a))), nil
}
