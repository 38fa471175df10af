package homography

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plane-mapper/pkg/geometry"
)

var (
	squareImagePts = []geometry.Point2D{
		{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}, {X: 10, Y: 100},
	}
	halfScaleGroundPts = []geometry.Point2D{
		{X: 5, Y: 5}, {X: 50, Y: 5}, {X: 50, Y: 50}, {X: 5, Y: 50},
	}
)

func TestEstimateHalfScale(t *testing.T) {
	m, err := Estimate(squareImagePts, halfScaleGroundPts)
	require.NoError(t, err)

	// A pure half-scale mapping, normalized so the corner element is 1.
	want := [3][3]float64{{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 1}}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want[i][j], m.At(i, j), 1e-9, "H[%d][%d]", i, j)
		}
	}

	projected, err := m.Project(squareImagePts)
	require.NoError(t, err)
	for i := range projected {
		assert.InDelta(t, halfScaleGroundPts[i].X, projected[i].X, 1e-9)
		assert.InDelta(t, halfScaleGroundPts[i].Y, projected[i].Y, 1e-9)
	}

	rmse, err := RMSE(projected, halfScaleGroundPts)
	require.NoError(t, err)
	assert.InDelta(t, 0, rmse, 1e-9)
}

func TestEstimateScaleAndTranslation(t *testing.T) {
	groundPts := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 0, Y: 50},
	}
	m, err := Estimate(squareImagePts, groundPts)
	require.NoError(t, err)

	p, err := m.Apply(geometry.Point2D{X: 10, Y: 10})
	require.NoError(t, err)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	projected, err := m.Project(squareImagePts)
	require.NoError(t, err)
	rmse, err := RMSE(projected, groundPts)
	require.NoError(t, err)
	assert.InDelta(t, 0, rmse, 1e-9)
}

func TestEstimateOverdetermined(t *testing.T) {
	// 6 exact correspondences of a projective map; least squares must
	// still recover it.
	truth, err := New([]float64{1.2, 0.1, 30, -0.2, 0.9, 12, 1e-4, 2e-4, 1})
	require.NoError(t, err)

	src := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 640, Y: 0}, {X: 640, Y: 480},
		{X: 0, Y: 480}, {X: 320, Y: 100}, {X: 120, Y: 400},
	}
	dst, err := truth.Project(src)
	require.NoError(t, err)

	m, err := Estimate(src, dst)
	require.NoError(t, err)
	back, err := m.Project(src)
	require.NoError(t, err)
	for i := range back {
		assert.InDelta(t, dst[i].X, back[i].X, 1e-6)
		assert.InDelta(t, dst[i].Y, back[i].Y, 1e-6)
	}
}

func TestEstimateInsufficientPoints(t *testing.T) {
	_, err := Estimate(squareImagePts[:3], halfScaleGroundPts[:3])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientCorrespondences))

	_, err = Estimate(squareImagePts, halfScaleGroundPts[:3])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientCorrespondences))
}

func TestEstimateCollinearPoints(t *testing.T) {
	src := []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}
	dst := []geometry.Point2D{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10}, {X: 15, Y: 15}}

	_, err := Estimate(src, dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateConfiguration))
}

func TestEstimateCoincidentPoints(t *testing.T) {
	same := []geometry.Point2D{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}
	_, err := Estimate(same, halfScaleGroundPts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateConfiguration))
}

func TestInverseRoundTrip(t *testing.T) {
	m, err := Estimate(squareImagePts, halfScaleGroundPts)
	require.NoError(t, err)

	for _, p := range squareImagePts {
		fwd, err := m.Apply(p)
		require.NoError(t, err)
		back, err := m.ApplyInverse(fwd)
		require.NoError(t, err)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}

	// The inverse is cached on first use.
	inv1, err := m.Inverse()
	require.NoError(t, err)
	inv2, err := m.Inverse()
	require.NoError(t, err)
	assert.Same(t, inv1, inv2)
}

func TestPointAtInfinity(t *testing.T) {
	// w = y, so any point on the x axis maps to infinity.
	m, err := New([]float64{1, 0, 0, 0, 1, 0, 0, 1, 0})
	require.NoError(t, err)

	_, err = m.Apply(geometry.Point2D{X: 5, Y: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPointAtInfinity))

	_, err = m.Project([]geometry.Point2D{{X: 1, Y: 1}, {X: 5, Y: 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPointAtInfinity))
}

func TestNewNormalizes(t *testing.T) {
	m, err := New([]float64{2, 0, 0, 0, 2, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, m.At(2, 2), 1e-12)

	_, err = New([]float64{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFile))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, err := Estimate(squareImagePts, halfScaleGroundPts)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "homography.txt")
	require.NoError(t, Save(m, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, m.At(i, j), loaded.At(i, j), 1e-5)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"too few rows":    "1 0 0\n0 1 0\n",
		"short row":       "1 0 0\n0 1\n0 0 1\n",
		"non-numeric":     "1 0 0\n0 one 0\n0 0 1\n",
		"too many rows":   "1 0 0\n0 1 0\n0 0 1\n0 0 1\n",
		"too many fields": "1 0 0 0\n0 1 0\n0 0 1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedFile))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestRMSEMismatch(t *testing.T) {
	_, err := RMSE(squareImagePts, halfScaleGroundPts[:2])
	require.Error(t, err)

	_, err = RMSE(nil, nil)
	require.Error(t, err)
}
