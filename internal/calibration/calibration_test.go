package calibration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plane-mapper/internal/correspondence"
	"plane-mapper/pkg/geometry"
)

func TestCalibrateInputValidation(t *testing.T) {
	svc := NewCommandService("true")
	ctx := context.Background()

	imagePts := []geometry.Point2D{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 1}}
	worldPts := make([]correspondence.GeoAttributes, 3)

	_, err := svc.Calibrate(ctx, imagePts, worldPts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientGeoPoints))

	_, err = svc.Calibrate(ctx, imagePts, worldPts[:2])
	require.Error(t, err)
}

func TestCalibrateSolverFailure(t *testing.T) {
	svc := NewCommandService("false")
	imagePts := make([]geometry.Point2D, 4)
	worldPts := make([]correspondence.GeoAttributes, 4)

	_, err := svc.Calibrate(context.Background(), imagePts, worldPts)
	require.Error(t, err)
}

func TestWriteResult(t *testing.T) {
	result := &Result{
		K: [3][3]float64{{1200.5, 0, 960}, {0, 1200.5, 540}, {0, 0, 1}},
		R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		T: [3]float64{500123.25, 4101456.5, 87},
	}

	dir := filepath.Join(t.TempDir(), "cam3")
	require.NoError(t, WriteResult(result, dir))

	k, err := os.ReadFile(filepath.Join(dir, "K.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(k)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1200.5000000000 0.0000000000 960.0000000000", lines[0])

	tFile, err := os.ReadFile(filepath.Join(dir, "t.txt"))
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(tFile)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "500123.2500000000", lines[0])

	_, err = os.Stat(filepath.Join(dir, "R.txt"))
	require.NoError(t, err)
}
