package correspondence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plane-mapper/pkg/geometry"
)

func TestPointsRoundTrip(t *testing.T) {
	pts := []geometry.Point2D{{X: 10, Y: 20}, {X: 640, Y: 480}, {X: 3, Y: 7}}
	path := filepath.Join(t.TempDir(), "points.txt")

	require.NoError(t, SavePoints(pts, path))
	loaded, err := LoadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, pts, loaded)
}

func TestSavePointsRoundsToPixels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, SavePoints([]geometry.Point2D{{X: 10.6, Y: 19.4}}, path))

	loaded, err := LoadPoints(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, geometry.Point2D{X: 11, Y: 19}, loaded[0])
}

func TestLoadPointsTolerantAndStrict(t *testing.T) {
	dir := t.TempDir()

	// Float text and blank lines are accepted.
	path := filepath.Join(dir, "floats.txt")
	require.NoError(t, os.WriteFile(path, []byte("1.5 2.5\n\n3 4\n"), 0644))
	loaded, err := LoadPoints(path)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point2D{{X: 1.5, Y: 2.5}, {X: 3, Y: 4}}, loaded)

	// A wrong column count is not.
	path = filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n"), 0644))
	_, err = LoadPoints(path)
	require.Error(t, err)
}

func TestGeoPointsRoundTrip(t *testing.T) {
	geo := []GeoAttributes{
		{WorldX: 500123, WorldY: 4101456, Elevation: 87},
		{WorldX: 500200, WorldY: 4101500, Elevation: 90},
	}
	path := filepath.Join(t.TempDir(), "georef.txt")

	require.NoError(t, SaveGeoPoints(geo, path))
	loaded, err := LoadGeoPoints(path)
	require.NoError(t, err)
	assert.Equal(t, geo, loaded)
}

func TestLoadGeoPointsColumnCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "georef.txt")
	require.NoError(t, os.WriteFile(path, []byte("500123 4101456\n"), 0644))
	_, err := LoadGeoPoints(path)
	require.Error(t, err)
}
