package media

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

func TestOpenImageDimensions(t *testing.T) {
	path := writePNG(t, 640, 480)

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 640.0, src.Dimensions().Width)
	assert.Equal(t, 480.0, src.Dimensions().Height)
	assert.Equal(t, path, src.Path())
}

func TestOpenUnsupportedExtension(t *testing.T) {
	_, err := Open("notes.txt")
	require.Error(t, err)
}

func TestOpenImageMissingFile(t *testing.T) {
	_, err := OpenImage(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
}

func TestOpenImageNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0644))
	_, err := OpenImage(path)
	require.Error(t, err)
}
