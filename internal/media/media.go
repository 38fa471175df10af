// Package media probes image and video sources for the plane dimensions
// the annotation core needs. Pixel data is only touched for the overlay
// preview's first frame; decoding beyond that is out of scope.
package media

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"plane-mapper/pkg/geometry"
)

// Source yields a plane's pixel dimensions. The annotation core consumes
// only dimensions; rendering belongs to the GUI collaborator.
type Source interface {
	Dimensions() geometry.Size
	Path() string
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".tif": true, ".tiff": true, ".img": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
}

// Open probes a media file by extension and returns a Source for it.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return OpenImage(path)
	case videoExts[ext]:
		return OpenVideo(path)
	default:
		return nil, errors.Errorf("unsupported media type %q", ext)
	}
}

// ImageFile is a still-image source. Dimensions come from the header via
// DecodeConfig; the pixels are never loaded here.
type ImageFile struct {
	path string
	size geometry.Size
}

// OpenImage probes an image file's dimensions.
func OpenImage(path string) (*ImageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding image header of %s", path)
	}
	return &ImageFile{
		path: path,
		size: geometry.NewSize(float64(cfg.Width), float64(cfg.Height)),
	}, nil
}

// Dimensions returns the image's pixel dimensions.
func (f *ImageFile) Dimensions() geometry.Size { return f.size }

// Path returns the file path.
func (f *ImageFile) Path() string { return f.path }

// VideoFile is a video source; dimensions are probed from the stream.
type VideoFile struct {
	path string
	size geometry.Size
}

// OpenVideo probes a video file's frame dimensions.
func OpenVideo(path string) (*VideoFile, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening video %s", path)
	}
	defer cap.Close()

	w := cap.Get(gocv.VideoCaptureFrameWidth)
	h := cap.Get(gocv.VideoCaptureFrameHeight)
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("video %s reports no frame dimensions", path)
	}
	return &VideoFile{path: path, size: geometry.NewSize(w, h)}, nil
}

// Dimensions returns the video's frame dimensions.
func (f *VideoFile) Dimensions() geometry.Size { return f.size }

// Path returns the file path.
func (f *VideoFile) Path() string { return f.path }

// FirstFrame reads and returns the first frame of the video. The caller
// owns the returned Mat and must Close it.
func (f *VideoFile) FirstFrame() (gocv.Mat, error) {
	cap, err := gocv.VideoCaptureFile(f.path)
	if err != nil {
		return gocv.NewMat(), errors.Wrapf(err, "opening video %s", f.path)
	}
	defer cap.Close()

	frame := gocv.NewMat()
	if ok := cap.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.NewMat(), errors.Errorf("video %s has no readable frames", f.path)
	}
	return frame, nil
}
