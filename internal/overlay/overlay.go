// Package overlay renders a visual check of a fitted homography: the
// image plane warped onto the ground plane, with the annotated ground
// points and the reprojected image points drawn over the blend.
package overlay

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"plane-mapper/internal/homography"
	"plane-mapper/pkg/geometry"
)

// Blend weights for the composite: the ground raster dominates, the
// warped image shows through underneath.
const (
	groundWeight = 0.7
	warpedWeight = 0.3
)

var (
	groundPointColor      = color.RGBA{G: 255, A: 255}
	reprojectedPointColor = color.RGBA{R: 255, A: 255}
)

// matrixToMat converts a homography to the CV64F Mat gocv's warp wants.
func matrixToMat(m *homography.Matrix) gocv.Mat {
	out := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.SetDoubleAt(i, j, m.At(i, j))
		}
	}
	return out
}

// Render warps the image-plane frame onto the ground raster through the
// homography, blends the two, and marks the annotated ground points in
// green next to the reprojected image points in red. The distance between
// a green/red pair is the per-point reprojection error, visible at a
// glance. The caller owns the returned Mat.
func Render(imageFrame, groundFrame gocv.Mat, m *homography.Matrix, imagePts, groundPts []geometry.Point2D) (gocv.Mat, error) {
	if imageFrame.Empty() || groundFrame.Empty() {
		return gocv.NewMat(), errors.New("empty frame")
	}

	hMat := matrixToMat(m)
	defer hMat.Close()

	dims := image.Point{X: groundFrame.Cols(), Y: groundFrame.Rows()}
	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(imageFrame, &warped, hMat, dims)

	blend := gocv.NewMat()
	gocv.AddWeighted(groundFrame, groundWeight, warped, warpedWeight, 0, &blend)

	for _, p := range groundPts {
		r := p.Round()
		gocv.Circle(&blend, image.Point{X: r.X, Y: r.Y}, 5, groundPointColor, -1)
	}

	reprojected, err := m.Project(imagePts)
	if err != nil {
		blend.Close()
		return gocv.NewMat(), errors.Wrap(err, "reprojecting image points")
	}
	for _, p := range reprojected {
		r := p.Round()
		gocv.Circle(&blend, image.Point{X: r.X, Y: r.Y}, 5, reprojectedPointColor, -1)
	}
	return blend, nil
}

// RenderToFile renders the overlay and writes it as an image file.
func RenderToFile(imageFrame, groundFrame gocv.Mat, m *homography.Matrix, imagePts, groundPts []geometry.Point2D, path string) error {
	blend, err := Render(imageFrame, groundFrame, m, imagePts, groundPts)
	if err != nil {
		return err
	}
	defer blend.Close()

	if ok := gocv.IMWrite(path, blend); !ok {
		return errors.Errorf("writing overlay image %s", path)
	}
	return nil
}

// LoadFrame reads a still image into a Mat for overlay rendering. Video
// sources use media.VideoFile.FirstFrame instead.
func LoadFrame(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return gocv.NewMat(), errors.Errorf("reading image %s", path)
	}
	return mat, nil
}
