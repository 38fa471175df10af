// Package calibration estimates full camera pose from annotated image
// points and their georeferenced world coordinates. The pose solver is
// an external process; this package owns the request/response plumbing
// and the result files.
package calibration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"plane-mapper/internal/correspondence"
	"plane-mapper/pkg/geometry"
)

// ErrInsufficientGeoPoints is returned when fewer than four georeferenced
// correspondences are available for pose estimation.
var ErrInsufficientGeoPoints = errors.New("need at least 4 georeferenced correspondences")

// Result is a solved camera pose: the 3x3 intrinsic matrix, the 3x3
// world rotation and the 3x1 translation.
type Result struct {
	K [3][3]float64 `json:"k"`
	R [3][3]float64 `json:"r"`
	T [3]float64    `json:"t"`
}

// Request is the input to a pose solve: pixel coordinates paired
// index-by-index with world coordinates.
type Request struct {
	ImagePoints [][2]float64 `json:"image_points"`
	WorldPoints [][3]float64 `json:"world_points"`
}

// Service solves a camera pose from image/world correspondences.
type Service interface {
	Calibrate(ctx context.Context, imagePts []geometry.Point2D, worldPts []correspondence.GeoAttributes) (*Result, error)
}

// CommandService runs an external solver process. The request is written
// to the process as JSON on stdin and the Result is read back as JSON
// from stdout, so any solver backend can be swapped in.
type CommandService struct {
	Command string
	Args    []string
}

// NewCommandService creates a solver backed by the given command line.
func NewCommandService(command string, args ...string) *CommandService {
	return &CommandService{Command: command, Args: args}
}

// Calibrate invokes the external solver with the correspondences.
func (s *CommandService) Calibrate(ctx context.Context, imagePts []geometry.Point2D, worldPts []correspondence.GeoAttributes) (*Result, error) {
	if len(imagePts) != len(worldPts) {
		return nil, errors.Errorf("point count mismatch: %d image vs %d world", len(imagePts), len(worldPts))
	}
	if len(imagePts) < 4 {
		return nil, errors.Wrapf(ErrInsufficientGeoPoints, "got %d", len(imagePts))
	}

	req := Request{
		ImagePoints: make([][2]float64, len(imagePts)),
		WorldPoints: make([][3]float64, len(worldPts)),
	}
	for i, p := range imagePts {
		req.ImagePoints[i] = [2]float64{p.X, p.Y}
	}
	for i, g := range worldPts {
		req.WorldPoints[i] = [3]float64{g.WorldX, g.WorldY, g.Elevation}
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding calibration request")
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "calibration solver failed: %s", strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, errors.Wrap(err, "decoding calibration result")
	}
	return &result, nil
}

// WriteResult persists a pose under dir as K.txt, R.txt and t.txt, one
// matrix row per line at ten decimal places.
func WriteResult(result *Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating calibration output directory")
	}

	writeRows := func(name string, rows [][]float64) error {
		var b strings.Builder
		for _, row := range rows {
			for j, v := range row {
				if j > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "%.10f", v)
			}
			b.WriteByte('\n')
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		return nil
	}

	kRows := make([][]float64, 3)
	rRows := make([][]float64, 3)
	tRows := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		kRows[i] = result.K[i][:]
		rRows[i] = result.R[i][:]
		tRows[i] = []float64{result.T[i]}
	}
	if err := writeRows("K.txt", kRows); err != nil {
		return err
	}
	if err := writeRows("R.txt", rRows); err != nil {
		return err
	}
	return writeRows("t.txt", tRows)
}
