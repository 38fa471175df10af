// Package georaster resolves ground-plane pixel coordinates to real-world
// (UTM) coordinates and elevation. It implements the geo collaborator the
// annotation session calls opaquely; raster decoding itself stays with
// external tooling.
package georaster

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"plane-mapper/internal/correspondence"
)

// Affine is the six-parameter pixel-to-world transform of a georeferenced
// raster, in ESRI world file order: A, D, B, E, C, F.
//
//	worldX = C + col*A + row*B
//	worldY = F + col*D + row*E
type Affine struct {
	A, D, B, E, C, F float64
}

// XY maps a pixel (col, row) to world coordinates at the pixel center.
func (t Affine) XY(col, row int) (float64, float64) {
	x := t.C + float64(col)*t.A + float64(row)*t.B
	y := t.F + float64(col)*t.D + float64(row)*t.E
	return x, y
}

// LoadWorldFile reads a six-line ESRI world file (.tfw and friends).
func LoadWorldFile(path string) (Affine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Affine{}, errors.Wrap(err, "reading world file")
	}

	var vals []float64
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return Affine{}, errors.Wrapf(err, "world file line %q", line)
		}
		vals = append(vals, v)
	}
	if len(vals) != 6 {
		return Affine{}, errors.Errorf("world file has %d parameters, want 6", len(vals))
	}
	return Affine{A: vals[0], D: vals[1], B: vals[2], E: vals[3], C: vals[4], F: vals[5]}, nil
}

// ElevationSampler yields terrain elevation for a raster pixel. Rasters
// without an elevation band simply attach none.
type ElevationSampler interface {
	ElevationAt(col, row int) (float64, bool)
}

// Grid is an in-memory elevation band, row-major.
type Grid struct {
	width, height int
	data          []float64
}

// NewGrid wraps a row-major elevation band of the given dimensions.
func NewGrid(width, height int, data []float64) (*Grid, error) {
	if len(data) != width*height {
		return nil, errors.Errorf("elevation grid has %d samples, want %d", len(data), width*height)
	}
	return &Grid{width: width, height: height, data: data}, nil
}

// ElevationAt returns the elevation at (col, row), or false outside the grid.
func (g *Grid) ElevationAt(col, row int) (float64, bool) {
	if col < 0 || col >= g.width || row < 0 || row >= g.height {
		return 0, false
	}
	return g.data[row*g.width+col], true
}

// Raster is a georeferenced ground-plane raster: an affine transform, the
// raster extent, and an optional elevation band. It satisfies the
// session's GeoLookup contract.
type Raster struct {
	transform Affine
	width     int
	height    int
	elevation ElevationSampler
}

// NewRaster creates a raster lookup over the given extent.
func NewRaster(transform Affine, width, height int, elevation ElevationSampler) *Raster {
	return &Raster{transform: transform, width: width, height: height, elevation: elevation}
}

// LookupPixel resolves a pixel to world coordinates and elevation.
// Pixels outside the raster extent report no geo data rather than an
// error: clicks just off the orthophoto edge are routine.
func (r *Raster) LookupPixel(x, y int) (correspondence.GeoAttributes, bool, error) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return correspondence.GeoAttributes{}, false, nil
	}

	worldX, worldY := r.transform.XY(x, y)
	geo := correspondence.GeoAttributes{WorldX: worldX, WorldY: worldY}
	if r.elevation != nil {
		if elev, ok := r.elevation.ElevationAt(x, y); ok {
			geo.Elevation = elev
		}
	}
	return geo, true, nil
}
