package correspondence

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"plane-mapper/pkg/geometry"
)

// SavePoints writes one "x y" line per point, integer-rounded pixel
// coordinates, ordered by id. This is the save-progress wire format.
func SavePoints(points []geometry.Point2D, path string) error {
	var b strings.Builder
	for _, p := range points {
		r := p.Round()
		fmt.Fprintf(&b, "%d %d\n", r.X, r.Y)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrap(err, "writing points file")
	}
	return nil
}

// LoadPoints reads a points file written by SavePoints. Float text is
// tolerated; a row with a column count other than 2 is an error.
func LoadPoints(path string) ([]geometry.Point2D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading points file")
	}

	var points []geometry.Point2D
	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Errorf("points file row %d has %d columns, want 2", i, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "points file row %d", i)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "points file row %d", i)
		}
		points = append(points, geometry.Point2D{X: x, Y: y})
	}
	return points, nil
}

// SaveGeoPoints writes one "utmX utmY elevation" line per ground point.
func SaveGeoPoints(geo []GeoAttributes, path string) error {
	var b strings.Builder
	for _, g := range geo {
		fmt.Fprintf(&b, "%d %d %d\n",
			int64(g.WorldX), int64(g.WorldY), int64(g.Elevation))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrap(err, "writing georef file")
	}
	return nil
}

// LoadGeoPoints reads a georef file written by SaveGeoPoints.
func LoadGeoPoints(path string) ([]GeoAttributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading georef file")
	}

	var geo []GeoAttributes
	for i, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Errorf("georef file row %d has %d columns, want 3", i, len(fields))
		}
		var vals [3]float64
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "georef file row %d", i)
			}
			vals[j] = v
		}
		geo = append(geo, GeoAttributes{WorldX: vals[0], WorldY: vals[1], Elevation: vals[2]})
	}
	return geo, nil
}
