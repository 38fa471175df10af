package homography

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Save writes the matrix as human-readable text: three lines of three
// space-separated values, row-major.
func Save(m *Matrix, path string) error {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "%.5f %.5f %.5f\n", m.h[i][0], m.h[i][1], m.h[i][2])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.Wrap(err, "writing homography file")
	}
	return nil
}

// Load reads a matrix saved by Save. Blank lines are skipped; anything
// other than exactly three rows of three floating-point values fails with
// ErrMalformedFile.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading homography file")
	}
	return Parse(string(data))
}

// Parse parses the text form of a homography matrix.
func Parse(text string) (*Matrix, error) {
	vals := make([]float64, 0, 9)
	rows := 0

	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrMalformedFile, "row %d has %d values, want 3", rows, len(fields))
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedFile, "row %d: %q is not a number", rows, f)
			}
			vals = append(vals, v)
		}
		rows++
	}

	if rows != 3 {
		return nil, errors.Wrapf(ErrMalformedFile, "have %d rows, want 3", rows)
	}
	return New(vals)
}
