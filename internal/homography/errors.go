package homography

import "errors"

// Error kinds surfaced by the solver. Callers match with errors.Is; the
// returned errors may carry additional context via wrapping.
var (
	// ErrInsufficientCorrespondences is returned when fewer than four
	// correspondence pairs are available, or the two sets differ in length.
	ErrInsufficientCorrespondences = errors.New("insufficient correspondences")

	// ErrDegenerateConfiguration is returned when the correspondence
	// configuration is rank-deficient (e.g. near-collinear points) and no
	// unique homography exists.
	ErrDegenerateConfiguration = errors.New("degenerate point configuration")

	// ErrNonInvertible is returned when the homography matrix is singular
	// and cannot be inverted.
	ErrNonInvertible = errors.New("homography is not invertible")

	// ErrPointAtInfinity is returned when a point's homogeneous coordinate
	// vanishes under the transform, i.e. the point maps to infinity.
	ErrPointAtInfinity = errors.New("point maps to infinity")

	// ErrMalformedFile is returned when a homography file does not contain
	// a 3x3 matrix of floating-point values.
	ErrMalformedFile = errors.New("malformed homography file")
)
