// Package correspondence owns the labeled point sets that tie the image
// plane and the ground plane together.
package correspondence

// Plane identifies which of the two coordinate spaces a value belongs to.
// Coordinates are never mixed across planes without an explicit transform.
type Plane int

const (
	// PlaneImage is the camera/image coordinate space.
	PlaneImage Plane = iota
	// PlaneGround is the ground/world (orthophoto) coordinate space.
	PlaneGround
)

// Other returns the opposite plane.
func (p Plane) Other() Plane {
	if p == PlaneImage {
		return PlaneGround
	}
	return PlaneImage
}

func (p Plane) String() string {
	switch p {
	case PlaneImage:
		return "image"
	case PlaneGround:
		return "ground"
	default:
		return "unknown"
	}
}
