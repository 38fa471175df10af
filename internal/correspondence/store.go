package correspondence

import (
	"github.com/pkg/errors"

	"plane-mapper/pkg/geometry"
)

// Error kinds surfaced by the store.
var (
	// ErrInvalidID is returned when a point id is unknown in the plane's set.
	ErrInvalidID = errors.New("invalid point id")

	// ErrInvalidPlane is returned when an operation only defined for one
	// plane is invoked on the other (e.g. UTM attributes on the image plane).
	ErrInvalidPlane = errors.New("operation not valid for this plane")
)

// GeoAttributes are optional real-world coordinates for a ground-plane
// point, populated by an external geo-raster collaborator.
type GeoAttributes struct {
	WorldX    float64 `json:"world_x"`
	WorldY    float64 `json:"world_y"`
	Elevation float64 `json:"elevation"`
}

// Point is a single labeled correspondence point within one plane.
// Points with the same ID in the two planes mark the same physical feature.
type Point struct {
	ID       int
	Position geometry.Point2D
	Geo      *GeoAttributes
}

// Store holds the ordered, id-indexed point sets for both planes. IDs are
// sequential per plane; deletion follows a stack discipline (only the
// most recent point can be removed), so ids stay dense.
type Store struct {
	points map[Plane][]Point
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{points: map[Plane][]Point{
		PlaneImage:  nil,
		PlaneGround: nil,
	}}
}

// Add appends a point with the next sequential id for the plane and
// returns that id. The two planes' counts may diverge while the operator
// is mid-capture; equality is only required to fit a homography.
func (s *Store) Add(plane Plane, pos geometry.Point2D) int {
	id := len(s.points[plane])
	s.points[plane] = append(s.points[plane], Point{ID: id, Position: pos})
	return id
}

// Move updates the position of an existing point.
func (s *Store) Move(plane Plane, id int, pos geometry.Point2D) error {
	pts := s.points[plane]
	if id < 0 || id >= len(pts) {
		return errors.Wrapf(ErrInvalidID, "%s plane has no point %d", plane, id)
	}
	pts[id].Position = pos
	return nil
}

// DeleteLast removes the highest-id point from the plane. Deleting from an
// empty set is a no-op: this is driven by a UI shortcut with no
// precondition check, so "nothing to delete" is not an error.
func (s *Store) DeleteLast(plane Plane) {
	pts := s.points[plane]
	if len(pts) == 0 {
		return
	}
	s.points[plane] = pts[:len(pts)-1]
}

// Count returns the number of points in the plane.
func (s *Store) Count(plane Plane) int {
	return len(s.points[plane])
}

// Positions returns the plane's point positions ordered by id.
func (s *Store) Positions(plane Plane) []geometry.Point2D {
	pts := s.points[plane]
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = p.Position
	}
	return out
}

// Get returns a copy of the point with the given id.
func (s *Store) Get(plane Plane, id int) (Point, error) {
	pts := s.points[plane]
	if id < 0 || id >= len(pts) {
		return Point{}, errors.Wrapf(ErrInvalidID, "%s plane has no point %d", plane, id)
	}
	return pts[id], nil
}

// AttachGeo sets the optional real-world attributes of a ground-plane
// point. Image-plane points carry no geo data.
func (s *Store) AttachGeo(plane Plane, id int, geo GeoAttributes) error {
	if plane != PlaneGround {
		return errors.Wrap(ErrInvalidPlane, "geo attributes only exist on the ground plane")
	}
	pts := s.points[plane]
	if id < 0 || id >= len(pts) {
		return errors.Wrapf(ErrInvalidID, "%s plane has no point %d", plane, id)
	}
	g := geo
	pts[id].Geo = &g
	return nil
}

// GeoPositions returns the attached geo triples for ground-plane points,
// ordered by id. Points without geo data contribute a zero triple.
func (s *Store) GeoPositions() []GeoAttributes {
	pts := s.points[PlaneGround]
	out := make([]GeoAttributes, len(pts))
	for i, p := range pts {
		if p.Geo != nil {
			out[i] = *p.Geo
		}
	}
	return out
}

// HasGeo reports whether every ground-plane point carries geo attributes.
func (s *Store) HasGeo() bool {
	pts := s.points[PlaneGround]
	if len(pts) == 0 {
		return false
	}
	for _, p := range pts {
		if p.Geo == nil {
			return false
		}
	}
	return true
}

// Reset discards all points in both planes.
func (s *Store) Reset() {
	s.points[PlaneImage] = nil
	s.points[PlaneGround] = nil
}
