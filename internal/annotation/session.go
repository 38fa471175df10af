package annotation

import (
	"github.com/pkg/errors"

	"plane-mapper/internal/correspondence"
	"plane-mapper/internal/homography"
	"plane-mapper/pkg/geometry"
)

// ErrHomographyRequired is returned when polygon capture or ROI loading is
// attempted before a homography has been computed or loaded.
var ErrHomographyRequired = errors.New("homography required")

// Instruction is the current interaction mode.
type Instruction int

const (
	// InstructionNone accepts no annotation gestures.
	InstructionNone Instruction = iota
	// InstructionPoint captures a single correspondence point.
	InstructionPoint
	// InstructionPolygon captures a mirrored polygon pair.
	InstructionPolygon
)

// GeoLookup resolves a ground-plane pixel coordinate to optional
// real-world attributes. Implemented by the geo-raster collaborator; the
// session calls it opaquely.
type GeoLookup interface {
	LookupPixel(x, y int) (correspondence.GeoAttributes, bool, error)
}

// Session orchestrates the dual-plane annotation workflow. It exclusively
// owns the correspondence store, the current homography and all polygon
// pairs; gestures are processed one at a time, so no locking is needed.
//
// Point capture is per-plane independent (each plane may be mid-capture
// simultaneously); polygon capture is a single session-wide mode, since a
// drawn polygon is always mirrored into the other plane.
type Session struct {
	store *correspondence.Store
	pairs *Collection
	hom   *homography.Matrix

	pendingPoint map[correspondence.Plane]bool
	current      *Pair
	geo          GeoLookup
}

// NewSession creates an empty session with no homography.
func NewSession() *Session {
	return &Session{
		store:        correspondence.NewStore(),
		pairs:        &Collection{},
		pendingPoint: make(map[correspondence.Plane]bool),
	}
}

// AttachGeoLookup attaches the geo-raster collaborator used to annotate
// ground-plane points with real-world coordinates.
func (s *Session) AttachGeoLookup(geo GeoLookup) {
	s.geo = geo
}

// Store returns the session's correspondence store.
func (s *Session) Store() *correspondence.Store {
	return s.store
}

// Pairs returns the finalized polygon pair collection.
func (s *Session) Pairs() *Collection {
	return s.pairs
}

// Homography returns the current homography, or nil if none is set.
func (s *Session) Homography() *homography.Matrix {
	return s.hom
}

// SetHomography installs a homography, e.g. one loaded from a file.
func (s *Session) SetHomography(m *homography.Matrix) {
	s.hom = m
}

// ComputeHomography fits a homography from the current correspondence
// sets and installs it. Fitting is explicit: later point edits never
// trigger a recomputation. On failure the previous homography is kept and
// the error is surfaced; callers must not treat a failed fit as success.
func (s *Session) ComputeHomography() (*homography.Matrix, error) {
	m, err := homography.Estimate(
		s.store.Positions(correspondence.PlaneImage),
		s.store.Positions(correspondence.PlaneGround),
	)
	if err != nil {
		return nil, err
	}
	s.hom = m
	return m, nil
}

// ReprojectionError computes the RMS distance between the forward-projected
// image points and the ground points, the quality metric for the current
// homography.
func (s *Session) ReprojectionError() (float64, error) {
	if s.hom == nil {
		return 0, ErrHomographyRequired
	}
	projected, err := s.hom.Project(s.store.Positions(correspondence.PlaneImage))
	if err != nil {
		return 0, err
	}
	return homography.RMSE(projected, s.store.Positions(correspondence.PlaneGround))
}

// Instruction returns the session-wide interaction mode. A pending point
// capture is reported per plane by PointCaptureActive.
func (s *Session) Instruction() Instruction {
	if s.current != nil {
		return InstructionPolygon
	}
	return InstructionNone
}

// PointCaptureActive reports whether the plane is waiting for a point
// placement click.
func (s *Session) PointCaptureActive(plane correspondence.Plane) bool {
	return s.pendingPoint[plane]
}

// StartPointCapture arms point capture on one plane. Each plane's capture
// state is independent; arming an already armed plane is a no-op.
func (s *Session) StartPointCapture(plane correspondence.Plane) {
	s.pendingPoint[plane] = true
}

// StartPolygonCapture begins drawing a mirrored polygon pair. It requires
// a homography; without one it fails and no polygon is created in either
// plane. The new pair starts with a floating preview vertex in both planes
// that tracks the pointer until the first click commits it.
func (s *Session) StartPolygonCapture() error {
	if s.hom == nil {
		return errors.Wrap(ErrHomographyRequired, "cannot mirror a polygon without a homography")
	}
	if s.current != nil {
		return nil
	}

	pair := NewPair(s.pairs.Len())
	// Floating placeholder at the origin; the first pointer event moves it.
	mirrored, err := s.mirror(correspondence.PlaneImage, geometry.Point2D{})
	if err != nil {
		return err
	}
	pair.Image.AddVertex(geometry.Point2D{})
	pair.Ground.AddVertex(mirrored)
	s.current = pair
	return nil
}

// CurrentPair returns the polygon pair being drawn, or nil.
func (s *Session) CurrentPair() *Pair {
	return s.current
}

// Click processes a primary-button press in one plane.
//
// In point capture it commits the pending point, attaches geo attributes
// for ground-plane points when a geo collaborator is present, and disarms
// that plane. In polygon capture it commits the floating vertex at its
// current position and immediately appends a fresh floating vertex at the
// same position, mirrored into the other plane. Otherwise it is ignored.
func (s *Session) Click(plane correspondence.Plane, pos geometry.Point2D) error {
	if s.pendingPoint[plane] {
		return s.commitPoint(plane, pos)
	}
	if s.current != nil {
		return s.commitPolygonVertex(plane, pos)
	}
	return nil
}

func (s *Session) commitPoint(plane correspondence.Plane, pos geometry.Point2D) error {
	id := s.store.Add(plane, pos)
	s.pendingPoint[plane] = false

	if plane != correspondence.PlaneGround || s.geo == nil {
		return nil
	}
	r := pos.Round()
	geo, ok, err := s.geo.LookupPixel(r.X, r.Y)
	if err != nil {
		// The point stays committed; only the geo annotation failed.
		return errors.Wrapf(err, "geo lookup for point %d", id)
	}
	if !ok {
		return nil
	}
	return s.store.AttachGeo(plane, id, geo)
}

func (s *Session) commitPolygonVertex(origin correspondence.Plane, pos geometry.Point2D) error {
	mirrored, err := s.mirror(origin, pos)
	if err != nil {
		return err
	}

	// Replace the floating vertex with the committed one, then re-add a
	// floating vertex so the shape always has a trailing preview vertex.
	own := s.current.Polygon(origin)
	own.RemoveLastVertex()
	own.AddVertex(pos)
	own.AddVertex(pos)

	other := s.current.Polygon(origin.Other())
	other.RemoveLastVertex()
	other.AddVertex(mirrored)
	other.AddVertex(mirrored)
	return nil
}

// PointerMove drags the floating preview vertex in both planes without
// committing it. Outside polygon capture it is ignored.
func (s *Session) PointerMove(origin correspondence.Plane, pos geometry.Point2D) error {
	if s.current == nil {
		return nil
	}
	mirrored, err := s.mirror(origin, pos)
	if err != nil {
		return err
	}

	own := s.current.Polygon(origin)
	if err := own.MoveVertex(own.VertexCount()-1, pos); err != nil {
		return err
	}
	other := s.current.Polygon(origin.Other())
	return other.MoveVertex(other.VertexCount()-1, mirrored)
}

// EndPolygonCapture leaves polygon mode: the trailing floating vertex is
// dropped from both planes and the pair joins the session's collection.
// A no-op when no capture is active.
func (s *Session) EndPolygonCapture() *Pair {
	if s.current == nil {
		return nil
	}
	pair := s.current
	pair.Image.RemoveLastVertex()
	pair.Ground.RemoveLastVertex()
	s.pairs.Add(pair)
	s.current = nil
	return pair
}

// MoveVertex drags vertex vertexIndex of a finalized pair in the given
// plane. The gesture plane is authoritative for this edit: the sibling
// vertex is recomputed from it through the homography. Authority is
// per-edit, so alternating drags across planes can drift apart when the
// homography is approximate; that matches the interactive tools and is
// why ReprojectionError exists. Without a homography only the gesture
// plane is updated.
func (s *Session) MoveVertex(plane correspondence.Plane, pairIndex, vertexIndex int, pos geometry.Point2D) error {
	pair, err := s.pairs.Pair(pairIndex)
	if err != nil {
		return err
	}
	if err := pair.Polygon(plane).MoveVertex(vertexIndex, pos); err != nil {
		return err
	}
	if s.hom == nil {
		return nil
	}
	mirrored, err := s.mirror(plane, pos)
	if err != nil {
		return err
	}
	return pair.Polygon(plane.Other()).MoveVertex(vertexIndex, mirrored)
}

// MovePoint drags an existing correspondence point. Points are never
// mirrored; each plane's set is authored independently.
func (s *Session) MovePoint(plane correspondence.Plane, id int, pos geometry.Point2D) error {
	return s.store.Move(plane, id, pos)
}

// DeleteLastPoint removes the most recently placed point in the plane;
// no-op when the set is empty.
func (s *Session) DeleteLastPoint(plane correspondence.Plane) {
	s.store.DeleteLast(plane)
}

// DeleteLastPolygon removes the most recently finalized pair from both
// planes; no-op when none exist.
func (s *Session) DeleteLastPolygon() {
	s.pairs.DeleteLast()
}

// RecordClick registers a counting click at pos in the given plane. The
// most recently created polygon containing the position takes the count.
// Returns the label of the polygon hit, or false when none contains pos.
func (s *Session) RecordClick(plane correspondence.Plane, pos geometry.Point2D, lane int) (int, bool) {
	for i := s.pairs.Len() - 1; i >= 0; i-- {
		pair, _ := s.pairs.Pair(i)
		poly := pair.Polygon(plane)
		if poly.Contains(pos) {
			poly.RecordClick(lane)
			return poly.Label, true
		}
	}
	return 0, false
}

// Reset discards all points, polygon pairs, capture state and the
// homography.
func (s *Session) Reset() {
	s.store.Reset()
	s.pairs.Reset()
	s.hom = nil
	s.current = nil
	s.pendingPoint = make(map[correspondence.Plane]bool)
}

// mirror maps a gesture position into the other plane: forward through
// the homography from the image plane, inverse from the ground plane.
func (s *Session) mirror(origin correspondence.Plane, pos geometry.Point2D) (geometry.Point2D, error) {
	if s.hom == nil {
		return geometry.Point2D{}, ErrHomographyRequired
	}
	if origin == correspondence.PlaneImage {
		return s.hom.Apply(pos)
	}
	return s.hom.ApplyInverse(pos)
}
