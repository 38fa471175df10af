// Package annotation maintains mirrored polygon pairs across the image and
// ground planes and the interactive session that edits them.
package annotation

import (
	"github.com/pkg/errors"

	"plane-mapper/internal/correspondence"
	"plane-mapper/pkg/geometry"
)

// ErrIndexOutOfRange is returned for a stale vertex or pair reference.
var ErrIndexOutOfRange = errors.New("index out of range")

// Polygon is an ordered vertex sequence in one plane, with a stable
// display label and click counters for the counting workflow.
type Polygon struct {
	Label int

	vertices   []geometry.Point2D
	clicks     int
	laneClicks map[int]int
}

// NewPolygon creates an empty polygon with the given label.
func NewPolygon(label int) *Polygon {
	return &Polygon{Label: label}
}

// AddVertex appends a vertex.
func (p *Polygon) AddVertex(pos geometry.Point2D) {
	p.vertices = append(p.vertices, pos)
}

// RemoveLastVertex pops the last vertex; no-op when empty.
func (p *Polygon) RemoveLastVertex() {
	if len(p.vertices) == 0 {
		return
	}
	p.vertices = p.vertices[:len(p.vertices)-1]
}

// MoveVertex updates a vertex in place.
func (p *Polygon) MoveVertex(index int, pos geometry.Point2D) error {
	if index < 0 || index >= len(p.vertices) {
		return errors.Wrapf(ErrIndexOutOfRange, "polygon %d has no vertex %d", p.Label, index)
	}
	p.vertices[index] = pos
	return nil
}

// Vertex returns the vertex at index.
func (p *Polygon) Vertex(index int) (geometry.Point2D, error) {
	if index < 0 || index >= len(p.vertices) {
		return geometry.Point2D{}, errors.Wrapf(ErrIndexOutOfRange, "polygon %d has no vertex %d", p.Label, index)
	}
	return p.vertices[index], nil
}

// VertexCount returns the number of vertices.
func (p *Polygon) VertexCount() int {
	return len(p.vertices)
}

// Vertices returns a copy of the vertex sequence.
func (p *Polygon) Vertices() []geometry.Point2D {
	out := make([]geometry.Point2D, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// Centroid returns the polygon's label-anchor position.
func (p *Polygon) Centroid() geometry.Point2D {
	return geometry.Centroid(p.vertices)
}

// Contains tests whether the point lies inside the polygon.
func (p *Polygon) Contains(pos geometry.Point2D) bool {
	return geometry.PointInPolygon(pos, p.vertices)
}

// RecordClick increments the polygon's total click count and, for
// lane >= 0, the per-lane count.
func (p *Polygon) RecordClick(lane int) {
	p.clicks++
	if lane >= 0 {
		if p.laneClicks == nil {
			p.laneClicks = make(map[int]int)
		}
		p.laneClicks[lane]++
	}
}

// Clicks returns the total click count.
func (p *Polygon) Clicks() int {
	return p.clicks
}

// SetClicks restores counters, e.g. when loading a saved ROI file.
func (p *Polygon) SetClicks(total int, lanes map[int]int) {
	p.clicks = total
	if len(lanes) == 0 {
		p.laneClicks = nil
		return
	}
	p.laneClicks = make(map[int]int, len(lanes))
	for k, v := range lanes {
		p.laneClicks[k] = v
	}
}

// LaneClicks returns a copy of the per-lane click counts.
func (p *Polygon) LaneClicks() map[int]int {
	if p.laneClicks == nil {
		return nil
	}
	out := make(map[int]int, len(p.laneClicks))
	for k, v := range p.laneClicks {
		out[k] = v
	}
	return out
}

// Pair is an image-plane polygon and a ground-plane polygon created and
// destroyed together, vertex-index-aligned while a homography is defined.
type Pair struct {
	Image  *Polygon
	Ground *Polygon
}

// NewPair creates an empty polygon pair sharing one label.
func NewPair(label int) *Pair {
	return &Pair{Image: NewPolygon(label), Ground: NewPolygon(label)}
}

// Polygon returns the pair's polygon in the given plane.
func (pr *Pair) Polygon(plane correspondence.Plane) *Polygon {
	if plane == correspondence.PlaneImage {
		return pr.Image
	}
	return pr.Ground
}

// Label returns the pair's shared display label.
func (pr *Pair) Label() int {
	return pr.Image.Label
}

// Collection holds finalized polygon pairs in creation order.
type Collection struct {
	pairs []*Pair
}

// Add appends a finalized pair.
func (c *Collection) Add(pair *Pair) {
	c.pairs = append(c.pairs, pair)
}

// DeleteLast removes the most recently finalized pair from both planes'
// collections; no-op when none exist.
func (c *Collection) DeleteLast() {
	if len(c.pairs) == 0 {
		return
	}
	c.pairs = c.pairs[:len(c.pairs)-1]
}

// Len returns the number of pairs.
func (c *Collection) Len() int {
	return len(c.pairs)
}

// Pair returns the pair at index.
func (c *Collection) Pair(index int) (*Pair, error) {
	if index < 0 || index >= len(c.pairs) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "no polygon pair %d", index)
	}
	return c.pairs[index], nil
}

// Pairs returns the pairs in creation order.
func (c *Collection) Pairs() []*Pair {
	out := make([]*Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Reset discards all pairs.
func (c *Collection) Reset() {
	c.pairs = nil
}
