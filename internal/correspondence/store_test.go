package correspondence

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plane-mapper/pkg/geometry"
)

func TestStoreSequentialIDs(t *testing.T) {
	s := NewStore()

	assert.Equal(t, 0, s.Add(PlaneImage, geometry.Point2D{X: 1, Y: 2}))
	assert.Equal(t, 1, s.Add(PlaneImage, geometry.Point2D{X: 3, Y: 4}))
	// IDs are per plane.
	assert.Equal(t, 0, s.Add(PlaneGround, geometry.Point2D{X: 5, Y: 6}))

	assert.Equal(t, 2, s.Count(PlaneImage))
	assert.Equal(t, 1, s.Count(PlaneGround))
}

func TestStoreMove(t *testing.T) {
	s := NewStore()
	id := s.Add(PlaneImage, geometry.Point2D{X: 1, Y: 2})

	require.NoError(t, s.Move(PlaneImage, id, geometry.Point2D{X: 9, Y: 9}))
	p, err := s.Get(PlaneImage, id)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point2D{X: 9, Y: 9}, p.Position)

	err = s.Move(PlaneImage, 7, geometry.Point2D{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestStoreDeleteLast(t *testing.T) {
	s := NewStore()

	// Deleting from an empty plane is a no-op.
	s.DeleteLast(PlaneImage)
	assert.Equal(t, 0, s.Count(PlaneImage))

	s.Add(PlaneImage, geometry.Point2D{X: 1, Y: 1})
	s.Add(PlaneImage, geometry.Point2D{X: 2, Y: 2})
	s.DeleteLast(PlaneImage)
	assert.Equal(t, 1, s.Count(PlaneImage))
	assert.Equal(t, []geometry.Point2D{{X: 1, Y: 1}}, s.Positions(PlaneImage))

	// IDs stay dense: the next add reuses the freed id.
	assert.Equal(t, 1, s.Add(PlaneImage, geometry.Point2D{X: 3, Y: 3}))
}

func TestStoreGeoAttributes(t *testing.T) {
	s := NewStore()
	id := s.Add(PlaneGround, geometry.Point2D{X: 10, Y: 20})
	s.Add(PlaneGround, geometry.Point2D{X: 30, Y: 40})

	assert.False(t, s.HasGeo())

	geo := GeoAttributes{WorldX: 500000, WorldY: 4100000, Elevation: 12}
	require.NoError(t, s.AttachGeo(PlaneGround, id, geo))
	// One point still has no geo data.
	assert.False(t, s.HasGeo())

	require.NoError(t, s.AttachGeo(PlaneGround, 1, GeoAttributes{WorldX: 500010, WorldY: 4100005}))
	assert.True(t, s.HasGeo())

	got := s.GeoPositions()
	require.Len(t, got, 2)
	assert.Equal(t, geo, got[0])

	err := s.AttachGeo(PlaneImage, 0, geo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPlane))
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.Add(PlaneImage, geometry.Point2D{X: 1, Y: 1})
	s.Add(PlaneGround, geometry.Point2D{X: 2, Y: 2})

	s.Reset()
	assert.Equal(t, 0, s.Count(PlaneImage))
	assert.Equal(t, 0, s.Count(PlaneGround))
	assert.False(t, s.HasGeo())
}

func TestPlaneOther(t *testing.T) {
	assert.Equal(t, PlaneGround, PlaneImage.Other())
	assert.Equal(t, PlaneImage, PlaneGround.Other())
	assert.Equal(t, "image", PlaneImage.String())
	assert.Equal(t, "ground", PlaneGround.String())
}
