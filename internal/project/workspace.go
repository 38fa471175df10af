// Package project persists annotation sessions: correspondence point
// files, the homography matrix, and ROI polygon files.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"plane-mapper/internal/annotation"
	"plane-mapper/internal/correspondence"
	"plane-mapper/internal/homography"
)

// Well-known file names inside a workspace directory.
const (
	ImagePointsFile  = "image_points.txt"
	GroundPointsFile = "ground_points.txt"
	GeoRefFile       = "georef_points.txt"
	HomographyFile   = "homography.txt"
)

// Workspace is a directory holding the saved progress for one
// image/ground media pair. Its name is derived from the image-plane
// media file name.
type Workspace struct {
	Dir string
}

// NewWorkspace derives a workspace directory from a media path:
// "footage/cam3.mp4" saves under "cam3/".
func NewWorkspace(mediaPath string) *Workspace {
	base := filepath.Base(mediaPath)
	return &Workspace{Dir: strings.TrimSuffix(base, filepath.Ext(base))}
}

func (w *Workspace) path(name string) string {
	return filepath.Join(w.Dir, name)
}

// SaveProgress writes both planes' point files, the homography (when one
// is set) and the georef triples (when every ground point carries them).
func (w *Workspace) SaveProgress(session *annotation.Session) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return errors.Wrap(err, "creating workspace directory")
	}

	store := session.Store()
	if err := correspondence.SavePoints(store.Positions(correspondence.PlaneImage), w.path(ImagePointsFile)); err != nil {
		return err
	}
	if err := correspondence.SavePoints(store.Positions(correspondence.PlaneGround), w.path(GroundPointsFile)); err != nil {
		return err
	}

	if m := session.Homography(); m != nil {
		if err := homography.Save(m, w.path(HomographyFile)); err != nil {
			return err
		}
	}
	if store.HasGeo() {
		if err := correspondence.SaveGeoPoints(store.GeoPositions(), w.path(GeoRefFile)); err != nil {
			return err
		}
	}
	return nil
}

// LoadProgress restores saved point sets (and georef triples if present)
// into the session's store. The homography file, when present, is loaded
// and installed as well.
func (w *Workspace) LoadProgress(session *annotation.Session) error {
	imagePts, err := correspondence.LoadPoints(w.path(ImagePointsFile))
	if err != nil {
		return err
	}
	groundPts, err := correspondence.LoadPoints(w.path(GroundPointsFile))
	if err != nil {
		return err
	}

	store := session.Store()
	for _, p := range imagePts {
		store.Add(correspondence.PlaneImage, p)
	}
	for _, p := range groundPts {
		store.Add(correspondence.PlaneGround, p)
	}

	if geoPath := w.path(GeoRefFile); fileExists(geoPath) {
		geo, err := correspondence.LoadGeoPoints(geoPath)
		if err != nil {
			return err
		}
		for id, g := range geo {
			if id >= store.Count(correspondence.PlaneGround) {
				break
			}
			if err := store.AttachGeo(correspondence.PlaneGround, id, g); err != nil {
				return err
			}
		}
	}

	if homPath := w.path(HomographyFile); fileExists(homPath) {
		m, err := homography.Load(homPath)
		if err != nil {
			return err
		}
		session.SetHomography(m)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
