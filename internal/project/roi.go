package project

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"plane-mapper/internal/annotation"
	"plane-mapper/internal/correspondence"
	"plane-mapper/pkg/geometry"
)

// ErrMalformedROIFile is returned when a ROI file does not match the
// expected shape. A failed load leaves the session untouched.
var ErrMalformedROIFile = errors.New("malformed ROI file")

// groupKey is reserved for collaborator-owned polygon grouping. It is
// carried through load/save byte-for-byte and never interpreted here.
const groupKey = "group"

// roiEntry is the on-disk form of one polygon: vertices normalized to
// [0,1] by the originating plane's dimensions, plus counting state.
type roiEntry struct {
	ROI    [][]float64    `json:"roi"`
	Counts int            `json:"counts,omitempty"`
	Lanes  map[string]int `json:"lanes,omitempty"`
}

// ROIDocument is a parsed ROI file: polygon entries keyed by display
// label plus the untouched group mapping.
type ROIDocument struct {
	Entries map[string]roiEntry
	Group   json.RawMessage
}

// LoadROIDocument parses a ROI file without touching any session.
func LoadROIDocument(path string) (*ROIDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading ROI file")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(ErrMalformedROIFile, err.Error())
	}

	doc := &ROIDocument{Entries: make(map[string]roiEntry)}
	for key, msg := range raw {
		if key == groupKey {
			doc.Group = msg
			continue
		}
		var entry roiEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			return nil, errors.Wrapf(ErrMalformedROIFile, "entry %q: %v", key, err)
		}
		if len(entry.ROI) == 0 {
			return nil, errors.Wrapf(ErrMalformedROIFile, "entry %q has no vertices", key)
		}
		for i, pt := range entry.ROI {
			if len(pt) != 2 {
				return nil, errors.Wrapf(ErrMalformedROIFile, "entry %q vertex %d has %d coordinates, want 2", key, i, len(pt))
			}
		}
		doc.Entries[key] = entry
	}
	return doc, nil
}

// sortedKeys returns the polygon keys in numeric order so replaying a
// file assigns labels deterministically. Non-numeric keys sort last, by
// string.
func (d *ROIDocument) sortedKeys() []string {
	keys := make([]string, 0, len(d.Entries))
	for k := range d.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// LoadROI replays a ROI file into the session. Coordinates are
// denormalized against the current dimensions of the plane the file was
// authored in, and each vertex is replayed through the session's polygon
// capture so the mirrored counterpart is reproduced through the currently
// loaded homography. Fails with annotation.ErrHomographyRequired when the
// session has none; any mid-replay failure rolls the session back.
func LoadROI(session *annotation.Session, plane correspondence.Plane, dims geometry.Size, path string) (*ROIDocument, error) {
	doc, err := LoadROIDocument(path)
	if err != nil {
		return nil, err
	}
	if session.Homography() == nil {
		return nil, annotation.ErrHomographyRequired
	}
	if !dims.Valid() {
		return nil, errors.Wrapf(ErrMalformedROIFile, "invalid plane dimensions %gx%g", dims.Width, dims.Height)
	}

	before := session.Pairs().Len()
	rollback := func() {
		session.EndPolygonCapture()
		for session.Pairs().Len() > before {
			session.DeleteLastPolygon()
		}
	}

	for _, key := range doc.sortedKeys() {
		entry := doc.Entries[key]
		if err := session.StartPolygonCapture(); err != nil {
			rollback()
			return nil, err
		}
		for _, pt := range entry.ROI {
			pos := geometry.Point2D{X: pt[0] * dims.Width, Y: pt[1] * dims.Height}
			if err := session.Click(plane, pos); err != nil {
				rollback()
				return nil, err
			}
		}
		pair := session.EndPolygonCapture()
		lanes := make(map[int]int, len(entry.Lanes))
		for k, v := range entry.Lanes {
			lane, err := strconv.Atoi(k)
			if err != nil {
				rollback()
				return nil, errors.Wrapf(ErrMalformedROIFile, "entry %q lane %q", key, k)
			}
			lanes[lane] = v
		}
		pair.Polygon(plane).SetClicks(entry.Counts, lanes)
	}
	return doc, nil
}

// SaveROI writes the session's finalized polygons from the given plane,
// normalized against that plane's dimensions. A previously loaded
// document may be passed to carry its group mapping through unchanged;
// nil starts a fresh file.
func SaveROI(session *annotation.Session, plane correspondence.Plane, dims geometry.Size, doc *ROIDocument, path string) error {
	if !dims.Valid() {
		return errors.Wrapf(ErrMalformedROIFile, "invalid plane dimensions %gx%g", dims.Width, dims.Height)
	}

	out := make(map[string]json.RawMessage)
	if doc != nil && doc.Group != nil {
		out[groupKey] = doc.Group
	}

	for _, pair := range session.Pairs().Pairs() {
		poly := pair.Polygon(plane)
		entry := roiEntry{Counts: poly.Clicks()}
		for _, v := range poly.Vertices() {
			entry.ROI = append(entry.ROI, []float64{v.X / dims.Width, v.Y / dims.Height})
		}
		if lanes := poly.LaneClicks(); len(lanes) > 0 {
			entry.Lanes = make(map[string]int, len(lanes))
			for k, v := range lanes {
				entry.Lanes[strconv.Itoa(k)] = v
			}
		}
		msg, err := json.Marshal(entry)
		if err != nil {
			return errors.Wrap(err, "encoding ROI entry")
		}
		out[fmt.Sprintf("%d", poly.Label+1)] = msg
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding ROI file")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing ROI file")
	}
	return nil
}
