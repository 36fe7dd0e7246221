package visibility

import (
	"sync"

	"chosenoffset.com/sightline/internal/core/geom"
)

// Store holds the opaque segments in insertion order. It is filled once at
// setup and only read afterwards; concurrent Compute calls may share it.
type Store struct {
	segments []geom.Segment

	indexOnce sync.Once
	index     *segmentIndex
}

// NewStore creates an empty segment store.
func NewStore() *Store {
	return &Store{}
}

// AddClosedPolyline appends one segment per consecutive pair of points and a
// closing segment from the last point back to the first.
func (s *Store) AddClosedPolyline(points ...geom.Point) {
	if len(points) < 2 {
		return
	}
	for i, p := range points {
		next := points[0]
		if i < len(points)-1 {
			next = points[i+1]
		}
		s.segments = append(s.segments, geom.Segment{A: p, B: next})
	}
	s.resetIndex()
}

// AddRect adds the four edges of r as a closed polyline.
func (s *Store) AddRect(r geom.Rect) {
	s.AddClosedPolyline(r.Corners()...)
}

// Segments returns a copy of the stored segments.
func (s *Store) Segments() []geom.Segment {
	out := make([]geom.Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Len returns the number of stored segments.
func (s *Store) Len() int {
	return len(s.segments)
}

// Bounds returns the bounding box of every stored endpoint.
func (s *Store) Bounds() (geom.Rect, bool) {
	if len(s.segments) == 0 {
		return geom.Rect{}, false
	}
	r, _ := geom.BoundsOf(s.segments[0].A, s.segments[0].B)
	for _, seg := range s.segments[1:] {
		sr, _ := geom.BoundsOf(seg.A, seg.B)
		r = r.Union(sr)
	}
	return r, true
}

// uniqueEndpoints returns every segment endpoint once, in first-seen order.
// With tol == 0 points are merged only on exact equality.
func (s *Store) uniqueEndpoints(tol float64) []geom.Point {
	points := make([]geom.Point, 0, len(s.segments)*2)
	if tol == 0 {
		seen := make(map[geom.Point]bool, len(s.segments)*2)
		for _, seg := range s.segments {
			for _, p := range [2]geom.Point{seg.A, seg.B} {
				if !seen[p] {
					seen[p] = true
					points = append(points, p)
				}
			}
		}
		return points
	}

	for _, seg := range s.segments {
		for _, p := range [2]geom.Point{seg.A, seg.B} {
			dup := false
			for _, q := range points {
				if geom.Distance(p, q) <= tol {
					dup = true
					break
				}
			}
			if !dup {
				points = append(points, p)
			}
		}
	}
	return points
}

func (s *Store) resetIndex() {
	s.indexOnce = sync.Once{}
	s.index = nil
}

// spatialIndex builds the R-tree on first use.
func (s *Store) spatialIndex() *segmentIndex {
	s.indexOnce.Do(func() {
		s.index = newSegmentIndex(s.segments)
	})
	return s.index
}
