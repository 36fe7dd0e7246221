// Package visibility computes the region visible from an observer point
// among a fixed set of opaque segments.
package visibility

import "chosenoffset.com/sightline/internal/core/geom"

// Intersection is a ray hit: the point, its parameter along the unit ray
// (the distance from the observer) and the probe angle that produced it.
type Intersection struct {
	geom.Point
	Param float64
	Angle float64
}

// Polygon is a visibility polygon: hits ordered by ascending angle around the
// observer. The last point connects back to the first.
type Polygon []Intersection

// Points returns the bare vertex sequence.
func (p Polygon) Points() []geom.Point {
	pts := make([]geom.Point, len(p))
	for i, in := range p {
		pts[i] = in.Point
	}
	return pts
}

// Edges returns the closed outline as segments.
func (p Polygon) Edges() []geom.Segment {
	if len(p) < 2 {
		return nil
	}
	edges := make([]geom.Segment, len(p))
	for i := range p {
		edges[i] = geom.Segment{A: p[i].Point, B: p[(i+1)%len(p)].Point}
	}
	return edges
}

// Area returns the absolute area enclosed by the polygon.
func (p Polygon) Area() float64 {
	a := geom.SignedArea(p.Points())
	if a < 0 {
		return -a
	}
	return a
}
