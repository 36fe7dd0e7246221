package geom

import "math"

// SignedArea returns the shoelace area of the closed polygon. It is positive
// when the points wind counter-clockwise in a y-up frame.
func SignedArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i, p := range points {
		q := points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// PointInPolygon tests if a point is inside a polygon using ray casting algorithm
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// PointOnSegment reports whether p lies on s within tol.
func PointOnSegment(p Point, s Segment, tol float64) bool {
	d := s.Delta()
	l2 := d.Dot(d)
	if l2 == 0 {
		return Distance(p, s.A) <= tol
	}
	t := p.Sub(s.A).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, s.A.Add(d.Scale(t))) <= tol
}

// PointInTriangle reports whether p lies inside triangle abc or on its
// boundary, for either winding.
func PointInTriangle(p, a, b, c Point) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
