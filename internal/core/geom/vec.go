package geom

import "math"

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p * k.
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Cross returns the z component of the cross product p × q.
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Dot returns the dot product.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Len returns the length of p as a vector.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return Distance(p, q)
}

// AlmostEqual reports whether p and q are within Eps on both axes.
func (p Point) AlmostEqual(q Point) bool {
	return math.Abs(p.X-q.X) < Eps && math.Abs(p.Y-q.Y) < Eps
}

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Polar returns the point at distance r and angle theta from p.
func (p Point) Polar(r, theta float64) Point {
	return Point{p.X + math.Cos(theta)*r, p.Y + math.Sin(theta)*r}
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Orient returns the cross product of (b - a) and (c - b): positive for a
// counter-clockwise turn, negative for clockwise, zero when colinear.
func Orient(a, b, c Point) float64 {
	return b.Sub(a).Cross(c.Sub(b))
}
