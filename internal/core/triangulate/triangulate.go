// Package triangulate decomposes simple polygons into triangles by ear
// clipping. It works on any simple polygon, convex or not, in either winding.
package triangulate

import (
	"math"

	"chosenoffset.com/sightline/internal/core/geom"
)

// convexTolerance is the smallest |sin| of the turn at an ear tip.
const convexTolerance = 1e-12

// Triangle is one output unit of triangulation.
type Triangle struct {
	A, B, C geom.Point
}

// SignedArea is positive for counter-clockwise (y-up) triangles.
func (t Triangle) SignedArea() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)) / 2
}

// Area returns the unsigned area.
func (t Triangle) Area() float64 {
	return math.Abs(t.SignedArea())
}

// Points returns the three corners in order.
func (t Triangle) Points() [3]geom.Point {
	return [3]geom.Point{t.A, t.B, t.C}
}

// Area sums the unsigned areas of triangles.
func Area(triangles []Triangle) float64 {
	var sum float64
	for _, t := range triangles {
		sum += t.Area()
	}
	return sum
}

// Triangulate splits a simple polygon into len(polygon)-2 triangles that keep
// the polygon's winding. Fewer than three points, or a polygon with zero area,
// yields nil.
func Triangulate(polygon []geom.Point) []Triangle {
	n := len(polygon)
	if n < 3 {
		return nil
	}

	area := geom.SignedArea(polygon)
	if area == 0 || math.IsNaN(area) || math.IsInf(area, 0) {
		return nil
	}
	winding := 1.0
	if area < 0 {
		winding = -1
	}

	c := clipper{polygon: polygon, winding: winding, idx: make([]int, n)}
	for i := range c.idx {
		c.idx[i] = i
	}
	triangles := make([]Triangle, 0, n-2)

	// Rolling cursor: each failed candidate costs one unit of budget, and a
	// full pass without an ear means the remainder is numerically degenerate.
	budget := 2 * n
	v := n - 1
	for len(c.idx) > 3 {
		nv := len(c.idx)
		if budget <= 0 {
			v = c.flattest()
			u, w := (v+nv-1)%nv, (v+1)%nv
			triangles = append(triangles, c.triangle(u, v, w))
			c.remove(v)
			budget = 2 * len(c.idx)
			continue
		}
		budget--

		u := v
		if u >= nv {
			u = 0
		}
		v = u + 1
		if v >= nv {
			v = 0
		}
		w := v + 1
		if w >= nv {
			w = 0
		}

		if c.isEar(u, v, w) {
			triangles = append(triangles, c.triangle(u, v, w))
			c.remove(v)
			budget = 2 * len(c.idx)
		}
	}

	return append(triangles, c.triangle(0, 1, 2))
}

// clipper is the working state of one triangulation.
type clipper struct {
	polygon []geom.Point
	winding float64
	idx     []int // remaining polygon vertices, in order
}

func (c *clipper) at(i int) geom.Point {
	return c.polygon[c.idx[i]]
}

func (c *clipper) triangle(u, v, w int) Triangle {
	return Triangle{A: c.at(u), B: c.at(v), C: c.at(w)}
}

func (c *clipper) remove(i int) {
	c.idx = append(c.idx[:i], c.idx[i+1:]...)
}

// turn is the winding-adjusted cross product at v, normalised by the lengths
// of both edges: positive for a convex corner.
func (c *clipper) turn(u, v, w int) float64 {
	a, b, d := c.at(u), c.at(v), c.at(w)
	in, out := b.Sub(a), d.Sub(b)
	l := in.Len() * out.Len()
	if l == 0 {
		return 0
	}
	return c.winding * in.Cross(out) / l
}

// isEar reports whether v is a strictly convex corner whose triangle holds no
// other remaining vertex.
func (c *clipper) isEar(u, v, w int) bool {
	if c.turn(u, v, w) <= convexTolerance {
		return false
	}
	a, b, d := c.at(u), c.at(v), c.at(w)
	for i := range c.idx {
		if i == u || i == v || i == w {
			continue
		}
		p := c.at(i)
		if p == a || p == b || p == d {
			continue
		}
		if geom.PointInTriangle(p, a, b, d) {
			return false
		}
	}
	return true
}

// flattest returns the remaining vertex whose turn is closest to straight.
func (c *clipper) flattest() int {
	nv := len(c.idx)
	best, bestTurn := 0, math.Inf(1)
	for v := 0; v < nv; v++ {
		t := math.Abs(c.turn((v+nv-1)%nv, v, (v+1)%nv))
		if t < bestTurn {
			best, bestTurn = v, t
		}
	}
	return best
}
