package visibility

import (
	"log/slog"
	"math"
	"sort"

	"chosenoffset.com/sightline/internal/core/geom"
)

// Solver computes visibility polygons. A Solver has no mutable state and may
// be shared between goroutines.
type Solver struct {
	opts options
}

// NewSolver creates a solver with the given options applied over the
// defaults (ε = 0.0001, exact endpoint deduplication, cross-product parallel
// test, linear scan, colinear vertices removed).
func NewSolver(opts ...Option) *Solver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Solver{opts: o}
}

var defaultSolver = NewSolver()

// ComputeVisibilityPolygon computes the visibility polygon of observer with
// the default solver.
func ComputeVisibilityPolygon(observer geom.Point, store *Store) Polygon {
	return defaultSolver.Compute(observer, store)
}

// Compute casts three probe rays at every unique segment endpoint (the
// endpoint angle and ε either side), keeps the closest hit of each probe and
// returns the hits sorted by angle. Probes that hit nothing are dropped, which
// only happens when the border does not enclose the observer.
func (s *Solver) Compute(observer geom.Point, store *Store) Polygon {
	if store == nil || store.Len() == 0 {
		return nil
	}

	points := store.uniqueEndpoints(s.opts.dedupe)

	angles := make([]float64, 0, len(points)*3)
	for _, p := range points {
		angle := math.Atan2(p.Y-observer.Y, p.X-observer.X)
		angles = append(angles, angle-s.opts.epsilon, angle, angle+s.opts.epsilon)
	}

	var index *segmentIndex
	var reach float64
	if s.opts.spatialIndex {
		index = store.spatialIndex()
		reach = index.reach(observer)
	}

	polygon := make(Polygon, 0, len(angles))
	missed := 0
	for _, angle := range angles {
		ray := geom.Segment{
			A: observer,
			B: geom.Point{X: observer.X + math.Cos(angle), Y: observer.Y + math.Sin(angle)},
		}

		var candidates []geom.Segment
		if index != nil {
			candidates = index.candidates(ray, reach)
		} else {
			candidates = store.segments
		}

		closest, ok := s.closest(ray, candidates)
		if !ok {
			missed++
			continue
		}
		closest.Angle = angle
		polygon = append(polygon, closest)
	}

	if missed > 0 {
		Logger().Debug("visibility probes without a hit",
			slog.Int("missed", missed),
			slog.Int("probes", len(angles)),
			slog.Float64("x", observer.X),
			slog.Float64("y", observer.Y))
	}

	sort.SliceStable(polygon, func(i, j int) bool {
		return polygon[i].Angle < polygon[j].Angle
	})

	if !s.opts.keepColinear {
		polygon = simplify(polygon)
	}
	return polygon
}

// closest returns the hit with the smallest parameter; the first one wins on
// ties.
func (s *Solver) closest(ray geom.Segment, segments []geom.Segment) (Intersection, bool) {
	var best Intersection
	found := false
	for _, seg := range segments {
		hit, ok := Intersect(ray, seg, s.opts.parallel)
		if !ok {
			continue
		}
		if !found || hit.Param < best.Param {
			best = hit
			found = true
		}
	}
	return best, found
}

// colinearTolerance bounds |sin| of the turn at a vertex considered straight.
const colinearTolerance = 1e-9

// simplify drops vertices that duplicate their predecessor or sit on the
// straight line between their neighbours. It never goes below three points
// and preserves the order of the survivors.
func simplify(polygon Polygon) Polygon {
	out := polygon
	for changed := true; changed && len(out) > 3; {
		changed = false
		for i := 0; i < len(out) && len(out) > 3; {
			n := len(out)
			prev := out[(i+n-1)%n].Point
			cur := out[i].Point
			next := out[(i+1)%n].Point
			if redundant(prev, cur, next) {
				out = append(out[:i], out[i+1:]...)
				changed = true
				continue
			}
			i++
		}
	}
	return out
}

func redundant(prev, cur, next geom.Point) bool {
	in := cur.Sub(prev)
	outv := next.Sub(cur)
	li, lo := in.Len(), outv.Len()
	if li <= geom.Eps {
		return true
	}
	if lo <= geom.Eps {
		return false
	}
	if math.Abs(in.Cross(outv)) > colinearTolerance*li*lo {
		return false
	}
	// Straight through, not a back-tracking spike.
	return in.Dot(outv) > 0
}
