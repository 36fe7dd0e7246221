package visibility

import (
	"math"

	"chosenoffset.com/sightline/internal/core/geom"
)

// ParallelTest selects how a ray parallel to a segment is detected.
type ParallelTest int

const (
	// ParallelCross rejects rays whose direction has a near-zero cross
	// product with the segment, in either orientation.
	ParallelCross ParallelTest = iota
	// ParallelUnitVector rejects rays whose normalised direction exactly
	// equals the segment's. Anti-parallel rays fall through to the solve and
	// are dropped by the finiteness check.
	ParallelUnitVector
)

// String returns the configuration name of the test.
func (t ParallelTest) String() string {
	switch t {
	case ParallelCross:
		return "cross"
	case ParallelUnitVector:
		return "unit"
	default:
		return "unknown"
	}
}

const (
	// parallelTolerance bounds |cross| relative to the product of both lengths.
	parallelTolerance = 1e-12
	// endpointSlack widens the segment parameter range so a ray aimed exactly
	// at a shared corner still hits one of the two segments after rounding.
	endpointSlack = 1e-9
)

// Intersect finds where ray (from ray.A through ray.B, unbounded past B)
// crosses segment. Param is the ray parameter, so for a unit-length ray it is
// the distance from ray.A. Angle is left zero.
func Intersect(ray, segment geom.Segment, test ParallelTest) (Intersection, bool) {
	// ray.A + t1*(rdx, rdy), t1 >= 0
	rpx, rpy := ray.A.X, ray.A.Y
	rdx, rdy := ray.B.X-ray.A.X, ray.B.Y-ray.A.Y

	// segment.A + t2*(sdx, sdy), 0 <= t2 <= 1
	spx, spy := segment.A.X, segment.A.Y
	sdx, sdy := segment.B.X-segment.A.X, segment.B.Y-segment.A.Y

	rmag := math.Hypot(rdx, rdy)
	smag := math.Hypot(sdx, sdy)
	if rmag == 0 || smag == 0 {
		return Intersection{}, false
	}

	denom := sdx*rdy - sdy*rdx
	switch test {
	case ParallelUnitVector:
		if rdx/rmag == sdx/smag && rdy/rmag == sdy/smag {
			return Intersection{}, false
		}
	default:
		if math.Abs(denom) <= parallelTolerance*rmag*smag {
			return Intersection{}, false
		}
	}

	t2 := (rdx*(spy-rpy) + rdy*(rpx-spx)) / denom
	// Solve t1 against the larger ray component.
	var t1 float64
	if math.Abs(rdx) >= math.Abs(rdy) {
		t1 = (spx + sdx*t2 - rpx) / rdx
	} else {
		t1 = (spy + sdy*t2 - rpy) / rdy
	}

	if math.IsNaN(t1) || math.IsInf(t1, 0) || math.IsNaN(t2) || math.IsInf(t2, 0) {
		return Intersection{}, false
	}
	if t1 < 0 {
		return Intersection{}, false
	}
	if t2 < -endpointSlack || t2 > 1+endpointSlack {
		return Intersection{}, false
	}

	return Intersection{
		Point: geom.Point{X: rpx + rdx*t1, Y: rpy + rdy*t1},
		Param: t1,
	}, true
}
