package visibility

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"chosenoffset.com/sightline/internal/core/geom"
)

// boxPad keeps degenerate (axis-aligned) boxes at a positive size, which
// rtreego requires.
const boxPad = 1e-6

// indexedSegment is a stored segment plus its insertion order.
type indexedSegment struct {
	seg   geom.Segment
	order int
	box   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (s *indexedSegment) Bounds() rtreego.Rect {
	return s.box
}

// segmentIndex is an R-tree over segment bounding boxes.
type segmentIndex struct {
	tree   *rtreego.Rtree
	bounds geom.Rect
}

func newSegmentIndex(segments []geom.Segment) *segmentIndex {
	objs := make([]rtreego.Spatial, 0, len(segments))
	var bounds geom.Rect
	for i, seg := range segments {
		r, _ := geom.BoundsOf(seg.A, seg.B)
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
		objs = append(objs, &indexedSegment{seg: seg, order: i, box: paddedRect(r)})
	}
	return &segmentIndex{
		tree:   rtreego.NewTree(2, 4, 16, objs...),
		bounds: bounds,
	}
}

func paddedRect(r geom.Rect) rtreego.Rect {
	rect, err := rtreego.NewRect(
		rtreego.Point{r.Min.X - boxPad, r.Min.Y - boxPad},
		[]float64{r.Dx() + 2*boxPad, r.Dy() + 2*boxPad},
	)
	if err != nil {
		// Only reachable with non-finite coordinates; fall back to a unit box
		// at the origin so the tree stays consistent.
		rect, _ = rtreego.NewRect(rtreego.Point{0, 0}, []float64{1, 1})
	}
	return rect
}

// reach is an upper bound on the distance from observer to any point of any
// stored segment: the farthest corner of the overall bounds.
func (idx *segmentIndex) reach(observer geom.Point) float64 {
	far := 0.0
	for _, c := range idx.bounds.Corners() {
		far = math.Max(far, geom.Distance(observer, c))
	}
	return far
}

// candidates returns the segments whose boxes meet the box of the ray clipped
// to length reach, in insertion order.
func (idx *segmentIndex) candidates(ray geom.Segment, reach float64) []geom.Segment {
	dir := ray.Delta()
	end := ray.A.Add(dir.Scale(reach / math.Max(dir.Len(), geom.Eps)))
	box, _ := geom.BoundsOf(ray.A, end)

	hits := idx.tree.SearchIntersect(paddedRect(box))
	found := make([]*indexedSegment, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.(*indexedSegment))
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].order < found[j].order
	})

	out := make([]geom.Segment, len(found))
	for i, s := range found {
		out[i] = s.seg
	}
	return out
}
