package lighting

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/triangulate"
	"chosenoffset.com/sightline/internal/core/visibility"
)

func squareStore() *visibility.Store {
	s := visibility.NewStore()
	s.AddRect(geom.R(0, 0, 10, 10))
	return s
}

func TestCastSquare(t *testing.T) {
	light := DefaultLight()
	light.FuzzyRadius = 1
	c := NewCaster(squareStore(), nil, light)

	frame := c.Cast(geom.Pt(5, 5))

	require.Len(t, frame.Primary.Polygon, 4)
	require.Len(t, frame.Primary.Triangles, 2)
	assert.InDelta(t, 100, triangulate.Area(frame.Primary.Triangles), 1e-9)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, frame.Primary.Color)

	require.Len(t, frame.Samples, 10)
	require.Len(t, frame.Penumbra, 10)
	for i, layer := range frame.Penumbra {
		assert.Equal(t, frame.Samples[i], layer.Observer)
		assert.Equal(t, uint8(51), layer.Color.A)
		// Every sample still sees the whole empty room.
		assert.InDelta(t, 100, triangulate.Area(layer.Triangles), 1e-9)
	}

	assert.Len(t, frame.Segments, 4)
	assert.Equal(t, 2*11, frame.TriangleCount())
}

func TestSamplePoints(t *testing.T) {
	light := DefaultLight()
	light.Samples = 4
	light.FuzzyRadius = 2
	c := NewCaster(squareStore(), nil, light)

	points := c.SamplePoints(geom.Pt(5, 5))
	require.Len(t, points, 4)
	want := []geom.Point{{X: 7, Y: 5}, {X: 5, Y: 7}, {X: 3, Y: 5}, {X: 5, Y: 3}}
	for i, p := range points {
		assert.InDelta(t, want[i].X, p.X, 1e-12)
		assert.InDelta(t, want[i].Y, p.Y, 1e-12)
		assert.InDelta(t, 2, geom.Distance(geom.Pt(5, 5), p), 1e-12)
	}
}

func TestNoSamples(t *testing.T) {
	for _, light := range []Light{
		{Samples: 0, FuzzyRadius: 10, Color: color.NRGBA{255, 0, 0, 255}},
		{Samples: 10, FuzzyRadius: 0, Color: color.NRGBA{255, 0, 0, 255}},
	} {
		frame := NewCaster(squareStore(), nil, light).Cast(geom.Pt(5, 5))
		assert.Empty(t, frame.Samples)
		assert.Empty(t, frame.Penumbra)
		assert.Len(t, frame.Layers(), 1)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	store := visibility.NewStore()
	store.AddRect(geom.R(0, 0, 840, 560))
	store.AddClosedPolyline(geom.Pt(100, 150), geom.Pt(120, 50), geom.Pt(200, 80), geom.Pt(140, 210))
	store.AddClosedPolyline(geom.Pt(600, 195), geom.Pt(780, 150), geom.Pt(680, 250))

	seq := DefaultLight()
	seq.Parallel = false
	par := DefaultLight()

	observer := geom.Pt(300, 120)
	want := NewCaster(store, nil, seq).Cast(observer)
	got := NewCaster(store, nil, par).Cast(observer)
	assert.Equal(t, want, got)
}

func TestLayersDrawOrder(t *testing.T) {
	frame := NewCaster(squareStore(), nil, DefaultLight()).Cast(geom.Pt(5, 5))
	layers := frame.Layers()
	require.Len(t, layers, 11)
	assert.Equal(t, frame.Primary.Observer, layers[len(layers)-1].Observer)
	assert.Equal(t, frame.Penumbra[0].Observer, layers[0].Observer)
}

func TestPenumbraColor(t *testing.T) {
	tests := []struct {
		alpha float64
		want  uint8
	}{
		{0.2, 51},
		{0, 0},
		{1, 255},
		{-1, 0},
		{3, 255},
	}
	for _, tt := range tests {
		l := Light{Color: color.NRGBA{10, 20, 30, 255}, PenumbraAlpha: tt.alpha}
		c := l.PenumbraColor()
		assert.Equal(t, tt.want, c.A, "alpha %v", tt.alpha)
		assert.Equal(t, uint8(10), c.R)
	}
}

func TestFuzzyEdgeSpreadsAroundObstacle(t *testing.T) {
	store := visibility.NewStore()
	store.AddRect(geom.R(0, 0, 200, 200))
	store.AddClosedPolyline(geom.Pt(90, 90), geom.Pt(110, 90), geom.Pt(110, 110), geom.Pt(90, 110))

	light := DefaultLight()
	light.Parallel = false
	frame := NewCaster(store, nil, light).Cast(geom.Pt(40, 100))

	// Offset observers see slightly different areas around the block.
	differs := false
	base := frame.Primary.Polygon.Area()
	for _, l := range frame.Penumbra {
		if math.Abs(l.Polygon.Area()-base) > 1 {
			differs = true
		}
	}
	assert.True(t, differs)
}
