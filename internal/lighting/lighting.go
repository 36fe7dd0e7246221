// Package lighting turns an observer position into the triangulated light
// layers of one frame: the sharp visibility polygon plus a ring of offset
// polygons that soften the shadow edges.
package lighting

import (
	"image/color"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/triangulate"
	"chosenoffset.com/sightline/internal/core/visibility"
)

// Light describes the observer's light and its soft edge.
type Light struct {
	FuzzyRadius   float64     // Distance of the offset samples from the observer (in pixels)
	Samples       int         // Number of offset samples, evenly spaced over a full turn
	Color         color.NRGBA // Fill of the primary polygon
	PenumbraAlpha float64     // Opacity of each offset polygon (0.0 to 1.0)
	Parallel      bool        // Solve the polygons of a frame concurrently
}

// DefaultLight returns a white light with ten samples at radius 10.
func DefaultLight() Light {
	return Light{
		FuzzyRadius:   10,
		Samples:       10,
		Color:         color.NRGBA{255, 255, 255, 255},
		PenumbraAlpha: 0.2,
		Parallel:      true,
	}
}

// PenumbraColor is the light colour at penumbra opacity.
func (l Light) PenumbraColor() color.NRGBA {
	c := l.Color
	a := math.Max(0, math.Min(1, l.PenumbraAlpha))
	c.A = uint8(math.Round(a * 255))
	return c
}

// Layer is one triangulated visibility polygon and the colour to fill it with.
type Layer struct {
	Observer  geom.Point
	Polygon   visibility.Polygon
	Triangles []triangulate.Triangle
	Color     color.NRGBA
}

// Frame is everything the renderer needs for one observer position.
type Frame struct {
	Observer geom.Point
	Samples  []geom.Point
	Primary  Layer
	Penumbra []Layer
	Segments []geom.Segment
}

// Layers returns the layers in draw order: penumbra first, primary last.
func (f *Frame) Layers() []Layer {
	out := make([]Layer, 0, len(f.Penumbra)+1)
	out = append(out, f.Penumbra...)
	return append(out, f.Primary)
}

// TriangleCount returns the number of triangles over all layers.
func (f *Frame) TriangleCount() int {
	n := len(f.Primary.Triangles)
	for _, l := range f.Penumbra {
		n += len(l.Triangles)
	}
	return n
}

// Caster computes frames against a fixed segment store.
type Caster struct {
	store    *visibility.Store
	solver   *visibility.Solver
	light    Light
	segments []geom.Segment
}

// NewCaster creates a caster. A nil solver uses the default options.
func NewCaster(store *visibility.Store, solver *visibility.Solver, light Light) *Caster {
	if solver == nil {
		solver = visibility.NewSolver()
	}
	return &Caster{
		store:    store,
		solver:   solver,
		light:    light,
		segments: store.Segments(),
	}
}

// Light returns the caster's light settings.
func (c *Caster) Light() Light {
	return c.light
}

// Segments returns the store's segments for wireframe drawing.
func (c *Caster) Segments() []geom.Segment {
	return c.segments
}

// SamplePoints returns the offset observers around observer.
func (c *Caster) SamplePoints(observer geom.Point) []geom.Point {
	n := c.light.Samples
	if n <= 0 || c.light.FuzzyRadius <= 0 {
		return nil
	}
	points := make([]geom.Point, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points[i] = observer.Polar(c.light.FuzzyRadius, angle)
	}
	return points
}

// Cast solves and triangulates the primary polygon and every sample polygon.
func (c *Caster) Cast(observer geom.Point) *Frame {
	start := time.Now()
	samples := c.SamplePoints(observer)

	frame := &Frame{
		Observer: observer,
		Samples:  samples,
		Penumbra: make([]Layer, len(samples)),
		Segments: c.segments,
	}

	penumbra := c.light.PenumbraColor()
	jobs := make([]func(), 0, len(samples)+1)
	jobs = append(jobs, func() {
		frame.Primary = c.layer(observer, c.light.Color)
	})
	for i, p := range samples {
		i, p := i, p
		jobs = append(jobs, func() {
			frame.Penumbra[i] = c.layer(p, penumbra)
		})
	}

	if c.light.Parallel && len(jobs) > 1 {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for _, job := range jobs {
			job := job
			g.Go(func() error {
				job()
				return nil
			})
		}
		// Jobs never fail; Wait only joins them.
		_ = g.Wait()
	} else {
		for _, job := range jobs {
			job()
		}
	}

	visibility.Logger().Debug("cast frame",
		slog.Float64("x", observer.X),
		slog.Float64("y", observer.Y),
		slog.Int("points", len(frame.Primary.Polygon)),
		slog.Int("triangles", frame.TriangleCount()),
		slog.Duration("took", time.Since(start)))

	return frame
}

func (c *Caster) layer(observer geom.Point, clr color.NRGBA) Layer {
	poly := c.solver.Compute(observer, c.store)
	return Layer{
		Observer:  observer,
		Polygon:   poly,
		Triangles: triangulate.Triangulate(poly.Points()),
		Color:     clr,
	}
}
