package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/visibility"
	"chosenoffset.com/sightline/internal/lighting"
	"chosenoffset.com/sightline/internal/scene"
)

func main() {
	configPath := flag.String("config", "scene.json", "scene file (.json, .yaml or .yml)")
	x := flag.Float64("x", math.NaN(), "observer x (default: window centre)")
	y := flag.Float64("y", math.NaN(), "observer y (default: window centre)")
	dump := flag.Bool("dump", false, "dump the whole frame")
	debug := flag.Bool("debug", false, "log solver details to stderr")
	flag.Parse()

	if *debug {
		visibility.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	config, err := scene.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	observer := observerAt(config, *x, *y)

	store := config.BuildStore()
	solver := visibility.NewSolver(config.SolverOptions()...)
	caster := lighting.NewCaster(store, solver, config.LightSettings())

	start := time.Now()
	frame := caster.Cast(observer)
	elapsed := time.Since(start)

	fmt.Printf("observer:  (%g, %g)\n", observer.X, observer.Y)
	fmt.Printf("segments:  %d\n", store.Len())
	fmt.Printf("points:    %d\n", len(frame.Primary.Polygon))
	fmt.Printf("area:      %.2f\n", frame.Primary.Polygon.Area())
	fmt.Printf("layers:    %d\n", len(frame.Layers()))
	fmt.Printf("triangles: %d\n", frame.TriangleCount())
	fmt.Printf("took:      %s\n", elapsed)

	if *dump {
		spew.Dump(frame)
	}
}

// observerAt picks the observer from the -x/-y flags; a NaN coordinate falls
// back to the window centre.
func observerAt(config *scene.Config, x, y float64) geom.Point {
	observer := geom.Pt(float64(config.Window.Width)/2, float64(config.Window.Height)/2)
	if !math.IsNaN(x) {
		observer.X = x
	}
	if !math.IsNaN(y) {
		observer.Y = y
	}
	return observer
}
