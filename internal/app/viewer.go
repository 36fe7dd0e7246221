// Package app runs a scene interactively: the observer follows the pointer and
// the light is recast whenever it moves.
package app

import (
	"time"

	"github.com/pkg/errors"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/visibility"
	"chosenoffset.com/sightline/internal/lighting"
	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/scene"
)

// Viewer holds the scene and presentation state.
type Viewer struct {
	ScreenWidth  int
	ScreenHeight int
	Config       *scene.Config
	Caster       *lighting.Caster
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Loader       render.ResourceLoader

	// Observer and the frame last cast from it
	Observer geom.Point
	Frame    *lighting.Frame
	CastTime time.Duration
	Casts    int

	// Overlays
	ShowWireframe bool
	ShowHUD       bool

	// Textures, created on first draw
	WhiteImg   render.Image
	Background render.Image
	Foreground render.Image
	LightMask  render.Image
}

// NewViewer validates the scene and prepares the caster. The observer starts at
// the centre of the window.
func NewViewer(config *scene.Config, r render.Renderer, input render.InputManager, loader render.ResourceLoader) (*Viewer, error) {
	if config == nil {
		config = scene.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scene")
	}

	solver := visibility.NewSolver(config.SolverOptions()...)
	caster := lighting.NewCaster(config.BuildStore(), solver, config.LightSettings())

	return &Viewer{
		ScreenWidth:   config.Window.Width,
		ScreenHeight:  config.Window.Height,
		Config:        config,
		Caster:        caster,
		Renderer:      r,
		InputMgr:      input,
		Loader:        loader,
		Observer:      geom.Pt(float64(config.Window.Width)/2, float64(config.Window.Height)/2),
		ShowWireframe: config.Debug.Wireframe,
		ShowHUD:       config.Debug.HUD,
	}, nil
}

// Update handles input and recasts the light when the observer moved.
func (v *Viewer) Update() error {
	if v.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrQuit
	}
	if v.InputMgr.IsKeyJustPressed(render.KeySpace) {
		v.ShowWireframe = !v.ShowWireframe
	}
	if v.InputMgr.IsKeyJustPressed(render.KeyH) {
		v.ShowHUD = !v.ShowHUD
	}

	if p, ok := v.pointer(); ok {
		v.Observer = v.Config.ClampObserver(p)
	}
	if v.Frame == nil || v.Frame.Observer != v.Observer {
		v.recast()
	}
	return nil
}

// pointer returns the first active touch, or the cursor while the left button is held.
func (v *Viewer) pointer() (geom.Point, bool) {
	if touches := v.InputMgr.TouchPositions(); len(touches) > 0 {
		return geom.Pt(float64(touches[0].X), float64(touches[0].Y)), true
	}
	if v.InputMgr.IsMouseButtonPressed(render.MouseButtonLeft) {
		x, y := v.InputMgr.GetCursorPosition()
		return geom.Pt(float64(x), float64(y)), true
	}
	return geom.Point{}, false
}

func (v *Viewer) recast() {
	start := time.Now()
	v.Frame = v.Caster.Cast(v.Observer)
	v.CastTime = time.Since(start)
	v.Casts++
}

// Layout returns the scene's logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.ScreenWidth, v.ScreenHeight
}
