// Package scene provides the obstacle layout and tuning of a sightline scene.
// Scenes are loaded from JSON or YAML files so each layout can be edited
// without rebuilding.
package scene

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/visibility"
	"chosenoffset.com/sightline/internal/lighting"
)

// Config holds everything needed to build and present a scene
type Config struct {
	// Window setup
	Window WindowConfig `json:"window" yaml:"window"`

	// Outer wall; nil means the viewport edges
	Border *BorderConfig `json:"border,omitempty" yaml:"border,omitempty"`

	// Opaque obstacle outlines
	Obstacles []Obstacle `json:"obstacles" yaml:"obstacles"`

	// Soft light around the observer
	Light LightConfig `json:"light" yaml:"light"`

	// Solver tuning
	Visibility VisibilityConfig `json:"visibility" yaml:"visibility"`

	// Textures
	Images ImagesConfig `json:"images" yaml:"images"`

	// Overlays
	Debug DebugConfig `json:"debug" yaml:"debug"`
}

// WindowConfig defines the logical screen
type WindowConfig struct {
	Width     int    `json:"width" yaml:"width"`         // Logical width in pixels
	Height    int    `json:"height" yaml:"height"`       // Logical height in pixels
	Title     string `json:"title" yaml:"title"`         // Window title
	Resizable bool   `json:"resizable" yaml:"resizable"` // Allow window resizing
}

// BorderConfig is an explicit outer rectangle
type BorderConfig struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

// Obstacle is one closed outline; the last point connects back to the first
type Obstacle struct {
	Name   string       `json:"name" yaml:"name"`
	Points [][2]float64 `json:"points" yaml:"points"`
}

// LightConfig defines the fuzzy light
type LightConfig struct {
	FuzzyRadius   float64 `json:"fuzzy_radius" yaml:"fuzzy_radius"`     // Offset of the soft-edge samples
	Samples       int     `json:"samples" yaml:"samples"`               // Number of soft-edge samples
	Color         string  `json:"color" yaml:"color"`                   // Hex "RRGGBB"
	PenumbraAlpha float64 `json:"penumbra_alpha" yaml:"penumbra_alpha"` // Opacity of each sample layer
	Parallel      bool    `json:"parallel" yaml:"parallel"`             // Solve samples concurrently
}

// VisibilityConfig defines solver tuning
type VisibilityConfig struct {
	Epsilon         float64 `json:"epsilon" yaml:"epsilon"`                   // Angular jitter in radians
	DedupeTolerance float64 `json:"dedupe_tolerance" yaml:"dedupe_tolerance"` // 0 = exact endpoint matching
	ParallelTest    string  `json:"parallel_test" yaml:"parallel_test"`       // "cross" or "unit"
	SpatialIndex    bool    `json:"spatial_index" yaml:"spatial_index"`       // Prefilter segments with an R-tree
	KeepColinear    bool    `json:"keep_colinear" yaml:"keep_colinear"`       // Keep every probe hit
}

// ImagesConfig points at optional texture files
type ImagesConfig struct {
	Background string `json:"background" yaml:"background"` // Shown in shadow
	Foreground string `json:"foreground" yaml:"foreground"` // Shown where lit
}

// DebugConfig toggles overlays
type DebugConfig struct {
	Wireframe bool `json:"wireframe" yaml:"wireframe"` // Segments and observer dots
	HUD       bool `json:"hud" yaml:"hud"`             // Point and triangle counts
}

// DefaultConfig returns the reference layout: six obstacles in an 840x560 room.
// The layout was drawn with y pointing up; the coordinates here are mirrored
// against the window height so it appears the same way up on a y-down screen.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     840,
			Height:    560,
			Title:     "Sightline",
			Resizable: true,
		},
		Obstacles: []Obstacle{
			{Name: "polygon-1", Points: [][2]float64{{100, 410}, {120, 510}, {200, 480}, {140, 350}}},
			{Name: "polygon-2", Points: [][2]float64{{100, 260}, {120, 110}, {60, 160}, {100, 260}}},
			{Name: "polygon-3", Points: [][2]float64{{250, 300}, {270, 410}, {350, 360}, {400, 240}}},
			{Name: "polygon-4", Points: [][2]float64{{540, 500}, {560, 520}, {570, 490}}},
			{Name: "polygon-5", Points: [][2]float64{{650, 170}, {760, 190}, {740, 90}, {630, 70}}},
			{Name: "polygon-6", Points: [][2]float64{{600, 365}, {780, 410}, {680, 310}}},
		},
		Light: LightConfig{
			FuzzyRadius:   10,
			Samples:       10,
			Color:         "ffffff",
			PenumbraAlpha: 0.2,
			Parallel:      true,
		},
		Visibility: VisibilityConfig{
			Epsilon:      visibility.DefaultEpsilon,
			ParallelTest: visibility.ParallelCross.String(),
		},
		Debug: DebugConfig{
			Wireframe: true,
			HUD:       false,
		},
	}
}

// LoadConfig loads a scene from a .json, .yaml or .yml file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to read scene config (%s)", path)
	}

	config := DefaultConfig() // Start with defaults
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		return nil, errors.Errorf("unsupported scene config extension %q (%s)", ext, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse scene config (%s)", path)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid scene config (%s)", path)
	}
	return config, nil
}

// Validate checks the config for values the solver or renderer cannot use
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Border != nil && (c.Border.MaxX <= c.Border.MinX || c.Border.MaxY <= c.Border.MinY) {
		return errors.Errorf("border is empty or inverted: %+v", *c.Border)
	}
	for i, o := range c.Obstacles {
		if len(o.Points) < 3 {
			return errors.Errorf("obstacle %d (%s) needs at least 3 points, got %d", i, o.Name, len(o.Points))
		}
	}
	if c.Light.Samples < 0 {
		return errors.Errorf("light samples must not be negative, got %d", c.Light.Samples)
	}
	if c.Light.FuzzyRadius < 0 {
		return errors.Errorf("light fuzzy_radius must not be negative, got %v", c.Light.FuzzyRadius)
	}
	if c.Light.PenumbraAlpha < 0 || c.Light.PenumbraAlpha > 1 {
		return errors.Errorf("light penumbra_alpha must be within [0, 1], got %v", c.Light.PenumbraAlpha)
	}
	if _, err := ParseHexColor(c.Light.Color); err != nil {
		return errors.Wrap(err, "light color")
	}
	if c.Visibility.Epsilon <= 0 {
		return errors.Errorf("visibility epsilon must be positive, got %v", c.Visibility.Epsilon)
	}
	if c.Visibility.DedupeTolerance < 0 {
		return errors.Errorf("visibility dedupe_tolerance must not be negative, got %v", c.Visibility.DedupeTolerance)
	}
	if _, err := parseParallelTest(c.Visibility.ParallelTest); err != nil {
		return err
	}
	return nil
}

// BorderRect returns the outer wall, defaulting to the window
func (c *Config) BorderRect() geom.Rect {
	if c.Border == nil {
		return geom.R(0, 0, float64(c.Window.Width), float64(c.Window.Height))
	}
	return geom.R(c.Border.MinX, c.Border.MinY, c.Border.MaxX, c.Border.MaxY)
}

// observerInset keeps the observer off the border walls. An observer lying on
// a wall sees along it and yields a self-crossing polygon.
const observerInset = 0.5

// ClampObserver moves p strictly inside the border
func (c *Config) ClampObserver(p geom.Point) geom.Point {
	r := c.BorderRect()
	if r.Dx() <= 2*observerInset || r.Dy() <= 2*observerInset {
		return r.Center()
	}
	p.X = math.Max(r.Min.X+observerInset, math.Min(r.Max.X-observerInset, p.X))
	p.Y = math.Max(r.Min.Y+observerInset, math.Min(r.Max.Y-observerInset, p.Y))
	return p
}

// BuildStore adds the border and then every obstacle, in order
func (c *Config) BuildStore() *visibility.Store {
	store := visibility.NewStore()
	store.AddRect(c.BorderRect())
	for _, o := range c.Obstacles {
		store.AddClosedPolyline(o.Outline()...)
	}
	return store
}

// Outline converts the obstacle's points
func (o Obstacle) Outline() []geom.Point {
	points := make([]geom.Point, len(o.Points))
	for i, p := range o.Points {
		points[i] = geom.Pt(p[0], p[1])
	}
	return points
}

// SolverOptions maps the visibility section onto solver options
func (c *Config) SolverOptions() []visibility.Option {
	test, _ := parseParallelTest(c.Visibility.ParallelTest)
	opts := []visibility.Option{
		visibility.WithEpsilon(c.Visibility.Epsilon),
		visibility.WithDedupeTolerance(c.Visibility.DedupeTolerance),
		visibility.WithParallelTest(test),
	}
	if c.Visibility.SpatialIndex {
		opts = append(opts, visibility.WithSpatialIndex())
	}
	if c.Visibility.KeepColinear {
		opts = append(opts, visibility.WithKeepColinear())
	}
	return opts
}

// LightSettings maps the light section onto the caster's light
func (c *Config) LightSettings() lighting.Light {
	clr, err := ParseHexColor(c.Light.Color)
	if err != nil {
		clr = color.NRGBA{255, 255, 255, 255}
	}
	return lighting.Light{
		FuzzyRadius:   c.Light.FuzzyRadius,
		Samples:       c.Light.Samples,
		Color:         clr,
		PenumbraAlpha: c.Light.PenumbraAlpha,
		Parallel:      c.Light.Parallel,
	}
}

// ParseHexColor parses "RRGGBB" (an optional leading '#' is allowed)
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, errors.Errorf("color %q is not in RRGGBB form", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "color %q", s)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

func parseParallelTest(name string) (visibility.ParallelTest, error) {
	switch name {
	case "", visibility.ParallelCross.String():
		return visibility.ParallelCross, nil
	case visibility.ParallelUnitVector.String():
		return visibility.ParallelUnitVector, nil
	default:
		return visibility.ParallelCross, errors.Errorf("unknown visibility parallel_test %q", name)
	}
}
