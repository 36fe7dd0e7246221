package app

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/sightline/internal/core/geom"
	"chosenoffset.com/sightline/internal/core/triangulate"
	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/scene"
)

func init() {
	render.NewGeoM = func() render.GeoM { return &fakeGeoM{} }
}

type fakeGeoM struct {
	sx, sy float64
}

func (g *fakeGeoM) Translate(tx, ty float64) {}
func (g *fakeGeoM) Scale(sx, sy float64)     { g.sx, g.sy = sx, sy }
func (g *fakeGeoM) Reset()                   { g.sx, g.sy = 0, 0 }

// opLog records draw calls in order as "<target>.<op>[:detail]".
type opLog struct {
	ops []string
}

func (l *opLog) add(format string, args ...any) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

func (l *opLog) count(prefix string) int {
	n := 0
	for _, op := range l.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

type fakeImage struct {
	name string
	w, h int
	log  *opLog
	geoM []*fakeGeoM
}

func (i *fakeImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *fakeImage) Size() (int, int)        { return i.w, i.h }
func (i *fakeImage) Fill(color.Color)        { i.log.add("%s.fill", i.name) }
func (i *fakeImage) Clear()                  { i.log.add("%s.clear", i.name) }
func (i *fakeImage) Dispose()                {}
func (i *fakeImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	if opts != nil && opts.GeoM != nil {
		i.geoM = append(i.geoM, opts.GeoM.(*fakeGeoM))
	}
	blend := render.BlendSourceOver
	if opts != nil {
		blend = opts.Blend
	}
	i.log.add("%s.draw:%s:%s", i.name, src.(*fakeImage).name, blend)
}
func (i *fakeImage) DrawTriangles(v []render.Vertex, _ []uint16, _ render.Image, _ *render.DrawTrianglesOptions) {
	i.log.add("%s.triangles:%d", i.name, len(v)/3)
}

type fakeRenderer struct {
	log     *opLog
	created int
}

func (r *fakeRenderer) NewImage(w, h int) render.Image {
	r.created++
	name := "mask"
	if w == 1 && h == 1 {
		name = "white"
	}
	return &fakeImage{name: name, w: w, h: h, log: r.log}
}

func (r *fakeRenderer) NewImageFromImage(src image.Image) render.Image {
	r.created++
	b := src.Bounds()
	return &fakeImage{name: fmt.Sprintf("generated%d", r.created), w: b.Dx(), h: b.Dy(), log: r.log}
}

func (r *fakeRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	r.log.add("%s.circle", dst.(*fakeImage).name)
}

func (r *fakeRenderer) StrokeLine(dst render.Image, x0, y0, x1, y1, width float32, clr color.Color) {
	r.log.add("%s.line", dst.(*fakeImage).name)
}

func (r *fakeRenderer) DrawText(dst render.Image, text string, x, y int) {
	r.log.add("%s.text:%s", dst.(*fakeImage).name, text)
}

type fakeInput struct {
	pressed  map[render.Key]bool
	cursor   image.Point
	leftDown bool
	touches  []image.Point
}

func (in *fakeInput) IsKeyJustPressed(key render.Key) bool { return in.pressed[key] }
func (in *fakeInput) GetCursorPosition() (int, int)        { return in.cursor.X, in.cursor.Y }
func (in *fakeInput) IsMouseButtonPressed(b render.MouseButton) bool {
	return b == render.MouseButtonLeft && in.leftDown
}
func (in *fakeInput) TouchPositions() []image.Point { return in.touches }

type fakeLoader struct {
	img render.Image
	err error
}

func (l *fakeLoader) LoadImage(path string) (render.Image, error) {
	return l.img, l.err
}

func newTestViewer(t *testing.T, config *scene.Config) (*Viewer, *fakeInput, *fakeRenderer) {
	t.Helper()
	input := &fakeInput{pressed: map[render.Key]bool{}}
	r := &fakeRenderer{log: &opLog{}}
	v, err := NewViewer(config, r, input, nil)
	require.NoError(t, err)
	return v, input, r
}

func TestNewViewerStartsAtCentre(t *testing.T) {
	v, _, _ := newTestViewer(t, nil)

	assert.Equal(t, geom.Pt(420, 280), v.Observer)
	assert.True(t, v.ShowWireframe)
	assert.False(t, v.ShowHUD)
	assert.Nil(t, v.Frame)

	w, h := v.Layout(1920, 1080)
	assert.Equal(t, 840, w)
	assert.Equal(t, 560, h)
}

func TestNewViewerRejectsInvalidConfig(t *testing.T) {
	config := scene.DefaultConfig()
	config.Window.Width = 0

	_, err := NewViewer(config, &fakeRenderer{log: &opLog{}}, &fakeInput{}, nil)
	assert.Error(t, err)
}

func TestUpdateRecastsOnlyWhenObserverMoves(t *testing.T) {
	v, input, _ := newTestViewer(t, nil)

	require.NoError(t, v.Update())
	require.NotNil(t, v.Frame)
	first := v.Frame
	assert.Equal(t, 1, v.Casts)

	require.NoError(t, v.Update())
	assert.Same(t, first, v.Frame)

	// Cursor moves without the button held
	input.cursor = image.Pt(100, 100)
	require.NoError(t, v.Update())
	assert.Equal(t, 1, v.Casts)
	assert.Equal(t, geom.Pt(420, 280), v.Observer)

	input.leftDown = true
	require.NoError(t, v.Update())
	assert.Equal(t, 2, v.Casts)
	assert.Equal(t, geom.Pt(100, 100), v.Frame.Observer)

	// Held but still
	require.NoError(t, v.Update())
	assert.Equal(t, 2, v.Casts)
}

func TestUpdateKeepsObserverOffTheBorder(t *testing.T) {
	v, input, _ := newTestViewer(t, nil)
	input.leftDown = true
	input.cursor = image.Pt(0, 17)

	require.NoError(t, v.Update())
	assert.Equal(t, geom.Pt(0.5, 17), v.Observer)

	primary := v.Frame.Primary
	require.Len(t, primary.Triangles, len(primary.Polygon)-2)
	assert.InDelta(t, primary.Polygon.Area(), triangulate.Area(primary.Triangles), 1e-6*primary.Polygon.Area())
}

func TestUpdatePrefersTouch(t *testing.T) {
	v, input, _ := newTestViewer(t, nil)
	input.leftDown = true
	input.cursor = image.Pt(10, 10)
	input.touches = []image.Point{{300, 400}, {50, 50}}

	require.NoError(t, v.Update())
	assert.Equal(t, geom.Pt(300, 400), v.Observer)
}

func TestUpdateKeys(t *testing.T) {
	v, input, _ := newTestViewer(t, nil)

	input.pressed[render.KeySpace] = true
	input.pressed[render.KeyH] = true
	require.NoError(t, v.Update())
	assert.False(t, v.ShowWireframe)
	assert.True(t, v.ShowHUD)

	input.pressed = map[render.Key]bool{render.KeyEscape: true}
	err := v.Update()
	assert.True(t, errors.Is(err, render.ErrQuit))
}

func TestDrawOrder(t *testing.T) {
	v, _, r := newTestViewer(t, nil)
	require.NoError(t, v.Update())

	screen := &fakeImage{name: "screen", w: 840, h: 560, log: r.log}
	v.Draw(screen)
	r.log.ops = nil
	v.Draw(screen)

	ops := r.log.ops
	require.NotEmpty(t, ops)
	assert.Equal(t, "screen.fill", ops[0])
	assert.Regexp(t, `^screen\.draw:generated\d+:source-over$`, ops[1])

	layers := len(v.Frame.Layers())
	assert.Equal(t, 11, layers)
	assert.Equal(t, layers, r.log.count("mask.triangles"))

	idx := func(prefix string) int {
		for i, op := range ops {
			if strings.HasPrefix(op, prefix) {
				return i
			}
		}
		return -1
	}
	clearAt, tris := idx("mask.clear"), idx("mask.triangles")
	multiply := idx("mask.draw:")
	composite := idx("screen.draw:mask")
	line, circle := idx("screen.line"), idx("screen.circle")

	assert.Less(t, 1, clearAt)
	assert.Less(t, clearAt, tris)
	assert.Less(t, tris, multiply)
	assert.Contains(t, ops[multiply], ":multiply")
	assert.Less(t, multiply, composite)
	assert.Equal(t, "screen.draw:mask:source-over", ops[composite])
	assert.Less(t, composite, line)
	assert.Less(t, line, circle)

	assert.Equal(t, len(v.Caster.Segments()), r.log.count("screen.line"))
	assert.Equal(t, len(v.Frame.Samples)+1, r.log.count("screen.circle"))
	assert.Zero(t, r.log.count("screen.text"))
}

func TestDrawOverlaysFollowToggles(t *testing.T) {
	v, _, r := newTestViewer(t, nil)
	require.NoError(t, v.Update())
	v.ShowWireframe = false
	v.ShowHUD = true

	v.Draw(&fakeImage{name: "screen", w: 840, h: 560, log: r.log})

	assert.Zero(t, r.log.count("screen.line"))
	assert.Zero(t, r.log.count("screen.circle"))
	require.Equal(t, 1, r.log.count("screen.text"))
	assert.Contains(t, v.hudText(), "triangles")
}

func TestDrawReusesTextures(t *testing.T) {
	v, _, r := newTestViewer(t, nil)
	require.NoError(t, v.Update())

	screen := &fakeImage{name: "screen", w: 840, h: 560, log: r.log}
	v.Draw(screen)
	created := r.created
	v.Draw(screen)
	assert.Equal(t, created, r.created)

	v.Draw(&fakeImage{name: "screen", w: 400, h: 300, log: r.log})
	assert.Equal(t, created+1, r.created, "only the light mask follows the screen size")
}

func TestLoadedTexturesAreStretched(t *testing.T) {
	v, _, r := newTestViewer(t, nil)
	v.Config.Images.Background = "floor.png"
	v.Loader = &fakeLoader{img: &fakeImage{name: "floor", w: 420, h: 140, log: r.log}}

	screen := &fakeImage{name: "screen", w: 840, h: 560, log: r.log}
	v.Draw(screen)

	assert.Contains(t, r.log.ops, "screen.draw:floor:source-over")
	require.Len(t, screen.geoM, 1)
	assert.Equal(t, 2.0, screen.geoM[0].sx)
	assert.Equal(t, 4.0, screen.geoM[0].sy)
}

func TestFailedTextureFallsBackToGenerated(t *testing.T) {
	v, _, r := newTestViewer(t, nil)
	v.Config.Images.Foreground = "missing.png"
	v.Loader = &fakeLoader{err: errors.New("no such file")}

	v.Draw(&fakeImage{name: "screen", w: 840, h: 560, log: r.log})

	fg, ok := v.Foreground.(*fakeImage)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(fg.name, "generated"))
	assert.Equal(t, 840, fg.w)
}
