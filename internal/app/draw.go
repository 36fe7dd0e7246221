package app

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"chosenoffset.com/sightline/internal/placeholders"
	"chosenoffset.com/sightline/internal/render"
)

var (
	wireColor     = color.RGBA{90, 200, 255, 255}
	observerColor = color.RGBA{255, 60, 60, 255}
	sampleColor   = color.RGBA{255, 215, 0, 255}
)

const (
	dotRadius = 2
	wireWidth = 1
)

// Draw renders background, light and overlays.
func (v *Viewer) Draw(screen render.Image) {
	w, h := screen.Size()
	v.ensureTextures(w, h)

	// Step 1: Shadowed scene
	screen.Fill(color.Black)
	v.drawStretched(screen, v.Background, w, h, render.BlendSourceOver)

	if v.Frame != nil {
		// Step 2: Light mask, penumbra first then the primary polygon
		v.LightMask.Clear()
		for _, layer := range v.Frame.Layers() {
			render.FillTriangles(v.LightMask, v.WhiteImg, layer.Triangles, layer.Color, &render.DrawTrianglesOptions{
				AntiAlias: true,
			})
		}

		// Step 3: Tint the foreground by the mask and lay it over the shadowed scene
		v.drawStretched(v.LightMask, v.Foreground, w, h, render.BlendMultiply)
		screen.DrawImage(v.LightMask, &render.DrawImageOptions{Blend: render.BlendSourceOver})
	}

	// Step 4: Overlays
	if v.ShowWireframe {
		v.drawWireframe(screen)
	}
	if v.ShowHUD {
		v.drawHUD(screen)
	}
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

func (v *Viewer) ensureTextures(w, h int) {
	if v.WhiteImg == nil {
		v.WhiteImg = v.Renderer.NewImage(1, 1)
		v.WhiteImg.Fill(color.White)
	}
	if v.LightMask == nil || needsResize(v.LightMask, w, h) {
		if v.LightMask != nil {
			v.LightMask.Dispose()
		}
		v.LightMask = v.Renderer.NewImage(w, h)
	}
	if v.Background == nil {
		v.Background = v.loadTexture(v.Config.Images.Background, placeholders.Background, w, h)
	}
	if v.Foreground == nil {
		v.Foreground = v.loadTexture(v.Config.Images.Foreground, placeholders.Foreground, w, h)
	}
}

// loadTexture loads path, falling back to a generated texture.
func (v *Viewer) loadTexture(path string, generate func(w, h int) *image.RGBA, w, h int) render.Image {
	if path != "" && v.Loader != nil {
		img, err := v.Loader.LoadImage(path)
		if err == nil {
			return img
		}
		log.Printf("Warning: %v, using a generated texture", err)
	}
	return v.Renderer.NewImageFromImage(generate(w, h))
}

// drawStretched draws src scaled to cover w x h.
func (v *Viewer) drawStretched(dst, src render.Image, w, h int, blend render.Blend) {
	opts := &render.DrawImageOptions{Blend: blend}
	if sw, sh := src.Size(); (sw != w || sh != h) && sw > 0 && sh > 0 {
		opts.GeoM = render.NewGeoM()
		opts.GeoM.Scale(float64(w)/float64(sw), float64(h)/float64(sh))
	}
	dst.DrawImage(src, opts)
}

func (v *Viewer) drawWireframe(screen render.Image) {
	for _, s := range v.Caster.Segments() {
		v.Renderer.StrokeLine(screen, float32(s.A.X), float32(s.A.Y), float32(s.B.X), float32(s.B.Y), wireWidth, wireColor)
	}
	if v.Frame == nil {
		return
	}
	for _, p := range v.Frame.Samples {
		v.Renderer.FillCircle(screen, float32(p.X), float32(p.Y), dotRadius, sampleColor)
	}
	v.Renderer.FillCircle(screen, float32(v.Observer.X), float32(v.Observer.Y), dotRadius, observerColor)
}

func (v *Viewer) drawHUD(screen render.Image) {
	v.Renderer.DrawText(screen, v.hudText(), 8, 8)
}

func (v *Viewer) hudText() string {
	if v.Frame == nil {
		return "no frame"
	}
	return fmt.Sprintf("observer (%.0f, %.0f)  points %d  triangles %d  layers %d  cast %s  casts %d",
		v.Observer.X, v.Observer.Y, len(v.Frame.Primary.Polygon), v.Frame.TriangleCount(),
		len(v.Frame.Layers()), v.CastTime.Round(time.Microsecond), v.Casts)
}
