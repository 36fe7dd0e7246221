// Package placeholders generates the textures shown when a scene does not
// name its own background and foreground images.
package placeholders

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/pkg/errors"
)

// TileSize is the edge length of a generated tile
const TileSize = 32

// ColorPalette defines the colors of the generated textures
var ColorPalette = struct {
	// Background, seen in shadow
	ShadowFloor  color.RGBA
	ShadowCobble color.RGBA
	ShadowMortar color.RGBA

	// Foreground, revealed by the light
	LitFloor   color.RGBA
	LitAccent  color.RGBA
	LitOutline color.RGBA
}{
	ShadowFloor:  color.RGBA{60, 55, 50, 255}, // Darker stone
	ShadowCobble: color.RGBA{55, 50, 45, 255}, // Cobblestone dark
	ShadowMortar: color.RGBA{30, 28, 25, 255}, // Very dark brown

	LitFloor:   color.RGBA{196, 180, 150, 255}, // Warm sandstone
	LitAccent:  color.RGBA{220, 140, 50, 255},  // Torch orange
	LitOutline: color.RGBA{130, 125, 115, 255}, // Lighter stone
}

// CreateSolidTile creates a simple solid-colored tile
func CreateSolidTile(col color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{col}, image.Point{}, draw.Src)
	return img
}

// CreateBorderedTile creates a tile with a border
func CreateBorderedTile(fillColor, borderColor color.RGBA, borderWidth int) *image.RGBA {
	img := CreateSolidTile(fillColor)
	for i := 0; i < borderWidth && i < TileSize/2; i++ {
		for x := 0; x < TileSize; x++ {
			img.SetRGBA(x, i, borderColor)
			img.SetRGBA(x, TileSize-1-i, borderColor)
			img.SetRGBA(i, x, borderColor)
			img.SetRGBA(TileSize-1-i, x, borderColor)
		}
	}
	return img
}

// CreatePatternedTile draws "grid", "dots", "cross" or "diagonal" over a solid
// tile. Unknown patterns leave the tile solid.
func CreatePatternedTile(baseColor, patternColor color.RGBA, pattern string) *image.RGBA {
	img := CreateSolidTile(baseColor)
	return OverlayPattern(img, patternColor, pattern)
}

// OverlayPattern draws a pattern over an existing tile
func OverlayPattern(img *image.RGBA, patternColor color.RGBA, pattern string) *image.RGBA {
	switch pattern {
	case "grid":
		for i := 0; i < TileSize; i += 4 {
			for x := 0; x < TileSize; x++ {
				img.SetRGBA(x, i, patternColor)
				img.SetRGBA(i, x, patternColor)
			}
		}
	case "dots":
		quarter := TileSize / 4
		threeQuarter := 3 * TileSize / 4
		dots := []image.Point{{quarter, quarter}, {threeQuarter, quarter}, {quarter, threeQuarter}, {threeQuarter, threeQuarter}}
		for _, p := range dots {
			// 2x2 dots
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					img.SetRGBA(p.X+dx, p.Y+dy, patternColor)
				}
			}
		}
	case "cross":
		mid := TileSize / 2
		for i := 2; i < TileSize-2; i++ {
			img.SetRGBA(mid, i, patternColor)
			img.SetRGBA(i, mid, patternColor)
		}
	case "diagonal":
		for i := 0; i < TileSize; i++ {
			img.SetRGBA(i, i, patternColor)
			img.SetRGBA(i, TileSize-1-i, patternColor)
		}
	}
	return img
}

// TileImage repeats tile over a width x height image, starting at the top-left
func TileImage(tile image.Image, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	tb := tile.Bounds()
	if tb.Empty() {
		return img
	}
	for y := 0; y < height; y += tb.Dy() {
		for x := 0; x < width; x += tb.Dx() {
			dst := image.Rect(x, y, x+tb.Dx(), y+tb.Dy())
			draw.Draw(img, dst, tile, tb.Min, draw.Src)
		}
	}
	return img
}

// Background builds the texture shown where the observer cannot see
func Background(width, height int) *image.RGBA {
	tile := CreateBorderedTile(ColorPalette.ShadowCobble, ColorPalette.ShadowMortar, 1)
	return TileImage(OverlayPattern(tile, Darken(ColorPalette.ShadowFloor, 0.7), "dots"), width, height)
}

// Foreground builds the texture revealed by the light
func Foreground(width, height int) *image.RGBA {
	tile := CreateBorderedTile(ColorPalette.LitFloor, ColorPalette.LitOutline, 1)
	return TileImage(OverlayPattern(tile, ColorPalette.LitAccent, "cross"), width, height)
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	return nil
}

// Darken returns a darker version of a color
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
