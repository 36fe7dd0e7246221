package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"chosenoffset.com/sightline/internal/placeholders"
)

func main() {
	outDir := flag.String("out", ".", "directory to write background.png and foreground.png to")
	width := flag.Int("width", 840, "texture width")
	height := flag.Int("height", 560, "texture height")
	flag.Parse()

	fmt.Println("Sightline Texture Generator")
	fmt.Println("===========================")

	textures := []struct {
		name string
		gen  func(w, h int) *image.RGBA
	}{
		{"background.png", placeholders.Background},
		{"foreground.png", placeholders.Foreground},
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, tex := range textures {
		path := filepath.Join(*outDir, tex.name)
		if err := placeholders.SavePNG(tex.gen(*width, *height), path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  wrote %s\n", path)
	}

	fmt.Println()
	fmt.Println("Done! Point images.background and images.foreground at these files.")
}
