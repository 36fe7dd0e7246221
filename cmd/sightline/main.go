package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"chosenoffset.com/sightline/internal/app"
	"chosenoffset.com/sightline/internal/core/visibility"
	ebitenrender "chosenoffset.com/sightline/internal/render/ebiten"
	"chosenoffset.com/sightline/internal/scene"
)

func main() {
	configPath := flag.String("config", "scene.json", "scene file (.json, .yaml or .yml)")
	debug := flag.Bool("debug", false, "log solver details to stderr")
	flag.Parse()

	if *debug {
		visibility.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	config, err := scene.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	log.Printf("Loaded scene with %d obstacles", len(config.Obstacles))

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	viewer, err := app.NewViewer(config, renderer, inputMgr, loader)
	if err != nil {
		log.Fatalf("Failed to create viewer: %v", err)
	}

	// Set up the window
	engine.SetWindowSize(config.Window.Width, config.Window.Height)
	engine.SetWindowTitle(config.Window.Title)
	engine.SetWindowResizable(config.Window.Resizable)

	log.Println("Starting viewer...")
	if err := engine.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
