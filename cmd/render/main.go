package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/scenepix/scenepix/internal/asset"
	"github.com/scenepix/scenepix/internal/fonts"
	"github.com/scenepix/scenepix/internal/render"
	"github.com/scenepix/scenepix/internal/scene"
)

// render rasterizes a single scene document to PNG without running the
// server. Useful for pipelines and for eyeballing scenes locally:
//
//	render -in scene.json -out out.png
//	render -sample -out sample.png
//	cat scene.json | render > out.png
func main() {
	// Logs go to stderr so the PNG can go to stdout.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	var (
		in      = flag.String("in", "-", "scene JSON file, '-' for stdin")
		out     = flag.String("out", "-", "output PNG file, '-' for stdout")
		assets  = flag.String("assets", "", "directory for file-referenced scene images")
		fontDir = flag.String("fonts", "", "directory of extra TTF/OTF fonts")
		sample  = flag.Bool("sample", false, "render the built-in sample scene")
	)
	flag.Parse()

	fontRegistry, err := fonts.NewRegistry()
	if err != nil {
		slog.Error("load embedded fonts", "error", err)
		os.Exit(1)
	}
	if *fontDir != "" {
		if err := fontRegistry.LoadDir(*fontDir); err != nil {
			slog.Error("load font dir", "error", err, "dir", *fontDir)
			os.Exit(1)
		}
	}

	var doc *scene.Document
	if *sample {
		doc = scene.NewSampleDocument()
	} else {
		data, err := readInput(*in)
		if err != nil {
			slog.Error("read scene", "error", err)
			os.Exit(1)
		}
		doc, err = scene.Parse(data)
		if err != nil {
			slog.Error("parse scene", "error", err)
			os.Exit(1)
		}
	}

	renderer := render.NewRenderer(fontRegistry, asset.NewLoader(*assets))
	result, err := renderer.Render(context.Background(), doc)
	if err != nil {
		slog.Error("render scene", "error", err)
		os.Exit(1)
	}

	if err := writeOutput(*out, result.PNG); err != nil {
		slog.Error("write png", "error", err)
		os.Exit(1)
	}

	slog.Info("rendered", "width", result.Width, "height", result.Height, "objects", len(doc.Objects), "bytes", len(result.PNG))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
