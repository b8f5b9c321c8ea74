package trailmap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"redbird/internal"
)

const (
	Title       = "Red Bird Trick-or-Treat Trail"
	JPEGQuality = 90
	boundsPad   = 0.15
)

// ErrNoPins means no pin had drawable coordinates.
var ErrNoPins = errors.New("no valid pins to render")

type Size struct {
	Name   string
	Width  int
	Height int
	File   string
}

var (
	Desktop = Size{Name: "desktop", Width: 1920, Height: 1080, File: "trail_map_desktop.jpg"}
	Mobile  = Size{Name: "mobile", Width: 1080, Height: 1920, File: "trail_map_mobile.jpg"}
)

// Renderer draws one JPEG map for the given pins.
type Renderer interface {
	Render(ctx context.Context, pins []internal.Pin, size Size) ([]byte, error)
}

// Generate renders every size concurrently into dir and returns the written
// paths in size order.
func Generate(ctx context.Context, r Renderer, pins []internal.Pin, dir string, log *zap.Logger, sizes ...Size) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(sizes) == 0 {
		sizes = []Size{Desktop, Mobile}
	}
	valid, skipped := ValidPins(pins)
	if skipped > 0 {
		log.Warn("pins skipped", zap.Int("skipped", skipped))
	}
	if len(valid) == 0 {
		return nil, ErrNoPins
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		i, size := i, size
		g.Go(func() error {
			img, err := r.Render(gctx, valid, size)
			if err != nil {
				return fmt.Errorf("render %s map: %w", size.Name, err)
			}
			path := filepath.Join(dir, size.File)
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return err
			}
			paths[i] = path
			log.Info("map written", zap.String("size", size.Name), zap.String("path", path), zap.Int("pins", len(valid)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// NewRenderer picks a renderer by name: "raster" draws offline, "browser"
// screenshots a tiled map in headless Chrome.
func NewRenderer(name, chromeBin string, tileWait time.Duration, log *zap.Logger) (Renderer, error) {
	switch name {
	case "", "raster":
		return NewRasterRenderer(), nil
	case "browser":
		return NewBrowserRenderer(chromeBin, tileWait, log), nil
	default:
		return nil, fmt.Errorf("unknown map renderer %q", name)
	}
}
