package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/smasonuk/hauntedhouse"
	"github.com/smasonuk/hauntedhouse/game"
	"github.com/smasonuk/hauntedhouse/raster"
)

const assetTimeout = 30 * time.Second

func main() {
	cfg := hauntedhouse.DefaultConfig()

	flag.IntVar(&cfg.Width, "width", cfg.Width, "window width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "window height")
	flag.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	flag.StringVar(&cfg.AssetRoot, "assets", cfg.AssetRoot, "directory holding textures and models")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for grave placement")
	flag.IntVar(&cfg.GraveCount, "graves", cfg.GraveCount, "number of graves")
	flag.IntVar(&cfg.DoorSegments, "door-segments", cfg.DoorSegments, "door subdivisions per side")
	flag.IntVar(&cfg.ModelFaceBudget, "model-faces", cfg.ModelFaceBudget, "max faces per model mesh, 0 for no limit")
	flag.Float64Var(&cfg.MaxPixelRatio, "max-pixel-ratio", cfg.MaxPixelRatio, "upper bound on the device pixel ratio")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	flag.BoolVar(&cfg.ShowPanel, "panel", cfg.ShowPanel, "show the debug panel at start")
	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "render without a window and save PNG frames")
	flag.IntVar(&cfg.Frames, "frames", cfg.Frames, "frames to render in headless mode")
	flag.Float64Var(&cfg.FPS, "fps", cfg.FPS, "frame rate in headless mode")
	flag.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory for headless frames")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	log := hauntedhouse.NewDefaultLogger("hauntedhouse", cfg.Level())
	if err := run(cfg, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg hauntedhouse.Config, log hauntedhouse.Logger) error {
	queue := hauntedhouse.NewAssetQueue()
	textures := hauntedhouse.NewTextureLoader(cfg.AssetRoot, log)
	models := hauntedhouse.NewModelLoader(cfg.AssetRoot, cfg.ModelFaceBudget, log)
	world := hauntedhouse.BuildHauntedHouse(cfg, textures, models, queue, log)

	renderer := hauntedhouse.NewRenderer(cfg.Width, cfg.Height)
	renderer.SetClearColor(hauntedhouse.NightSky)

	viewport := hauntedhouse.NewViewport(world.Camera, renderer, cfg.MaxPixelRatio, log)
	frame := hauntedhouse.NewFrame(world, hauntedhouse.NewClock(), renderer, queue, log)
	loop := hauntedhouse.NewLoop(frame.Tick, log)

	log.Infof("scene ready: %d graves, %d assets loading", len(world.Graves.Children()), queue.Pending())

	if cfg.Headless {
		return runHeadless(cfg, loop, renderer, queue, log)
	}

	panel := hauntedhouse.NewMoonPanel(world.Moon, world.MoonLight)
	panel.Visible = cfg.ShowPanel
	return game.Run(game.New(loop, frame, viewport, panel, log), cfg)
}

func runHeadless(cfg hauntedhouse.Config, loop *hauntedhouse.Loop, renderer *hauntedhouse.Renderer, queue *hauntedhouse.AssetQueue, log hauntedhouse.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drainCtx, cancel := context.WithTimeout(ctx, assetTimeout)
	err := queue.Drain(drainCtx)
	cancel()
	if err != nil {
		log.Warnf("rendering with %d assets still loading: %v", queue.Pending(), err)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	canvas := raster.New(renderer.DrawingBufferSize())
	loop.OnFrame = func(frame int) error {
		return canvas.SavePNG(filepath.Join(cfg.OutDir, fmt.Sprintf("frame_%04d.png", frame)))
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.FPS))
	defer ticker.Stop()

	start := time.Now()
	if err := loop.Run(ctx, canvas, ticker.C, cfg.Frames); err != nil {
		if ctx.Err() != nil {
			log.Infof("interrupted after %d frames", loop.Frames())
			return nil
		}
		return err
	}
	log.Infof("rendered %d frames to %s in %s", loop.Frames(), cfg.OutDir, time.Since(start).Round(time.Millisecond))
	return nil
}
