package hauntedhouse

import (
	"fmt"
	"time"
)

// Config holds everything the binary can tune. The zero value is not useful;
// start from DefaultConfig.
type Config struct {
	Width  int
	Height int
	Title  string

	// AssetRoot is prepended to every texture and model path.
	AssetRoot string

	Seed         int64
	GraveCount   int
	DoorSegments int
	// ModelFaceBudget caps faces per loaded model mesh; 0 disables the cap.
	ModelFaceBudget int
	MaxPixelRatio   float64

	// LogLevel is one of debug, info, warn or error. Debug forces debug.
	LogLevel  string
	Debug     bool
	ShowPanel bool

	Headless bool
	Frames   int
	FPS      float64
	OutDir   string
}

func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		Title:           "Haunted House",
		AssetRoot:       "static",
		Seed:            time.Now().UnixNano(),
		GraveCount:      50,
		DoorSegments:    100,
		ModelFaceBudget: 4000,
		MaxPixelRatio:   2,
		LogLevel:        "info",
		ShowPanel:       true,
		Frames:          120,
		FPS:             60,
		OutDir:          "frames",
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.GraveCount < 0 {
		return fmt.Errorf("grave count must not be negative, got %d", c.GraveCount)
	}
	if c.DoorSegments < 1 {
		return fmt.Errorf("door segments must be at least 1, got %d", c.DoorSegments)
	}
	if c.MaxPixelRatio <= 0 {
		return fmt.Errorf("max pixel ratio must be positive, got %f", c.MaxPixelRatio)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Headless {
		if c.Frames <= 0 {
			return fmt.Errorf("headless mode needs a positive frame count, got %d", c.Frames)
		}
		if c.FPS <= 0 {
			return fmt.Errorf("headless mode needs a positive fps, got %f", c.FPS)
		}
	}
	return nil
}

// Level is the log level the binary should run at. It assumes Validate
// passed.
func (c Config) Level() Level {
	if c.Debug {
		return LevelDebug
	}
	level, _ := ParseLevel(c.LogLevel)
	return level
}
