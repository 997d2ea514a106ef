package hauntedhouse

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Frame owns the per-tick work: deliver finished loads, move the ghosts,
// settle the camera and draw.
type Frame struct {
	Clock    *Clock
	World    *World
	Controls *OrbitControls
	Renderer *Renderer
	Assets   *AssetQueue

	log Logger
}

func NewFrame(world *World, clock *Clock, renderer *Renderer, assets *AssetQueue, log Logger) *Frame {
	controls := NewOrbitControls(world.Camera)
	controls.EnableDamping = true
	return &Frame{
		Clock:    clock,
		World:    world,
		Controls: controls,
		Renderer: renderer,
		Assets:   assets,
		log:      orNop(log),
	}
}

func (f *Frame) Tick(batcher PolygonBatcher) error {
	if f.Assets != nil {
		if n := f.Assets.Poll(); n > 0 {
			f.log.Debugf("attached %d assets, %d pending", n, f.Assets.Pending())
		}
	}

	f.World.UpdateGhosts(f.Clock.ElapsedSeconds())
	f.Controls.Update()

	if err := f.Renderer.Render(batcher, f.World.Scene, f.World.Camera); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Loop runs ticks until it is cancelled or a tick fails. A failed loop stays
// stopped.
type Loop struct {
	tick func(PolygonBatcher) error

	// OnFrame, when set, runs after every successful tick with the count of
	// frames drawn so far.
	OnFrame func(frame int) error

	running atomic.Bool
	frames  int
	err     error
	log     Logger
}

func NewLoop(tick func(PolygonBatcher) error, log Logger) *Loop {
	l := &Loop{tick: tick, log: orNop(log)}
	l.running.Store(true)
	return l
}

func (l *Loop) Running() bool {
	return l.running.Load()
}

// Err is the error that stopped the loop, if any.
func (l *Loop) Err() error {
	return l.err
}

func (l *Loop) Frames() int {
	return l.frames
}

// Cancel stops the loop after the current tick. Safe from any goroutine.
func (l *Loop) Cancel() {
	if l.running.Swap(false) {
		l.log.Debugf("loop cancelled after %d frames", l.frames)
	}
}

// Step runs one tick. Once the loop has stopped it returns ErrLoopStopped.
func (l *Loop) Step(batcher PolygonBatcher) error {
	if !l.running.Load() {
		return ErrLoopStopped
	}
	if err := l.tick(batcher); err != nil {
		return l.fail(err)
	}
	l.frames++
	if l.OnFrame != nil {
		if err := l.OnFrame(l.frames); err != nil {
			return l.fail(err)
		}
	}
	return nil
}

func (l *Loop) fail(err error) error {
	l.running.Store(false)
	l.err = err
	l.log.Errorf("loop stopped at frame %d: %v", l.frames, err)
	return err
}

// RunFrames steps n times or until the loop stops.
func (l *Loop) RunFrames(batcher PolygonBatcher, n int) error {
	for i := 0; i < n; i++ {
		if err := l.Step(batcher); err != nil {
			return err
		}
	}
	return nil
}

// Run steps once per value received from ticks until ctx ends, the loop is
// cancelled or limit frames have run. A limit of 0 means no limit. A
// cancelled loop returns nil.
func (l *Loop) Run(ctx context.Context, batcher PolygonBatcher, ticks <-chan time.Time, limit int) error {
	for limit <= 0 || l.frames < limit {
		select {
		case <-ctx.Done():
			l.Cancel()
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
		}
		if err := l.Step(batcher); err != nil {
			if err == ErrLoopStopped && l.err == nil {
				return nil
			}
			return err
		}
	}
	return nil
}
