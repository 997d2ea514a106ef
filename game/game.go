// Package game runs the haunted house scene in an ebiten window.
package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/smasonuk/hauntedhouse"
)

const (
	panelLineHeight = 16
	panelPadding    = 6
	panelWidth      = 200
)

var panelBackground = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x22, A: 0xd0}

// Game adapts a Loop to ebiten. Draw steps the loop; Update only reads input
// and reports when the loop has stopped.
type Game struct {
	loop     *hauntedhouse.Loop
	frame    *hauntedhouse.Frame
	viewport *hauntedhouse.Viewport
	panel    *hauntedhouse.DebugPanel
	batcher  *Batcher
	input    input
	log      hauntedhouse.Logger
}

func New(loop *hauntedhouse.Loop, frame *hauntedhouse.Frame, viewport *hauntedhouse.Viewport, panel *hauntedhouse.DebugPanel, log hauntedhouse.Logger) *Game {
	if log == nil {
		log = hauntedhouse.NewNopLogger()
	}
	return &Game{
		loop:     loop,
		frame:    frame,
		viewport: viewport,
		panel:    panel,
		batcher:  NewBatcher(),
		log:      log,
	}
}

func (g *Game) Update() error {
	if err := g.loop.Err(); err != nil {
		return err
	}
	if !g.loop.Running() {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.loop.Cancel()
		return nil
	}

	_, h := g.frame.Renderer.DrawingBufferSize()
	g.input.orbit(g.frame.Controls, float64(h))
	if g.panel != nil {
		g.input.panel(g.panel)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.batcher.Target(screen)
	if err := g.loop.Step(g.batcher); err != nil && !errors.Is(err, hauntedhouse.ErrLoopStopped) {
		// Update picks the error up from the loop on the next tick.
		return
	}

	if g.panel != nil && g.panel.Visible {
		g.drawPanel(screen)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %0.2f", ebiten.ActualFPS()), panelPadding, screen.Bounds().Dy()-panelLineHeight-panelPadding)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	lines := g.panel.Lines()
	h := float32(len(lines)*panelLineHeight + 2*panelPadding)
	x := float32(screen.Bounds().Dx() - panelWidth - panelPadding)
	vector.DrawFilledRect(screen, x, panelPadding, panelWidth, h, panelBackground, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, int(x)+panelPadding, 2*panelPadding+i*panelLineHeight)
	}
}

// Layout resizes the scene to the window and draws at the device pixel ratio.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.viewport.Resize(outsideWidth, outsideHeight, deviceScale(ebiten.Monitor()))
	return g.frame.Renderer.DrawingBufferSize()
}

// deviceScale is 1 when no monitor is available.
func deviceScale(m *ebiten.MonitorType) float64 {
	if m == nil {
		return 1
	}
	return m.DeviceScaleFactor()
}

// Run opens the window and blocks until it is closed or the loop stops.
func Run(g *Game, cfg hauntedhouse.Config) error {
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		g.log.Infof("window closed after %d frames", g.loop.Frames())
		return nil
	}
	return err
}
