package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/smasonuk/hauntedhouse"
)

// drag turns cursor positions into per-frame deltas while a button is held.
type drag struct {
	active       bool
	lastX, lastY int
}

func (d *drag) begin(x, y int) {
	d.active = true
	d.lastX, d.lastY = x, y
}

// move returns the cursor delta since the previous call.
func (d *drag) move(x, y int) (dx, dy float64) {
	if !d.active {
		return 0, 0
	}
	dx, dy = float64(x-d.lastX), float64(y-d.lastY)
	d.lastX, d.lastY = x, y
	return dx, dy
}

func (d *drag) end() {
	d.active = false
}

// keyRepeat fires on press and then repeatedly while the key is held.
func keyRepeat(key ebiten.Key) bool {
	const delay, interval = 20, 3
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= delay && (d-delay)%interval == 0)
}

type input struct {
	rotate drag
	pan    drag
}

// orbit feeds mouse drags and the wheel to the orbit controls. height is the
// viewport height in the same units as the cursor.
func (in *input) orbit(controls *hauntedhouse.OrbitControls, height float64) {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		in.rotate.begin(x, y)
	}
	if dx, dy := in.rotate.move(x, y); dx != 0 || dy != 0 {
		controls.Rotate(dx, dy, height)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		in.rotate.end()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		in.pan.begin(x, y)
	}
	if dx, dy := in.pan.move(x, y); dx != 0 || dy != 0 {
		controls.Pan(dx, dy, height)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		in.pan.end()
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		controls.Dolly(wy)
	}
}

func (in *input) panel(p *hauntedhouse.DebugPanel) {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		p.Toggle()
	}
	if !p.Visible {
		return
	}
	if keyRepeat(ebiten.KeyUp) {
		p.Select(-1)
	}
	if keyRepeat(ebiten.KeyDown) {
		p.Select(1)
	}
	if keyRepeat(ebiten.KeyLeft) {
		p.Adjust(-1)
	}
	if keyRepeat(ebiten.KeyRight) {
		p.Adjust(1)
	}
}
