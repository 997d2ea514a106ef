package game

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/smasonuk/hauntedhouse"
)

// DrawTriangles takes at most this many vertices per call.
const maxBatchVertices = 65535

var (
	whiteOnce sync.Once
	whiteSub  *ebiten.Image
)

func whiteTexel() *ebiten.Image {
	whiteOnce.Do(func() {
		whiteImage := ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSub
}

var _ hauntedhouse.PolygonBatcher = (*Batcher)(nil)

// Batcher collects polygons as fanned triangles and draws them with as few
// DrawTriangles calls as the index width allows.
type Batcher struct {
	screen   *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16

	draw func(vertices []ebiten.Vertex, indices []uint16)
}

func NewBatcher() *Batcher {
	b := &Batcher{}
	b.draw = b.drawToScreen
	return b
}

// Target sets the image the next frame is drawn to.
func (b *Batcher) Target(screen *ebiten.Image) {
	b.screen = screen
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

func (b *Batcher) Clear(clr color.NRGBA) {
	if b.screen != nil {
		b.screen.Fill(clr)
	}
}

func (b *Batcher) AddPolygon(xp, yp []float32, clr color.NRGBA) {
	n := len(xp)
	if n < 3 || n != len(yp) {
		return
	}
	if len(b.vertices)+n > maxBatchVertices {
		b.Flush()
	}

	cr := float32(clr.R) / 255.0
	cg := float32(clr.G) / 255.0
	cb := float32(clr.B) / 255.0
	ca := float32(clr.A) / 255.0

	base := uint16(len(b.vertices))
	for i := range xp {
		b.vertices = append(b.vertices, ebiten.Vertex{
			DstX:   xp[i],
			DstY:   yp[i],
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	for i := 2; i < n; i++ {
		b.indices = append(b.indices, base, base+uint16(i-1), base+uint16(i))
	}
}

func (b *Batcher) Flush() {
	if len(b.indices) > 0 {
		b.draw(b.vertices, b.indices)
	}
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

func (b *Batcher) drawToScreen(vertices []ebiten.Vertex, indices []uint16) {
	if b.screen == nil {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	b.screen.DrawTriangles(vertices, indices, whiteTexel(), op)
}
