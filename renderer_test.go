package hauntedhouse

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPolygon struct {
	xp, yp []float32
	clr    color.NRGBA
}

// PolygonBatcher mock that remembers what it was asked to paint.
type recordingBatcher struct {
	cleared []color.NRGBA
	polys   []recordedPolygon
	flushes int
}

func (b *recordingBatcher) Clear(c color.NRGBA) {
	b.cleared = append(b.cleared, c)
	b.polys = b.polys[:0]
}

func (b *recordingBatcher) AddPolygon(xp, yp []float32, clr color.NRGBA) {
	b.polys = append(b.polys, recordedPolygon{xp: xp, yp: yp, clr: clr})
}

func (b *recordingBatcher) Flush() {
	b.flushes++
}

func newTestCamera(x, y, z float64) *PerspectiveCamera {
	cam := NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100)
	cam.SetPosition(x, y, z)
	cam.LookAt(0, 0, 0)
	return cam
}

func flatMaterial(c Color) *Material {
	return NewStandardMaterial("flat", c)
}

func litScene() *Scene {
	s := NewScene()
	s.Add(NewLightNode("ambient", &AmbientLight{Color: White, Intensity: 1}))
	return s
}

func TestRendererClearsAndFlushes(t *testing.T) {
	r := NewRenderer(800, 600)
	r.SetClearColor(MustHex("#262837"))
	b := &recordingBatcher{}

	require.NoError(t, r.Render(b, NewScene(), newTestCamera(0, 0, 5)))
	require.Len(t, b.cleared, 1)
	assert.Equal(t, color.NRGBA{R: 0x26, G: 0x28, B: 0x37, A: 0xff}, b.cleared[0])
	assert.Equal(t, 1, b.flushes)
	assert.Empty(t, b.polys)

	assert.Error(t, r.Render(nil, NewScene(), newTestCamera(0, 0, 5)))
}

func TestRendererCullsBackFaces(t *testing.T) {
	s := litScene()
	s.Add(NewMeshNode("box", NewBoxMesh(1, 1, 1), flatMaterial(Color{1, 0, 0})))
	r := NewRenderer(800, 600)
	b := &recordingBatcher{}

	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	stats := r.Stats()
	assert.Equal(t, 6, stats.Faces)
	assert.Equal(t, 5, stats.Culled)
	assert.Equal(t, 1, stats.Drawn)
	require.Len(t, b.polys, 1)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, b.polys[0].clr)

	// the front face is centred on screen
	var cx, cy float32
	for i := range b.polys[0].xp {
		cx += b.polys[0].xp[i]
		cy += b.polys[0].yp[i]
	}
	n := float32(len(b.polys[0].xp))
	assert.InDelta(t, 400, cx/n, 1e-3)
	assert.InDelta(t, 300, cy/n, 1e-3)
}

func TestRendererDoubleSided(t *testing.T) {
	for _, side := range []Side{FrontSide, DoubleSide} {
		s := litScene()
		mat := flatMaterial(White)
		mat.Side = side
		s.Add(NewMeshNode("plane", NewPlaneMesh(1, 1, 1, 1), mat))

		r := NewRenderer(800, 600)
		b := &recordingBatcher{}
		require.NoError(t, r.Render(b, s, newTestCamera(0, 0, -5)))
		if side == DoubleSide {
			assert.Len(t, b.polys, 1, "double sided plane is visible from behind")
		} else {
			assert.Empty(t, b.polys, "front sided plane is culled from behind")
		}
	}
}

func TestRendererPaintOrder(t *testing.T) {
	s := litScene()
	far := NewMeshNode("far", NewPlaneMesh(1, 1, 1, 1), flatMaterial(Color{1, 0, 0}))
	far.SetPosition(0, 0, -2)
	near := NewMeshNode("near", NewPlaneMesh(1, 1, 1, 1), flatMaterial(Color{0, 1, 0}))
	ground := NewMeshNode("ground", NewPlaneMesh(1, 1, 1, 1), flatMaterial(Color{0, 0, 1}))
	ground.SetPosition(0, 0, 1)
	ground.DrawFirst = true
	s.Add(near, ground, far)

	r := NewRenderer(800, 600)
	b := &recordingBatcher{}
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))

	require.Len(t, b.polys, 3)
	assert.Equal(t, uint8(255), b.polys[0].clr.B, "draw-first node paints first")
	assert.Equal(t, uint8(255), b.polys[1].clr.R, "then far to near")
	assert.Equal(t, uint8(255), b.polys[2].clr.G)
}

func TestRendererFog(t *testing.T) {
	s := litScene()
	s.Fog = &Fog{Color: MustHex("#262837"), Near: 1, Far: 3}
	s.Add(NewMeshNode("box", NewBoxMesh(1, 1, 1), flatMaterial(White)))

	r := NewRenderer(800, 600)
	b := &recordingBatcher{}
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	require.Len(t, b.polys, 1)
	assert.Equal(t, s.Fog.Color.NRGBA(1), b.polys[0].clr)
}

func TestRendererSkipsGeometryOutsideFrustumDepth(t *testing.T) {
	s := litScene()
	behind := NewMeshNode("behind", NewBoxMesh(1, 1, 1), flatMaterial(White))
	behind.SetPosition(0, 0, 10)
	beyond := NewMeshNode("beyond", NewBoxMesh(1, 1, 1), flatMaterial(White))
	beyond.SetPosition(0, 0, -200)
	s.Add(behind, beyond)

	r := NewRenderer(800, 600)
	b := &recordingBatcher{}
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	assert.Empty(t, b.polys)
	assert.Positive(t, r.Stats().Clipped)
}

func TestRendererTransparency(t *testing.T) {
	s := litScene()
	mat := flatMaterial(White)
	mat.Transparent = true
	mat.AlphaMap = NewTextureFromImage("alpha", solidImage(2, 2, color.NRGBA{G: 128, A: 255}), 0)
	s.Add(NewMeshNode("door", NewPlaneMesh(1, 1, 1, 1), mat))

	r := NewRenderer(800, 600)
	b := &recordingBatcher{}
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	require.Len(t, b.polys, 1)
	assert.Equal(t, uint8(128), b.polys[0].clr.A)

	mat.AlphaMap = NewTextureFromImage("alpha", solidImage(2, 2, color.NRGBA{A: 255}), 0)
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	assert.Empty(t, b.polys, "fully transparent faces are skipped")
}

func TestRendererPlanarShadows(t *testing.T) {
	build := func(receive bool) *Scene {
		s := NewScene()
		s.Add(NewLightNode("ambient", &AmbientLight{Color: White, Intensity: 0.5}))
		moon := NewLightNode("moon", &DirectionalLight{Color: White, Intensity: 0.5, CastShadow: true})
		moon.SetPosition(0, 5, 0)
		s.Add(moon)

		floorMat := flatMaterial(White)
		floorMat.Side = DoubleSide
		floor := NewMeshNode("floor", NewPlaneMesh(20, 20, 1, 1), floorMat)
		floor.Rotation[0] = -math.Pi / 2
		floor.DrawFirst = true
		floor.ReceiveShadow = receive
		s.Add(floor)

		box := NewMeshNode("box", NewBoxMesh(1, 1, 1), flatMaterial(White))
		box.SetPosition(0, 1, 0)
		box.CastShadow = true
		s.Add(box)
		return s
	}

	r := NewRenderer(800, 600)
	b := &recordingBatcher{}
	cam := newTestCamera(0, 5, 5)

	require.NoError(t, r.Render(b, build(true), cam))
	assert.Equal(t, 1, r.Stats().Shadows, "only the lit top face casts")
	require.GreaterOrEqual(t, len(b.polys), 2)
	assert.Equal(t, color.NRGBA{A: 102}, b.polys[1].clr, "shadow paints over the floor")

	require.NoError(t, r.Render(b, build(false), cam))
	assert.Zero(t, r.Stats().Shadows, "no receiver, no shadow")

	r.ShadowsEnabled = false
	require.NoError(t, r.Render(b, build(true), cam))
	assert.Zero(t, r.Stats().Shadows)
}

func TestRendererDrawingBufferSize(t *testing.T) {
	r := NewRenderer(800, 600)
	w, h := r.DrawingBufferSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	r.SetPixelRatio(2)
	w, h = r.DrawingBufferSize()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)

	r.SetPixelRatio(0)
	assert.Equal(t, 1.0, r.PixelRatio())
}

func TestRendererProjectsInDrawingBufferPixels(t *testing.T) {
	s := litScene()
	s.Add(NewMeshNode("box", NewBoxMesh(1, 1, 1), flatMaterial(White)))
	r := NewRenderer(400, 300)
	r.SetPixelRatio(2)
	b := &recordingBatcher{}
	require.NoError(t, r.Render(b, s, newTestCamera(0, 0, 5)))
	require.Len(t, b.polys, 1)

	var cx float32
	for _, x := range b.polys[0].xp {
		cx += x
	}
	assert.InDelta(t, 400, cx/float32(len(b.polys[0].xp)), 1e-3)
}
