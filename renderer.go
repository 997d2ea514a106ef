package hauntedhouse

import (
	"errors"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// PolygonBatcher receives convex screen polygons in paint order.
type PolygonBatcher interface {
	Clear(c color.NRGBA)
	AddPolygon(xp, yp []float32, clr color.NRGBA)
	Flush()
}

type paintLayer int

const (
	layerFirst paintLayer = iota
	layerShadow
	layerDepth
)

type polygon struct {
	xp, yp []float32
	depth  float64
	clr    color.NRGBA
	layer  paintLayer
}

// RenderStats describes the last frame.
type RenderStats struct {
	Faces   int
	Culled  int
	Clipped int
	Shadows int
	Drawn   int
}

// Renderer paints a scene back to front with flat shaded polygons.
type Renderer struct {
	width      int
	height     int
	pixelRatio float64
	clearColor Color

	ShadowsEnabled bool
	// ShadowStrength is the largest opacity a shadow can reach.
	ShadowStrength float64

	stats RenderStats
	polys []polygon
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:          width,
		height:         height,
		pixelRatio:     1,
		ShadowsEnabled: true,
		ShadowStrength: 0.8,
	}
}

func (r *Renderer) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *Renderer) SetPixelRatio(ratio float64) {
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	r.pixelRatio = ratio
}

func (r *Renderer) PixelRatio() float64 {
	return r.pixelRatio
}

func (r *Renderer) SetClearColor(c Color) {
	r.clearColor = c
}

func (r *Renderer) ClearColor() Color {
	return r.clearColor
}

// DrawingBufferSize is the size in device pixels.
func (r *Renderer) DrawingBufferSize() (int, int) {
	return int(math.Round(float64(r.width) * r.pixelRatio)),
		int(math.Round(float64(r.height) * r.pixelRatio))
}

func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// Render draws scene as seen by cam into batcher.
func (r *Renderer) Render(batcher PolygonBatcher, scene *Scene, cam *PerspectiveCamera) error {
	if batcher == nil || scene == nil || cam == nil {
		return errors.New("render: nil batcher, scene or camera")
	}
	bw, bh := r.DrawingBufferSize()
	r.stats = RenderStats{}
	r.polys = r.polys[:0]

	batcher.Clear(r.clearColor.NRGBA(1))
	if bw <= 0 || bh <= 0 {
		batcher.Flush()
		return nil
	}

	lights := scene.collectLights()
	view := cam.ViewMatrix()
	fw, fh := float64(bw), float64(bh)

	var moon *litSource
	for i := range lights {
		if lights[i].kind == DirectionalKind && lights[i].castShadow {
			moon = &lights[i]
			break
		}
	}
	castShadows := r.ShadowsEnabled && moon != nil && moon.toLight[1] > 0 && hasShadowReceiver(scene.Root)
	shadowAlpha := 0.0
	if castShadows {
		shadowAlpha = r.shadowOpacity(lights, moon)
	}

	scene.Root.Traverse(func(node *Node, world mgl64.Mat4) bool {
		if node.Mesh == nil || node.Material == nil {
			return true
		}
		r.collectMesh(node, world, view, lights, scene.Fog, cam, fw, fh)
		if castShadows && node.CastShadow && shadowAlpha > 0 {
			r.collectShadow(node, world, view, moon.toLight, shadowAlpha, scene.Fog, cam, fw, fh)
		}
		return true
	})

	sort.SliceStable(r.polys, func(i, j int) bool {
		a, b := r.polys[i], r.polys[j]
		if a.layer != b.layer {
			return a.layer < b.layer
		}
		return a.depth > b.depth
	})

	for _, p := range r.polys {
		batcher.AddPolygon(p.xp, p.yp, p.clr)
	}
	r.stats.Drawn = len(r.polys)
	batcher.Flush()
	return nil
}

func hasShadowReceiver(root *Node) bool {
	found := false
	root.Traverse(func(node *Node, _ mgl64.Mat4) bool {
		if node.ReceiveShadow && node.Mesh != nil {
			found = true
		}
		return !found
	})
	return found
}

// shadowOpacity is the share of light the moon contributes.
func (r *Renderer) shadowOpacity(lights []litSource, moon *litSource) float64 {
	var total float64
	for _, l := range lights {
		if l.kind == AmbientKind || l.kind == DirectionalKind {
			total += l.radiance.Luminance()
		}
	}
	if total == 0 {
		return 0
	}
	return clamp(moon.radiance.Luminance()/total, 0, 1) * r.ShadowStrength
}

func (r *Renderer) collectMesh(node *Node, world, view mgl64.Mat4, lights []litSource, fog *Fog, cam *PerspectiveCamera, fw, fh float64) {
	mesh, mat := node.Mesh, node.Material
	normalMatrix := world.Mat3().Inv().Transpose()
	worldPoints := make([]mgl64.Vec3, len(mesh.Points))
	for i, p := range mesh.Points {
		worldPoints[i] = world.Mul4x1(p.Vec4(1)).Vec3()
	}

	layer := layerDepth
	if node.DrawFirst {
		layer = layerFirst
	}

	for _, face := range mesh.Faces {
		r.stats.Faces++
		if len(face.Indices) < 3 {
			continue
		}

		pts := make([]mgl64.Vec3, len(face.Indices))
		for i, idx := range face.Indices {
			pts[i] = worldPoints[idx]
		}
		centroid := polygonCentroid(pts)

		normal := normalMatrix.Mul3x1(face.Normal)
		if normal.Len() == 0 {
			continue
		}
		normal = normal.Normalize()
		if normal.Dot(cam.Position.Sub(centroid)) < 0 {
			if mat.Side != DoubleSide {
				r.stats.Culled++
				continue
			}
			normal = normal.Mul(-1)
		}

		uv := uvCentroid(face.UVs)
		alpha := mat.Alpha(uv)
		if alpha < 0.01 {
			r.stats.Culled++
			continue
		}

		xp, yp, depth, ok := r.project(pts, view, cam, fw, fh)
		if !ok {
			r.stats.Clipped++
			continue
		}

		lit := shade(surface{
			albedo:    mat.Albedo(uv),
			ao:        mat.AmbientOcclusion(uv),
			roughness: mat.RoughnessAt(uv),
			metalness: mat.MetalnessAt(uv),
			point:     centroid,
			normal:    normal,
		}, lights, cam.Position)
		lit = applyFog(lit, fog, depth)

		r.polys = append(r.polys, polygon{
			xp:    xp,
			yp:    yp,
			depth: depth,
			clr:   lit.NRGBA(alpha),
			layer: layer,
		})
	}
}

// collectShadow flattens the light facing faces of node onto the y=0 plane
// along the moon direction.
func (r *Renderer) collectShadow(node *Node, world, view mgl64.Mat4, toLight mgl64.Vec3, alpha float64, fog *Fog, cam *PerspectiveCamera, fw, fh float64) {
	mesh := node.Mesh
	normalMatrix := world.Mat3().Inv().Transpose()

	for _, face := range mesh.Faces {
		if len(face.Indices) < 3 {
			continue
		}
		if normalMatrix.Mul3x1(face.Normal).Dot(toLight) <= 0 {
			continue
		}
		pts := make([]mgl64.Vec3, len(face.Indices))
		above := false
		for i, idx := range face.Indices {
			p := world.Mul4x1(mesh.Points[idx].Vec4(1)).Vec3()
			if p[1] > 1e-3 {
				above = true
			}
			pts[i] = p.Sub(toLight.Mul(p[1] / toLight[1]))
			pts[i][1] = 1e-3
		}
		if !above {
			continue
		}

		xp, yp, depth, ok := r.project(pts, view, cam, fw, fh)
		if !ok {
			continue
		}
		a := alpha * (1 - fog.Factor(depth))
		if a <= 0 {
			continue
		}
		r.stats.Shadows++
		r.polys = append(r.polys, polygon{
			xp:    xp,
			yp:    yp,
			depth: depth,
			clr:   Color{}.NRGBA(a),
			layer: layerShadow,
		})
	}
}

// project clips a world polygon to the view volume and returns its screen
// outline in drawing buffer pixels and its mean depth.
func (r *Renderer) project(pts []mgl64.Vec3, view mgl64.Mat4, cam *PerspectiveCamera, fw, fh float64) ([]float32, []float32, float64, bool) {
	inView := make([]mgl64.Vec3, len(pts))
	beyondFar := true
	for i, p := range pts {
		v := view.Mul4x1(p.Vec4(1))
		inView[i] = mgl64.Vec3{v[0], v[1], -v[2]}
		if inView[i][2] <= cam.Far {
			beyondFar = false
		}
	}
	if beyondFar {
		return nil, nil, 0, false
	}

	clipped := clipPolygonAgainstNearPlane(inView, cam.Near)
	if len(clipped) < 3 {
		return nil, nil, 0, false
	}

	screen := make([]mgl64.Vec2, len(clipped))
	depth := 0.0
	for i, p := range clipped {
		x, y := cam.ToScreen(mgl64.Vec3{p[0], p[1], -p[2]}, fw, fh)
		screen[i] = mgl64.Vec2{x, y}
		depth += p[2]
	}
	depth /= float64(len(clipped))

	screen = clipPolygonToRect(screen, -1, -1, fw+1, fh+1)
	if len(screen) < 3 {
		return nil, nil, 0, false
	}

	xp := make([]float32, len(screen))
	yp := make([]float32, len(screen))
	for i, p := range screen {
		xp[i] = float32(p[0])
		yp[i] = float32(p[1])
	}
	return xp, yp, depth, true
}

func polygonCentroid(pts []mgl64.Vec3) mgl64.Vec3 {
	var c mgl64.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

func uvCentroid(uvs []mgl64.Vec2) mgl64.Vec2 {
	if len(uvs) == 0 {
		return mgl64.Vec2{}
	}
	var c mgl64.Vec2
	for _, uv := range uvs {
		c = c.Add(uv)
	}
	return c.Mul(1 / float64(len(uvs)))
}
