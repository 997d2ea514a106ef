package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PerspectiveCamera looks from Position at Target. FOV is vertical, degrees.
type PerspectiveCamera struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64

	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	projection mgl64.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float64) *PerspectiveCamera {
	c := &PerspectiveCamera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl64.Vec3{0, 1, 0},
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *PerspectiveCamera) SetPosition(x, y, z float64) {
	c.Position = mgl64.Vec3{x, y, z}
}

func (c *PerspectiveCamera) LookAt(x, y, z float64) {
	c.Target = mgl64.Vec3{x, y, z}
}

// SetAspect does not rebuild the projection; call UpdateProjectionMatrix.
func (c *PerspectiveCamera) SetAspect(aspect float64) {
	c.Aspect = aspect
}

func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) ProjectionMatrix() mgl64.Mat4 {
	return c.projection
}

func (c *PerspectiveCamera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// ToScreen maps a view space point to pixel coordinates on a width x height
// surface. The point must be in front of the near plane.
func (c *PerspectiveCamera) ToScreen(view mgl64.Vec3, width, height float64) (float64, float64) {
	clip := c.projection.Mul4x1(view.Vec4(1))
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	return (ndcX + 1) / 2 * width, (1 - ndcY) / 2 * height
}

// FromScreen inverts ToScreen for a known view depth (distance along -Z).
func (c *PerspectiveCamera) FromScreen(sx, sy, depth, width, height float64) mgl64.Vec3 {
	ndcX := sx/width*2 - 1
	ndcY := 1 - sy/height*2
	p := c.projection
	// clip.x = p[0]*x, clip.y = p[5]*y, clip.w = depth
	return mgl64.Vec3{ndcX * depth / p[0], ndcY * depth / p[5], -depth}
}

// Project takes a world point to screen pixels and view depth. ok is false
// when the point is behind the near plane.
func (c *PerspectiveCamera) Project(world mgl64.Vec3, width, height float64) (x, y, depth float64, ok bool) {
	view := c.ViewMatrix().Mul4x1(world.Vec4(1)).Vec3()
	depth = -view[2]
	if depth < c.Near {
		return 0, 0, depth, false
	}
	x, y = c.ToScreen(view, width, height)
	return x, y, depth, true
}

// Forward is the unit vector from Position towards Target.
func (c *PerspectiveCamera) Forward() mgl64.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

func (c *PerspectiveCamera) focalLength() float64 {
	return 1 / math.Tan(mgl64.DegToRad(c.FOV)/2)
}

// Unproject returns the world point at view depth under screen pixel (sx, sy).
func (c *PerspectiveCamera) Unproject(sx, sy, depth, width, height float64) mgl64.Vec3 {
	view := c.FromScreen(sx, sy, depth, width, height)
	inv := c.ViewMatrix().Inv()
	return inv.Mul4x1(view.Vec4(1)).Vec3()
}
