package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const controlsEPS = 1e-6

type spherical struct {
	radius float64
	phi    float64 // polar angle from +Y
	theta  float64 // azimuth around Y, from +Z towards +X
}

func sphericalFromVec(v mgl64.Vec3) spherical {
	r := v.Len()
	if r == 0 {
		return spherical{}
	}
	return spherical{
		radius: r,
		theta:  math.Atan2(v[0], v[2]),
		phi:    math.Acos(clamp(v[1]/r, -1, 1)),
	}
}

func (s spherical) vec() mgl64.Vec3 {
	sinPhiRadius := math.Sin(s.phi) * s.radius
	return mgl64.Vec3{
		sinPhiRadius * math.Sin(s.theta),
		math.Cos(s.phi) * s.radius,
		sinPhiRadius * math.Cos(s.theta),
	}
}

// OrbitControls orbits a camera around its target. Input only accumulates
// pending deltas; Update applies them, a fraction per call when damping is
// on, so motion eases out over several frames.
type OrbitControls struct {
	camera *PerspectiveCamera

	EnableDamping bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64
	PanSpeed      float64

	MinDistance   float64
	MaxDistance   float64
	MinPolarAngle float64
	MaxPolarAngle float64

	sphericalDelta spherical
	panOffset      mgl64.Vec3
	scale          float64
	zoomChanged    bool

	lastPosition mgl64.Vec3
	lastTarget   mgl64.Vec3
}

func NewOrbitControls(camera *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		camera:        camera,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		scale:         1,
		lastPosition:  camera.Position,
		lastTarget:    camera.Target,
	}
}

// Rotate takes a pointer drag in pixels. A drag across the full viewport
// height turns the camera a full circle.
func (c *OrbitControls) Rotate(dx, dy, viewportHeight float64) {
	if viewportHeight <= 0 {
		return
	}
	c.sphericalDelta.theta -= 2 * math.Pi * dx / viewportHeight * c.RotateSpeed
	c.sphericalDelta.phi -= 2 * math.Pi * dy / viewportHeight * c.RotateSpeed
}

// Dolly takes wheel ticks; positive moves towards the target.
func (c *OrbitControls) Dolly(ticks float64) {
	if ticks == 0 {
		return
	}
	zoomScale := math.Pow(0.95, c.ZoomSpeed*math.Abs(ticks))
	if ticks > 0 {
		c.scale *= zoomScale
	} else {
		c.scale /= zoomScale
	}
	c.zoomChanged = true
}

// Pan takes a pointer drag in pixels and moves target and camera together.
func (c *OrbitControls) Pan(dx, dy, viewportHeight float64) {
	if viewportHeight <= 0 {
		return
	}
	offset := c.camera.Position.Sub(c.camera.Target)
	targetDistance := offset.Len() / c.camera.focalLength()

	forward := c.camera.Forward()
	right := forward.Cross(c.camera.Up)
	if right.Len() == 0 {
		right = mgl64.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up := right.Cross(forward)

	left := right.Mul(-2 * dx * targetDistance / viewportHeight * c.PanSpeed)
	upward := up.Mul(2 * dy * targetDistance / viewportHeight * c.PanSpeed)
	c.panOffset = c.panOffset.Add(left).Add(upward)
}

// Pending reports whether any input is still waiting to be applied.
func (c *OrbitControls) Pending() bool {
	return math.Abs(c.sphericalDelta.theta) > controlsEPS ||
		math.Abs(c.sphericalDelta.phi) > controlsEPS ||
		c.panOffset.Len() > controlsEPS ||
		c.scale != 1
}

// Update moves the camera towards the latest input and reports whether it
// moved.
func (c *OrbitControls) Update() bool {
	cam := c.camera
	s := sphericalFromVec(cam.Position.Sub(cam.Target))

	factor := 1.0
	if c.EnableDamping {
		factor = c.DampingFactor
	}

	s.theta += c.sphericalDelta.theta * factor
	s.phi += c.sphericalDelta.phi * factor
	s.phi = clamp(s.phi, math.Max(c.MinPolarAngle, controlsEPS), math.Min(c.MaxPolarAngle, math.Pi-controlsEPS))

	s.radius = clamp(s.radius*c.scale, c.MinDistance, c.MaxDistance)

	cam.Target = cam.Target.Add(c.panOffset.Mul(factor))
	cam.Position = cam.Target.Add(s.vec())

	if c.EnableDamping {
		c.sphericalDelta.theta *= 1 - c.DampingFactor
		c.sphericalDelta.phi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.sphericalDelta = spherical{}
		c.panOffset = mgl64.Vec3{}
	}
	c.scale = 1

	moved := c.zoomChanged ||
		cam.Position.Sub(c.lastPosition).Len() > controlsEPS ||
		cam.Target.Sub(c.lastTarget).Len() > controlsEPS
	c.zoomChanged = false
	c.lastPosition = cam.Position
	c.lastTarget = cam.Target
	return moved
}
