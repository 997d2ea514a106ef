package hauntedhouse

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestCameraProjectsTargetToCentre(t *testing.T) {
	cam := NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100)
	cam.SetPosition(4, 2, 5)
	cam.LookAt(0, 0, 0)

	x, y, depth, ok := cam.Project(mgl64.Vec3{0, 0, 0}, 800, 600)
	assert.True(t, ok)
	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 300, y, 1e-9)
	assert.InDelta(t, math.Sqrt(16+4+25), depth, 1e-9)

	_, _, _, ok = cam.Project(mgl64.Vec3{8, 4, 10}, 800, 600)
	assert.False(t, ok, "point behind the camera")
}

func TestCameraScreenRoundTrip(t *testing.T) {
	width := 800.0
	height := 600.0
	cam := NewPerspectiveCamera(75, width/height, 0.1, 100)

	testPoints := []struct {
		name    string
		x, y, z float64
	}{
		{"Center point", 0, 0, 50},
		{"Arbitrary point", 15, -25, 75},
		{"Point with large z", 100, 200, 1000},
		{"Point with small z", 1, 2, 11},
	}

	for _, p := range testPoints {
		t.Run(p.name, func(t *testing.T) {
			view := mgl64.Vec3{p.x, p.y, -p.z}
			sx, sy := cam.ToScreen(view, width, height)
			back := cam.FromScreen(sx, sy, p.z, width, height)
			assert.True(t, back.ApproxEqualThreshold(view, 1e-6), "got %v want %v", back, view)
		})
	}
}

func TestCameraUpwardPointsGoUpOnScreen(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1, 0.1, 100)
	_, yUp := cam.ToScreen(mgl64.Vec3{0, 1, -5}, 100, 100)
	_, yDown := cam.ToScreen(mgl64.Vec3{0, -1, -5}, 100, 100)
	assert.Less(t, yUp, yDown)
}

func TestCameraAspectNeedsProjectionUpdate(t *testing.T) {
	cam := NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100)
	before := cam.ProjectionMatrix()
	cam.SetAspect(1024.0 / 768.0)
	assert.Equal(t, before, cam.ProjectionMatrix())
	cam.SetAspect(2)
	cam.UpdateProjectionMatrix()
	assert.InDelta(t, cam.focalLength()/2, cam.ProjectionMatrix()[0], 1e-12)
	assert.InDelta(t, cam.focalLength(), cam.ProjectionMatrix()[5], 1e-12)
}

func TestCameraUnprojectRoundTrip(t *testing.T) {
	cam := NewPerspectiveCamera(75, 1024.0/768.0, 0.1, 100)
	cam.SetPosition(4, 2, 5)
	cam.LookAt(0, 0, 0)

	for _, world := range []mgl64.Vec3{{0, 0, 0}, {1, 2, -3}, {-3, 1.8, 3.2}} {
		x, y, depth, ok := cam.Project(world, 1024, 768)
		if !assert.True(t, ok) {
			continue
		}
		back := cam.Unproject(x, y, depth, 1024, 768)
		assert.True(t, back.ApproxEqualThreshold(world, 1e-6), "got %v want %v", back, world)
	}
}
