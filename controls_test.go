package hauntedhouse

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestControls() (*PerspectiveCamera, *OrbitControls) {
	cam := NewPerspectiveCamera(75, 4.0/3.0, 0.1, 100)
	cam.SetPosition(4, 2, 5)
	cam.LookAt(0, 0, 0)
	controls := NewOrbitControls(cam)
	controls.EnableDamping = true
	return cam, controls
}

func TestOrbitControlsIdleUpdateIsNoop(t *testing.T) {
	cam, controls := newTestControls()
	before := cam.Position

	for i := 0; i < 10; i++ {
		assert.False(t, controls.Update())
	}
	assert.True(t, cam.Position.ApproxEqualThreshold(before, 1e-9))
	assert.False(t, controls.Pending())
}

func TestOrbitControlsDampingConverges(t *testing.T) {
	cam, controls := newTestControls()
	start := sphericalFromVec(cam.Position.Sub(cam.Target))

	controls.Rotate(60, 0, 600)
	want := start.theta - 2*math.Pi*60/600

	require.True(t, controls.Update())
	first := sphericalFromVec(cam.Position.Sub(cam.Target))
	assert.InDelta(t, start.theta-2*math.Pi*60/600*0.05, first.theta, 1e-9,
		"first update applies dampingFactor of the delta")

	for i := 0; i < 1000; i++ {
		controls.Update()
	}
	end := sphericalFromVec(cam.Position.Sub(cam.Target))
	assert.InDelta(t, want, end.theta, 1e-6)
	assert.InDelta(t, start.radius, end.radius, 1e-9, "rotation keeps the orbit radius")
	assert.False(t, controls.Update(), "settled controls report no movement")
}

func TestOrbitControlsWithoutDampingAppliesAtOnce(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false
	start := sphericalFromVec(cam.Position.Sub(cam.Target))

	controls.Rotate(0, -30, 600)
	require.True(t, controls.Update())
	end := sphericalFromVec(cam.Position.Sub(cam.Target))
	assert.InDelta(t, start.phi+2*math.Pi*30/600, end.phi, 1e-9)
	assert.False(t, controls.Pending())
}

func TestOrbitControlsPolarClamp(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false

	controls.Rotate(0, 10000, 600)
	controls.Update()
	s := sphericalFromVec(cam.Position.Sub(cam.Target))
	assert.GreaterOrEqual(t, s.phi, controlsEPS*0.999)
	assert.Less(t, s.phi, 0.01)

	controls.Rotate(0, -20000, 600)
	controls.Update()
	s = sphericalFromVec(cam.Position.Sub(cam.Target))
	assert.LessOrEqual(t, s.phi, math.Pi-controlsEPS*0.999)
	assert.Greater(t, s.phi, math.Pi-0.01)
}

func TestOrbitControlsDolly(t *testing.T) {
	tests := []struct {
		name  string
		ticks float64
		scale float64
	}{
		{"wheel up zooms in", 1, 0.95},
		{"wheel down zooms out", -1, 1 / 0.95},
		{"two ticks", 2, 0.95 * 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, controls := newTestControls()
			r := cam.Position.Len()
			controls.Dolly(tt.ticks)
			assert.True(t, controls.Update())
			assert.InDelta(t, r*tt.scale, cam.Position.Len(), 1e-9)
		})
	}
}

func TestOrbitControlsDistanceClamp(t *testing.T) {
	cam, controls := newTestControls()
	controls.MinDistance = 5
	controls.MaxDistance = 8

	for i := 0; i < 50; i++ {
		controls.Dolly(1)
	}
	controls.Update()
	assert.InDelta(t, 5, cam.Position.Len(), 1e-9)

	for i := 0; i < 50; i++ {
		controls.Dolly(-1)
	}
	controls.Update()
	assert.InDelta(t, 8, cam.Position.Len(), 1e-9)
}

func TestOrbitControlsPanMovesTargetAndCamera(t *testing.T) {
	cam, controls := newTestControls()
	controls.EnableDamping = false
	offset := cam.Position.Sub(cam.Target)

	controls.Pan(100, 0, 600)
	require.True(t, controls.Update())

	assert.False(t, cam.Target.ApproxEqualThreshold(mgl64.Vec3{}, 1e-6))
	assert.True(t, cam.Position.Sub(cam.Target).ApproxEqualThreshold(offset, 1e-9),
		"pan keeps the camera offset")
	assert.InDelta(t, 0, cam.Target[1], 1e-9, "horizontal drag keeps height")
}
