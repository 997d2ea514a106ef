package hauntedhouse

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func faceCentre(m *Mesh, f Face) mgl64.Vec3 {
	var c mgl64.Vec3
	for _, idx := range f.Indices {
		c = c.Add(m.Points[idx])
	}
	return c.Mul(1 / float64(len(f.Indices)))
}

// Every face of a centred convex mesh should point away from the origin.
func assertOutwardNormals(t *testing.T, m *Mesh) {
	t.Helper()
	for i, f := range m.Faces {
		c := faceCentre(m, f)
		assert.Greater(t, f.Normal.Dot(c), 0.0, "face %d normal %v centre %v", i, f.Normal, c)
	}
}

func TestNewBoxMesh(t *testing.T) {
	m := NewBoxMesh(4, 2.5, 4)
	assert.Equal(t, 6, m.FaceCount())
	assert.Len(t, m.Points, 8)
	assertOutwardNormals(t, m)

	min, max := m.Bounds()
	assert.Equal(t, mgl64.Vec3{-2, -1.25, -2}, min)
	assert.Equal(t, mgl64.Vec3{2, 1.25, 2}, max)
}

func TestNewConeMesh(t *testing.T) {
	m := NewConeMesh(3.5, 1, 4)
	assert.Equal(t, 5, m.FaceCount())
	assert.Len(t, m.Points, 5)
	assertOutwardNormals(t, m)

	base := m.Faces[4]
	assert.InDelta(t, -1.0, base.Normal.Y(), 1e-9)

	// first ring point sits on +Z
	assert.True(t, m.Points[0].ApproxEqualThreshold(mgl64.Vec3{0, -0.5, 3.5}, 1e-9))
}

func TestNewPlaneMesh(t *testing.T) {
	m := NewPlaneMesh(2, 2, 4, 3)
	assert.Equal(t, 12, m.FaceCount())
	assert.Len(t, m.Points, 5*4)
	for _, f := range m.Faces {
		assert.True(t, f.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9))
		for _, uv := range f.UVs {
			assert.True(t, uv[0] >= 0 && uv[0] <= 1 && uv[1] >= 0 && uv[1] <= 1)
		}
	}
	// bottom-left corner has uv (0,0)
	bl := m.Faces[8] // last row, first column
	assert.Equal(t, mgl64.Vec2{0, 0}, bl.UVs[0])
	assert.True(t, m.Points[bl.Indices[0]].ApproxEqualThreshold(mgl64.Vec3{-1, -1, 0}, 1e-9))
}

func TestDisplaceMesh(t *testing.T) {
	m := NewPlaneMesh(2, 2, 2, 2)
	white := NewTextureFromImage("height", solidImage(2, 2, color.White), 0)
	DisplaceMesh(m, white, 0.1)
	for _, p := range m.Points {
		assert.InDelta(t, 0.1, p.Z(), 1e-9)
	}
	for _, f := range m.Faces {
		assert.InDelta(t, 1.0, f.Normal.Z(), 1e-9)
	}

	untouched := NewPlaneMesh(2, 2, 2, 2)
	DisplaceMesh(untouched, nil, 0.1)
	assert.Equal(t, NewPlaneMesh(2, 2, 2, 2).Points, untouched.Points)
}

func TestMeshDecimate(t *testing.T) {
	m := NewPlaneMesh(1, 1, 10, 10)
	dropped := m.Decimate(30)
	assert.LessOrEqual(t, m.FaceCount(), 30)
	assert.Equal(t, 100-m.FaceCount(), dropped)
	assert.Equal(t, 0, m.Decimate(0))
}

