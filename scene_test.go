package hauntedhouse

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeWorldMatrixComposesParents(t *testing.T) {
	house := NewGroup("house")
	house.SetPosition(1, 0, 0)
	bush := NewNode("bush")
	bush.SetScale(0.1, 0.1, 0.1)
	bush.SetPosition(5, 1.8, -3.2)
	house.Add(bush)

	got := bush.WorldMatrix().Mul4x1(mgl64.Vec4{10, 0, 0, 1}).Vec3()
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{7, 1.8, -3.2}, 1e-9), "%v", got)
	assert.Same(t, house, bush.Parent())
}

func TestNodeRotationOrder(t *testing.T) {
	floor := NewNode("floor")
	floor.Rotation[0] = -math.Pi * 0.5
	// plane normal +Z should end up pointing +Y
	n := floor.WorldMatrix().Mul4x1(mgl64.Vec4{0, 0, 1, 0}).Vec3()
	assert.True(t, n.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9), "%v", n)
}

func TestNodeAddReparents(t *testing.T) {
	a, b, c := NewGroup("a"), NewGroup("b"), NewNode("c")
	a.Add(c)
	b.Add(c)
	assert.Empty(t, a.Children())
	assert.Equal(t, []*Node{c}, b.Children())
	assert.True(t, b.Remove(c))
	assert.False(t, b.Remove(c))
	assert.Nil(t, c.Parent())
}

func TestNodeTraverseSkipsHidden(t *testing.T) {
	root := NewGroup("root")
	visible := NewNode("visible")
	hidden := NewGroup("hidden")
	hidden.Visible = false
	hidden.Add(NewNode("under-hidden"))
	root.Add(visible, hidden)

	var names []string
	root.Traverse(func(n *Node, _ mgl64.Mat4) bool {
		names = append(names, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "visible"}, names)
	require.NotNil(t, root.Find("under-hidden"))
	assert.Nil(t, root.Find("nope"))
}

func TestSceneCollectLights(t *testing.T) {
	s := NewScene()
	group := NewGroup("house")
	group.SetPosition(0, 1, 0)
	door := NewLightNode("door", NewPointLight(MustHex("#ff7d46"), 2, 7))
	door.SetPosition(0, 2.2, 2.7)
	group.Add(door)
	moon := NewLightNode("moon", &DirectionalLight{Color: White, Intensity: 0.5})
	moon.SetPosition(6, 5, -3)
	s.Add(group, moon, NewLightNode("ambient", &AmbientLight{Color: White, Intensity: 0.5}))

	lights := s.collectLights()
	require.Len(t, lights, 3)
	assert.Equal(t, PointKind, lights[0].kind)
	assert.True(t, lights[0].position.ApproxEqualThreshold(mgl64.Vec3{0, 3.2, 2.7}, 1e-9))
	assert.Equal(t, DirectionalKind, lights[1].kind)
	assert.InDelta(t, 1.0, lights[1].toLight.Len(), 1e-9)
	assert.Equal(t, AmbientKind, lights[2].kind)
}

func TestPointLightAttenuation(t *testing.T) {
	p := NewPointLight(White, 2, 3)
	assert.Equal(t, 0.0, p.Attenuation(3))
	assert.Equal(t, 0.0, p.Attenuation(4))
	assert.Greater(t, p.Attenuation(1), p.Attenuation(2))

	unbounded := NewPointLight(White, 1, 0)
	assert.InDelta(t, 0.25, unbounded.Attenuation(2), 1e-12)
}

func TestFogFactor(t *testing.T) {
	f := &Fog{Color: MustHex("#262837"), Near: 1, Far: 30}
	assert.Equal(t, 0.0, f.Factor(0.5))
	assert.Equal(t, 1.0, f.Factor(40))
	assert.Greater(t, f.Factor(20), f.Factor(10))
	var none *Fog
	assert.Equal(t, 0.0, none.Factor(100))
}
