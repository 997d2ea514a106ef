package hauntedhouse

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is one element of the scene graph. Rotation is Euler XYZ in radians.
type Node struct {
	Name     string
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
	// Matrix, when set, replaces Position, Rotation and Scale.
	Matrix  *mgl64.Mat4
	Visible bool

	Mesh     *Mesh
	Material *Material
	Light    Light

	CastShadow    bool
	ReceiveShadow bool
	// DrawFirst nodes are painted before everything else, like a ground plane.
	DrawFirst bool

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Scale:   mgl64.Vec3{1, 1, 1},
		Visible: true,
	}
}

func NewGroup(name string) *Node {
	return NewNode(name)
}

func NewMeshNode(name string, mesh *Mesh, material *Material) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Material = material
	return n
}

func NewLightNode(name string, light Light) *Node {
	n := NewNode(name)
	n.Light = light
	return n
}

// Add reparents children under n.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) SetPosition(x, y, z float64) {
	n.Position = mgl64.Vec3{x, y, z}
}

func (n *Node) SetScale(x, y, z float64) {
	n.Scale = mgl64.Vec3{x, y, z}
}

func (n *Node) LocalMatrix() mgl64.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	t := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := mgl64.HomogRotate3DX(n.Rotation[0]).
		Mul4(mgl64.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation[2]))
	s := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition is the translation part of WorldMatrix.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// Traverse visits visible nodes depth first with their world matrix.
// Returning false from fn skips that node's children.
func (n *Node) Traverse(fn func(node *Node, world mgl64.Mat4) bool) {
	n.traverse(mgl64.Ident4(), fn)
}

func (n *Node) traverse(parent mgl64.Mat4, fn func(*Node, mgl64.Mat4) bool) {
	if !n.Visible {
		return
	}
	world := parent.Mul4(n.LocalMatrix())
	if !fn(n, world) {
		return
	}
	for _, c := range n.children {
		c.traverse(world, fn)
	}
}

// Find returns the first node called name, searching depth first.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// SetCastShadowDeep flags n and all descendants.
func (n *Node) SetCastShadowDeep(cast bool) {
	n.CastShadow = cast
	for _, c := range n.children {
		c.SetCastShadowDeep(cast)
	}
}

// FaceCount totals mesh faces in the subtree.
func (n *Node) FaceCount() int {
	total := 0
	if n.Mesh != nil {
		total += n.Mesh.FaceCount()
	}
	for _, c := range n.children {
		total += c.FaceCount()
	}
	return total
}

// Fog is linear fog blended with smoothstep between Near and Far.
type Fog struct {
	Color Color
	Near  float64
	Far   float64
}

func (f *Fog) Factor(depth float64) float64 {
	if f == nil {
		return 0
	}
	return smoothstep(f.Near, f.Far, depth)
}

type Scene struct {
	Root *Node
	Fog  *Fog
}

func NewScene() *Scene {
	return &Scene{Root: NewGroup("scene")}
}

func (s *Scene) Add(nodes ...*Node) {
	s.Root.Add(nodes...)
}

func (s *Scene) collectLights() []litSource {
	var lights []litSource
	s.Root.Traverse(func(node *Node, world mgl64.Mat4) bool {
		if node.Light != nil {
			if l, ok := resolveLight(node.Light, world); ok {
				lights = append(lights, l)
			}
		}
		return true
	})
	return lights
}
