package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a convex polygon in counter-clockwise order when seen from the
// front. UVs are stored per corner so positions can be shared between faces
// that disagree on texture coordinates.
type Face struct {
	Indices []int
	UVs     []mgl64.Vec2
	Normal  mgl64.Vec3
}

type Mesh struct {
	Points     []mgl64.Vec3
	Faces      []Face
	pointIndex map[[3]float64]int
}

func NewMesh() *Mesh {
	return &Mesh{
		pointIndex: make(map[[3]float64]int),
	}
}

// AddPoint returns the index of p, reusing an existing identical point.
func (m *Mesh) AddPoint(p mgl64.Vec3) int {
	key := [3]float64{p[0], p[1], p[2]}
	if index, found := m.pointIndex[key]; found {
		return index
	}
	m.Points = append(m.Points, p)
	index := len(m.Points) - 1
	m.pointIndex[key] = index
	return index
}

// AddFace adds a polygon. uvs may be nil.
func (m *Mesh) AddFace(points []mgl64.Vec3, uvs []mgl64.Vec2) {
	f := Face{
		Indices: make([]int, len(points)),
		UVs:     make([]mgl64.Vec2, len(points)),
	}
	for i, p := range points {
		f.Indices[i] = m.AddPoint(p)
		if i < len(uvs) {
			f.UVs[i] = uvs[i]
		}
	}
	f.Normal = m.faceNormal(f.Indices)
	m.Faces = append(m.Faces, f)
}

func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

func (m *Mesh) faceNormal(indices []int) mgl64.Vec3 {
	if len(indices) < 3 {
		return mgl64.Vec3{0, 0, 1}
	}
	p1, p2, p3 := m.Points[indices[0]], m.Points[indices[1]], m.Points[indices[2]]
	n := p2.Sub(p1).Cross(p3.Sub(p2))
	if n.Len() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

// RecomputeNormals refreshes face normals after points have moved.
func (m *Mesh) RecomputeNormals() {
	for i := range m.Faces {
		m.Faces[i].Normal = m.faceNormal(m.Faces[i].Indices)
	}
}

// Bounds returns the axis aligned box of all points.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Points) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	min, max = m.Points[0], m.Points[0]
	for _, p := range m.Points[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}
	return min, max
}

// Decimate keeps every k-th face so that at most budget faces remain.
// It returns the number of faces dropped.
func (m *Mesh) Decimate(budget int) int {
	n := len(m.Faces)
	if budget <= 0 || n <= budget {
		return 0
	}
	stride := int(math.Ceil(float64(n) / float64(budget)))
	kept := m.Faces[:0]
	for i := 0; i < n; i += stride {
		kept = append(kept, m.Faces[i])
	}
	m.Faces = kept
	return n - len(kept)
}

func NewBoxMesh(width, height, depth float64) *Mesh {
	m := NewMesh()
	hx, hy, hz := width/2, height/2, depth/2

	sides := []struct {
		centre, u, v mgl64.Vec3
	}{
		{mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, -hz}, mgl64.Vec3{0, hy, 0}},  // +X
		{mgl64.Vec3{-hx, 0, 0}, mgl64.Vec3{0, 0, hz}, mgl64.Vec3{0, hy, 0}},  // -X
		{mgl64.Vec3{0, hy, 0}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, -hz}},  // +Y
		{mgl64.Vec3{0, -hy, 0}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, 0, hz}},  // -Y
		{mgl64.Vec3{0, 0, hz}, mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{0, hy, 0}},   // +Z
		{mgl64.Vec3{0, 0, -hz}, mgl64.Vec3{-hx, 0, 0}, mgl64.Vec3{0, hy, 0}}, // -Z
	}
	quadUVs := []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	for _, s := range sides {
		m.AddFace([]mgl64.Vec3{
			s.centre.Sub(s.u).Sub(s.v),
			s.centre.Add(s.u).Sub(s.v),
			s.centre.Add(s.u).Add(s.v),
			s.centre.Sub(s.u).Add(s.v),
		}, quadUVs)
	}
	return m
}

// NewConeMesh builds a cone with its apex at +height/2 and a closed base.
func NewConeMesh(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := NewMesh()
	apex := mgl64.Vec3{0, height / 2, 0}
	ring := make([]mgl64.Vec3, segments)
	for k := range ring {
		theta := 2 * math.Pi * float64(k) / float64(segments)
		ring[k] = mgl64.Vec3{radius * math.Sin(theta), -height / 2, radius * math.Cos(theta)}
	}

	for k := 0; k < segments; k++ {
		next := (k + 1) % segments
		u0 := float64(k) / float64(segments)
		u1 := float64(k+1) / float64(segments)
		m.AddFace(
			[]mgl64.Vec3{ring[k], ring[next], apex},
			[]mgl64.Vec2{{u0, 0}, {u1, 0}, {(u0 + u1) / 2, 1}},
		)
	}

	base := make([]mgl64.Vec3, segments)
	baseUVs := make([]mgl64.Vec2, segments)
	for k := 0; k < segments; k++ {
		p := ring[segments-1-k]
		base[k] = p
		baseUVs[k] = mgl64.Vec2{0.5 + 0.5*p[0]/radius, 0.5 + 0.5*p[2]/radius}
	}
	m.AddFace(base, baseUVs)
	return m
}

// NewPlaneMesh builds a width x height plane in XY facing +Z, split into
// widthSegments x heightSegments quads.
func NewPlaneMesh(width, height float64, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if heightSegments < 1 {
		heightSegments = 1
	}
	m := NewMesh()
	dx := width / float64(widthSegments)
	dy := height / float64(heightSegments)

	at := func(ix, iy int) (mgl64.Vec3, mgl64.Vec2) {
		p := mgl64.Vec3{-width/2 + float64(ix)*dx, height/2 - float64(iy)*dy, 0}
		uv := mgl64.Vec2{float64(ix) / float64(widthSegments), 1 - float64(iy)/float64(heightSegments)}
		return p, uv
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			pa, ua := at(ix, iy)
			pb, ub := at(ix, iy+1)
			pc, uc := at(ix+1, iy+1)
			pd, ud := at(ix+1, iy)
			m.AddFace([]mgl64.Vec3{pb, pc, pd, pa}, []mgl64.Vec2{ub, uc, ud, ua})
		}
	}
	return m
}

// DisplaceMesh pushes every point along its averaged normal by the height
// map luminance times scale. A nil height map leaves the mesh untouched.
func DisplaceMesh(m *Mesh, heightMap *Texture, scale float64) {
	if heightMap == nil || scale == 0 || len(m.Points) == 0 {
		return
	}

	normals := make([]mgl64.Vec3, len(m.Points))
	uvs := make([]mgl64.Vec2, len(m.Points))
	seen := make([]bool, len(m.Points))
	for _, f := range m.Faces {
		for i, idx := range f.Indices {
			normals[idx] = normals[idx].Add(f.Normal)
			if !seen[idx] {
				uvs[idx] = f.UVs[i]
				seen[idx] = true
			}
		}
	}

	for i, p := range m.Points {
		n := normals[i]
		if n.Len() == 0 {
			continue
		}
		h := heightMap.Sample(uvs[i][0], uvs[i][1]).Luminance()
		m.Points[i] = p.Add(n.Normalize().Mul(h * scale))
	}

	m.pointIndex = make(map[[3]float64]int, len(m.Points))
	for i, p := range m.Points {
		m.pointIndex[[3]float64{p[0], p[1], p[2]}] = i
	}
	m.RecomputeNormals()
}
