package hauntedhouse

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A
	glbChunkBIN  = 0x004E4942

	gltfModeTriangles = 4

	gltfByte          = 5120
	gltfUnsignedByte  = 5121
	gltfShort         = 5122
	gltfUnsignedShort = 5123
	gltfUnsignedInt   = 5125
	gltfFloat         = 5126
)

type gltfDocument struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Scene  *int `json:"scene,omitempty"`
	Scenes []struct {
		Nodes []int `json:"nodes,omitempty"`
	} `json:"scenes,omitempty"`
	Nodes       []gltfNode       `json:"nodes,omitempty"`
	Meshes      []gltfMesh       `json:"meshes,omitempty"`
	Accessors   []gltfAccessor   `json:"accessors,omitempty"`
	BufferViews []gltfBufferView `json:"bufferViews,omitempty"`
	Buffers     []gltfBuffer     `json:"buffers,omitempty"`
	Materials   []gltfMaterial   `json:"materials,omitempty"`
}

type gltfNode struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float64 `json:"matrix,omitempty"`
	Translation *[3]float64  `json:"translation,omitempty"`
	Rotation    *[4]float64  `json:"rotation,omitempty"` // x, y, z, w
	Scale       *[3]float64  `json:"scale,omitempty"`
}

type gltfMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []gltfPrimitive `json:"primitives"`
}

type gltfPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

type gltfAccessor struct {
	BufferView    *int   `json:"bufferView,omitempty"`
	ByteOffset    int    `json:"byteOffset,omitempty"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type gltfBufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
}

type gltfBuffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	data []byte
}

type gltfMaterial struct {
	Name string `json:"name,omitempty"`
	PBR  *struct {
		BaseColorFactor *[4]float64 `json:"baseColorFactor,omitempty"`
		MetallicFactor  *float64    `json:"metallicFactor,omitempty"`
		RoughnessFactor *float64    `json:"roughnessFactor,omitempty"`
	} `json:"pbrMetallicRoughness,omitempty"`
	AlphaMode   string `json:"alphaMode,omitempty"`
	DoubleSided bool   `json:"doubleSided,omitempty"`
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfByte, gltfUnsignedByte:
		return 1
	case gltfShort, gltfUnsignedShort:
		return 2
	case gltfUnsignedInt, gltfFloat:
		return 4
	}
	return 0
}

func componentCount(accessorType string) int {
	switch accessorType {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4", "MAT2":
		return 4
	case "MAT3":
		return 9
	case "MAT4":
		return 16
	}
	return 0
}

func invalidModel(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidModel, fmt.Sprintf(format, args...))
}

type gltfParser struct {
	baseDir  string
	readFile func(name string) ([]byte, error)
	doc      gltfDocument
	bin      []byte
}

// parse accepts either glTF JSON or a GLB container.
func (p *gltfParser) parse(data []byte) error {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if data, err = p.unpackGLB(data); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, &p.doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if !strings.HasPrefix(p.doc.Asset.Version, "2.") {
		return invalidModel("unsupported glTF version %q", p.doc.Asset.Version)
	}
	return p.loadBuffers()
}

func (p *gltfParser) unpackGLB(data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	var header struct {
		Magic, Version, Length uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, invalidModel("short GLB header")
	}
	if header.Version != glbVersion {
		return nil, invalidModel("GLB version %d", header.Version)
	}

	var jsonChunk []byte
	for {
		var chunk struct {
			Length, Type uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF {
				break
			}
			return nil, invalidModel("GLB chunk header: %v", err)
		}
		if int64(chunk.Length) > int64(r.Len()) {
			return nil, invalidModel("GLB chunk of %d bytes exceeds the %d remaining", chunk.Length, r.Len())
		}
		body := make([]byte, chunk.Length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, invalidModel("GLB chunk body: %v", err)
		}
		switch chunk.Type {
		case glbChunkJSON:
			jsonChunk = body
		case glbChunkBIN:
			p.bin = body
		}
	}
	if jsonChunk == nil {
		return nil, invalidModel("GLB has no JSON chunk")
	}
	return jsonChunk, nil
}

func (p *gltfParser) loadBuffers() error {
	for i := range p.doc.Buffers {
		buf := &p.doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && p.bin != nil:
			buf.data = p.bin
		case buf.URI == "":
			return invalidModel("buffer %d has no data", i)
		case strings.HasPrefix(buf.URI, "data:"):
			comma := strings.IndexByte(buf.URI, ',')
			if comma < 0 || !strings.Contains(buf.URI[:comma], "base64") {
				return invalidModel("buffer %d: unsupported data URI", i)
			}
			data, err := base64.StdEncoding.DecodeString(buf.URI[comma+1:])
			if err != nil {
				return fmt.Errorf("%w: buffer %d: %w", ErrInvalidModel, i, err)
			}
			buf.data = data
		default:
			data, err := p.readFile(filepath.Join(p.baseDir, filepath.FromSlash(buf.URI)))
			if err != nil {
				return fmt.Errorf("loading buffer %s: %w", buf.URI, err)
			}
			buf.data = data
		}
		if len(buf.data) < buf.ByteLength {
			return invalidModel("buffer %d holds %d bytes, expected %d", i, len(buf.data), buf.ByteLength)
		}
	}
	return nil
}

// elements returns the raw bytes of each element of accessor index.
func (p *gltfParser) elements(index int) (*gltfAccessor, [][]byte, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, nil, invalidModel("accessor %d out of range", index)
	}
	acc := &p.doc.Accessors[index]
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(p.doc.BufferViews) {
		return nil, nil, invalidModel("accessor %d has no buffer view", index)
	}
	view := p.doc.BufferViews[*acc.BufferView]
	if acc.Count < 0 || acc.ByteOffset < 0 || view.ByteOffset < 0 || view.ByteStride < 0 {
		return nil, nil, invalidModel("accessor %d has a negative count, offset or stride", index)
	}
	if view.Buffer < 0 || view.Buffer >= len(p.doc.Buffers) {
		return nil, nil, invalidModel("buffer view %d points at missing buffer", *acc.BufferView)
	}
	data := p.doc.Buffers[view.Buffer].data

	size := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if size == 0 {
		return nil, nil, invalidModel("accessor %d has unknown layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	stride := size
	if view.ByteStride > 0 {
		stride = view.ByteStride
	}

	out := make([][]byte, acc.Count)
	start := view.ByteOffset + acc.ByteOffset
	for i := range out {
		off := start + i*stride
		if off+size > len(data) {
			return nil, nil, invalidModel("accessor %d reads past its buffer", index)
		}
		out[i] = data[off : off+size]
	}
	return acc, out, nil
}

func (p *gltfParser) readFloats(index int, accessorType string) ([][]float64, error) {
	acc, elems, err := p.elements(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfFloat {
		return nil, invalidModel("accessor %d is %s/%d, want %s float", index, acc.Type, acc.ComponentType, accessorType)
	}
	n := componentCount(accessorType)
	out := make([][]float64, len(elems))
	for i, e := range elems {
		v := make([]float64, n)
		for c := 0; c < n; c++ {
			v[c] = float64(math.Float32frombits(binary.LittleEndian.Uint32(e[c*4:])))
		}
		out[i] = v
	}
	return out, nil
}

func (p *gltfParser) readIndices(index int) ([]int, error) {
	acc, elems, err := p.elements(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, invalidModel("index accessor %d is %s", index, acc.Type)
	}
	out := make([]int, len(elems))
	for i, e := range elems {
		switch acc.ComponentType {
		case gltfUnsignedByte:
			out[i] = int(e[0])
		case gltfUnsignedShort:
			out[i] = int(binary.LittleEndian.Uint16(e))
		case gltfUnsignedInt:
			out[i] = int(binary.LittleEndian.Uint32(e))
		default:
			return nil, invalidModel("index accessor %d has component type %d", index, acc.ComponentType)
		}
	}
	return out, nil
}

func (p *gltfParser) material(index *int) *Material {
	m := NewStandardMaterial("gltf", White)
	// glTF defaults
	m.Metalness = 1
	if index == nil || *index < 0 || *index >= len(p.doc.Materials) {
		return m
	}
	src := p.doc.Materials[*index]
	m.Name = src.Name
	if src.PBR != nil {
		if f := src.PBR.BaseColorFactor; f != nil {
			m.Color = Color{f[0], f[1], f[2]}
			m.Opacity = f[3]
		}
		if src.PBR.MetallicFactor != nil {
			m.Metalness = *src.PBR.MetallicFactor
		}
		if src.PBR.RoughnessFactor != nil {
			m.Roughness = *src.PBR.RoughnessFactor
		}
	}
	m.Transparent = src.AlphaMode == "BLEND"
	if src.DoubleSided {
		m.Side = DoubleSide
	}
	return m
}

func (p *gltfParser) primitive(prim gltfPrimitive) (*Mesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfModeTriangles {
		return nil, nil
	}
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, invalidModel("primitive without POSITION")
	}
	positions, err := p.readFloats(posIndex, "VEC3")
	if err != nil {
		return nil, err
	}
	var uvs [][]float64
	if uvIndex, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = p.readFloats(uvIndex, "VEC2"); err != nil {
			return nil, err
		}
	}

	var indices []int
	if prim.Indices != nil {
		if indices, err = p.readIndices(*prim.Indices); err != nil {
			return nil, err
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	mesh := NewMesh()
	tri := make([]mgl64.Vec3, 3)
	triUV := make([]mgl64.Vec2, 3)
	for i := 0; i+2 < len(indices); i += 3 {
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if idx < 0 || idx >= len(positions) {
				return nil, invalidModel("index %d out of range", idx)
			}
			pos := positions[idx]
			tri[k] = mgl64.Vec3{pos[0], pos[1], pos[2]}
			triUV[k] = mgl64.Vec2{}
			if idx < len(uvs) {
				// glTF puts v=0 at the top of the image
				triUV[k] = mgl64.Vec2{uvs[idx][0], 1 - uvs[idx][1]}
			}
		}
		mesh.AddFace(tri, triUV)
	}
	return mesh, nil
}

func gltfLocalMatrix(n gltfNode) *mgl64.Mat4 {
	if n.Matrix != nil {
		m := mgl64.Mat4(*n.Matrix)
		return &m
	}
	if n.Translation == nil && n.Rotation == nil && n.Scale == nil {
		return nil
	}
	m := mgl64.Ident4()
	if t := n.Translation; t != nil {
		m = mgl64.Translate3D(t[0], t[1], t[2])
	}
	if r := n.Rotation; r != nil {
		q := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
		m = m.Mul4(q.Mat4())
	}
	if s := n.Scale; s != nil {
		m = m.Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
	}
	return &m
}

// modelBuild turns the parsed document into a node tree.
type modelBuild struct {
	p          *gltfParser
	faceBudget int
	log        Logger
	name       string
	visiting   map[int]bool
}

func (b *modelBuild) node(index int) (*Node, error) {
	if index < 0 || index >= len(b.p.doc.Nodes) {
		return nil, invalidModel("node %d out of range", index)
	}
	if b.visiting[index] {
		return nil, invalidModel("node %d is its own ancestor", index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	src := b.p.doc.Nodes[index]
	n := NewGroup(src.Name)
	n.Matrix = gltfLocalMatrix(src)

	if src.Mesh != nil {
		if *src.Mesh < 0 || *src.Mesh >= len(b.p.doc.Meshes) {
			return nil, invalidModel("mesh %d out of range", *src.Mesh)
		}
		gm := b.p.doc.Meshes[*src.Mesh]
		for i, prim := range gm.Primitives {
			mesh, err := b.p.primitive(prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, i, err)
			}
			if mesh == nil {
				b.log.Debugf("%s: skipping non-triangle primitive %d of %q", b.name, i, gm.Name)
				continue
			}
			if lo, hi := mesh.Bounds(); !finite(lo) || !finite(hi) {
				return nil, invalidModel("mesh %q primitive %d has non-finite positions", gm.Name, i)
			}
			if dropped := mesh.Decimate(b.faceBudget); dropped > 0 {
				b.log.Warnf("%s: mesh %q has too many faces, dropped %d of %d", b.name, gm.Name, dropped, dropped+mesh.FaceCount())
			}
			n.Add(NewMeshNode(fmt.Sprintf("%s/%d", gm.Name, i), mesh, b.p.material(prim.Material)))
		}
	}

	for _, c := range src.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ParseModel builds a node tree from glTF or GLB bytes. External buffers are
// read relative to baseDir.
func ParseModel(name string, data []byte, baseDir string, faceBudget int, log Logger) (*Node, error) {
	p := &gltfParser{baseDir: baseDir, readFile: os.ReadFile}
	return parseModel(p, name, data, faceBudget, log)
}

func parseModel(p *gltfParser, name string, data []byte, faceBudget int, log Logger) (*Node, error) {
	if err := p.parse(data); err != nil {
		return nil, err
	}

	var roots []int
	switch {
	case p.doc.Scene != nil && *p.doc.Scene >= 0 && *p.doc.Scene < len(p.doc.Scenes):
		roots = p.doc.Scenes[*p.doc.Scene].Nodes
	case len(p.doc.Scenes) > 0:
		roots = p.doc.Scenes[0].Nodes
	default:
		// no scene: every node nobody claims as a child is a root
		child := make(map[int]bool)
		for _, n := range p.doc.Nodes {
			for _, c := range n.Children {
				child[c] = true
			}
		}
		for i := range p.doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}

	b := &modelBuild{p: p, faceBudget: faceBudget, log: orNop(log), name: name, visiting: make(map[int]bool)}
	root := NewGroup(name)
	for _, r := range roots {
		n, err := b.node(r)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	if root.FaceCount() == 0 {
		return nil, invalidModel("%s has no triangles", name)
	}
	return root, nil
}

type ModelLoader struct {
	root       string
	faceBudget int
	log        Logger
	readFile   func(name string) ([]byte, error)
}

func NewModelLoader(root string, faceBudget int, log Logger) *ModelLoader {
	return &ModelLoader{
		root:       root,
		faceBudget: faceBudget,
		log:        orNop(log),
		readFile:   os.ReadFile,
	}
}

// Load parses path in the background. Each call builds a fresh node tree.
func (l *ModelLoader) Load(path string) *Future[*Node] {
	return Go(func() (*Node, error) {
		name := filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
		data, err := l.readFile(name)
		if err != nil {
			return nil, fmt.Errorf("could not open model %s: %w", name, err)
		}
		p := &gltfParser{baseDir: filepath.Dir(name), readFile: l.readFile}
		node, err := parseModel(p, path, data, l.faceBudget, l.log)
		if err != nil {
			return nil, fmt.Errorf("loading model %s: %w", path, err)
		}
		l.log.Debugf("model %s loaded with %d faces", path, node.FaceCount())
		return node, nil
	})
}
