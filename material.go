package hauntedhouse

import "github.com/go-gl/mathgl/mgl64"

type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Material follows the standard PBR map layout: colour map multiplies Color,
// AO reads red, roughness reads green, metalness reads blue, alpha reads
// green. NormalMap is kept for completeness; flat shading does not use it.
type Material struct {
	Name string

	Color     Color
	Roughness float64
	Metalness float64
	Opacity   float64

	Map             *Texture
	AlphaMap        *Texture
	AOMap           *Texture
	DisplacementMap *Texture
	NormalMap       *Texture
	RoughnessMap    *Texture
	MetalnessMap    *Texture

	DisplacementScale float64
	AOMapIntensity    float64

	Transparent bool
	Side        Side
}

func NewStandardMaterial(name string, c Color) *Material {
	return &Material{
		Name:           name,
		Color:          c,
		Roughness:      1,
		Metalness:      0,
		Opacity:        1,
		AOMapIntensity: 1,
	}
}

func (m *Material) Albedo(uv mgl64.Vec2) Color {
	if m.Map == nil {
		return m.Color
	}
	return m.Color.Mul(m.Map.Sample(uv[0], uv[1]))
}

// Alpha is only meaningful for transparent materials; opaque ones return 1.
func (m *Material) Alpha(uv mgl64.Vec2) float64 {
	if !m.Transparent {
		return 1
	}
	a := m.Opacity
	if m.AlphaMap != nil {
		a *= m.AlphaMap.Sample(uv[0], uv[1]).G
	}
	return a
}

func (m *Material) AmbientOcclusion(uv mgl64.Vec2) float64 {
	if m.AOMap == nil {
		return 1
	}
	ao := m.AOMap.Sample(uv[0], uv[1]).R
	return (ao-1)*m.AOMapIntensity + 1
}

func (m *Material) RoughnessAt(uv mgl64.Vec2) float64 {
	if m.RoughnessMap == nil {
		return m.Roughness
	}
	return m.Roughness * m.RoughnessMap.Sample(uv[0], uv[1]).G
}

func (m *Material) MetalnessAt(uv mgl64.Vec2) float64 {
	if m.MetalnessMap == nil {
		return m.Metalness
	}
	return m.Metalness * m.MetalnessMap.Sample(uv[0], uv[1]).B
}
