package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type LightKind int

const (
	AmbientKind LightKind = iota
	DirectionalKind
	PointKind
)

// Light is attached to a Node; the node supplies its position.
type Light interface {
	Kind() LightKind
}

type AmbientLight struct {
	Color     Color
	Intensity float64
}

func (*AmbientLight) Kind() LightKind { return AmbientKind }

// DirectionalLight shines from its node position towards Target.
type DirectionalLight struct {
	Color      Color
	Intensity  float64
	Target     mgl64.Vec3
	CastShadow bool
}

func (*DirectionalLight) Kind() LightKind { return DirectionalKind }

// PointLight fades to zero at Distance when Distance > 0.
type PointLight struct {
	Color     Color
	Intensity float64
	Distance  float64
	Decay     float64
}

func (*PointLight) Kind() LightKind { return PointKind }

func NewPointLight(c Color, intensity, distance float64) *PointLight {
	return &PointLight{Color: c, Intensity: intensity, Distance: distance, Decay: 2}
}

// Attenuation at distance d from the light.
func (p *PointLight) Attenuation(d float64) float64 {
	falloff := 1 / math.Max(math.Pow(d, p.Decay), 0.01)
	if p.Distance > 0 {
		r := d / p.Distance
		w := clamp(1-r*r*r*r, 0, 1)
		falloff *= w * w
	}
	return falloff
}

// litSource is a light resolved to world space for one frame.
type litSource struct {
	kind       LightKind
	radiance   Color
	position   mgl64.Vec3
	toLight    mgl64.Vec3 // directional only, normalised
	point      *PointLight
	castShadow bool
}

func resolveLight(l Light, world mgl64.Mat4) (litSource, bool) {
	pos := world.Col(3).Vec3()
	switch v := l.(type) {
	case *AmbientLight:
		return litSource{kind: AmbientKind, radiance: v.Color.Scale(v.Intensity)}, true
	case *DirectionalLight:
		dir := pos.Sub(v.Target)
		if dir.Len() == 0 {
			dir = mgl64.Vec3{0, 1, 0}
		}
		return litSource{
			kind:       DirectionalKind,
			radiance:   v.Color.Scale(v.Intensity),
			position:   pos,
			toLight:    dir.Normalize(),
			castShadow: v.CastShadow,
		}, true
	case *PointLight:
		return litSource{
			kind:     PointKind,
			radiance: v.Color.Scale(v.Intensity),
			position: pos,
			point:    v,
		}, true
	}
	return litSource{}, false
}
