package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// surface is what the shader needs to know about one face.
type surface struct {
	albedo    Color
	ao        float64
	roughness float64
	metalness float64
	point     mgl64.Vec3 // world space centroid
	normal    mgl64.Vec3 // world space, facing the viewer
}

// dielectric base reflectance
const baseReflectance = 0.04

// shade lights a face once at its centroid. Ambient light is scaled by AO,
// metals lose their diffuse term and smooth surfaces pick up a Blinn-Phong
// highlight tinted towards the albedo as metalness grows.
func shade(s surface, lights []litSource, eye mgl64.Vec3) Color {
	var indirect, direct, specular Color

	view := eye.Sub(s.point)
	if view.Len() > 0 {
		view = view.Normalize()
	}
	f0 := Color{baseReflectance, baseReflectance, baseReflectance}.Lerp(s.albedo, s.metalness)
	shininess := 2 + (1-s.roughness)*(1-s.roughness)*126
	gloss := 1 - s.roughness

	for _, l := range lights {
		var toLight mgl64.Vec3
		var radiance Color

		switch l.kind {
		case AmbientKind:
			indirect = indirect.Add(l.radiance)
			continue
		case DirectionalKind:
			toLight = l.toLight
			radiance = l.radiance
		case PointKind:
			d := l.position.Sub(s.point)
			dist := d.Len()
			if dist == 0 {
				continue
			}
			toLight = d.Mul(1 / dist)
			att := l.point.Attenuation(dist)
			if att == 0 {
				continue
			}
			radiance = l.radiance.Scale(att)
		default:
			continue
		}

		ndotl := s.normal.Dot(toLight)
		if ndotl <= 0 {
			continue
		}
		irradiance := radiance.Scale(ndotl)
		direct = direct.Add(irradiance)

		if gloss > 0 {
			half := toLight.Add(view)
			if half.Len() > 0 {
				ndoth := math.Max(0, s.normal.Dot(half.Normalize()))
				specular = specular.Add(irradiance.Mul(f0).Scale(gloss * math.Pow(ndoth, shininess)))
			}
		}
	}

	diffuse := s.albedo.Scale(1 - s.metalness)
	return diffuse.Mul(indirect.Scale(s.ao).Add(direct)).Add(specular)
}

// applyFog blends c towards the fog colour for a face at view depth.
func applyFog(c Color, fog *Fog, depth float64) Color {
	if fog == nil {
		return c
	}
	return c.Lerp(fog.Color, fog.Factor(depth))
}
