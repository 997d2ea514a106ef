package hauntedhouse

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GhostPath maps elapsed seconds to a position. Paths hold no state.
type GhostPath func(elapsed float64) mgl64.Vec3

// GhostAPath circles at radius 4 while bobbing once every ~2 seconds.
func GhostAPath(elapsed float64) mgl64.Vec3 {
	angle := elapsed * 0.5
	return mgl64.Vec3{
		math.Cos(angle) * 4,
		math.Sin(elapsed * 3),
		math.Sin(angle) * 4,
	}
}

func GhostBPath(elapsed float64) mgl64.Vec3 {
	angle := -elapsed * 0.32
	return mgl64.Vec3{
		math.Cos(angle) * 5,
		math.Sin(elapsed*4) + math.Sin(elapsed*2.5),
		math.Sin(angle) * 5,
	}
}

// GhostCPath wobbles its radius independently on x and z.
func GhostCPath(elapsed float64) mgl64.Vec3 {
	angle := -elapsed * 0.18
	return mgl64.Vec3{
		math.Cos(angle) * (7 + math.Sin(elapsed*0.32)),
		math.Sin(elapsed*4) + math.Sin(elapsed*2.5),
		math.Sin(angle) * (7 + math.Sin(elapsed*0.5)),
	}
}

// GhostPaths lists the paths in ghost order.
var GhostPaths = [3]GhostPath{GhostAPath, GhostBPath, GhostCPath}

// GhostPositions evaluates all three paths at the same instant.
func GhostPositions(elapsed float64) [3]mgl64.Vec3 {
	var out [3]mgl64.Vec3
	for i, p := range GhostPaths {
		out[i] = p(elapsed)
	}
	return out
}
