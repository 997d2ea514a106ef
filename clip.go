package hauntedhouse

import "github.com/go-gl/mathgl/mgl64"

// Points handed to the clippers are in view space with Z flipped so that Z
// is the positive depth in front of the camera.

// clipPolygonAgainstNearPlane keeps the part of a convex polygon at depth
// near or beyond.
func clipPolygonAgainstNearPlane(points []mgl64.Vec3, near float64) []mgl64.Vec3 {
	clipped := make([]mgl64.Vec3, 0, len(points)+1)
	if len(points) == 0 {
		return clipped
	}

	prev := points[len(points)-1]
	prevInside := prev[2] >= near
	for _, cur := range points {
		curInside := cur[2] >= near
		switch {
		case curInside && prevInside:
			clipped = append(clipped, cur)
		case curInside && !prevInside:
			clipped = append(clipped, intersectNearPlane(prev, cur, near), cur)
		case !curInside && prevInside:
			clipped = append(clipped, intersectNearPlane(prev, cur, near))
		}
		prev, prevInside = cur, curInside
	}
	return clipped
}

// intersectNearPlane returns where p1-p2 crosses depth near, or p1 when the
// segment runs parallel to the plane.
func intersectNearPlane(p1, p2 mgl64.Vec3, near float64) mgl64.Vec3 {
	dz := p2[2] - p1[2]
	if dz == 0 {
		return p1
	}
	t := (near - p1[2]) / dz
	return p1.Add(p2.Sub(p1).Mul(t))
}

type edgeTest func(p mgl64.Vec2) bool

type edgeCross func(a, b mgl64.Vec2) mgl64.Vec2

// clipPolygonToRect clips a screen polygon against an axis aligned box.
func clipPolygonToRect(points []mgl64.Vec2, minX, minY, maxX, maxY float64) []mgl64.Vec2 {
	crossX := func(x float64) edgeCross {
		return func(a, b mgl64.Vec2) mgl64.Vec2 {
			t := (x - a[0]) / (b[0] - a[0])
			return mgl64.Vec2{x, a[1] + t*(b[1]-a[1])}
		}
	}
	crossY := func(y float64) edgeCross {
		return func(a, b mgl64.Vec2) mgl64.Vec2 {
			t := (y - a[1]) / (b[1] - a[1])
			return mgl64.Vec2{a[0] + t*(b[0]-a[0]), y}
		}
	}
	edges := []struct {
		inside edgeTest
		cross  edgeCross
	}{
		{func(p mgl64.Vec2) bool { return p[0] >= minX }, crossX(minX)},
		{func(p mgl64.Vec2) bool { return p[0] <= maxX }, crossX(maxX)},
		{func(p mgl64.Vec2) bool { return p[1] >= minY }, crossY(minY)},
		{func(p mgl64.Vec2) bool { return p[1] <= maxY }, crossY(maxY)},
	}

	out := points
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]mgl64.Vec2, 0, len(in)+1)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	if out == nil {
		return []mgl64.Vec2{}
	}
	return out
}
