package hauntedhouse

import "math"

// Viewport keeps the camera and renderer in step with the window size.
type Viewport struct {
	Width  int
	Height int

	camera        *PerspectiveCamera
	renderer      *Renderer
	maxPixelRatio float64
	log           Logger
}

func NewViewport(camera *PerspectiveCamera, renderer *Renderer, maxPixelRatio float64, log Logger) *Viewport {
	if maxPixelRatio <= 0 {
		maxPixelRatio = 2
	}
	w, h := renderer.Size()
	return &Viewport{
		Width:         w,
		Height:        h,
		camera:        camera,
		renderer:      renderer,
		maxPixelRatio: maxPixelRatio,
		log:           orNop(log),
	}
}

// Resize handles a window size change. It reports whether anything changed.
func (v *Viewport) Resize(width, height int, deviceScale float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	ratio := math.Min(deviceScale, v.maxPixelRatio)
	if !(ratio > 0) {
		ratio = 1
	}
	if width == v.Width && height == v.Height && ratio == v.renderer.PixelRatio() {
		return false
	}

	v.Width = width
	v.Height = height

	v.camera.SetAspect(float64(width) / float64(height))
	v.camera.UpdateProjectionMatrix()

	v.renderer.SetSize(width, height)
	v.renderer.SetPixelRatio(ratio)

	v.log.Debugf("viewport resized to %dx%d (pixel ratio %.2f)", width, height, v.renderer.PixelRatio())
	return true
}
