// Package raster paints polygons into an in-memory image for headless runs.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/smasonuk/hauntedhouse"
)

var _ hauntedhouse.PolygonBatcher = (*Canvas)(nil)

// Canvas is a PolygonBatcher backed by an RGBA image.
type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

func New(width, height int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
}

func (c *Canvas) Clear(clr color.NRGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(clr), image.Point{}, draw.Src)
}

func (c *Canvas) AddPolygon(xp, yp []float32, clr color.NRGBA) {
	if len(xp) < 3 || len(xp) != len(yp) || clr.A == 0 {
		return
	}
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
	c.z.MoveTo(xp[0], yp[0])
	for i := 1; i < len(xp); i++ {
		c.z.LineTo(xp[i], yp[i])
	}
	c.z.ClosePath()
	c.z.Draw(c.img, b, image.NewUniform(clr), image.Point{})
}

func (c *Canvas) Flush() {}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// SavePNG writes the canvas to path, creating parent directories.
func (c *Canvas) SavePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return f.Close()
}
