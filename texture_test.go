package hauntedhouse

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestTextureSampleOrientation(t *testing.T) {
	img := solidImage(2, 2, color.Black)
	// top row red, bottom row blue
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})
	tex := NewTextureFromImage("test", img, 0)

	assert.Equal(t, Color{1, 0, 0}, tex.Sample(0.25, 0.9))
	assert.Equal(t, Color{0, 0, 1}, tex.Sample(0.25, 0.1))
	// wraps
	assert.Equal(t, Color{0, 0, 1}, tex.Sample(1.25, 1.1))
	assert.Equal(t, Color{1, 0, 0}, tex.Sample(-0.75, -0.1))
}

func TestTextureDownsamples(t *testing.T) {
	tex := NewTextureFromImage("big", solidImage(1024, 512, color.White), 256)
	w, h := tex.Size()
	assert.Equal(t, 256, w)
	assert.Equal(t, 128, h)
	assert.InDelta(t, 1.0, tex.Sample(0.5, 0.5).R, 0.01)
	assert.NotEmpty(t, tex.ID)
}

func TestDecodeTexture(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(4, 4, color.NRGBA{G: 255, A: 255})))

	tex, err := DecodeTexture("green.png", &buf, 256)
	require.NoError(t, err)
	assert.Equal(t, Color{0, 1, 0}, tex.Sample(0.5, 0.5))

	_, err = DecodeTexture("door.avif", strings.NewReader("\x00\x00\x00\x1cftypavif"), 256)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTextureLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures", "door"), 0o755))
	f, err := os.Create(filepath.Join(dir, "textures", "door", "alpha.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solidImage(8, 8, color.White)))
	require.NoError(t, f.Close())

	loader := NewTextureLoader(dir, nil)

	tex, err := loader.Load("/textures/door/alpha.png").Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/textures/door/alpha.png", tex.Path)

	_, err = loader.Load("/textures/door/missing.jpg").Wait(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNoiseTexture(t *testing.T) {
	tint := Color{0.2, 0.6, 0.2}
	a := NewNoiseTexture("grass", 7, 32, tint)
	b := NewNoiseTexture("grass", 7, 32, tint)
	w, h := a.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, a.Sample(0.3, 0.7), b.Sample(0.3, 0.7))

	s := a.Sample(0.5, 0.5)
	assert.LessOrEqual(t, s.G, tint.G+1e-9+1.0/255)
}
