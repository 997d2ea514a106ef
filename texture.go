package hauntedhouse

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type AssetID string

func newAssetID() AssetID {
	return AssetID(uuid.NewString())
}

// DefaultMaxTextureSize bounds both sides of a decoded texture. The renderer
// samples one texel per face, so full resolution buys nothing.
const DefaultMaxTextureSize = 256

type Texture struct {
	ID   AssetID
	Path string
	img  *image.NRGBA
}

func NewTextureFromImage(path string, src image.Image, maxSize int) *Texture {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		scale := float64(maxSize) / math.Max(float64(w), float64(h))
		w = max(1, int(math.Round(float64(w)*scale)))
		h = max(1, int(math.Round(float64(h)*scale)))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return &Texture{ID: newAssetID(), Path: path, img: dst}
}

func (t *Texture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sample looks up the nearest texel. UVs wrap, and v=0 is the bottom row.
func (t *Texture) Sample(u, v float64) Color {
	w, h := t.Size()
	if w == 0 || h == 0 {
		return White
	}
	u -= math.Floor(u)
	v -= math.Floor(v)
	x := min(int(u*float64(w)), w-1)
	y := min(int((1-v)*float64(h)), h-1)
	return ColorFrom(t.img.NRGBAAt(x, y))
}

// NewNoiseTexture builds a tinted perlin texture, used where an image failed
// to load.
func NewNoiseTexture(name string, seed int64, size int, tint Color) *Texture {
	if size < 1 {
		size = 1
	}
	p := perlin.NewPerlin(2, 2, 3, seed)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	const frequency = 6.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := p.Noise2D(float64(x)/float64(size)*frequency, float64(y)/float64(size)*frequency)
			shade := clamp(0.75+0.35*n, 0, 1)
			img.SetNRGBA(x, y, tint.Scale(shade).NRGBA(1))
		}
	}
	return &Texture{ID: newAssetID(), Path: "noise:" + name, img: img}
}

// DecodeTexture decodes any registered format.
func DecodeTexture(path string, r io.Reader, maxSize int) (*Texture, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decoding texture %s: %w", path, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return NewTextureFromImage(path, src, maxSize), nil
}

type TextureLoader struct {
	root    string
	maxSize int
	log     Logger
	open    func(name string) (io.ReadCloser, error)
}

func NewTextureLoader(root string, log Logger) *TextureLoader {
	return &TextureLoader{
		root:    root,
		maxSize: DefaultMaxTextureSize,
		log:     orNop(log),
		open:    func(name string) (io.ReadCloser, error) { return os.Open(name) },
	}
}

func (l *TextureLoader) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

// Load decodes path in the background.
func (l *TextureLoader) Load(path string) *Future[*Texture] {
	return Go(func() (*Texture, error) {
		name := l.resolve(path)
		f, err := l.open(name)
		if err != nil {
			return nil, fmt.Errorf("could not open texture %s: %w", name, err)
		}
		defer f.Close()

		tex, err := DecodeTexture(path, f, l.maxSize)
		if err != nil {
			return nil, err
		}
		w, h := tex.Size()
		l.log.Debugf("texture %s loaded as %dx%d (%s)", path, w, h, tex.ID)
		return tex, nil
	})
}
