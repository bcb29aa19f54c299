package canvas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/drummonds/logopress/geometry"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ErrNoImage is returned when an export is requested before any render
// completed successfully.
var ErrNoImage = errors.New("no rendered image available")

// Output owns the single fixed-size export surface. It is always fully
// opaque: every composite starts from a solid white fill, and a reset
// returns it to blank white. Composite and Reset are the only mutators.
type Output struct {
	mu       sync.Mutex
	img      *image.NRGBA
	width    int
	height   int
	hasImage bool
}

// NewOutput creates a blank white output surface of the given size.
func NewOutput(width, height int) *Output {
	out := &Output{
		img:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
	out.fillWhite()
	return out
}

// Width reports the fixed surface width.
func (o *Output) Width() int { return o.width }

// Height reports the fixed surface height.
func (o *Output) Height() int { return o.height }

// Composite clears the surface to white and draws the raster scaled into
// the placement rectangle. The same raster and placement always produce
// pixel-identical surface content.
func (o *Output) Composite(raster image.Image, place geometry.Placement) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fillWhite()
	rect := image.Rect(
		int(math.Round(place.OffsetX)),
		int(math.Round(place.OffsetY)),
		int(math.Round(place.OffsetX+place.DrawWidth)),
		int(math.Round(place.OffsetY+place.DrawHeight)),
	)
	xdraw.CatmullRom.Scale(o.img, rect, raster, raster.Bounds(), xdraw.Over, nil)
	o.hasImage = true
	Logger.Debug("Composited raster onto output canvas",
		"drawWidth", rect.Dx(), "drawHeight", rect.Dy(),
		"offsetX", rect.Min.X, "offsetY", rect.Min.Y)
}

// Reset returns the surface to blank white and clears the rendered flag,
// which closes the export gate until the next successful composite.
func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fillWhite()
	o.hasImage = false
}

// HasImage reports whether the surface holds a successfully rendered image.
func (o *Output) HasImage() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hasImage
}

// EncodePNG writes the surface as PNG. It refuses with ErrNoImage while the
// surface is blank so no empty export artifact can be produced.
func (o *Output) EncodePNG(w io.Writer) error {
	o.mu.Lock()
	if !o.hasImage {
		o.mu.Unlock()
		return ErrNoImage
	}
	snapshot := o.copyImage()
	o.mu.Unlock()
	return png.Encode(w, snapshot)
}

// Snapshot returns a copy of the current surface pixels.
func (o *Output) Snapshot() *image.NRGBA {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyImage()
}

func (o *Output) fillWhite() {
	draw.Draw(o.img, o.img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
}

func (o *Output) copyImage() *image.NRGBA {
	dup := image.NewNRGBA(o.img.Bounds())
	copy(dup.Pix, o.img.Pix)
	return dup
}
