package canvas

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
	"os"
	"testing"

	"github.com/drummonds/logopress/geometry"
)

func TestMain(m *testing.M) {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	os.Exit(m.Run())
}

func redSquare(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+3] = 255
	}
	return img
}

func TestNewOutputIsBlankWhite(t *testing.T) {
	out := NewOutput(786, 280)
	if out.HasImage() {
		t.Error("fresh output must not report a rendered image")
	}
	snap := out.Snapshot()
	for _, pt := range []image.Point{{0, 0}, {785, 279}, {393, 140}} {
		r, g, b, a := snap.At(pt.X, pt.Y).RGBA()
		if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
			t.Fatalf("pixel %v is not opaque white", pt)
		}
	}
}

func TestCompositeSetsFlagAndDrawsContent(t *testing.T) {
	out := NewOutput(786, 280)
	place, err := geometry.FitContain(100, 100, 786, 280, 0.9)
	if err != nil {
		t.Fatalf("FitContain: %v", err)
	}
	out.Composite(redSquare(100), place)

	if !out.HasImage() {
		t.Error("composite must set the rendered flag")
	}
	snap := out.Snapshot()
	// Center of the placement rectangle must hold raster content
	cx := int(place.OffsetX + place.DrawWidth/2)
	cy := int(place.OffsetY + place.DrawHeight/2)
	r, g, _, _ := snap.At(cx, cy).RGBA()
	if r < 0xf000 || g > 0x0fff {
		t.Errorf("center pixel not red: r=%x g=%x", r, g)
	}
	// Corners stay white margin
	r, g, b, _ := snap.At(0, 0).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("corner margin must remain white")
	}
}

func TestCompositeIdempotent(t *testing.T) {
	out := NewOutput(786, 280)
	raster := redSquare(64)
	place, err := geometry.FitContain(64, 64, 786, 280, 0.9)
	if err != nil {
		t.Fatalf("FitContain: %v", err)
	}

	out.Composite(raster, place)
	first := out.Snapshot()
	out.Composite(raster, place)
	second := out.Snapshot()

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("same raster and placement must produce pixel-identical content")
	}
}

func TestResetClearsContentAndFlag(t *testing.T) {
	out := NewOutput(786, 280)
	place, err := geometry.FitContain(64, 64, 786, 280, 0.9)
	if err != nil {
		t.Fatalf("FitContain: %v", err)
	}
	out.Composite(redSquare(64), place)
	out.Reset()

	if out.HasImage() {
		t.Error("reset must clear the rendered flag")
	}
	snap := out.Snapshot()
	cx, cy := 786/2, 280/2
	r, g, b, _ := snap.At(cx, cy).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff {
		t.Error("reset surface must be blank white")
	}
}

func TestEncodePNGBeforeRenderFails(t *testing.T) {
	out := NewOutput(786, 280)
	var buf bytes.Buffer
	if err := out.EncodePNG(&buf); err != ErrNoImage {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("no artifact bytes may be produced before a render")
	}
}

func TestEncodePNGProducesFixedSizeImage(t *testing.T) {
	out := NewOutput(786, 280)
	place, err := geometry.FitContain(64, 64, 786, 280, 0.9)
	if err != nil {
		t.Fatalf("FitContain: %v", err)
	}
	out.Composite(redSquare(64), place)

	var buf bytes.Buffer
	if err := out.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("exported bytes do not decode as PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 786 || decoded.Bounds().Dy() != 280 {
		t.Errorf("export is %dx%d, want 786x280", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestOpaqueAfterComposite(t *testing.T) {
	// Raster with transparent pixels must still yield a fully opaque canvas
	transparent := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	out := NewOutput(786, 280)
	place, err := geometry.FitContain(50, 50, 786, 280, 0.9)
	if err != nil {
		t.Fatalf("FitContain: %v", err)
	}
	out.Composite(transparent, place)

	snap := out.Snapshot()
	for y := 0; y < 280; y += 35 {
		for x := 0; x < 786; x += 131 {
			_, _, _, a := snap.At(x, y).RGBA()
			if a != 0xffff {
				t.Fatalf("pixel %d,%d not opaque after compositing transparent raster", x, y)
			}
		}
	}
}
