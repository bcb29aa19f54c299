package document

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/drummonds/logopress/geometry"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// FitzAdapter renders documents using go-fitz (requires CGo and MuPDF).
// It handles PDF files and Illustrator files saved in PDF-compatible mode.
type FitzAdapter struct {
	padding float64
}

// NewFitzAdapter creates a fitz-backed adapter. Padding is the contain-fit
// margin factor applied when rendering pages against an output target.
func NewFitzAdapter(padding float64) *FitzAdapter {
	return &FitzAdapter{padding: padding}
}

// Open parses document bytes and returns a handle for page rendering.
// Failures are classified into ErrDocumentFormat or ErrIncompatibleExportMode.
func (a *FitzAdapter) Open(data []byte) (Handle, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		Logger.Warn("Unable to open document", "size", len(data), "error", err)
		return nil, classifyOpenFailure(data, err)
	}
	if doc.NumPage() < 1 {
		doc.Close()
		return nil, fmt.Errorf("%w: document has no pages", ErrDocumentFormat)
	}
	Logger.Debug("Document opened", "pages", doc.NumPage())
	return &fitzHandle{doc: doc, padding: a.padding}, nil
}

type fitzHandle struct {
	doc     *fitz.Document
	padding float64
}

func (h *fitzHandle) PageCount() int {
	return h.doc.NumPage()
}

// RenderPage rasterizes one page contain-fitted into the target dimensions.
// The page's native 72dpi bounds act as the content dimensions; the derived
// scale picks the rasterization DPI so no second resample is usually needed.
func (h *fitzHandle) RenderPage(pageIndex, targetWidth, targetHeight int) (*PageRaster, error) {
	if err := h.checkPage(pageIndex); err != nil {
		return nil, err
	}
	bound, err := h.doc.Bound(pageIndex - 1)
	if err != nil {
		return nil, fmt.Errorf("unable to read bounds of page %d: %w", pageIndex, err)
	}
	pageWidth := float64(bound.Dx())
	pageHeight := float64(bound.Dy())

	place, err := geometry.FitContain(pageWidth, pageHeight, float64(targetWidth), float64(targetHeight), h.padding)
	if err != nil {
		return nil, fmt.Errorf("unable to fit page %d: %w", pageIndex, err)
	}

	scale := place.DrawWidth / pageWidth
	img, err := h.doc.ImageDPI(pageIndex-1, 72.0*scale)
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex, err)
	}

	wantWidth := int(math.Round(place.DrawWidth))
	wantHeight := int(math.Round(place.DrawHeight))
	return snapToSize(img, wantWidth, wantHeight), nil
}

// RenderThumbnail rasterizes one page scaled so its width is at most maxWidth.
func (h *fitzHandle) RenderThumbnail(pageIndex, maxWidth int) (*PageRaster, error) {
	if err := h.checkPage(pageIndex); err != nil {
		return nil, err
	}
	if maxWidth <= 0 {
		return nil, fmt.Errorf("thumbnail width must be positive, got %d", maxWidth)
	}
	bound, err := h.doc.Bound(pageIndex - 1)
	if err != nil {
		return nil, fmt.Errorf("unable to read bounds of page %d: %w", pageIndex, err)
	}
	scale := float64(maxWidth) / float64(bound.Dx())
	img, err := h.doc.ImageDPI(pageIndex-1, 72.0*scale)
	if err != nil {
		return nil, fmt.Errorf("unable to render thumbnail for page %d: %w", pageIndex, err)
	}

	wantWidth := img.Bounds().Dx()
	wantHeight := img.Bounds().Dy()
	if wantWidth > maxWidth {
		wantHeight = wantHeight * maxWidth / wantWidth
		wantWidth = maxWidth
	}
	return snapToSize(img, wantWidth, wantHeight), nil
}

func (h *fitzHandle) Close() error {
	return h.doc.Close()
}

func (h *fitzHandle) checkPage(pageIndex int) error {
	if pageIndex < 1 || pageIndex > h.doc.NumPage() {
		return fmt.Errorf("%w: page %d of %d", ErrPageIndex, pageIndex, h.doc.NumPage())
	}
	return nil
}

// snapToSize flattens the rendered page onto a white background at exactly
// the requested dimensions. The rasterized size can be off by a pixel from
// the fitted dimensions due to DPI rounding inside MuPDF.
func snapToSize(img image.Image, width, height int) *PageRaster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	flat := imaging.New(width, height, color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
	return &PageRaster{Image: flat, Width: width, Height: height}
}
