package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/oklog/ulid/v2"

	"github.com/drummonds/logopress/geometry"
)

var (
	// ErrUnsupportedFormat rejects an upload before any processing starts;
	// the canvas and session are left untouched.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileRead means the raw upload bytes could not be obtained.
	ErrFileRead = errors.New("unable to read uploaded file")

	// ErrRasterDecode means the image bytes are malformed.
	ErrRasterDecode = errors.New("image bytes are malformed")
)

// Classify routes a filename to the raster or document path by extension,
// case-insensitively. Anything unrecognized fails before processing.
func Classify(fileName string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png":
		return KindRaster, nil
	case ".pdf", ".ai":
		return KindDocument, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Ingest processes one uploaded file end to end: classification, then the
// raster or document path. Any failure past classification resets the
// canvas and session so no partial or stale content stays visible.
func (e *Engine) Ingest(fileName string, data []byte) error {
	kind, err := Classify(fileName)
	if err != nil {
		Logger.Warn("Rejected upload", "fileName", fileName, "error", err)
		return err
	}
	Logger.Info("Ingesting upload", "fileName", fileName, "kind", kind, "size", len(data))

	switch kind {
	case KindRaster:
		return e.ingestRaster(fileName, data)
	default:
		return e.ingestDocument(fileName, data)
	}
}

func (e *Engine) ingestRaster(fileName string, data []byte) error {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		Logger.Error("Unable to decode raster upload", "fileName", fileName, "error", err)
		e.resetAll()
		return fmt.Errorf("%w: %v", ErrRasterDecode, err)
	}

	bounds := img.Bounds()
	place, err := geometry.FitContain(
		float64(bounds.Dx()), float64(bounds.Dy()),
		float64(e.serverConfig.CanvasWidth), float64(e.serverConfig.CanvasHeight),
		e.serverConfig.PaddingFactor)
	if err != nil {
		Logger.Error("Unable to fit raster upload", "fileName", fileName, "error", err)
		e.resetAll()
		return fmt.Errorf("%w: %v", ErrRasterDecode, err)
	}

	sess := &UploadSession{
		ID:           ulid.Make(),
		FileName:     fileName,
		Kind:         KindRaster,
		State:        StateSelected,
		PageCount:    1,
		SelectedPage: 1,
		CreatedAt:    time.Now(),
	}

	e.mu.Lock()
	old := e.session
	e.session = sess
	e.output.Composite(img, place)
	e.mu.Unlock()
	releaseSession(old)

	Logger.Info("Raster upload rendered", "fileName", fileName, "format", format,
		"width", bounds.Dx(), "height", bounds.Dy())
	return nil
}

func (e *Engine) ingestDocument(fileName string, data []byte) error {
	handle, err := e.adapter.Open(data)
	if err != nil {
		Logger.Error("Unable to open document upload", "fileName", fileName, "error", err)
		e.resetAll()
		return err
	}
	return e.loadDocument(fileName, handle)
}

// resetAll blanks canvas and session after a terminal top-level failure.
func (e *Engine) resetAll() {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()
	releaseSession(sess)
	e.output.Reset()
}
