package document

import (
	"errors"
	"image"
)

// Error kinds surfaced by the adapter. Callers distinguish them with
// errors.Is since implementations wrap them with context.
var (
	// ErrDocumentFormat means the bytes are not a parseable document at all.
	ErrDocumentFormat = errors.New("document is not parseable")

	// ErrIncompatibleExportMode means the document is structurally a vector
	// file but was saved without PDF compatibility, so its pages cannot be
	// rasterized. Surfaced separately so the user gets an actionable message.
	ErrIncompatibleExportMode = errors.New("document was saved without PDF compatibility")

	// ErrPageIndex means a render was requested for a page outside [1, PageCount].
	ErrPageIndex = errors.New("page index out of range")
)

// PageRaster is one page decoded to pixels at its post-scale dimensions.
// It is transient: produced per render request and consumed immediately.
type PageRaster struct {
	Image  *image.NRGBA
	Width  int
	Height int
}

// Handle wraps one open multi-page document. At most one Handle is live per
// upload session; the owner must Close it before opening another document.
// Page indexes are 1-based everywhere on this interface.
type Handle interface {
	// PageCount reports the number of pages, always >= 1 for an open handle.
	PageCount() int

	// RenderPage rasterizes one page scaled to fit the target dimensions
	// (contain-fit with the adapter's padding factor) on a white background.
	RenderPage(pageIndex, targetWidth, targetHeight int) (*PageRaster, error)

	// RenderThumbnail rasterizes one page scaled so its width does not
	// exceed maxWidth, aspect preserved, no padding margin applied.
	RenderThumbnail(pageIndex, maxWidth int) (*PageRaster, error)

	// Close releases the underlying parser resources.
	Close() error
}

// Adapter opens document bytes for page-by-page rasterization. It exists so
// the selection engine can be exercised without a real PDF backend.
type Adapter interface {
	Open(data []byte) (Handle, error)
}
