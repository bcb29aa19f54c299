package document

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// postscriptMagic marks a legacy Illustrator/EPS file. These carry no PDF
// stream at all unless the file was exported with PDF compatibility.
var postscriptMagic = []byte("%!PS-Adobe")

// pdfMagic must appear near the start of anything MuPDF can rasterize here.
var pdfMagic = []byte("%PDF-")

// headerProbeLen bounds the marker scan; PDF headers may be preceded by a
// small amount of junk but never more than 1KB in practice.
const headerProbeLen = 1024

// classifyOpenFailure decides which error kind a failed document open maps
// to. MuPDF already rejected the bytes; what remains is telling apart plain
// garbage from a vector file saved in a non-compatible export mode.
func classifyOpenFailure(data []byte, openErr error) error {
	head := data
	if len(head) > headerProbeLen {
		head = head[:headerProbeLen]
	}

	if !bytes.Contains(head, pdfMagic) {
		if bytes.HasPrefix(head, postscriptMagic) {
			return fmt.Errorf("%w: PostScript content with no embedded PDF stream", ErrIncompatibleExportMode)
		}
		return fmt.Errorf("%w: no PDF header found: %v", ErrDocumentFormat, openErr)
	}

	// The bytes claim to be a PDF yet the rasterizer rejected them. If an
	// independent parser can still walk the structure, the file is a valid
	// container whose page content is unreadable, which is the signature of
	// an Illustrator save without PDF compatibility.
	if probeStructure(data) {
		return fmt.Errorf("%w: PDF container holds no renderable page content", ErrIncompatibleExportMode)
	}
	return fmt.Errorf("%w: %v", ErrDocumentFormat, openErr)
}

// probeStructure reports whether the bytes parse as a structurally valid PDF.
// The parser panics on some malformed files, so treat a panic as "invalid".
func probeStructure(data []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return reader.NumPage() >= 1
}
