package document

import (
	"errors"
	"testing"
)

func TestClassifyOpenFailurePostScript(t *testing.T) {
	// Legacy Illustrator save: raw PostScript, no PDF stream anywhere
	data := []byte("%!PS-Adobe-3.0 EPSF-3.0\n%%Creator: Adobe Illustrator\n%%EndComments\n")
	err := classifyOpenFailure(data, errors.New("cannot recognize format"))
	if !errors.Is(err, ErrIncompatibleExportMode) {
		t.Errorf("expected ErrIncompatibleExportMode, got %v", err)
	}
}

func TestClassifyOpenFailureGarbage(t *testing.T) {
	data := []byte("this is not a document of any kind")
	err := classifyOpenFailure(data, errors.New("cannot recognize format"))
	if !errors.Is(err, ErrDocumentFormat) {
		t.Errorf("expected ErrDocumentFormat, got %v", err)
	}
	if errors.Is(err, ErrIncompatibleExportMode) {
		t.Error("garbage bytes must not look like an incompatible export")
	}
}

func TestClassifyOpenFailureBrokenPDFHeader(t *testing.T) {
	// Has the magic marker but nothing behind it, so the structural probe
	// fails too and the failure stays a generic format error.
	data := []byte("%PDF-1.7\nnot actually a pdf body")
	err := classifyOpenFailure(data, errors.New("cannot parse"))
	if !errors.Is(err, ErrDocumentFormat) {
		t.Errorf("expected ErrDocumentFormat, got %v", err)
	}
}

func TestProbeStructureRejectsJunk(t *testing.T) {
	if probeStructure([]byte("%PDF-1.4 truncated")) {
		t.Error("probeStructure accepted truncated junk")
	}
	if probeStructure(nil) {
		t.Error("probeStructure accepted empty input")
	}
}
