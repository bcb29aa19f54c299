package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
)

// ErrThumbnailRender marks a failure isolated to a single thumbnail slot.
var ErrThumbnailRender = errors.New("thumbnail rendering failed")

// ThumbnailStatus tracks one page's slot in the selection strip.
type ThumbnailStatus string

const (
	ThumbnailPending ThumbnailStatus = "pending"
	ThumbnailReady   ThumbnailStatus = "ready"
	ThumbnailFailed  ThumbnailStatus = "failed"
)

// ThumbnailSlot holds the outcome of one page's thumbnail generation.
// A failed slot carries its error text for the placeholder; it never
// affects sibling slots or the main canvas.
type ThumbnailSlot struct {
	Status ThumbnailStatus
	PNG    []byte
	Error  string
}

// generateThumbnails dispatches one worker per page. Workers have no
// ordering guarantee between completions; results are keyed by page index.
// generateThumbnails spawns one worker per page. The session WaitGroup was
// already credited with PageCount before the session became visible, so a
// concurrent Clear waits for every worker before closing the handle.
func (e *Engine) generateThumbnails(sess *UploadSession) {
	for pageIndex := 1; pageIndex <= sess.PageCount; pageIndex++ {
		go e.renderThumbnail(sess, pageIndex)
	}
}

func (e *Engine) renderThumbnail(sess *UploadSession, pageIndex int) {
	defer sess.wg.Done()
	// One bad page must not take down the process or its siblings
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in thumbnail worker", "pageIndex", pageIndex, "panic", r)
			e.setThumbnail(sess, pageIndex, &ThumbnailSlot{
				Status: ThumbnailFailed,
				Error:  fmt.Sprintf("%v: panic: %v", ErrThumbnailRender, r),
			})
		}
	}()

	raster, err := sess.Handle.RenderThumbnail(pageIndex, e.serverConfig.ThumbnailMaxWidth)
	if err != nil {
		Logger.Warn("Thumbnail render failed", "pageIndex", pageIndex, "error", err)
		e.setThumbnail(sess, pageIndex, &ThumbnailSlot{
			Status: ThumbnailFailed,
			Error:  fmt.Errorf("%w: %v", ErrThumbnailRender, err).Error(),
		})
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, raster.Image); err != nil {
		Logger.Warn("Thumbnail encode failed", "pageIndex", pageIndex, "error", err)
		e.setThumbnail(sess, pageIndex, &ThumbnailSlot{
			Status: ThumbnailFailed,
			Error:  fmt.Errorf("%w: %v", ErrThumbnailRender, err).Error(),
		})
		return
	}
	e.setThumbnail(sess, pageIndex, &ThumbnailSlot{Status: ThumbnailReady, PNG: buf.Bytes()})
	Logger.Debug("Thumbnail ready", "pageIndex", pageIndex, "width", raster.Width, "height", raster.Height)
}

// setThumbnail stores a worker result unless a newer upload superseded the
// session while the worker was rendering, in which case the result is
// discarded untouched.
func (e *Engine) setThumbnail(sess *UploadSession, pageIndex int, slot *ThumbnailSlot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != sess {
		Logger.Debug("Discarding stale thumbnail", "pageIndex", pageIndex)
		return
	}
	sess.thumbnails[pageIndex] = slot
}

// Thumbnail returns the slot for one page of the current session.
func (e *Engine) Thumbnail(pageIndex int) (*ThumbnailSlot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, false
	}
	slot, ok := e.session.thumbnails[pageIndex]
	return slot, ok
}
