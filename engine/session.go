package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/drummonds/logopress/canvas"
	"github.com/drummonds/logopress/config"
	"github.com/drummonds/logopress/document"
	"github.com/drummonds/logopress/geometry"
)

// State of the artboard selection lifecycle for the current upload.
type State string

const (
	// StateIdle means no document or raster is loaded.
	StateIdle State = "idle"
	// StateAwaitingSelection means a multi-page document is loaded and no
	// artboard has been rendered to the output yet.
	StateAwaitingSelection State = "awaiting_selection"
	// StateSelected means a page (or the raster) has been rendered.
	StateSelected State = "selected"
)

// Kind classifies an upload by its extension.
type Kind string

const (
	KindRaster   Kind = "raster"
	KindDocument Kind = "document"
)

// UploadSession holds all state for the single in-flight upload: the
// document handle, page count, current artboard selection and the thumbnail
// table. Each new upload constructs a fresh session which replaces the
// previous one atomically; the session ID doubles as the generation token
// that stale background work is checked against.
type UploadSession struct {
	ID           ulid.ULID
	FileName     string
	Kind         Kind
	State        State
	Handle       document.Handle
	PageCount    int
	SelectedPage int // 0 while no artboard is picked
	CreatedAt    time.Time

	thumbnails map[int]*ThumbnailSlot
	wg         sync.WaitGroup // in-flight thumbnail workers
}

// Engine owns the single output canvas and at most one upload session.
// All exported methods are safe for concurrent use; rasterization happens
// outside the engine lock so a newer upload can supersede a stale render.
type Engine struct {
	mu           sync.Mutex
	adapter      document.Adapter
	output       *canvas.Output
	serverConfig config.ServerConfig
	session      *UploadSession
}

// NewEngine creates an engine with a blank output canvas sized from config.
func NewEngine(adapter document.Adapter, serverConfig config.ServerConfig) *Engine {
	return &Engine{
		adapter:      adapter,
		output:       canvas.NewOutput(serverConfig.CanvasWidth, serverConfig.CanvasHeight),
		serverConfig: serverConfig,
	}
}

// Output exposes the export surface.
func (e *Engine) Output() *canvas.Output {
	return e.output
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return StateIdle
	}
	return e.session.State
}

// loadDocument installs a fresh session for an opened document. Single-page
// documents skip selection entirely and render immediately; multi-page
// documents start thumbnail generation and wait for a pick, leaving the
// output canvas in its prior state.
func (e *Engine) loadDocument(fileName string, handle document.Handle) error {
	pageCount := handle.PageCount()
	sess := &UploadSession{
		ID:         ulid.Make(),
		FileName:   fileName,
		Kind:       KindDocument,
		Handle:     handle,
		PageCount:  pageCount,
		CreatedAt:  time.Now(),
		thumbnails: make(map[int]*ThumbnailSlot, pageCount),
	}

	if pageCount > 1 {
		sess.State = StateAwaitingSelection
		for pageIndex := 1; pageIndex <= pageCount; pageIndex++ {
			sess.thumbnails[pageIndex] = &ThumbnailSlot{Status: ThumbnailPending}
		}
		// Register the thumbnail workers before the session is published
		// so a concurrent Clear cannot drain the WaitGroup and close the
		// handle while workers are still starting
		sess.wg.Add(pageCount)
	} else {
		sess.State = StateSelected
		sess.SelectedPage = 1
		// Covers the immediate page render below
		sess.wg.Add(1)
	}

	e.mu.Lock()
	old := e.session
	e.session = sess
	e.mu.Unlock()
	releaseSession(old)

	if pageCount > 1 {
		Logger.Info("Document awaiting artboard selection", "fileName", fileName, "pages", pageCount)
		e.generateThumbnails(sess)
		return nil
	}

	// Single page: no AwaitingSelection state is ever observable
	raster, err := handle.RenderPage(1, e.serverConfig.CanvasWidth, e.serverConfig.CanvasHeight)
	sess.wg.Done()
	if err != nil {
		Logger.Error("Unable to render single-page document", "fileName", fileName, "error", err)
		e.failAttempt(sess.ID)
		return err
	}
	e.compositeForSession(sess.ID, raster)
	Logger.Info("Single-page document rendered", "fileName", fileName)
	return nil
}

// Pick renders the chosen artboard to the output canvas. Picking with no
// document loaded is a no-op. An out-of-range index fails with
// document.ErrPageIndex and leaves all state unchanged. Picking the page
// that is already selected is a harmless re-render.
func (e *Engine) Pick(pageIndex int) error {
	e.mu.Lock()
	sess := e.session
	if sess == nil || sess.Kind != KindDocument || sess.Handle == nil {
		e.mu.Unlock()
		Logger.Debug("Pick ignored, no document loaded", "pageIndex", pageIndex)
		return nil
	}
	if pageIndex < 1 || pageIndex > sess.PageCount {
		e.mu.Unlock()
		return fmt.Errorf("%w: page %d of %d", document.ErrPageIndex, pageIndex, sess.PageCount)
	}
	id := sess.ID
	handle := sess.Handle
	// Keep the handle alive for the duration of the render; releaseSession
	// waits for this before closing
	sess.wg.Add(1)
	e.mu.Unlock()

	raster, err := handle.RenderPage(pageIndex, e.serverConfig.CanvasWidth, e.serverConfig.CanvasHeight)
	sess.wg.Done()
	if err != nil {
		if !e.isCurrent(id) {
			// A newer upload was loaded under us; nothing to report
			return nil
		}
		Logger.Error("Unable to render picked artboard", "pageIndex", pageIndex, "error", err)
		e.failAttempt(id)
		return err
	}

	e.mu.Lock()
	if e.session == nil || e.session.ID != id {
		e.mu.Unlock()
		Logger.Debug("Discarding superseded artboard render", "pageIndex", pageIndex)
		return nil
	}
	e.session.SelectedPage = pageIndex
	e.session.State = StateSelected
	e.output.Composite(raster.Image, centerPlacement(raster, e.serverConfig))
	e.mu.Unlock()
	Logger.Info("Artboard rendered to output", "pageIndex", pageIndex)
	return nil
}

// Clear discards the session, its thumbnails and the document handle, and
// blanks the output canvas. Valid from any state.
func (e *Engine) Clear() {
	e.mu.Lock()
	sess := e.session
	e.session = nil
	e.mu.Unlock()
	releaseSession(sess)
	e.output.Reset()
	if sess != nil {
		Logger.Info("Upload session cleared", "fileName", sess.FileName)
	}
}

// ExpireStale clears a session stuck in artboard selection longer than ttl.
// Reports whether a session was cleared.
func (e *Engine) ExpireStale(ttl time.Duration) bool {
	e.mu.Lock()
	sess := e.session
	if sess == nil || sess.State != StateAwaitingSelection || time.Since(sess.CreatedAt) < ttl {
		e.mu.Unlock()
		return false
	}
	e.session = nil
	e.mu.Unlock()
	releaseSession(sess)
	e.output.Reset()
	Logger.Info("Cleared stale upload session", "fileName", sess.FileName, "age", time.Since(sess.CreatedAt).Round(time.Second))
	return true
}

// failAttempt resets canvas and upload state so no partial or stale content
// stays visible after a terminal error, provided the failing session is
// still the current one.
func (e *Engine) failAttempt(id ulid.ULID) {
	e.mu.Lock()
	sess := e.session
	if sess == nil || sess.ID != id {
		e.mu.Unlock()
		return
	}
	e.session = nil
	e.mu.Unlock()
	releaseSession(sess)
	e.output.Reset()
}

// compositeForSession draws a fitted raster centered on the canvas unless
// the session was superseded while rendering.
func (e *Engine) compositeForSession(id ulid.ULID, raster *document.PageRaster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || e.session.ID != id {
		return
	}
	e.output.Composite(raster.Image, centerPlacement(raster, e.serverConfig))
}

func (e *Engine) isCurrent(id ulid.ULID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil && e.session.ID == id
}

// centerPlacement positions an already-fitted page raster on the canvas.
// The raster was scaled during rendering, so only centering remains.
func centerPlacement(raster *document.PageRaster, serverConfig config.ServerConfig) geometry.Placement {
	return geometry.Placement{
		DrawWidth:  float64(raster.Width),
		DrawHeight: float64(raster.Height),
		OffsetX:    (float64(serverConfig.CanvasWidth) - float64(raster.Width)) / 2,
		OffsetY:    (float64(serverConfig.CanvasHeight) - float64(raster.Height)) / 2,
	}
}

// releaseSession closes the document handle once any in-flight thumbnail
// workers have drained, so no worker ever renders from a closed handle.
func releaseSession(sess *UploadSession) {
	if sess == nil || sess.Handle == nil {
		return
	}
	go func() {
		sess.wg.Wait()
		if err := sess.Handle.Close(); err != nil {
			Logger.Warn("Error closing document handle", "fileName", sess.FileName, "error", err)
		}
	}()
}

// ArtboardView is one selectable page as presented to the frontend.
type ArtboardView struct {
	Index    int             `json:"index"`
	Status   ThumbnailStatus `json:"status"`
	Selected bool            `json:"selected"`
}

// SessionView is the JSON shape of the current upload state.
type SessionView struct {
	State        State          `json:"state"`
	SessionID    string         `json:"sessionId,omitempty"`
	FileName     string         `json:"fileName,omitempty"`
	Kind         Kind           `json:"kind,omitempty"`
	PageCount    int            `json:"pageCount,omitempty"`
	SelectedPage int            `json:"selectedPage,omitempty"`
	HasImage     bool           `json:"hasImage"`
	Artboards    []ArtboardView `json:"artboards,omitempty"`
}

// View snapshots the current session for the presentation layer. Exactly
// one artboard is marked selected once a pick has happened.
func (e *Engine) View() SessionView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := SessionView{State: StateIdle, HasImage: e.output.HasImage()}
	sess := e.session
	if sess == nil {
		return view
	}
	view.State = sess.State
	view.SessionID = sess.ID.String()
	view.FileName = sess.FileName
	view.Kind = sess.Kind
	view.PageCount = sess.PageCount
	view.SelectedPage = sess.SelectedPage
	if sess.Kind == KindDocument && sess.PageCount > 1 {
		view.Artboards = make([]ArtboardView, 0, sess.PageCount)
		for pageIndex := 1; pageIndex <= sess.PageCount; pageIndex++ {
			slot := sess.thumbnails[pageIndex]
			view.Artboards = append(view.Artboards, ArtboardView{
				Index:    pageIndex,
				Status:   slot.Status,
				Selected: pageIndex == sess.SelectedPage,
			})
		}
	}
	return view
}
