package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/logopress/canvas"
	"github.com/drummonds/logopress/config"
	"github.com/drummonds/logopress/document"
	"github.com/drummonds/logopress/internal/build"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	Engine       *Engine
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

// RegisterRoutes wires all API endpoints onto the echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	e := serverHandler.Echo
	e.POST("/api/upload", serverHandler.UploadLogo)
	e.GET("/api/session", serverHandler.GetSession)
	e.GET("/api/artboard/:index/thumbnail", serverHandler.GetThumbnail)
	e.POST("/api/artboard/:index/pick", serverHandler.PickArtboard)
	e.POST("/api/clear", serverHandler.ClearSession)
	e.GET("/api/export", serverHandler.ExportLogo)
	e.GET("/api/about", serverHandler.GetAboutInfo)
}

// UploadLogo accepts one uploaded file and runs it through the ingestion
// dispatcher. Raster files render immediately, single-page documents render
// immediately, multi-page documents wait for an artboard pick.
// @Summary Upload a logo source file
// @Description Upload a raster image (jpg, jpeg, png) or document (pdf, ai) to normalize into the export canvas
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Logo source file"
// @Success 200 {object} SessionView "Resulting upload session state"
// @Failure 413 {object} map[string]interface{} "File too large"
// @Failure 415 {object} map[string]interface{} "Unsupported file format"
// @Failure 422 {object} map[string]interface{} "Malformed or incompatible file"
// @Router /upload [post]
func (serverHandler *ServerHandler) UploadLogo(context echo.Context) error {
	file, fileHeader, err := context.Request().FormFile("file")
	if err != nil {
		Logger.Error("Problem finding file in upload request", "error", err)
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Errorf("%w: %v", ErrFileRead, err).Error(),
		})
	}
	defer file.Close()

	maxBytes := int64(serverHandler.ServerConfig.MaxUploadMB) << 20
	if fileHeader.Size > maxBytes {
		Logger.Warn("Rejected oversized upload", "fileName", fileHeader.Filename, "size", fileHeader.Size)
		return context.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
			"error": fmt.Sprintf("file exceeds the %dMB upload limit", serverHandler.ServerConfig.MaxUploadMB),
		})
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		Logger.Error("Unable to read uploaded file", "fileName", fileHeader.Filename, "error", err)
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Errorf("%w: %v", ErrFileRead, err).Error(),
		})
	}

	if err := serverHandler.Engine.Ingest(fileHeader.Filename, data); err != nil {
		return uploadErrorResponse(context, err)
	}
	return context.JSON(http.StatusOK, serverHandler.Engine.View())
}

// uploadErrorResponse maps ingestion error kinds onto HTTP responses. The
// incompatible-save case gets its own message so the user knows to re-export
// the file rather than suspect corruption.
func uploadErrorResponse(context echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return context.JSON(http.StatusUnsupportedMediaType, map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, document.ErrIncompatibleExportMode):
		return context.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  err.Error(),
			"reason": "incompatible_export_mode",
		})
	case errors.Is(err, ErrRasterDecode), errors.Is(err, document.ErrDocumentFormat):
		return context.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// GetSession returns the current upload session state
// @Summary Get upload session state
// @Description Retrieve the current upload state including per-artboard thumbnail status
// @Tags Session
// @Accept json
// @Produce json
// @Success 200 {object} SessionView "Current session state"
// @Router /session [get]
func (serverHandler *ServerHandler) GetSession(context echo.Context) error {
	return context.JSON(http.StatusOK, serverHandler.Engine.View())
}

// GetThumbnail serves one artboard's thumbnail as PNG bytes
// @Summary Get an artboard thumbnail
// @Description Retrieve the rendered thumbnail for one page of the loaded document
// @Tags Session
// @Produce png
// @Param index path int true "1-based artboard index"
// @Success 200 {file} binary "Thumbnail PNG"
// @Failure 404 {object} map[string]interface{} "Unknown artboard index"
// @Failure 409 {object} map[string]interface{} "Thumbnail still rendering"
// @Failure 500 {object} map[string]interface{} "Thumbnail failed to render"
// @Router /artboard/{index}/thumbnail [get]
func (serverHandler *ServerHandler) GetThumbnail(context echo.Context) error {
	pageIndex, err := strconv.Atoi(context.Param("index"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "artboard index must be an integer",
		})
	}
	slot, ok := serverHandler.Engine.Thumbnail(pageIndex)
	if !ok {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": fmt.Sprintf("no artboard with index %d", pageIndex),
		})
	}
	switch slot.Status {
	case ThumbnailPending:
		return context.JSON(http.StatusConflict, map[string]interface{}{
			"status": ThumbnailPending,
		})
	case ThumbnailFailed:
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"status": ThumbnailFailed,
			"error":  slot.Error,
		})
	}
	return context.Blob(http.StatusOK, "image/png", slot.PNG)
}

// PickArtboard handles a selection click for one artboard
// @Summary Pick an artboard
// @Description Render the chosen page of the loaded document to the output canvas
// @Tags Session
// @Accept json
// @Produce json
// @Param index path int true "1-based artboard index"
// @Success 200 {object} SessionView "Updated session state"
// @Failure 409 {object} map[string]interface{} "No document loaded"
// @Failure 422 {object} map[string]interface{} "Artboard index out of range"
// @Router /artboard/{index}/pick [post]
func (serverHandler *ServerHandler) PickArtboard(context echo.Context) error {
	pageIndex, err := strconv.Atoi(context.Param("index"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "artboard index must be an integer",
		})
	}
	view := serverHandler.Engine.View()
	if view.State == StateIdle || view.Kind != KindDocument {
		return context.JSON(http.StatusConflict, map[string]interface{}{
			"error": "no document is loaded",
		})
	}
	if err := serverHandler.Engine.Pick(pageIndex); err != nil {
		if errors.Is(err, document.ErrPageIndex) {
			return context.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return context.JSON(http.StatusOK, serverHandler.Engine.View())
}

// ClearSession discards the current upload and blanks the canvas
// @Summary Clear the upload session
// @Description Discard the loaded document, its thumbnails and the canvas content
// @Tags Session
// @Accept json
// @Produce json
// @Success 200 {object} SessionView "Idle session state"
// @Router /clear [post]
func (serverHandler *ServerHandler) ClearSession(context echo.Context) error {
	serverHandler.Engine.Clear()
	return context.JSON(http.StatusOK, serverHandler.Engine.View())
}

// ExportLogo produces the PNG export artifact of the output canvas
// @Summary Export the normalized logo
// @Description Download the output canvas as a fixed-size PNG named after the uploaded file
// @Tags Export
// @Produce png
// @Success 200 {file} binary "Export PNG"
// @Failure 409 {object} map[string]interface{} "No image available"
// @Router /export [get]
func (serverHandler *ServerHandler) ExportLogo(context echo.Context) error {
	var buf bytes.Buffer
	if err := serverHandler.Engine.Output().EncodePNG(&buf); err != nil {
		if errors.Is(err, canvas.ErrNoImage) {
			return context.JSON(http.StatusConflict, map[string]interface{}{
				"error": "no image available",
			})
		}
		Logger.Error("Unable to encode export PNG", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}
	fileName := ExportFileName(serverHandler.Engine.View().FileName)
	context.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, fileName))
	Logger.Info("Exporting normalized logo", "fileName", fileName, "size", buf.Len())
	return context.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// ExportFileName builds the suggested artifact name from the uploaded name
// by stripping the final extension and appending the export suffix.
func ExportFileName(originalName string) string {
	base := filepath.Base(originalName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "logo"
	}
	return base + "_logo.png"
}

// GetAboutInfo returns information about the application configuration
// @Summary Get application information
// @Description Retrieve version and canvas configuration
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Application information"
// @Router /about [get]
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	aboutInfo := map[string]interface{}{
		"version":       build.Version,
		"canvasWidth":   serverHandler.ServerConfig.CanvasWidth,
		"canvasHeight":  serverHandler.ServerConfig.CanvasHeight,
		"paddingFactor": serverHandler.ServerConfig.PaddingFactor,
		"maxUploadMB":   serverHandler.ServerConfig.MaxUploadMB,
		"state":         serverHandler.Engine.State(),
		"baseURL":       serverHandler.ServerConfig.PublicURL(),
	}
	return c.JSON(http.StatusOK, aboutInfo)
}
