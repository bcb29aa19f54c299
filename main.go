package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drummonds/logopress/canvas"
	"github.com/drummonds/logopress/config"
	"github.com/drummonds/logopress/document"
	"github.com/drummonds/logopress/engine"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	engine.Logger = Logger
	canvas.Logger = Logger
	document.Logger = Logger
}

// @title logopress API
// @version 1.0
// @description Logo normalization service - fits an uploaded raster image or
// @description document artboard into a fixed-size export canvas

// @contact.name API Support
// @contact.url https://github.com/drummonds/logopress

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Upload
// @tag.description File ingestion (raster and document paths)

// @tag.name Session
// @tag.description Artboard selection and session state

// @tag.name Export
// @tag.description Export artifact generation

// @tag.name Admin
// @tag.description Administrative operations

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	adapter := document.NewFitzAdapter(serverConfig.PaddingFactor)
	logoEngine := engine.NewEngine(adapter, serverConfig)

	e := echo.New()
	e.HideBanner = true
	Logger.Info("Echo created")

	// Custom 404 handler for API endpoints
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound {
			// Return JSON for API endpoints
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		// For other errors, use default handler
		e.DefaultHTTPErrorHandler(err, c)
	}

	// CORS configuration - the presentation layer may live on another origin
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	}))

	serverHandler := engine.ServerHandler{Engine: logoEngine, Echo: e, ServerConfig: serverConfig}
	Logger.Info("Setting up API routes...")
	serverHandler.RegisterRoutes()
	serverHandler.InitializeSchedules() //initialize all the cron jobs

	// Health check endpoint
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "logopress API",
		})
	})

	addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	Logger.Info("Starting logopress server", "address", addr)
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Printf("Server running on %s\n", addr)
	fmt.Printf("API endpoints available at http://%s/api/\n", addr)
	fmt.Println(strings.Repeat("=", 50) + "\n")

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
