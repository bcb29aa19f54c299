package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP   string
	ListenAddrPort string

	// Output canvas geometry; the export artifact is always this size
	CanvasWidth   int
	CanvasHeight  int
	PaddingFactor float64

	// Artboard selection UI
	ThumbnailMaxWidth int

	// Upload handling
	MaxUploadMB int

	// Session janitor: an upload stuck in artboard selection is cleared
	// after SessionTTLMinutes to release the document parser resources
	SessionTTLMinutes      int
	JanitorIntervalMinutes int

	UseReverseProxy bool
	BaseURL         string
}

// PublicURL returns the address clients should use to reach the server.
// Behind a reverse proxy that is the configured BaseURL; otherwise it is
// derived from the listen address.
func (serverConfig ServerConfig) PublicURL() string {
	if serverConfig.UseReverseProxy && serverConfig.BaseURL != "" {
		return serverConfig.BaseURL
	}
	host := serverConfig.ListenAddrIP
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, serverConfig.ListenAddrPort)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Canvas configuration
	serverConfigLive.CanvasWidth = getEnvInt("CANVAS_WIDTH", 786)
	serverConfigLive.CanvasHeight = getEnvInt("CANVAS_HEIGHT", 280)
	serverConfigLive.PaddingFactor = getEnvFloat("CANVAS_PADDING", 0.9)
	if serverConfigLive.PaddingFactor <= 0 || serverConfigLive.PaddingFactor > 1 {
		logger.Warn("Padding factor out of range, using default", "value", serverConfigLive.PaddingFactor)
		serverConfigLive.PaddingFactor = 0.9
	}

	// Thumbnail configuration
	serverConfigLive.ThumbnailMaxWidth = getEnvInt("THUMBNAIL_MAX_WIDTH", 200)

	// Upload configuration
	serverConfigLive.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 50)

	// Session janitor configuration
	serverConfigLive.SessionTTLMinutes = getEnvInt("SESSION_TTL", 30)
	serverConfigLive.JanitorIntervalMinutes = getEnvInt("JANITOR_INTERVAL", 10)

	// Reverse proxy configuration
	serverConfigLive.UseReverseProxy = getEnvBool("PROXY_ENABLED", false)
	serverConfigLive.BaseURL = getEnv("BASE_URL", "")

	fmt.Println("\n========================================")
	fmt.Println("   logopress - Logo Normalization")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Output canvas: %dx%d\n", serverConfigLive.CanvasWidth, serverConfigLive.CanvasHeight)
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "logopress.log"))
	fmt.Println("Initializing...")

	if serverConfigLive.UseReverseProxy {
		logger.Info("Using Reverse Proxy", "baseURL", serverConfigLive.BaseURL)
	}

	return serverConfigLive, logger
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "logopress.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}
