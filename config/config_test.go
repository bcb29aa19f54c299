package config

import (
	"testing"
)

func TestGetEnvDefault(t *testing.T) {
	if got := getEnv("LOGOPRESS_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want fallback", got)
	}
	t.Setenv("LOGOPRESS_TEST_SET", "value")
	if got := getEnv("LOGOPRESS_TEST_SET", "fallback"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("LOGOPRESS_TEST_INT", "42")
	if got := getEnvInt("LOGOPRESS_TEST_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	t.Setenv("LOGOPRESS_TEST_INT", "not a number")
	if got := getEnvInt("LOGOPRESS_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt with garbage = %d, want default 7", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("LOGOPRESS_TEST_FLOAT", "0.75")
	if got := getEnvFloat("LOGOPRESS_TEST_FLOAT", 0.9); got != 0.75 {
		t.Errorf("getEnvFloat = %g, want 0.75", got)
	}
	t.Setenv("LOGOPRESS_TEST_FLOAT", "")
	if got := getEnvFloat("LOGOPRESS_TEST_FLOAT", 0.9); got != 0.9 {
		t.Errorf("getEnvFloat unset = %g, want default 0.9", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("LOGOPRESS_TEST_BOOL", "true")
	if !getEnvBool("LOGOPRESS_TEST_BOOL", false) {
		t.Error("getEnvBool = false, want true")
	}
	t.Setenv("LOGOPRESS_TEST_BOOL", "junk")
	if getEnvBool("LOGOPRESS_TEST_BOOL", false) {
		t.Error("getEnvBool with garbage must fall back to default")
	}
}

func TestSetupServerDefaults(t *testing.T) {
	t.Setenv("LOG_OUTPUT", "stdout")
	serverConfig, logger := SetupServer()
	if logger == nil {
		t.Fatal("SetupServer returned nil logger")
	}
	if serverConfig.CanvasWidth != 786 || serverConfig.CanvasHeight != 280 {
		t.Errorf("default canvas = %dx%d, want 786x280", serverConfig.CanvasWidth, serverConfig.CanvasHeight)
	}
	if serverConfig.PaddingFactor != 0.9 {
		t.Errorf("default padding = %g, want 0.9", serverConfig.PaddingFactor)
	}
	if serverConfig.ThumbnailMaxWidth != 200 {
		t.Errorf("default thumbnail width = %d, want 200", serverConfig.ThumbnailMaxWidth)
	}
}

func TestSetupServerRejectsBadPadding(t *testing.T) {
	t.Setenv("LOG_OUTPUT", "stdout")
	t.Setenv("CANVAS_PADDING", "1.5")
	serverConfig, _ := SetupServer()
	if serverConfig.PaddingFactor != 0.9 {
		t.Errorf("out-of-range padding must fall back to 0.9, got %g", serverConfig.PaddingFactor)
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name   string
		config ServerConfig
		want   string
	}{
		{
			name:   "direct with explicit address",
			config: ServerConfig{ListenAddrIP: "10.0.0.5", ListenAddrPort: "8000"},
			want:   "http://10.0.0.5:8000",
		},
		{
			name:   "direct on all interfaces",
			config: ServerConfig{ListenAddrPort: "8000"},
			want:   "http://localhost:8000",
		},
		{
			name:   "behind reverse proxy",
			config: ServerConfig{ListenAddrPort: "8000", UseReverseProxy: true, BaseURL: "https://logo.example.org"},
			want:   "https://logo.example.org",
		},
		{
			name:   "proxy enabled but no base url",
			config: ServerConfig{ListenAddrPort: "8000", UseReverseProxy: true},
			want:   "http://localhost:8000",
		},
	}
	for _, tc := range cases {
		if got := tc.config.PublicURL(); got != tc.want {
			t.Errorf("%s: PublicURL() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
