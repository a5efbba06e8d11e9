package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Hosting platforms commonly inject PORT. Blank it so the defaults are
	// actually exercised.
	t.Setenv("PORT", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if got := cfg.Server.ReadTimeout.Std(); got != 2*time.Minute {
		t.Errorf("ReadTimeout = %v, want 2m", got)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
	if !cfg.Server.ReadyRequireSoffice {
		t.Error("ReadyRequireSoffice = false, want true")
	}
	if cfg.Convert.MaxUploadBytes != 50<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.Convert.MaxUploadBytes, 50<<20)
	}
	if got := cfg.Convert.ScriptTimeout.Std(); got != 120*time.Second {
		t.Errorf("ScriptTimeout = %v, want 2m", got)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 45s
  cors_origins: ["https://app.example.com"]
  rate_limit: 10
convert:
  max_upload_bytes: 1048576
  soffice_path: /opt/libreoffice/soffice
  local_timeout: 30s
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if got := cfg.Server.ReadTimeout.Std(); got != 45*time.Second {
		t.Errorf("ReadTimeout = %v, want 45s", got)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://app.example.com"}) {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Convert.MaxUploadBytes != 1<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.Convert.MaxUploadBytes, 1<<20)
	}
	if cfg.Convert.SofficePath != "/opt/libreoffice/soffice" {
		t.Errorf("SofficePath = %q", cfg.Convert.SofficePath)
	}
	if got := cfg.Convert.LocalTimeout.Std(); got != 30*time.Second {
		t.Errorf("LocalTimeout = %v, want 30s", got)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v, want debug/console", cfg.Log)
	}

	// Untouched keys keep their defaults.
	if got := cfg.Server.WriteTimeout.Std(); got != 3*time.Minute {
		t.Errorf("WriteTimeout = %v, want 3m", got)
	}
	if got := cfg.Convert.RemoteTimeout.Std(); got != 120*time.Second {
		t.Errorf("RemoteTimeout = %v, want 2m", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
convert:
  local_timeout: 30s
`)

	t.Setenv("PORT", "7070")
	t.Setenv("LOCAL_TIMEOUT", "15s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("READY_REQUIRE_SOFFICE", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "2097152")
	t.Setenv("REMOTE_ENGINE_URL", "http://engine.internal/convert")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if got := cfg.Convert.LocalTimeout.Std(); got != 15*time.Second {
		t.Errorf("LocalTimeout = %v, want 15s", got)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Server.ReadyRequireSoffice {
		t.Error("ReadyRequireSoffice = true, want false")
	}
	if cfg.Convert.MaxUploadBytes != 2<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.Convert.MaxUploadBytes, 2<<20)
	}
	if cfg.Convert.RemoteEngineURL != "http://engine.internal/convert" {
		t.Errorf("RemoteEngineURL = %q", cfg.Convert.RemoteEngineURL)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("PORT", "")

	tests := []struct {
		name     string
		yaml     string
		wantPart string
	}{
		{"port out of range", "server:\n  port: 70000\n", "out of range"},
		{"zero upload limit", "convert:\n  max_upload_bytes: 0\n", "must be positive"},
		{"zero timeout", "convert:\n  local_timeout: 0s\n", "must be positive"},
		{"negative rate limit", "server:\n  rate_limit: -5\n", "not be negative"},
		{"unknown log format", "log:\n  format: xml\n", "not recognized"},
		{"malformed yaml", "server: [\n", "parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			if err == nil {
				t.Fatal("Load() accepted an invalid configuration")
			}
			if !strings.Contains(err.Error(), tt.wantPart) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantPart)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() succeeded with a missing config file")
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var dst struct {
		D Duration `yaml:"d"`
	}

	if err := yaml.Unmarshal([]byte("d: 90s"), &dst); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if dst.D.Std() != 90*time.Second {
		t.Errorf("D = %v, want 90s", dst.D.Std())
	}

	if err := yaml.Unmarshal([]byte("d: ninety"), &dst); err == nil {
		t.Error("Unmarshal() accepted a malformed duration")
	}
}
