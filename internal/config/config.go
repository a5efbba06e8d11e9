// Package config loads server configuration from an optional YAML file with
// environment variable overrides on top. Precedence is defaults, then file,
// then environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "90s" or
// "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Convert ConvertConfig `yaml:"convert"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimit       int      `yaml:"rate_limit"`
	RatePeriod      Duration `yaml:"rate_period"`

	// ReadyRequireSoffice gates readiness on the conversion engine being
	// installed. Disable only for deployments that serve nothing but
	// in-process conversions.
	ReadyRequireSoffice bool `yaml:"ready_require_soffice"`
}

// ConvertConfig holds the conversion service settings.
type ConvertConfig struct {
	WorkDir         string   `yaml:"work_dir"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
	RemoteEngineURL string   `yaml:"remote_engine_url"`
	SofficePath     string   `yaml:"soffice_path"`
	PythonPath      string   `yaml:"python_path"`
	GhostscriptPath string   `yaml:"ghostscript_path"`
	QpdfPath        string   `yaml:"qpdf_path"`
	LocalTimeout    Duration `yaml:"local_timeout"`
	RemoteTimeout   Duration `yaml:"remote_timeout"`
	ScriptTimeout   Duration `yaml:"script_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when neither file nor environment
// say otherwise.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(2 * time.Minute),
			WriteTimeout:    Duration(3 * time.Minute),
			ShutdownTimeout: Duration(10 * time.Second),
			CORSOrigins:     []string{"*"},
			RateLimit:       60,
			RatePeriod:      Duration(time.Minute),

			ReadyRequireSoffice: true,
		},
		Convert: ConvertConfig{
			MaxUploadBytes: 50 << 20,
			LocalTimeout:   Duration(60 * time.Second),
			RemoteTimeout:  Duration(120 * time.Second),
			ScriptTimeout:  Duration(120 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	envInt("PORT", &c.Server.Port)
	envDuration("READ_TIMEOUT", &c.Server.ReadTimeout)
	envDuration("WRITE_TIMEOUT", &c.Server.WriteTimeout)
	envDuration("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	envList("CORS_ORIGINS", &c.Server.CORSOrigins)
	envInt("RATE_LIMIT", &c.Server.RateLimit)
	envDuration("RATE_PERIOD", &c.Server.RatePeriod)
	envBool("READY_REQUIRE_SOFFICE", &c.Server.ReadyRequireSoffice)

	envString("WORK_DIR", &c.Convert.WorkDir)
	envInt64("MAX_UPLOAD_BYTES", &c.Convert.MaxUploadBytes)
	envString("REMOTE_ENGINE_URL", &c.Convert.RemoteEngineURL)
	envString("SOFFICE_PATH", &c.Convert.SofficePath)
	envString("PYTHON_PATH", &c.Convert.PythonPath)
	envString("GS_PATH", &c.Convert.GhostscriptPath)
	envString("QPDF_PATH", &c.Convert.QpdfPath)
	envDuration("LOCAL_TIMEOUT", &c.Convert.LocalTimeout)
	envDuration("REMOTE_TIMEOUT", &c.Convert.RemoteTimeout)
	envDuration("SCRIPT_TIMEOUT", &c.Convert.ScriptTimeout)

	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)
}

// Validate rejects configurations that cannot serve requests.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Convert.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	for name, d := range map[string]Duration{
		"local_timeout":  c.Convert.LocalTimeout,
		"remote_timeout": c.Convert.RemoteTimeout,
		"script_timeout": c.Convert.ScriptTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format %q not recognized", c.Log.Format)
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envInt64(key string, dst *int64) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *Duration) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

func envList(key string, dst *[]string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
