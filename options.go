package docconv

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Service instance.
type Option func(*Service)

// Timeouts bounds each attempt by strategy kind. Local engine runs are kept
// short; remote calls and interpreter startup get more room.
type Timeouts struct {
	Local  time.Duration
	Remote time.Duration
	Script time.Duration
}

// DefaultTimeouts are applied when a field is left zero.
var DefaultTimeouts = Timeouts{
	Local:  60 * time.Second,
	Remote: 120 * time.Second,
	Script: 120 * time.Second,
}

// WithWorkingDirectory sets where per-request workspaces are created.
func WithWorkingDirectory(dir string) Option {
	return func(s *Service) {
		s.workDir = dir
	}
}

// WithMaxInputBytes caps the accepted upload size.
func WithMaxInputBytes(n int64) Option {
	return func(s *Service) {
		s.maxBytes = n
	}
}

// WithTimeouts sets the per-strategy-kind attempt timeouts. Zero fields keep
// their defaults.
func WithTimeouts(t Timeouts) Option {
	return func(s *Service) {
		if t.Local > 0 {
			s.timeouts.Local = t.Local
		}
		if t.Remote > 0 {
			s.timeouts.Remote = t.Remote
		}
		if t.Script > 0 {
			s.timeouts.Script = t.Script
		}
	}
}

// WithRemoteEngine enables the remote conversion service tier. The URL is
// resolved once here; registry chains include the remote tier only when it
// is non-empty.
func WithRemoteEngine(url string) Option {
	return func(s *Service) {
		s.remoteURL = url
	}
}

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithSofficePath pins the LibreOffice binary instead of probing.
func WithSofficePath(path string) Option {
	return func(s *Service) {
		s.tools.soffice = path
	}
}

// WithPythonPath pins the helper-script interpreter instead of probing.
func WithPythonPath(path string) Option {
	return func(s *Service) {
		s.tools.python = path
	}
}

// WithGhostscriptPath pins the Ghostscript binary instead of probing.
func WithGhostscriptPath(path string) Option {
	return func(s *Service) {
		s.tools.ghostscript = path
	}
}

// WithQpdfPath pins the qpdf binary instead of probing.
func WithQpdfPath(path string) Option {
	return func(s *Service) {
		s.tools.qpdf = path
	}
}

// WithHTTPClient replaces the HTTP client used by the remote strategy.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		s.httpClient = c
	}
}
