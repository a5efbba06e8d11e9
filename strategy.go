// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// StrategyKind selects the per-attempt timeout class for a strategy.
type StrategyKind string

const (
	StrategyLocal  StrategyKind = "local"
	StrategyRemote StrategyKind = "remote"
	StrategyScript StrategyKind = "script"
)

// Job carries one materialized request through the strategy chain. The input
// file and any strategy outputs live in the workspace.
type Job struct {
	Request   *Request
	InputPath string
	Workspace *Workspace
	Profile   *DocumentProfile
}

// Strategy is one concrete mechanism for producing the requested output.
// Attempt either returns the raw output bytes or an error; nothing else
// flows back to the orchestrator, which re-verifies every output itself.
type Strategy interface {
	// Name identifies the strategy in attempt logs.
	Name() string

	// Kind selects the timeout class the orchestrator applies.
	Kind() StrategyKind

	// Attempt runs the strategy against the materialized input. It must
	// honor ctx cancellation and may write scratch files only inside
	// job.Workspace.
	Attempt(ctx context.Context, job *Job) ([]byte, error)
}

const maxDiagnosticBytes = 512

// runCommand executes a tool under the attempt context and surfaces a
// trimmed stderr tail on failure. A context deadline is reported as
// context.DeadlineExceeded so the classifier can recognize timeouts.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", name, ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s: %w", name, err)
	}
	if diag := trimDiagnostic(combined.String()); diag != "" {
		return fmt.Errorf("%s: %v: %s", name, err, diag)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// trimDiagnostic keeps the tail of tool output, which is where engines put
// the actual failure reason.
func trimDiagnostic(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxDiagnosticBytes {
		s = "..." + s[len(s)-maxDiagnosticBytes:]
	}
	return strings.ReplaceAll(s, "\n", " | ")
}

// lookupTool resolves a tool binary. An explicitly configured path wins, then
// well-known install locations, then PATH.
func lookupTool(explicit string, candidates []string, name string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("configured %s path %q not found", name, explicit)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", name, err)
	}
	return p, nil
}

// Well-known install locations, checked before PATH.
var (
	sofficeCandidates = []string{
		"/opt/homebrew/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		"/usr/bin/libreoffice",
		"/usr/bin/soffice",
	}
	pythonCandidates = []string{
		"/usr/bin/python3",
		"/usr/local/bin/python3",
		"/opt/homebrew/bin/python3",
	}
	ghostscriptCandidates = []string{
		"/usr/bin/gs",
		"/usr/local/bin/gs",
		"/opt/homebrew/bin/gs",
	}
	qpdfCandidates = []string{
		"/usr/bin/qpdf",
		"/usr/local/bin/qpdf",
		"/opt/homebrew/bin/qpdf",
	}
)

// toolPaths carries the configured external tool locations into strategy
// construction. Empty fields fall back to probing.
type toolPaths struct {
	soffice     string
	python      string
	ghostscript string
	qpdf        string
}

// ToolStatus reports the availability of one external engine.
type ToolStatus struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
}

// probeTools resolves every external engine once, for readiness reporting.
func probeTools(paths toolPaths) []ToolStatus {
	checks := []struct {
		name       string
		explicit   string
		candidates []string
	}{
		{"soffice", paths.soffice, sofficeCandidates},
		{"python3", paths.python, pythonCandidates},
		{"gs", paths.ghostscript, ghostscriptCandidates},
		{"qpdf", paths.qpdf, qpdfCandidates},
	}

	statuses := make([]ToolStatus, 0, len(checks))
	for _, c := range checks {
		p, err := lookupTool(c.explicit, c.candidates, c.name)
		statuses = append(statuses, ToolStatus{Name: c.name, Path: p, Available: err == nil})
	}
	return statuses
}
