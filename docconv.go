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
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Request describes one conversion job. It is immutable once accepted: the
// sanitized filename replaces the declared one for all downstream use, and
// no other field changes after validation.
type Request struct {
	Data         []byte
	Filename     string
	DeclaredMIME string
	Source       Category
	Target       Format
	Op           OpKind
	Quality      string
	Password     string
}

// Result is a verified conversion outcome.
type Result struct {
	Output      []byte
	Filename    string
	Winner      string
	Substituted bool
	Attempts    []Attempt
}

// Service is the multi-strategy conversion orchestrator. Configuration is
// supplied at construction and never discovered mid-request.
type Service struct {
	workDir    string
	maxBytes   int64
	remoteURL  string
	timeouts   Timeouts
	tools      toolPaths
	logger     zerolog.Logger
	httpClient *http.Client
	chains     map[Pair][]Strategy
}

// New creates a Service with the given options.
func New(opts ...Option) *Service {
	s := &Service{
		maxBytes:   DefaultMaxInputBytes,
		timeouts:   DefaultTimeouts,
		logger:     zerolog.Nop(),
		httpClient: &http.Client{},
		chains:     make(map[Pair][]Strategy),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workDir == "" {
		s.workDir = filepath.Join(os.TempDir(), "docconv")
	}
	s.registerBuiltins()
	return s
}

// Tools reports the availability of the external engines this instance
// would invoke.
func (s *Service) Tools() []ToolStatus {
	return probeTools(s.tools)
}

// Convert validates the request, then drives its strategy chain in registry
// order: each strategy runs under its timeout, every candidate output is
// independently verified, and the first verified output wins. When the chain
// is exhausted the aggregate failure is classified and returned. All working
// files are released on every exit path.
func (s *Service) Convert(ctx context.Context, req *Request) (*Result, error) {
	if req.Op == "" {
		req.Op = OpConvert
	}

	v := Validator{MaxBytes: s.maxBytes}
	vres := v.Validate(req.Data, req.Filename, req.DeclaredMIME, req.Source)
	if !vres.Valid {
		return nil, &ValidationError{Result: vres}
	}

	accepted := *req
	accepted.Filename = vres.SanitizedName

	pair := Pair{Source: req.Source, Target: req.Target, Op: req.Op}
	chain := s.chains[pair]
	if len(chain) == 0 {
		return nil, &UnsupportedConversionError{Source: req.Source, Target: req.Target, Op: req.Op}
	}

	log := s.logger.With().
		Str("request", shortSuffix()).
		Str("source", string(req.Source)).
		Str("target", string(req.Target)).
		Str("op", string(req.Op)).
		Logger()
	log.Info().Int("bytes", len(req.Data)).Str("filename", accepted.Filename).Msg("conversion started")

	ws, err := NewWorkspace(s.workDir)
	if err != nil {
		return nil, err
	}
	defer ws.Release()

	inputPath, err := ws.Materialize(accepted.Data, "input"+inputExtension(&accepted))
	if err != nil {
		return nil, err
	}

	job := &Job{
		Request:   &accepted,
		InputPath: inputPath,
		Workspace: ws,
		Profile:   analyzeDocument(accepted.Data, inputPath, accepted.Source),
	}

	var attempts []Attempt
	for _, strat := range chain {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion aborted: %w", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeoutFor(strat.Kind()))
		started := time.Now()
		out, err := strat.Attempt(attemptCtx, job)
		cancel()
		elapsed := time.Since(started)

		if err == nil && len(out) == 0 {
			err = fmt.Errorf("strategy produced no output")
		}
		if err != nil {
			log.Warn().Str("strategy", strat.Name()).Dur("elapsed", elapsed).Err(err).Msg("attempt failed")
			attempts = append(attempts, Attempt{Strategy: strat.Name(), Stage: StageExecute, Err: err, Elapsed: elapsed})
			continue
		}

		verdict := ValidateOutput(out, accepted.Target, accepted.Op, int64(len(accepted.Data)))
		if verdict.Err != nil {
			log.Warn().Str("strategy", strat.Name()).Dur("elapsed", elapsed).Err(verdict.Err).Msg("output rejected")
			attempts = append(attempts, Attempt{Strategy: strat.Name(), Stage: StageValidate, Err: verdict.Err, Elapsed: elapsed})
			continue
		}

		output := out
		if verdict.SubstituteInput {
			output = accepted.Data
		}
		attempts = append(attempts, Attempt{Strategy: strat.Name(), Stage: StageAccepted, Elapsed: elapsed})
		log.Info().Str("strategy", strat.Name()).Dur("elapsed", elapsed).
			Int("bytes", len(output)).Bool("substituted", verdict.SubstituteInput).Msg("conversion succeeded")

		return &Result{
			Output:      output,
			Filename:    OutputFilename(accepted.Filename, accepted.Target),
			Winner:      strat.Name(),
			Substituted: verdict.SubstituteInput,
			Attempts:    attempts,
		}, nil
	}

	kind := Classify(attempts, job.Profile)
	log.Error().Str("kind", string(kind)).Int("attempts", len(attempts)).Msg("conversion exhausted")
	return nil, &ExhaustedError{
		Source:   accepted.Source,
		Target:   accepted.Target,
		Op:       accepted.Op,
		Kind:     kind,
		Attempts: attempts,
	}
}

// ConvertFile reads a local file and converts it, inferring the source
// category and declared type from the extension.
func (s *Service) ConvertFile(ctx context.Context, path string, target Format) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	src, ok := CategoryForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("cannot infer source category from extension %q", ext)
	}

	return s.Convert(ctx, &Request{
		Data:         data,
		Filename:     filepath.Base(path),
		DeclaredMIME: declaredMIMEForExtension(ext),
		Source:       src,
		Target:       target,
	})
}

// Compress re-encodes a PDF at the requested quality. Output that fails to
// shrink is substituted with the original input.
func (s *Service) Compress(ctx context.Context, data []byte, filename, quality string) (*Result, error) {
	return s.Convert(ctx, &Request{
		Data:         data,
		Filename:     filename,
		DeclaredMIME: "application/pdf",
		Source:       CategoryPDF,
		Target:       FormatPDF,
		Op:           OpCompress,
		Quality:      quality,
	})
}

// Protect encrypts a PDF with the given password.
func (s *Service) Protect(ctx context.Context, data []byte, filename, password string) (*Result, error) {
	if password == "" {
		return nil, fmt.Errorf("protect: password must not be empty")
	}
	return s.Convert(ctx, &Request{
		Data:         data,
		Filename:     filename,
		DeclaredMIME: "application/pdf",
		Source:       CategoryPDF,
		Target:       FormatPDF,
		Op:           OpProtect,
		Password:     password,
	})
}

func (s *Service) timeoutFor(k StrategyKind) time.Duration {
	switch k {
	case StrategyRemote:
		return s.timeouts.Remote
	case StrategyScript:
		return s.timeouts.Script
	}
	return s.timeouts.Local
}

// inputExtension picks the materialized input's extension. External engines
// key their import filters off it, so it must match the sanitized upload.
func inputExtension(req *Request) string {
	if ext := strings.ToLower(filepath.Ext(req.Filename)); ext != "" {
		return ext
	}
	exts := categoryExtensions[req.Source]
	if len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// declaredMIMEForExtension maps an extension to the MIME type a well-behaved
// client would declare.
func declaredMIMEForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	}
	return "application/octet-stream"
}
