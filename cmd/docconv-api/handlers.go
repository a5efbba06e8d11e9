package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	docconv "github.com/drag9988/Render-Backend-sub001"
)

// Multipart framing and form fields need headroom beyond the document
// itself.
const uploadOverhead = 1 << 20

// server wires the conversion service into HTTP handlers.
type server struct {
	svc            *docconv.Service
	maxUpload      int64
	requireSoffice bool
	logger         zerolog.Logger
}

// conversionRoutes maps URL slugs to conversion pairs. Each becomes a
// POST /api/convert/<slug> endpoint.
var conversionRoutes = []struct {
	slug   string
	source docconv.Category
	target docconv.Format
}{
	{"pdf-to-word", docconv.CategoryPDF, docconv.FormatDOCX},
	{"pdf-to-excel", docconv.CategoryPDF, docconv.FormatXLSX},
	{"pdf-to-ppt", docconv.CategoryPDF, docconv.FormatPPTX},
	{"word-to-pdf", docconv.CategoryWord, docconv.FormatPDF},
	{"excel-to-pdf", docconv.CategoryExcel, docconv.FormatPDF},
	{"ppt-to-pdf", docconv.CategoryPowerPoint, docconv.FormatPDF},
	{"pdf-to-markdown", docconv.CategoryPDF, docconv.FormatMarkdown},
	{"word-to-markdown", docconv.CategoryWord, docconv.FormatMarkdown},
	{"excel-to-markdown", docconv.CategoryExcel, docconv.FormatMarkdown},
	{"ppt-to-markdown", docconv.CategoryPowerPoint, docconv.FormatMarkdown},
}

// kindHints gives clients something actionable per failure kind.
var kindHints = map[docconv.ErrorKind]string{
	docconv.KindTimeout:            "The document took too long to convert. Try a smaller or simpler file.",
	docconv.KindToolUnavailable:    "A conversion engine is not installed on this host.",
	docconv.KindInputTooComplex:    "The document is too complex for automated conversion. Try splitting it into smaller parts.",
	docconv.KindScannedOrImageOnly: "The document appears to be scanned images without a text layer. Run OCR first.",
	docconv.KindPasswordProtected:  "The document is password protected or restricted. Remove the protection and try again.",
	docconv.KindUnknown:            "The conversion failed. Try a different file or target format.",
}

func (s *server) handleConvert(src docconv.Category, target docconv.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, filename, declared, err := s.readUpload(w, r)
		if err != nil {
			s.writeUploadError(w, err)
			return
		}

		result, err := s.svc.Convert(r.Context(), &docconv.Request{
			Data:         data,
			Filename:     filename,
			DeclaredMIME: declared,
			Source:       src,
			Target:       target,
		})
		if err != nil {
			s.writeConvertError(w, err)
			return
		}
		s.writeDocument(w, result, target)
	}
}

func (s *server) handleCompress(w http.ResponseWriter, r *http.Request) {
	data, filename, _, err := s.readUpload(w, r)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	result, err := s.svc.Compress(r.Context(), data, filename, r.FormValue("quality"))
	if err != nil {
		s.writeConvertError(w, err)
		return
	}
	s.writeDocument(w, result, docconv.FormatPDF)
}

func (s *server) handleProtect(w http.ResponseWriter, r *http.Request) {
	data, filename, _, err := s.readUpload(w, r)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}

	password := r.FormValue("password")
	if password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "missing_password",
			"message": "the password form field is required",
		})
		return
	}

	result, err := s.svc.Protect(r.Context(), data, filename, password)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}
	s.writeDocument(w, result, docconv.FormatPDF)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleReady reports readiness based on the external engines this host can
// actually run. Missing LibreOffice makes most chains useless, so by
// default it flips readiness to unavailable.
func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	tools := s.svc.Tools()

	ready := true
	if s.requireSoffice {
		ready = false
		for _, t := range tools {
			if t.Name == "soffice" && t.Available {
				ready = true
				break
			}
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "unavailable"
	}
	writeJSON(w, status, map[string]any{"status": state, "tools": tools})
}

// readUpload pulls the file part out of a multipart request with the body
// capped a little above the configured document limit.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+uploadOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", fmt.Errorf("read file field: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

func (s *server) writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"error":   "upload_too_large",
			"message": fmt.Sprintf("upload exceeds the %d byte limit", s.maxUpload),
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "bad_upload",
		"message": "expected a multipart form with a file field",
	})
}

func (s *server) writeConvertError(w http.ResponseWriter, err error) {
	var vErr *docconv.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation_failed",
			"details": vErr.Result.Errors,
		})
		return
	}

	var uErr *docconv.UnsupportedConversionError
	if errors.As(err, &uErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "unsupported_conversion",
			"message": uErr.Error(),
		})
		return
	}

	var xErr *docconv.ExhaustedError
	if errors.As(err, &xErr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    "conversion_failed",
			"kind":     string(xErr.Kind),
			"hint":     kindHints[xErr.Kind],
			"attempts": attemptSummaries(xErr.Attempts),
		})
		return
	}

	s.logger.Error().Err(err).Msg("conversion failed unexpectedly")
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal_error"})
}

func (s *server) writeDocument(w http.ResponseWriter, result *docconv.Result, target docconv.Format) {
	w.Header().Set("Content-Type", target.MIMEType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Output)))
	w.Header().Set("X-Conversion-Strategy", result.Winner)
	if result.Substituted {
		w.Header().Set("X-Conversion-Substituted", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Output)
}

type attemptSummary struct {
	Strategy  string `json:"strategy"`
	Stage     string `json:"stage"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func attemptSummaries(attempts []docconv.Attempt) []attemptSummary {
	out := make([]attemptSummary, 0, len(attempts))
	for _, a := range attempts {
		s := attemptSummary{
			Strategy:  a.Strategy,
			Stage:     string(a.Stage),
			ElapsedMS: a.Elapsed.Milliseconds(),
		}
		if a.Err != nil {
			s.Error = a.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
