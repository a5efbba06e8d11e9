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
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ValidationResult reports the outcome of input validation. Errors holds one
// human-readable string per violated check, in check order. SanitizedName is
// always populated, valid or not.
type ValidationResult struct {
	Valid         bool
	Errors        []string
	SanitizedName string
}

// Validator applies the upload acceptance policy. The zero value uses the
// default size cap.
type Validator struct {
	MaxBytes int64
}

const safetyScanWindow = 1024

var (
	reScriptTag    = regexp.MustCompile(`(?i)<script\b`)
	reScriptScheme = regexp.MustCompile(`(?i)(javascript|vbscript):`)
	reEventHandler = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// executableMagics are leading signatures of native executables. Uploads
// carrying them are rejected before any other check runs.
var executableMagics = [][]byte{
	{0x4D, 0x5A},             // PE (MZ)
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0x23, 0x21},             // shebang
	{0xCF, 0xFA, 0xED, 0xFE}, // Mach-O 64
	{0xCA, 0xFE, 0xBA, 0xBE}, // Mach-O universal
}

// Validate checks one upload against the acceptance policy for its declared
// category. The content-safety scan runs first and short-circuits; all other
// violations are collected. Validate never fails with an error: the result
// carries the verdict.
func (v *Validator) Validate(data []byte, filename, declaredMIME string, src Category) ValidationResult {
	res := ValidationResult{SanitizedName: SanitizeFilename(filename)}

	if reason := scanForActiveContent(data); reason != "" {
		res.Errors = append(res.Errors, reason)
		return res
	}

	maxBytes := v.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	if int64(len(data)) > maxBytes {
		res.Errors = append(res.Errors,
			fmt.Sprintf("file size %d exceeds the %d byte limit", len(data), maxBytes))
	}
	if min := minSizeFor(src); int64(len(data)) < min {
		res.Errors = append(res.Errors,
			fmt.Sprintf("file size %d is below the %d byte minimum for %s documents", len(data), min, src))
	}

	mime := normalizeMIME(declaredMIME)
	if !containsString(categoryMIMEs[src], mime) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("declared content type %q is not accepted for %s documents", declaredMIME, src))
	}

	ext := strings.ToLower(filepath.Ext(res.SanitizedName))
	if !containsString(categoryExtensions[src], ext) {
		res.Errors = append(res.Errors,
			fmt.Sprintf("file extension %q is not accepted for %s documents", ext, src))
	}

	if err := checkSignature(data, ext, src); err != "" {
		res.Errors = append(res.Errors, err)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// scanForActiveContent inspects the first window of the payload for embedded
// active content and executable signatures. It returns a non-empty reason on
// a hit.
func scanForActiveContent(data []byte) string {
	for _, magic := range executableMagics {
		if bytes.HasPrefix(data, magic) {
			return "content safety check failed: executable file signature detected"
		}
	}

	window := data
	if len(window) > safetyScanWindow {
		window = window[:safetyScanWindow]
	}
	if reScriptTag.Match(window) || reScriptScheme.Match(window) || reEventHandler.Match(window) {
		return "content safety check failed: embedded active content detected"
	}
	return ""
}

// checkSignature verifies the leading bytes against the signatures acceptable
// for the extension. The detected content type is included in the message so
// a mismatch is diagnosable without the file.
func checkSignature(data []byte, ext string, src Category) string {
	sigs := signaturesForExtension(ext, src)
	for _, sig := range sigs {
		if bytes.HasPrefix(data, sig.magic) {
			return ""
		}
	}

	labels := make([]string, len(sigs))
	for i, sig := range sigs {
		labels[i] = sig.label
	}
	detected := "unknown"
	if len(data) > 0 {
		detected = mimetype.Detect(data).String()
	}
	return fmt.Sprintf("content signature mismatch: expected %s header, detected %s",
		strings.Join(labels, " or "), detected)
}

func normalizeMIME(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
