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
	"errors"
	"os/exec"
	"strings"
)

// Classify maps an exhausted attempt log plus the preflight profile to one
// ErrorKind. It runs strictly after exhaustion and its result is advisory:
// nothing here feeds back into strategy selection.
//
// Precedence: password protection dominates because nothing succeeds without
// the password, then timeout, missing tooling, structural complexity, and the
// scanned-document heuristic. Unknown is the default.
func Classify(attempts []Attempt, profile *DocumentProfile) ErrorKind {
	if profile != nil && profile.Encrypted {
		return KindPasswordProtected
	}
	for _, a := range attempts {
		if mentionsPassword(a.Err) {
			return KindPasswordProtected
		}
	}

	for _, a := range attempts {
		if errors.Is(a.Err, context.DeadlineExceeded) {
			return KindTimeout
		}
	}

	for _, a := range attempts {
		if isToolMissing(a.Err) {
			return KindToolUnavailable
		}
	}

	if profile != nil {
		if profile.PageCount > complexPageCount || profile.HasAcroForm || profile.HasScripting {
			return KindInputTooComplex
		}
		if profile.PageCount > 0 && !profile.HasTextLayer {
			return KindScannedOrImageOnly
		}
	}

	return KindUnknown
}

func mentionsPassword(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}

func isToolMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "command not found") ||
		strings.Contains(msg, "no module named")
}
