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
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies why an exhausted conversion could not be completed.
// The classification is advisory: it drives caller-facing remediation hints
// and never alters the attempt sequence.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindToolUnavailable    ErrorKind = "tool_unavailable"
	KindInputTooComplex    ErrorKind = "input_too_complex"
	KindScannedOrImageOnly ErrorKind = "scanned_or_image_only"
	KindPasswordProtected  ErrorKind = "password_protected"
	KindUnknown            ErrorKind = "unknown"
)

// Stage names where in the attempt pipeline a strategy stopped.
type Stage string

const (
	StageExecute  Stage = "execute"
	StageValidate Stage = "validate"
	StageAccepted Stage = "accepted"
)

// Attempt records the outcome of one strategy execution. Err is nil only for
// the accepted attempt.
type Attempt struct {
	Strategy string
	Stage    Stage
	Err      error
	Elapsed  time.Duration
}

// ValidationError is returned when input validation rejects an upload before
// any strategy runs.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	if len(e.Result.Errors) == 0 {
		return "input validation failed"
	}
	return "input validation failed: " + strings.Join(e.Result.Errors, "; ")
}

// OutputInvalidError is recorded when a candidate output fails the output
// acceptance test.
type OutputInvalidError struct {
	Reason string
}

func (e *OutputInvalidError) Error() string {
	return "invalid output: " + e.Reason
}

// UnsupportedConversionError is returned when no strategies are registered
// for the requested pair.
type UnsupportedConversionError struct {
	Source Category
	Target Format
	Op     OpKind
}

func (e *UnsupportedConversionError) Error() string {
	if e.Op != "" && e.Op != OpConvert {
		return fmt.Sprintf("unsupported operation: %s on %s documents", e.Op, e.Source)
	}
	return fmt.Sprintf("unsupported conversion: %s to %s", e.Source, e.Target)
}

// ExhaustedError is returned when every registered strategy ran without
// producing a validated output. It carries the full ordered attempt log and
// the classified kind.
type ExhaustedError struct {
	Source   Category
	Target   Format
	Op       OpKind
	Kind     ErrorKind
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "conversion %s to %s exhausted after %d attempt(s) [%s]",
		e.Source, e.Target, len(e.Attempts), e.Kind)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s (%s): %v", a.Strategy, a.Stage, a.Err)
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) > 0 {
		return e.Attempts[len(e.Attempts)-1].Err
	}
	return nil
}

// IsUnsupportedConversion reports whether err is an UnsupportedConversionError.
func IsUnsupportedConversion(err error) bool {
	var target *UnsupportedConversionError
	return errors.As(err, &target)
}

// IsExhausted reports whether err is an ExhaustedError.
func IsExhausted(err error) bool {
	var target *ExhaustedError
	return errors.As(err, &target)
}

// IsValidationFailure reports whether err is a ValidationError.
func IsValidationFailure(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
