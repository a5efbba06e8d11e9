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
)

// minOutputBytes is the floor below which any candidate output is treated as
// empty or corrupt, whatever the producing tool reported.
const minOutputBytes = 100

// OutputVerdict is the result of checking one candidate output. A nil Err
// with SubstituteInput set means the attempt counts as a success but the
// original input bytes are returned instead of the candidate.
type OutputVerdict struct {
	Err             error
	SubstituteInput bool
}

// ValidateOutput applies the format-specific acceptance test to a candidate
// output. Tool exit status is never consulted here: these checks are the only
// bar a candidate has to clear.
func ValidateOutput(out []byte, target Format, op OpKind, inputSize int64) OutputVerdict {
	if len(out) < minOutputBytes {
		return OutputVerdict{Err: &OutputInvalidError{
			Reason: fmt.Sprintf("output is %d bytes, below the %d byte minimum", len(out), minOutputBytes),
		}}
	}

	switch {
	case target == FormatPDF:
		if !bytes.HasPrefix(out, magicPDF) {
			return OutputVerdict{Err: &OutputInvalidError{
				Reason: "output does not start with the %PDF signature",
			}}
		}
	case isOfficeContainer(target):
		if len(out) < 2 || out[0] != 0x50 || out[1] != 0x4B {
			return OutputVerdict{Err: &OutputInvalidError{
				Reason: "output does not start with the ZIP container signature",
			}}
		}
	}

	// Compression that grows the file is not an error for the caller: the
	// original input is substituted and the attempt still counts as success.
	if op == OpCompress && int64(len(out)) > inputSize {
		return OutputVerdict{SubstituteInput: true}
	}

	return OutputVerdict{}
}
