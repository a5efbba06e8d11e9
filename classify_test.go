package docconv

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
)

func TestClassify(t *testing.T) {
	failed := func(msg string) Attempt {
		return Attempt{Strategy: "x", Stage: StageExecute, Err: fmt.Errorf("%s", msg)}
	}
	timedOut := Attempt{Strategy: "x", Stage: StageExecute, Err: fmt.Errorf("engine interrupted: %w", context.DeadlineExceeded)}
	toolGone := Attempt{Strategy: "x", Stage: StageExecute, Err: fmt.Errorf("locate soffice: %w", exec.ErrNotFound)}

	tests := []struct {
		name     string
		attempts []Attempt
		profile  *DocumentProfile
		want     ErrorKind
	}{
		{"empty log", nil, nil, KindUnknown},
		{"generic failure", []Attempt{failed("engine exploded")}, nil, KindUnknown},
		{"encrypted profile", []Attempt{failed("engine exploded")}, &DocumentProfile{Encrypted: true}, KindPasswordProtected},
		{"password in message", []Attempt{failed("file is password protected")}, nil, KindPasswordProtected},
		{"encrypted in message", []Attempt{failed("cannot open encrypted document")}, nil, KindPasswordProtected},
		{"timeout", []Attempt{timedOut}, nil, KindTimeout},
		{"tool missing", []Attempt{toolGone}, nil, KindToolUnavailable},
		{"command not found in message", []Attempt{failed("sh: soffice: command not found")}, nil, KindToolUnavailable},
		{"python module missing", []Attempt{failed("ModuleNotFoundError: No module named 'pdf2docx'")}, nil, KindToolUnavailable},
		{"password beats timeout", []Attempt{timedOut, failed("document is encrypted")}, nil, KindPasswordProtected},
		{"timeout beats missing tool", []Attempt{toolGone, timedOut}, nil, KindTimeout},
		{"page count over the ceiling", []Attempt{failed("engine exploded")},
			&DocumentProfile{PageCount: 500, HasTextLayer: true}, KindInputTooComplex},
		{"form fields", []Attempt{failed("engine exploded")},
			&DocumentProfile{PageCount: 3, HasTextLayer: true, HasAcroForm: true}, KindInputTooComplex},
		{"embedded scripting", []Attempt{failed("engine exploded")},
			&DocumentProfile{PageCount: 3, HasTextLayer: true, HasScripting: true}, KindInputTooComplex},
		{"no text layer", []Attempt{failed("engine exploded")},
			&DocumentProfile{PageCount: 10}, KindScannedOrImageOnly},
		{"text layer present", []Attempt{failed("engine exploded")},
			&DocumentProfile{PageCount: 10, HasTextLayer: true}, KindUnknown},
		{"unparsed document never counts as scanned", []Attempt{failed("engine exploded")},
			&DocumentProfile{Malformed: true}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.attempts, tt.profile)
			if got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
