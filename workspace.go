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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Workspace owns the on-disk working files for a single request. Every path
// it hands out lives under one uniquely-named directory, so Release is a
// single recursive removal and concurrent requests can never collide.
type Workspace struct {
	dir      string
	released atomic.Bool
}

// NewWorkspace creates the working directory for one request inside root.
// The root is created if absent with permissions relaxed enough for the
// external engine processes that write into it.
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "docconv")
	}
	if err := os.MkdirAll(root, 0o777); err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), shortSuffix())
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create request workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func shortSuffix() string {
	id := uuid.NewString()
	return strings.ReplaceAll(id, "-", "")[:8]
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Materialize writes data to a fresh file inside the workspace and returns
// its path.
func (w *Workspace) Materialize(data []byte, name string) (string, error) {
	p := w.Path(name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("materialize %s: %w", name, err)
	}
	return p, nil
}

// Path returns a workspace path for name without creating the file. External
// tools write their outputs here; a path that was never produced simply does
// not exist at Release time.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// MkdirTemp creates a fresh subdirectory, used for engine profile
// directories and per-attempt output directories.
func (w *Workspace) MkdirTemp(label string) (string, error) {
	dir := filepath.Join(w.dir, fmt.Sprintf("%s-%s", label, shortSuffix()))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", label, err)
	}
	return dir, nil
}

// Release removes the workspace and everything in it. Missing files are not
// an error, and repeated calls are no-ops, so Release is safe to defer on
// every exit path.
func (w *Workspace) Release() error {
	if !w.released.CompareAndSwap(false, true) {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("release workspace: %w", err)
	}
	return nil
}
