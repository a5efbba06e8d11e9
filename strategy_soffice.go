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
	"os"
	"path/filepath"
)

// sofficeStrategy converts through a headless LibreOffice process. The same
// type covers the enhanced tier, which pins an import or export filter, and
// the plain tier, which lets the engine pick its own.
type sofficeStrategy struct {
	path      string
	name      string
	convertTo string
	inFilter  string
	outExt    string
}

func newSofficeStrategy(path, name, convertTo, inFilter, outExt string) *sofficeStrategy {
	return &sofficeStrategy{
		path:      path,
		name:      name,
		convertTo: convertTo,
		inFilter:  inFilter,
		outExt:    outExt,
	}
}

func (c *sofficeStrategy) Name() string { return c.name }

func (c *sofficeStrategy) Kind() StrategyKind { return StrategyLocal }

func (c *sofficeStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	bin, err := lookupTool(c.path, sofficeCandidates, "soffice")
	if err != nil {
		return nil, err
	}

	// Each attempt gets its own profile directory. Concurrent soffice
	// processes sharing a profile deadlock on its lock file.
	profileDir, err := job.Workspace.MkdirTemp("profile")
	if err != nil {
		return nil, err
	}
	outDir, err := job.Workspace.MkdirTemp("out")
	if err != nil {
		return nil, err
	}

	args := []string{
		"-env:UserInstallation=file://" + profileDir,
		"--headless",
		"--norestore",
	}
	if c.inFilter != "" {
		args = append(args, "--infilter="+c.inFilter)
	}
	args = append(args, "--convert-to", c.convertTo, "--outdir", outDir, job.InputPath)

	if err := runCommand(ctx, bin, args...); err != nil {
		return nil, err
	}

	produced, err := findProduced(outDir, c.outExt)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(produced)
}

// findProduced locates the converted file in dir. The engine names its
// output after the input, so the extension is the only thing to match, and
// a missing file means the process exited zero without converting anything.
func findProduced(dir, ext string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
	if err != nil {
		return "", fmt.Errorf("scan output directory: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s output produced", ext)
	}
	return matches[0], nil
}
