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
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// maxRemoteResponseBytes caps how much of a remote engine response is read.
// Outputs can legitimately exceed the input size, so the cap is generous.
const maxRemoteResponseBytes = 256 << 20

// remoteStrategy posts the input to a dedicated conversion engine over HTTP.
// It is registered at the head of a chain only when an engine URL was
// configured at startup.
type remoteStrategy struct {
	url    string
	client *http.Client
}

func newRemoteStrategy(url string, client *http.Client) *remoteStrategy {
	if client == nil {
		client = http.DefaultClient
	}
	return &remoteStrategy{url: url, client: client}
}

func (c *remoteStrategy) Name() string { return "remote" }

func (c *remoteStrategy) Kind() StrategyKind { return StrategyRemote }

func (c *remoteStrategy) Attempt(ctx context.Context, job *Job) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", job.Request.Filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := fw.Write(job.Request.Data); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.WriteField("source", string(job.Request.Source)); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.WriteField("target", string(job.Request.Target)); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("remote engine: %w", ctxErr)
		}
		return nil, fmt.Errorf("remote engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))
		return nil, fmt.Errorf("remote engine returned %s: %s", resp.Status, trimDiagnostic(string(diag)))
	}

	out, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read remote response: %w", err)
	}
	return out, nil
}
