package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	docconv "github.com/drag9988/Render-Backend-sub001"
	"github.com/drag9988/Render-Backend-sub001/internal/config"
)

type stubStrategy struct {
	name string
	fn   func(ctx context.Context, job *docconv.Job) ([]byte, error)
}

func (s *stubStrategy) Name() string               { return s.name }
func (s *stubStrategy) Kind() docconv.StrategyKind { return docconv.StrategyLocal }
func (s *stubStrategy) Attempt(ctx context.Context, job *docconv.Job) ([]byte, error) {
	return s.fn(ctx, job)
}

func pdfBytes(n int) []byte {
	data := bytes.Repeat([]byte{'a'}, n)
	copy(data, "%PDF-1.4\n")
	return data
}

func zipBytes(n int) []byte {
	data := bytes.Repeat([]byte{'b'}, n)
	copy(data, "PK\x03\x04")
	return data
}

func newRig(t *testing.T, maxUpload int64, requireSoffice bool) (*docconv.Service, http.Handler) {
	t.Helper()
	svc := docconv.New(docconv.WithWorkingDirectory(t.TempDir()))
	srv := &server{
		svc:            svc,
		maxUpload:      maxUpload,
		requireSoffice: requireSoffice,
		logger:         zerolog.Nop(),
	}
	cfg := config.Default()
	return svc, newRouter(srv, &cfg)
}

// uploadRequest builds a multipart POST with a file part and optional extra
// form fields. The part carries an explicit content type so the declared
// MIME reaches validation.
func uploadRequest(t *testing.T, path, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestReadyEndpoint(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ready = %d, want 200", rec.Code)
	}
	var body struct {
		Status string               `json:"status"`
		Tools  []docconv.ToolStatus `json:"tools"`
	}
	decodeJSON(t, rec, &body)
	if body.Status != "ready" {
		t.Errorf("status = %q, want ready", body.Status)
	}
	if len(body.Tools) != 4 {
		t.Errorf("reported %d tools, want 4", len(body.Tools))
	}
}

func TestReadyGatedOnSoffice(t *testing.T) {
	svc, router := newRig(t, 1<<20, true)

	wantStatus := http.StatusServiceUnavailable
	for _, tool := range svc.Tools() {
		if tool.Name == "soffice" && tool.Available {
			wantStatus = http.StatusOK
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != wantStatus {
		t.Errorf("GET /ready = %d, want %d", rec.Code, wantStatus)
	}
}

func TestConvertEndpoint(t *testing.T) {
	svc, router := newRig(t, 1<<20, false)
	output := zipBytes(400)
	svc.RegisterChain(docconv.CategoryPDF, docconv.FormatDOCX, docconv.OpConvert, &stubStrategy{
		name: "stub",
		fn: func(ctx context.Context, job *docconv.Job) ([]byte, error) {
			return output, nil
		},
	})

	req := uploadRequest(t, "/api/convert/pdf-to-word", "report.pdf", "application/pdf", pdfBytes(300), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/convert/pdf-to-word = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != docconv.FormatDOCX.MIMEType() {
		t.Errorf("Content-Type = %q, want %q", got, docconv.FormatDOCX.MIMEType())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="report.docx"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("X-Conversion-Strategy"); got != "stub" {
		t.Errorf("X-Conversion-Strategy = %q, want stub", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), output) {
		t.Error("response body does not match the strategy output")
	}
}

func TestConvertEndpointRejectsBadDocument(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	req := uploadRequest(t, "/api/convert/pdf-to-word", "report.pdf", "application/pdf",
		bytes.Repeat([]byte{'a'}, 300), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decodeJSON(t, rec, &body)
	if body.Error != "validation_failed" {
		t.Errorf("error = %q, want validation_failed", body.Error)
	}
	if len(body.Details) == 0 {
		t.Error("details is empty, want the validation findings")
	}
}

func TestConvertEndpointExhausted(t *testing.T) {
	svc, router := newRig(t, 1<<20, false)
	svc.RegisterChain(docconv.CategoryPDF, docconv.FormatDOCX, docconv.OpConvert, &stubStrategy{
		name: "stub",
		fn: func(ctx context.Context, job *docconv.Job) ([]byte, error) {
			return nil, fmt.Errorf("engine crashed")
		},
	})

	req := uploadRequest(t, "/api/convert/pdf-to-word", "report.pdf", "application/pdf", pdfBytes(300), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Error    string `json:"error"`
		Kind     string `json:"kind"`
		Hint     string `json:"hint"`
		Attempts []struct {
			Strategy string `json:"strategy"`
			Stage    string `json:"stage"`
			Error    string `json:"error"`
		} `json:"attempts"`
	}
	decodeJSON(t, rec, &body)
	if body.Error != "conversion_failed" {
		t.Errorf("error = %q, want conversion_failed", body.Error)
	}
	if body.Kind != string(docconv.KindUnknown) {
		t.Errorf("kind = %q, want %q", body.Kind, docconv.KindUnknown)
	}
	if body.Hint == "" {
		t.Error("hint is empty")
	}
	if len(body.Attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(body.Attempts))
	}
	if body.Attempts[0].Strategy != "stub" || !strings.Contains(body.Attempts[0].Error, "engine crashed") {
		t.Errorf("attempt = %+v", body.Attempts[0])
	}
}

func TestConvertEndpointBadUpload(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	req := httptest.NewRequest(http.MethodPost, "/api/convert/pdf-to-word", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "bad_upload" {
		t.Errorf("error = %q, want bad_upload", body["error"])
	}
}

func TestConvertEndpointUploadTooLarge(t *testing.T) {
	_, router := newRig(t, 1024, false)

	req := uploadRequest(t, "/api/convert/pdf-to-word", "huge.pdf", "application/pdf", pdfBytes(2<<20), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "upload_too_large" {
		t.Errorf("error = %q, want upload_too_large", body["error"])
	}
}

func TestCompressEndpoint(t *testing.T) {
	svc, router := newRig(t, 1<<20, false)
	var gotQuality string
	svc.RegisterChain(docconv.CategoryPDF, docconv.FormatPDF, docconv.OpCompress, &stubStrategy{
		name: "stub",
		fn: func(ctx context.Context, job *docconv.Job) ([]byte, error) {
			gotQuality = job.Request.Quality
			return pdfBytes(150), nil
		},
	})

	req := uploadRequest(t, "/api/pdf/compress", "big.pdf", "application/pdf", pdfBytes(5000),
		map[string]string{"quality": "low"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/pdf/compress = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotQuality != "low" {
		t.Errorf("quality = %q, want low", gotQuality)
	}
	if got := rec.Header().Get("X-Conversion-Substituted"); got != "" {
		t.Errorf("X-Conversion-Substituted = %q, want unset", got)
	}
	if len(rec.Body.Bytes()) != 150 {
		t.Errorf("body length = %d, want 150", len(rec.Body.Bytes()))
	}
}

func TestCompressEndpointSubstitutesGrownOutput(t *testing.T) {
	svc, router := newRig(t, 1<<20, false)
	input := pdfBytes(2000)
	svc.RegisterChain(docconv.CategoryPDF, docconv.FormatPDF, docconv.OpCompress, &stubStrategy{
		name: "stub",
		fn: func(ctx context.Context, job *docconv.Job) ([]byte, error) {
			return pdfBytes(8000), nil
		},
	})

	req := uploadRequest(t, "/api/pdf/compress", "big.pdf", "application/pdf", input, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/pdf/compress = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Conversion-Substituted"); got != "true" {
		t.Errorf("X-Conversion-Substituted = %q, want true", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), input) {
		t.Error("substituted body does not match the original upload")
	}
}

func TestProtectEndpoint(t *testing.T) {
	svc, router := newRig(t, 1<<20, false)
	var gotPassword string
	svc.RegisterChain(docconv.CategoryPDF, docconv.FormatPDF, docconv.OpProtect, &stubStrategy{
		name: "stub",
		fn: func(ctx context.Context, job *docconv.Job) ([]byte, error) {
			gotPassword = job.Request.Password
			return pdfBytes(200), nil
		},
	})

	req := uploadRequest(t, "/api/pdf/protect", "contract.pdf", "application/pdf", pdfBytes(500),
		map[string]string{"password": "hunter2"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/pdf/protect = %d, body %s", rec.Code, rec.Body.String())
	}
	if gotPassword != "hunter2" {
		t.Errorf("password = %q, want hunter2", gotPassword)
	}
}

func TestProtectEndpointRequiresPassword(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	req := uploadRequest(t, "/api/pdf/protect", "contract.pdf", "application/pdf", pdfBytes(500), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "missing_password" {
		t.Errorf("error = %q, want missing_password", body["error"])
	}
}

func TestUnknownConversionRoute(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	req := uploadRequest(t, "/api/convert/pdf-to-pdf", "report.pdf", "application/pdf", pdfBytes(300), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, router := newRig(t, 1<<20, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/convert/pdf-to-word", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK && rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
