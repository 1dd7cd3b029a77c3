package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ibatulanandjp/procrai/internal/config"
	"github.com/ibatulanandjp/procrai/internal/document"
	"github.com/ibatulanandjp/procrai/internal/extract"
	"github.com/ibatulanandjp/procrai/internal/ocr"
	"github.com/ibatulanandjp/procrai/internal/results"
	"github.com/ibatulanandjp/procrai/internal/translate"
	"github.com/ibatulanandjp/procrai/internal/workflow"
)

type fakeOCR struct{}

func (f *fakeOCR) Recognize(ctx context.Context, image []byte) ([]ocr.Word, error) {
	return []ocr.Word{
		{Text: "Hello", Confidence: 95, LineNum: 1, X0: 10, Y0: 10, Width: 40, Height: 12},
	}, nil
}

type fakeTranslator struct{}

func (f *fakeTranslator) TranslateSet(ctx context.Context, set *document.Set, progress translate.ProgressFunc) error {
	return nil
}

type fakeReconstructor struct{}

func (f *fakeReconstructor) Reconstruct(set *document.Set, outPath string) error {
	return os.WriteFile(outPath, []byte("%PDF"), 0644)
}

func newTestServer(t *testing.T) (*Server, *config.Config, *results.Manager) {
	t.Helper()

	cfg := &config.Config{
		UploadDir:         t.TempDir(),
		OutputDir:         t.TempDir(),
		MaxUploadSize:     1024,
		AllowedExtensions: []string{".pdf", ".png"},
	}
	store, err := results.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	extractor := extract.NewExtractor(&fakeOCR{}, nil)
	pipeline := workflow.NewPipeline(extractor, &fakeTranslator{}, &fakeReconstructor{}, store, "en", "ja")
	return New(cfg, extractor, pipeline, store), cfg, store
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()
	return body, w.FormDataContentType()
}

func TestServer_Health(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestServer_UploadAndExtract(t *testing.T) {
	s, cfg, _ := newTestServer(t)

	body, contentType := multipartBody(t, "scan.png", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.UploadDir, "scan.png")); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}

	extractReq := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract",
		strings.NewReader(`{"filename":"scan.png"}`))
	extractReq.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, extractReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp extractResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.PageCount != 1 || len(resp.Elements) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Elements[0].Content != "Hello" {
		t.Errorf("content = %q", resp.Elements[0].Content)
	}
}

func TestServer_UploadRejectsExtension(t *testing.T) {
	s, _, _ := newTestServer(t)

	body, contentType := multipartBody(t, "malware.exe", []byte("bits"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestServer_UploadRejectsOversize(t *testing.T) {
	s, _, _ := newTestServer(t)

	body, contentType := multipartBody(t, "big.pdf", bytes.Repeat([]byte("x"), 2048))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestServer_ExtractMissingFile(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract",
		strings.NewReader(`{"filename":"nope.png"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_DownloadUnknownFile(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/download/translated_missing.pdf", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServer_DownloadStoredOutput(t *testing.T) {
	s, _, store := newTestServer(t)

	info := &results.DocumentInfo{
		ID:         "doc1",
		OutputName: "translated_scan.pdf",
		Status:     results.StatusComplete,
	}
	if err := store.Save(info); err != nil {
		t.Fatal(err)
	}
	outPath := store.OutputPath("doc1", "translated_scan.pdf")
	if err := os.WriteFile(outPath, []byte("%PDF-1.7"), 0644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/download/translated_scan.pdf", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServer_WorkflowStatusRoute(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflow", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var status workflow.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if status.Phase != workflow.PhaseIdle {
		t.Errorf("phase = %s", status.Phase)
	}
}
