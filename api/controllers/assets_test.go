package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farhanmaulana/cetakin-backend/internal/assets"
	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	pkgerrors "github.com/farhanmaulana/cetakin-backend/pkg/errors"
)

type stubAssetsService struct {
	currentCount int
	names        []string
	result       *assets.BatchResult
	err          error
}

func (s *stubAssetsService) UploadBatch(ctx context.Context, currentCount int, files []assets.UploadFile) (*assets.BatchResult, error) {
	s.currentCount = currentCount
	for _, f := range files {
		s.names = append(s.names, f.Name)
		io.Copy(io.Discard, f.Content)
	}
	return s.result, s.err
}

func (s *stubAssetsService) MaxAssets() int { return 5 }

func multipartUpload(t *testing.T, currentCount string, fileNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if currentCount != "" {
		if err := writer.WriteField("current_count", currentCount); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, name := range fileNames {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestAssetsUploadPassesFilesInOrder(t *testing.T) {
	svc := &stubAssetsService{result: &assets.BatchResult{
		Uploaded: []assets.UploadResult{{Index: 0, FileName: "a.png", URL: "https://img/a"}},
	}}
	handler := AssetsUpload(svc, config.UploadConfig{MaxAssets: 5, MaxFileSizeByte: 1 << 20}, nil)

	body, contentType := multipartUpload(t, "2", "a.png", "b.png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/uploads", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.currentCount != 2 {
		t.Fatalf("current count = %d", svc.currentCount)
	}
	if len(svc.names) != 2 || svc.names[0] != "a.png" || svc.names[1] != "b.png" {
		t.Fatalf("names = %v", svc.names)
	}

	var envelope struct {
		Data assets.BatchResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Uploaded) != 1 {
		t.Fatalf("uploaded = %+v", envelope.Data.Uploaded)
	}
}

func TestAssetsUploadRejectsEmptyForm(t *testing.T) {
	handler := AssetsUpload(&stubAssetsService{}, config.UploadConfig{}, nil)

	body, contentType := multipartUpload(t, "0")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/uploads", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAssetsUploadRejectsOversizedFile(t *testing.T) {
	handler := AssetsUpload(&stubAssetsService{}, config.UploadConfig{MaxFileSizeByte: 4}, nil)

	body, contentType := multipartUpload(t, "", "big.png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/uploads", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAssetsUploadBatchOverCap(t *testing.T) {
	svc := &stubAssetsService{err: pkgerrors.New(pkgerrors.CodeValidation, "too many design assets for one order")}
	handler := AssetsUpload(svc, config.UploadConfig{MaxAssets: 5}, nil)

	body, contentType := multipartUpload(t, "5", "a.png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/uploads", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
