package imagehost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/farhanmaulana/cetakin-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.ImageHostConfig{
		UploadURL: srv.URL + "/1/upload",
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestUploadSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key, query %q", r.URL.RawQuery)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "design.png" {
			t.Errorf("unexpected file name %s", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"url": "https://img.example/abc.png"},
		})
	})

	url, err := client.Upload(context.Background(), "design.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://img.example/abc.png" {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestUploadRejectedByHost(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"message": "invalid image"},
		})
	})

	_, err := client.Upload(context.Background(), "bad.png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for unsuccessful response")
	}
	if !strings.Contains(err.Error(), "invalid image") {
		t.Fatalf("error should carry host message, got %v", err)
	}
}

func TestUploadHTTPFailure(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.Upload(context.Background(), "x.png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestUploadValidatesInput(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := client.Upload(context.Background(), "  ", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for blank file name")
	}
	if _, err := client.Upload(context.Background(), "x.png", nil); err == nil {
		t.Fatal("expected error for nil content")
	}
}
