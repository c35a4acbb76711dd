package cloudinary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fvaskate/agency-api/internal/domain/media"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/platform/resilience"
)

func newTestUploader(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL:        srv.URL,
		CloudName:      "agency",
		UploadPreset:   "site-uploads",
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestClient_UploadSendsUnsignedMultipart(t *testing.T) {
	var (
		path     string
		preset   string
		folder   string
		filename string
	)
	uploader := newTestUploader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		preset = r.FormValue("upload_preset")
		folder = r.FormValue("folder")
		if headers := r.MultipartForm.File["file"]; len(headers) == 1 {
			filename = headers[0].Filename
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/agency/image/upload/avatar.jpg","public_id":"avatar"}`))
	}))

	url, err := uploader.Upload(context.Background(), []byte("jpeg-bytes"), "avatar.jpg", "team")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if url != "https://res.cloudinary.com/agency/image/upload/avatar.jpg" {
		t.Fatalf("unexpected secure URL: %q", url)
	}
	if path != "/agency/upload" {
		t.Fatalf("unexpected upload path: %s", path)
	}
	if preset != "site-uploads" {
		t.Fatalf("unexpected upload preset: %q", preset)
	}
	if folder != "team" {
		t.Fatalf("unexpected folder: %q", folder)
	}
	if !strings.HasPrefix(filename, "avatar_") || !strings.HasSuffix(filename, ".jpg") {
		t.Fatalf("expected uniquified filename, got %q", filename)
	}
}

func TestClient_UploadSurfacesRemoteRejection(t *testing.T) {
	uploader := newTestUploader(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))

	_, err := uploader.Upload(context.Background(), []byte("jpeg-bytes"), "avatar.jpg", "team")

	var uploadErr *media.UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *media.UploadError, got %v", err)
	}
	if uploadErr.Filename != "avatar.jpg" {
		t.Fatalf("unexpected filename on error: %q", uploadErr.Filename)
	}
	if !strings.Contains(err.Error(), "Upload preset not found") {
		t.Fatalf("expected remote message in error, got %q", err.Error())
	}
}

func TestClient_UploadRejectsEmptyPayloadLocally(t *testing.T) {
	uploader := newTestUploader(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Errorf("no request expected for empty payload")
	}))

	_, err := uploader.Upload(context.Background(), nil, "avatar.jpg", "team")

	var uploadErr *media.UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *media.UploadError, got %v", err)
	}
}

func TestDisabledUploaderFailsEveryUpload(t *testing.T) {
	_, err := media.Disabled{}.Upload(context.Background(), []byte("jpeg-bytes"), "avatar.jpg", "team")

	var uploadErr *media.UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *media.UploadError, got %v", err)
	}
}
