package media

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pavel-Maksimov/Yatube/pkg/config"
)

// tiny valid 1x1 PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["image"][0]
}

func newTestStorage(t *testing.T, maxSize int64) *Storage {
	t.Helper()
	storage, err := NewStorage(&config.MediaConfig{Root: t.TempDir(), MaxUploadSize: maxSize})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return storage
}

func TestSaveImage_AcceptsPNG(t *testing.T) {
	storage := newTestStorage(t, 1<<20)

	path, err := storage.SaveImage(uploadHeader(t, "cat.png", pngBytes))
	if err != nil {
		t.Fatalf("SaveImage error: %v", err)
	}
	if !strings.HasPrefix(path, "posts/") {
		t.Errorf("path = %q, want posts/ prefix", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want .png suffix from sniffed type", path)
	}
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	storage := newTestStorage(t, 1<<20)

	// The extension lies; content sniffing decides
	_, err := storage.SaveImage(uploadHeader(t, "notes.png", []byte("plain text, not a picture")))
	if err != ErrNotImage {
		t.Errorf("SaveImage error = %v, want ErrNotImage", err)
	}
}

func TestSaveImage_RejectsOversized(t *testing.T) {
	storage := newTestStorage(t, 16)

	_, err := storage.SaveImage(uploadHeader(t, "cat.png", pngBytes))
	if err != ErrTooLarge {
		t.Errorf("SaveImage error = %v, want ErrTooLarge", err)
	}
}
