package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Pavel-Maksimov/Yatube/pkg/config"
)

// ErrNotImage is returned when an uploaded file is not an image
var ErrNotImage = errors.New("uploaded file is not an image")

// ErrTooLarge is returned when an upload exceeds the configured limit
var ErrTooLarge = errors.New("uploaded file is too large")

// Storage writes uploaded post images under the configured media root
type Storage struct {
	root    string
	maxSize int64
}

// NewStorage creates a media storage rooted at cfg.Root
func NewStorage(cfg *config.MediaConfig) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Root, "posts"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Storage{root: cfg.Root, maxSize: cfg.MaxUploadSize}, nil
}

// SaveImage validates an upload as an image and stores it, returning
// the path relative to the media root. The MIME type is sniffed from
// the content, not taken from the client's header.
func (s *Storage) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to sniff upload type: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	rel := filepath.Join("posts", name)

	dst, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

// Root returns the media root directory for static serving
func (s *Storage) Root() string {
	return s.root
}
