// Package uploads stores files submitted through multipart forms, sniffing
// their real content type instead of trusting the declared one.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrNotImage    = errors.New("only image files are allowed")
	ErrNotPDF      = errors.New("only PDF files are allowed for notes")
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrInvalidPath = errors.New("invalid upload path")
)

// Service writes uploads under a single directory served at /uploads.
type Service struct {
	dir      string
	maxBytes int64
}

// NewService ensures dir exists and returns the service.
func NewService(dir string, maxBytes int64) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Service{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the directory uploads are stored in.
func (s *Service) Dir() string {
	return s.dir
}

// SaveImage stores an image upload and returns its public /uploads path.
func (s *Service) SaveImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, "images", func(mime *mimetype.MIME) error {
		if !strings.HasPrefix(mime.String(), "image/") {
			return ErrNotImage
		}
		return nil
	})
}

// SavePDF stores a PDF upload and returns its public /uploads path plus size.
func (s *Service) SavePDF(fh *multipart.FileHeader) (string, int64, error) {
	path, err := s.save(fh, "note", func(mime *mimetype.MIME) error {
		if !mime.Is("application/pdf") {
			return ErrNotPDF
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return path, fh.Size, nil
}

// Resolve maps a stored public path back to a filesystem path, refusing
// anything that escapes the upload directory.
func (s *Service) Resolve(publicPath string) (string, error) {
	name, ok := strings.CutPrefix(publicPath, "/uploads/")
	if !ok || name != filepath.Base(name) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Service) save(fh *multipart.FileHeader, field string, accept func(*mimetype.MIME) error) (string, error) {
	if fh.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect mime: %w", err)
	}
	if err := accept(mime); err != nil {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixNano(), uuid.NewString()[:8], mime.Extension())
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + name, nil
}
