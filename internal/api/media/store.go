// Package media stores uploaded avatar assets on disk. Only JPEG and PNG are
// accepted, capped at 2 MiB; the rest of the system treats the returned ref
// as an opaque string.
package media

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/profilehub/profilehub/config"
	"github.com/profilehub/profilehub/internal/types"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type Store struct {
	logger  *slog.Logger
	dir     string
	maxSize int64
}

func NewStore(cfg config.UploadConfig, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	maxSize := cfg.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = 2 << 20
	}
	return &Store{
		logger:  logger,
		dir:     cfg.Dir,
		maxSize: maxSize,
	}, nil
}

// Dir returns the directory files are written to, for static serving.
func (s *Store) Dir() string { return s.dir }

// Save writes the uploaded file to disk and returns its public ref path.
// The content type is sniffed from the file bytes, not trusted from the
// client header.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", types.ErrValidation, s.maxSize)
	}

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: invalid file type, only JPEG and PNG are allowed", types.ErrValidation)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.maxSize)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Info("Avatar stored", slog.String("file", name), slog.String("content_type", contentType))
	return "/uploads/" + name, nil
}
