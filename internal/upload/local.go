package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LocalUploader stores photos on the local filesystem for development.
// Destination keys keep their path shape so local and GCS runs produce
// the same layout.
type LocalUploader struct {
	mu        sync.Mutex
	uploadDir string
}

func NewLocalUploader(uploadDir string) *LocalUploader {
	// Create upload directory if it doesn't exist
	os.MkdirAll(uploadDir, 0755)

	return &LocalUploader{uploadDir: uploadDir}
}

func (u *LocalUploader) Upload(ctx context.Context, file io.Reader, contentType string, sizeLimit int64, destinationKey string) (*Result, error) {
	data, err := readLimited(file, sizeLimit)
	if err != nil {
		return nil, err
	}

	// Keys contain the account email; keep them filesystem-safe.
	safeKey := strings.ReplaceAll(destinationKey, "..", "")
	fullPath := filepath.Join(u.uploadDir, filepath.FromSlash(safeKey))

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.Write(data); err != nil {
		os.Remove(fullPath) // Clean up on error
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &Result{
		URL:  "/uploads/" + safeKey,
		Path: safeKey,
	}, nil
}
