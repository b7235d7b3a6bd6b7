// Package upload moves profile photos to remote storage and hands back
// the URL the profile record should reference.
package upload

import (
	"context"
	"errors"
	"io"
)

var (
	ErrFileTooLarge = errors.New("file exceeds size limit")
	ErrEmptyFile    = errors.New("empty file")
)

// Result describes a stored object.
type Result struct {
	URL  string
	Path string
}

// Uploader stores a photo under a deterministic destination key.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, contentType string, sizeLimit int64, destinationKey string) (*Result, error)
}

// readLimited drains file up to sizeLimit bytes and fails when the
// source holds more.
func readLimited(file io.Reader, sizeLimit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, sizeLimit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > sizeLimit {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}
