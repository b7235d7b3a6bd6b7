package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// GCSUploader writes profile photos into the pending/ prefix of a GCS
// bucket. The photo worker screens pending objects and promotes them to
// the approved path, so the returned URL points at the pending object
// until screening completes.
type GCSUploader struct {
	Bucket string
}

func NewGCSUploader(bucket string) *GCSUploader {
	return &GCSUploader{Bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, file io.Reader, contentType string, sizeLimit int64, destinationKey string) (*Result, error) {
	data, err := readLimited(file, sizeLimit)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	objectName := path.Join("pending", destinationKey)

	wctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := client.Bucket(u.Bucket).Object(objectName).NewWriter(wctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"type": "profile_photo",
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object: %w", err)
	}

	return &Result{
		URL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.Bucket, objectName),
		Path: objectName,
	}, nil
}
