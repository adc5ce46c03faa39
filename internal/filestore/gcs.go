// Package filestore archives uploaded CSV files in Google Cloud
// Storage so a processed import can be inspected or replayed later.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
)

// GCSArchive stores uploaded files in a GCS bucket. It assumes
// Application Default Credentials are configured.
type GCSArchive struct {
	client *storage.Client
	bucket string
}

// NewGCSArchive creates an archive backed by the given bucket.
func NewGCSArchive(ctx context.Context, bucket string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSArchive: create storage client: %w", err)
	}
	return &GCSArchive{client: client, bucket: bucket}, nil
}

// Archive writes the file under imports/<yearMonth>/<fileName> and
// returns the gs:// URI of the stored object.
func (a *GCSArchive) Archive(ctx context.Context, yearMonth, fileName string, data []byte) (string, error) {
	objectName := path.Join("imports", yearMonth, fileName)

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return "", fmt.Errorf("Archive: writing object %q: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: closing writer for %q: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}

// Close releases the underlying storage client.
func (a *GCSArchive) Close() error {
	return a.client.Close()
}
