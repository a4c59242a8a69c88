// Package archive stores raw and processed snapshot copies in object
// storage, keyed by run date. Archival sits outside the core run: a failed
// put is reported as a warning and never fails the pipeline.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// Object key prefixes within the archive.
const (
	RawPrefix       = "raw"
	ProcessedPrefix = "processed"
)

// SnapshotKey builds the object key for a snapshot of the given kind on the
// given run date, e.g. raw/2024-01-02/us-states.csv.
func SnapshotKey(prefix string, asOf time.Time) string {
	return fmt.Sprintf("%s/%s/us-states.csv", prefix, asOf.Format(schema.DateFormat))
}

// GCSStore archives snapshots to a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

var _ contract.ObjectStore = &GCSStore{} // Compile-time check

// NewGCSStore returns an archive backed by the given bucket. keyFile is an
// optional service account key path; when empty, ambient credentials apply.
func NewGCSStore(ctx context.Context, bucket, keyFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if keyFile != "" {
		if _, err := os.Stat(keyFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", keyFile)
		}
		opts = append(opts, option.WithCredentialsFile(keyFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// Put writes data under key, replacing any prior object.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = "text/csv"

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", s.bucket, key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// LocalStore archives snapshots under a local directory, mirroring the
// object key layout. Useful for development and tests.
type LocalStore struct {
	root string
}

var _ contract.ObjectStore = &LocalStore{} // Compile-time check

// NewLocalStore returns an archive rooted at dir, creating it when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &LocalStore{root: dir}, nil
}

// Put writes data to root/key, replacing any prior file.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive subdirectory for %s: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive file %s: %w", path, err)
	}
	return nil
}

// Close is a no-op for the local archive.
func (s *LocalStore) Close() error {
	return nil
}
