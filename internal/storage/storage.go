// Package storage provides the object store that quiz-result CSV exports
// are written to, with MinIO and Google Cloud Storage backends.
package storage

import "context"

// ObjectStore defines the operations the exporter needs from a backend.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}
