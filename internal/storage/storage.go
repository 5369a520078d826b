package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jjudge-oj/glossary/config"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrPresignUnsupported is returned by PresignGet when the backend cannot
// produce download links.
var ErrPresignUnsupported = errors.New("presigned urls are not supported by this backend")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Presigner is implemented by backends that can issue time-limited download
// links.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend    ObjectStorage
	presignTTL time.Duration
}

const defaultPresignTTL = 15 * time.Minute

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend, presignTTL: defaultPresignTTL}
}

// Open builds the backend selected by cfg.Backend and ensures its bucket
// exists. It returns nil, nil when storage is disabled.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var backend ObjectStorage
	var err error
	presignTTL := defaultPresignTTL

	switch cfg.Backend {
	case "", config.StorageBackendNone:
		return nil, nil
	case config.StorageBackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case config.StorageBackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	case config.StorageBackendS3:
		backend, err = NewS3Client(ctx, cfg.S3)
		if cfg.S3.PresignTTL > 0 {
			presignTTL = cfg.S3.PresignTTL
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Backend, err)
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}

	s := NewStorage(backend)
	s.presignTTL = presignTTL
	return s, nil
}

// Put uploads an object to the configured bucket.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an object in the configured bucket.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an object from the configured bucket.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// PresignGet returns a download link for key, or ErrPresignUnsupported.
func (s *Storage) PresignGet(ctx context.Context, key string) (string, error) {
	presigner, ok := s.backend.(Presigner)
	if !ok {
		return "", ErrPresignUnsupported
	}
	return presigner.PresignGet(ctx, key, s.presignTTL)
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
