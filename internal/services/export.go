package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/glossary/internal/storage"
	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	exportPrefix      = "exports/"
	exportContentType = "application/json"
)

// SnapshotStore is implemented by storage.Storage.
type SnapshotStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// ExportService writes glossary snapshots to object storage.
type ExportService struct {
	categories CategoryRepository
	terms      TermRepository
	store      SnapshotStore
	events     *Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewExportService(
	categories CategoryRepository,
	terms TermRepository,
	store SnapshotStore,
	events *Notifier,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		categories: categories,
		terms:      terms,
		store:      store,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// Snapshot reads every category and term.
func (s *ExportService) Snapshot(ctx context.Context) (types.Snapshot, error) {
	snapshot := types.Snapshot{ExportedAt: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := s.categories.List(gctx, "")
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		snapshot.Categories = categories
		return nil
	})
	g.Go(func() error {
		terms, err := s.terms.List(gctx, store.TermFilter{})
		if err != nil {
			return fmt.Errorf("list terms: %w", err)
		}
		snapshot.Terms = terms
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Snapshot{}, err
	}
	return snapshot, nil
}

// Create stores a new snapshot and describes where it was written.
func (s *ExportService) Create(ctx context.Context, actorID string) (types.Export, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return types.Export{}, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return types.Export{}, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha256.Sum256(data)

	key := path.Join(
		strings.TrimSuffix(exportPrefix, "/"),
		snapshot.ExportedAt.Format("2006/01/02"),
		uuid.NewString()+".json",
	)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), exportContentType); err != nil {
		return types.Export{}, fmt.Errorf("upload snapshot: %w", err)
	}

	export := types.Export{
		Key:    key,
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(sum[:]),
	}

	url, err := s.store.PresignGet(ctx, key)
	switch {
	case err == nil:
		export.URL = url
	case errors.Is(err, storage.ErrPresignUnsupported):
	default:
		s.logger.Warn("presign export", zap.String("key", key), zap.Error(err))
	}

	s.events.Notify(ctx, types.EventExportCreated, key, actorID)
	return export, nil
}

// Open streams a previously written snapshot. Keys outside the export
// prefix are rejected.
func (s *ExportService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !ValidExportKey(key) {
		return nil, fmt.Errorf("%w: invalid export key", ErrInvalidInput)
	}
	return s.store.Get(ctx, key)
}

// Delete removes a previously written snapshot. Missing snapshots report
// storage.ErrObjectNotFound.
func (s *ExportService) Delete(ctx context.Context, actorID, key string) error {
	body, err := s.Open(ctx, key)
	if err != nil {
		return err
	}
	_ = body.Close()

	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	s.events.Notify(ctx, types.EventExportDeleted, key, actorID)
	return nil
}

// ValidExportKey reports whether key names an object under the export prefix.
func ValidExportKey(key string) bool {
	if !strings.HasPrefix(key, exportPrefix) || !strings.HasSuffix(key, ".json") {
		return false
	}
	return path.Clean(key) == key && !strings.Contains(key, "..")
}
