package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jjudge-oj/glossary/internal/storage"
	"github.com/jjudge-oj/glossary/internal/store/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type publishedEvent struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, publishedEvent{channel: channel, data: data, attrs: attrs})
	return "id", nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.attrs["type"])
	}
	return out
}

type memorySnapshots struct {
	objects map[string][]byte
	presign bool
}

func (m *memorySnapshots) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memorySnapshots) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memorySnapshots) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memorySnapshots) PresignGet(_ context.Context, key string) (string, error) {
	if !m.presign {
		return "", storage.ErrPresignUnsupported
	}
	return "https://downloads.test/" + key, nil
}

type fixture struct {
	store      *memory.Store
	publisher  *recordingPublisher
	users      *UserService
	categories *CategoryService
	terms      *TermService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.New()
	publisher := &recordingPublisher{}
	notifier := NewNotifier(publisher, "glossary.events", nil)

	users := NewUserService(s.Users())
	users.hashCost = bcrypt.MinCost

	return &fixture{
		store:      s,
		publisher:  publisher,
		users:      users,
		categories: NewCategoryService(s.Categories(), notifier),
		terms:      NewTermService(s.Terms(), s.Categories(), notifier),
	}
}

var errBroker = errors.New("broker down")

func fixedNow() time.Time {
	return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
}

func requireInvalid(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidInput)
}
