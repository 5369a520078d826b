// Package cache serves repeated public GET requests from Redis.
package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jjudge-oj/glossary/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL   = 30 * time.Second
	maxBodyBytes = 1 << 20
	headerCache  = "X-Cache"
)

// Store holds encoded responses and the generation counter that scopes
// them. Bumping the generation orphans every response cached under an
// older one; orphans expire with their TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Generation(ctx context.Context, prefix string) (int64, error)
	Bump(ctx context.Context, prefix string) error
}

// RedisStore is a Store backed by a Redis client.
type RedisStore struct {
	client *redis.Client
}

// Open connects to Redis. It returns nil when caching is disabled.
func Open(ctx context.Context, cfg config.CacheConfig) (*RedisStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key).Bytes()
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.SetEx(ctx, key, value, ttl).Err()
}

// Generation returns the current generation under prefix, 0 if none.
func (s *RedisStore) Generation(ctx context.Context, prefix string) (int64, error) {
	gen, err := s.client.Get(ctx, generationKey(prefix)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *RedisStore) Bump(ctx context.Context, prefix string) error {
	return s.client.Incr(ctx, generationKey(prefix)).Err()
}

func generationKey(prefix string) string {
	return prefix + ":gen"
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Cache is chi middleware that replays cached GET responses and starts a
// new generation after any successful write.
type Cache struct {
	store  Store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func New(store Store, cfg config.CacheConfig, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "glossary"
	}
	return &Cache{store: store, prefix: prefix, ttl: ttl, logger: logger}
}

// Middleware returns a pass-through handler when c is nil.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	if c == nil || c.store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			c.invalidateAfter(w, r, next)
			return
		}

		gen, err := c.store.Generation(r.Context(), c.prefix)
		if err != nil {
			c.logger.Warn("read cache generation", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		// gen must be read before the handler runs.
		key := c.Key(gen, r)
		if payload, err := c.store.Get(r.Context(), key); err == nil {
			if status, header, body, ok := decodePayload(payload); ok {
				for k, values := range header {
					if strings.EqualFold(k, "Content-Length") {
						continue
					}
					for _, v := range values {
						w.Header().Add(k, v)
					}
				}
				w.Header().Set(headerCache, "HIT")
				w.WriteHeader(status)
				_, _ = w.Write(body)
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("read cache", zap.String("key", key), zap.Error(err))
		}

		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set(headerCache, "MISS")
		next.ServeHTTP(cw, r)

		if cw.status != http.StatusOK || cw.overflow {
			return
		}
		header := w.Header().Clone()
		header.Del(headerCache)
		payload, err := encodePayload(cw.status, header, cw.buf.Bytes())
		if err != nil {
			return
		}
		if err := c.store.Set(context.WithoutCancel(r.Context()), key, payload, c.ttl); err != nil {
			c.logger.Warn("write cache", zap.String("key", key), zap.Error(err))
		}
	})
}

func (c *Cache) invalidateAfter(w http.ResponseWriter, r *http.Request, next http.Handler) {
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	next.ServeHTTP(sw, r)
	if sw.status >= 300 {
		return
	}
	if err := c.store.Bump(context.WithoutCancel(r.Context()), c.prefix); err != nil {
		c.logger.Warn("bump cache generation", zap.Error(err))
	}
}

// Key returns the cache key for r within generation gen.
func (c *Cache) Key(gen int64, r *http.Request) string {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	sum := sha1.Sum([]byte(target))
	return fmt.Sprintf("%s:%d:%x", c.prefix, gen, sum[:])
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// captureWriter records status and body while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	overflow bool
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(b) > maxBodyBytes {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// encodePayload packs [status][header length][header JSON][body]; both
// lengths are big-endian uint32.
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(headerJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(headerJSON)))
	copy(out[8:], headerJSON)
	copy(out[8+len(headerJSON):], body)
	return out, nil
}

func decodePayload(payload []byte) (int, http.Header, []byte, bool) {
	if len(payload) < 8 {
		return 0, nil, nil, false
	}
	status := int(binary.BigEndian.Uint32(payload[0:4]))
	headerLen := int(binary.BigEndian.Uint32(payload[4:8]))
	if headerLen < 0 || 8+headerLen > len(payload) {
		return 0, nil, nil, false
	}
	header := make(http.Header)
	if headerLen > 0 {
		if err := json.Unmarshal(payload[8:8+headerLen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, payload[8+headerLen:], true
}
