package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/cache"
	"github.com/jjudge-oj/glossary/internal/db"
	"github.com/jjudge-oj/glossary/internal/handlers"
	"github.com/jjudge-oj/glossary/internal/logging"
	"github.com/jjudge-oj/glossary/internal/mq"
	"github.com/jjudge-oj/glossary/internal/services"
	"github.com/jjudge-oj/glossary/internal/storage"
	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/internal/store/memory"
	"go.uber.org/zap"
)

// Repositories groups the persistence layer the server runs on.
type Repositories struct {
	Users      services.UserRepository
	Categories services.CategoryRepository
	Terms      services.TermRepository
}

// PostgresRepositories returns repositories backed by conn.
func PostgresRepositories(conn *sql.DB) Repositories {
	return Repositories{
		Users:      store.NewUserRepository(conn),
		Categories: store.NewCategoryRepository(conn),
		Terms:      store.NewTermRepository(conn),
	}
}

// MemoryRepositories returns repositories that live in process memory.
func MemoryRepositories() Repositories {
	s := memory.New()
	return Repositories{
		Users:      s.Users(),
		Categories: s.Categories(),
		Terms:      s.Terms(),
	}
}

// Option customizes New.
type Option func(*options)

type options struct {
	inMemory bool
}

// WithInMemoryStore runs the server without Postgres.
func WithInMemoryStore() Option {
	return func(o *options) { o.inMemory = true }
}

// Deps are the collaborators NewRouter wires into routes. Broker, Storage
// and Cache are optional.
type Deps struct {
	Config  config.Config
	Repos   Repositories
	Broker  *mq.MQ
	Storage *storage.Storage
	Cache   *cache.Cache
	Logger  *zap.Logger
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	logger     *zap.Logger
	closers    []func() error
}

// New connects the configured backends and constructs a Server.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{logger: logger}
	deps := Deps{Config: cfg, Logger: logger}

	if o.inMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		deps.Repos = MemoryRepositories()
	} else {
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, conn.Close)
		deps.Repos = PostgresRepositories(conn)
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.close()
		return nil, err
	}
	if broker != nil {
		s.closers = append(s.closers, broker.Close)
		deps.Broker = broker
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, err
	}
	deps.Storage = objects

	redisStore, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		logger.Warn("response cache disabled", zap.Error(err))
	} else if redisStore != nil {
		s.closers = append(s.closers, redisStore.Close)
		deps.Cache = cache.New(redisStore, cfg.Cache, logger)
	}

	s.router = NewRouter(deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server configured",
		zap.Int("port", port),
		zap.Bool("in_memory", o.inMemory),
		zap.String("mq_backend", cfg.MQ.Backend),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("cache", deps.Cache != nil),
	)
	return s, nil
}

// NewRouter builds the HTTP routes over deps.
func NewRouter(deps Deps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var publisher services.EventPublisher
	if deps.Broker != nil {
		publisher = deps.Broker
	}
	notifier := services.NewNotifier(publisher, deps.Config.MQ.Channel, logger)

	userService := services.NewUserService(deps.Repos.Users)
	categoryService := services.NewCategoryService(deps.Repos.Categories, notifier)
	termService := services.NewTermService(deps.Repos.Terms, deps.Repos.Categories, notifier)
	auth := handlers.NewAuthenticator(userService, deps.Config.Auth.JWTSecret, deps.Config.Auth.TokenTTL, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, auth, logger)
	})
	router.Route("/categories", func(r chi.Router) {
		r.Use(deps.Cache.Middleware)
		handlers.CategoryRouter(r, categoryService, termService, auth, logger)
	})
	router.Route("/terms", func(r chi.Router) {
		r.Use(deps.Cache.Middleware)
		handlers.TermRouter(r, termService, auth, logger)
	})

	if deps.Storage != nil {
		exportService := services.NewExportService(deps.Repos.Categories, deps.Repos.Terms, deps.Storage, notifier, logger)
		router.Route("/exports", func(r chi.Router) {
			handlers.ExportRouter(r, exportService, auth, logger)
		})
	}

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// backend connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close backend", zap.Error(err))
		}
	}
	s.closers = nil
}
