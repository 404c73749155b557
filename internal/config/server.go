package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"avril/database/postgres"
	"avril/database/sqlite"
	commandHandler "avril/internal/api/command/handler"
	conversationHandler "avril/internal/api/conversation/handler"
	schedulerHandler "avril/internal/api/scheduler/handler"
	"avril/internal/middleware"
	"avril/pkg/notify"
	"avril/pkg/redis"
	"avril/pkg/s3"
	"avril/pkg/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type ServerOption func(*Server) error

type Server struct {
	engine     *fiber.App
	db         *sqlx.DB
	log        *logrus.Logger
	middleware middleware.Middleware
	validator  *validator.Validate
	cfg        AssistantConfig
	store      storage.IStorage
	notifier   notify.INotifier
	assistant  *Engine
	handlers   []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.assistant == nil {
		return nil, fmt.Errorf("assistant engine is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithAssistantConfig(cfg AssistantConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

// WithStore opens the persistent store selected by STORE_DRIVER.
func WithStore() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the store")
		}

		switch s.cfg.StoreDriver {
		case "", "sqlite":
			db, err := sqlite.New()
			if err != nil {
				return fmt.Errorf("failed to open sqlite store: %w", err)
			}
			s.db = db
			s.store = storage.NewSQL(db, s.log)
		case "postgres":
			db, err := postgres.New()
			if err != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
				return fmt.Errorf("failed to create database connection: %w", err)
			}
			s.db = db
			s.store = storage.NewSQL(db, s.log)
		case "redis":
			s.store = redis.New(s.log)
		case "s3":
			store, err := s3.New(s.log)
			if err != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
				return fmt.Errorf("failed to create S3 client: %w", err)
			}
			s.store = store
		case "memory":
			s.store = storage.NewMemory()
		default:
			return fmt.Errorf("unknown STORE_DRIVER %q", s.cfg.StoreDriver)
		}

		s.log.WithField("driver", s.cfg.StoreDriver).Info("Persistent store ready")
		return nil
	}
}

func WithNotifier(notifier notify.INotifier) ServerOption {
	return func(s *Server) error {
		s.notifier = notifier
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Config{
			RequestsPerSecond: s.cfg.RateLimit,
			Burst:             s.cfg.RateBurst,
		})
		return nil
	}
}

// WithEngine assembles the assistant. It needs the store and notifier.
func WithEngine() ServerOption {
	return func(s *Server) error {
		if s.store == nil {
			return fmt.Errorf("store must be initialized before the engine")
		}
		if s.notifier == nil {
			s.notifier = notify.New(s.log)
		}

		assistant, err := NewEngine(s.log, s.cfg, s.store, s.notifier)
		if err != nil {
			return fmt.Errorf("failed to assemble assistant: %w", err)
		}
		s.assistant = assistant
		return nil
	}
}

func (s *Server) RegisterHandler() {
	a := s.assistant

	var transcriber conversationHandler.Transcriber
	if a.Transcriber != nil {
		transcriber = a.Transcriber
	}

	conversationHandlers := conversationHandler.New(s.log, s.validator, s.middleware, a.Loop, a.State, a.Conversation, a.Mic, a.Hub, transcriber)
	commandHandlers := commandHandler.New(s.log, s.validator, s.middleware, a.Loop, a.Commands)
	schedulerHandlers := schedulerHandler.New(s.log, s.validator, s.middleware, a.Loop, a.Scheduler)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, conversationHandlers, commandHandlers, schedulerHandlers)
}

// Run serves HTTP and runs the assistant loop until ctx is cancelled or one
// of them fails.
func (s *Server) Run(ctx context.Context) error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware(), s.middleware.NewLoggingMiddleware)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.assistant.Loop.Run(loopCtx)
	})

	g.Go(func() error {
		if err := s.assistant.Boot(gctx); err != nil {
			return fmt.Errorf("boot assistant: %w", err)
		}
		if gctx.Err() != nil {
			return nil
		}
		s.log.WithField("port", s.cfg.Port).Info("Server started successfully")
		return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port))
	})

	g.Go(func() error {
		return s.assistant.WatchSeed(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.assistant.Shutdown(shutdownCtx)
		err := s.engine.ShutdownWithTimeout(shutdownTimeout)
		stopLoop()

		if s.db != nil {
			err = errors.Join(err, s.db.Close())
		}
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":   "Server is Healthy!",
			"assistant": s.cfg.Name,
		})
	})
	s.engine.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
