package server

import (
	"context"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/openfacet/facetstore/internal/api/http"
	"github.com/openfacet/facetstore/pkg/log"
	"github.com/openfacet/facetstore/pkg/search"
)

// Server wires the storage adapter and its HTTP surface
type Server struct {
	config   Config
	logger   *slog.Logger
	registry *search.Registry
	store    *search.Store
	api      *http.Server
}

// NewServer creates a new server with the given configuration
func NewServer(conf Config) (*Server, error) {
	server := &Server{
		config: conf,
	}

	if err := server.initDepend(); err != nil {
		return nil, errors.WithMessage(err, "init server dependency failed")
	}

	if err := server.declareSchema(); err != nil {
		return nil, errors.WithMessage(err, "declare schema failed")
	}

	return server, nil
}

// initDepend initializes all dependencies
func (s *Server) initDepend() error {
	// Initialize log first
	if err := log.Init(s.config.Log); err != nil {
		return errors.WithMessage(err, "failed to init log")
	}

	s.logger = log.Logger("server")
	s.logger.Info("initializing dependencies")

	s.registry = search.NewRegistry(&s.config)
	s.store = search.NewStore(s.registry)

	serverConfig := http.DefaultServerConfig()
	serverConfig.Host = s.config.Server.Host
	serverConfig.Port = s.config.Server.Port
	s.api = http.NewServer(s.store, &s.config, serverConfig)

	return nil
}

// declareSchema declares the configured indices and field mappings. Both are
// idempotent; an unreachable tenant engine is logged and retried on the next
// start, not treated as fatal.
func (s *Server) declareSchema() error {
	ctx := context.Background()

	for _, entity := range s.config.Entities {
		if len(entity.Tenants) == 0 {
			continue
		}

		if err := s.store.DeclareIndex(ctx, entity.Code, entity.Tenants); err != nil {
			s.logger.Error("failed to declare index", "entity", entity.Code, "error", err)
			continue
		}

		for _, field := range entity.Fields {
			if err := s.store.DeclareFieldMapping(ctx, entity.Code, field, entity.Tenants); err != nil {
				s.logger.Error("failed to declare field mapping",
					"entity", entity.Code, "field", field.Code, "error", err)
			}
		}
	}

	return nil
}

// Start runs the HTTP server until a termination signal arrives
func (s *Server) Start() error {
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		if err := s.api.Start(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return errors.WithMessage(err, "http server failed")
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			s.logger.Info("received signal", "signal", sig.String())
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.api.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown disposes the tenant clients after the HTTP server has drained
func (s *Server) Shutdown() error {
	s.store.Shutdown()
	return nil
}
