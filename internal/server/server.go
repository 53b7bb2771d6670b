// Package server exposes the lead-generation HTTP surface: public
// questionnaire submission plus the session-gated back office.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"raiox-platform/internal/common/auth"
	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/leads"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

// PipelineStarter starts the async lead pipeline. Satisfied by the
// Camunda client; stubbed in tests.
type PipelineStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

// LeadStore is the subset of the repository the HTTP layer needs.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	List(ctx context.Context, filter models.LeadFilter) ([]models.LeadSummary, error)
}

// LeadSearcher runs back-office full-text queries.
type LeadSearcher interface {
	Search(ctx context.Context, q leads.Query) ([]models.LeadSummary, error)
}

type Server struct {
	cfg      *config.Config
	log      logger.Logger
	store    LeadStore
	searcher LeadSearcher
	sessions *auth.SessionStore
	pipeline PipelineStarter

	db  *sql.DB
	rdb *redis.Client
}

type Options struct {
	Config   *config.Config
	Logger   logger.Logger
	Store    LeadStore
	Searcher LeadSearcher
	Sessions *auth.SessionStore
	Pipeline PipelineStarter
	DB       *sql.DB
	Redis    *redis.Client
}

func New(opts Options) *Server {
	return &Server{
		cfg:      opts.Config,
		log:      opts.Logger,
		store:    opts.Store,
		searcher: opts.Searcher,
		sessions: opts.Sessions,
		pipeline: opts.Pipeline,
		db:       opts.DB,
		rdb:      opts.Redis,
	}
}

// Router mounts all routes. Public submission endpoints are rate-limited
// only by the upstream proxy; the admin subtree requires a valid session.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.httpMetrics)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/raiox", s.handleSubmit(models.VariantBusiness, func() scoring.Scorer { return scoring.NewViabilityScorer() }))
		r.Post("/immigration", s.handleSubmit(models.VariantImmigration, func() scoring.Scorer { return scoring.NewProfileScorer() }))

		r.Post("/admin/login", s.handleLogin)
		r.Post("/admin/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/admin/leads", s.handleListLeads)
			r.Get("/admin/leads/search", s.handleSearchLeads)
			r.Get("/admin/leads/{id}", s.handleGetLead)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", map[string]interface{}{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.Server.ShutdownTimeout)*time.Millisecond)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
