package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mohammad-safakhou/localseo/config"
	"github.com/mohammad-safakhou/localseo/internal/business"
	"github.com/mohammad-safakhou/localseo/internal/generation"
	"github.com/mohammad-safakhou/localseo/internal/headline"
	"github.com/mohammad-safakhou/localseo/internal/metrics"
	"github.com/mohammad-safakhou/localseo/internal/prompts"
	"github.com/mohammad-safakhou/localseo/provider"
	"github.com/mohammad-safakhou/localseo/repository"
)

// Server bundles the echo instance with the components it owns.
type Server struct {
	Echo     *echo.Echo
	Cache    *headline.Cache
	Prompts  *prompts.Registry
	Metrics  *metrics.Metrics
	Backend  generation.Backend
	reloader *prompts.Reloader
	cfg      *config.Config
	logger   *log.Logger
}

// New wires the store, cache, prompt registry, generation backends and routes from cfg.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := log.New(log.Writer(), "[SERVER] ", log.LstdFlags)

	var m *metrics.Metrics
	if cfg.Telemetry.MetricsEnabled {
		m = metrics.New()
	}

	store, err := repository.NewHeadlineStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cache := headline.NewCache(store, headline.CacheOptions{
		TTL:            cfg.Cache.TTL,
		FallbackTTL:    cfg.Cache.FallbackTTL,
		DedupeInflight: cfg.Cache.DedupeInflight,
		Metrics:        m,
	})

	reg, err := prompts.NewRegistry(prompts.Options{
		File:       cfg.Prompts.File,
		MaxEntries: cfg.Prompts.MaxEntries,
		MaxLength:  cfg.Prompts.MaxLength,
	})
	if err != nil {
		return nil, err
	}
	if !reg.Has(cfg.Generation.Prompt) {
		return nil, fmt.Errorf("generation.prompt %q is not a registered prompt", cfg.Generation.Prompt)
	}

	var reloader *prompts.Reloader
	if cfg.Prompts.ReloadCron != "" {
		reloader, err = prompts.NewReloader(reg, cfg.Prompts.ReloadCron, nil)
		if err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	templates := generation.NewTemplateBackend(rng)
	backend := BuildBackend(ctx, cfg, reg, templates, m, logger)

	s := &Server{
		Echo:     newEcho(cfg.Server, m),
		Cache:    cache,
		Prompts:  reg,
		Metrics:  m,
		Backend:  backend,
		reloader: reloader,
		cfg:      cfg,
		logger:   logger,
	}
	s.routes(business.NewGenerator(rand.New(rand.NewSource(rng.Int63())), nil), templates)
	return s, nil
}

// BuildBackend selects the generation strategy. An external provider that cannot be
// constructed degrades the service to templates only.
func BuildBackend(ctx context.Context, cfg *config.Config, reg *prompts.Registry, templates *generation.TemplateBackend, m *metrics.Metrics, logger *log.Logger) generation.Backend {
	if cfg.Generation.Strategy == config.StrategyTemplate {
		logger.Printf("generation strategy: template")
		return templates
	}
	p, err := provider.New(ctx, cfg.LLM, cfg.Generation.Timeout)
	if err != nil {
		logger.Printf("WARN: provider %s unavailable, serving template headlines only: %v", cfg.LLM.Provider, err)
		return templates
	}
	logger.Printf("generation strategy: external (%s) with template fallback", p.Name())
	return &generation.FallbackChain{
		Primary: &generation.ExternalBackend{
			Provider:          p,
			Prompts:           reg,
			DefaultPrompt:     cfg.Generation.Prompt,
			Timeout:           cfg.Generation.Timeout,
			Temperature:       cfg.Generation.Temperature,
			MaxTokens:         cfg.Generation.MaxTokens,
			RequireExactCount: cfg.Generation.RequireExactCount,
			Debug:             cfg.General.Debug(),
			Metrics:           m,
		},
		Fallback: templates,
	}
}

func newEcho(sc config.ServerConfig, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		baseLogger.Printf("%d %s %s from %s [%s]: %v", code, req.Method, req.URL.Path, c.RealIP(), rid, err)
		if !c.Response().Committed {
			if req.Method == http.MethodHead {
				_ = c.NoContent(code)
				return
			}
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			baseLogger.Printf("%s %s %d %s rid=%s", v.Method, v.URIPath, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     sc.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "Cookie"},
		AllowCredentials: true,
	}))
	if m != nil {
		e.Use(metricsMiddleware(m))
	}
	return e
}

// metricsMiddleware counts requests by route template rather than raw path.
func metricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequest(c.Request().Method, route, status)
			return err
		}
	}
}

func (s *Server) routes(gen *business.Generator, templates *generation.TemplateBackend) {
	e := s.Echo
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	registerDocs(e)
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	api := e.Group("/api")
	admin := s.cfg.Admin
	var secret []byte
	if admin.Enabled() {
		secret = []byte(admin.JWTSecret)
	}
	ah := &AdminHandler{Secret: secret, PasswordHash: admin.PasswordHash, TokenTTL: admin.TokenTTL}
	ah.Register(api.Group("/admin"))

	api.GET("/cache/stats", s.cacheStats)

	biz := api.Group("/business")
	bh := &BusinessHandler{Generator: gen, Templates: templates}
	bh.Register(biz)
	hh := &HeadlinesHandler{
		Cache:         s.Cache,
		Backend:       s.Backend,
		Prompts:       s.Prompts,
		DefaultPrompt: s.cfg.Generation.Prompt,
		Count:         s.cfg.Generation.Count,
		Metrics:       s.Metrics,
	}
	hh.Register(biz)
	ph := &PromptsHandler{Registry: s.Prompts, Secret: secret, Logger: s.logger}
	ph.Register(biz)
}

// Cache stats
//
//	@Summary	Headline cache stats
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	CacheStatsResponse
//	@Router		/api/cache/stats [get]
func (s *Server) cacheStats(c echo.Context) error {
	n, err := s.Cache.Len(c.Request().Context())
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	return c.JSON(http.StatusOK, CacheStatsResponse{Backend: s.cfg.Cache.Backend, Entries: n})
}

// Start serves on addr (cfg.Server.Address when empty) until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.Server.Address
	}
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	if s.reloader != nil {
		s.reloader.Start()
		defer s.reloader.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Echo.Shutdown(shutdownCtx)
}

// Run builds the server from cfg and serves until ctx is done.
func Run(ctx context.Context, cfg *config.Config, addr string) error {
	s, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return s.Start(ctx, addr)
}
