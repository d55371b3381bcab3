package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/DocStudio/backend/internal/api/http"
	"github.com/GriffinCanCode/DocStudio/backend/internal/api/middleware"
	"github.com/GriffinCanCode/DocStudio/backend/internal/api/ws"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/app"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/assistant"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/session"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/studio"
	"github.com/GriffinCanCode/DocStudio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/DocStudio/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/ai"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/settings"
	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/web"
	"github.com/GriffinCanCode/DocStudio/backend/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	webTimeout      = 15 * time.Second
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	studio     *studio.Controller
	documents  *app.Manager
	watcher    *filesystem.Watcher
	sessions   *session.Manager
	hub        *ws.Hub
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer builds every component and registers the routes
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing DocStudio host",
		zap.String("addr", cfg.Address()),
		zap.String("storage", cfg.Storage.Root),
		zap.String("documents", cfg.Storage.DocumentsRoot),
	)

	// Metrics first, every other component reports into them
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	// Preferences seed the editor defaults and, once saved, the auto-save policy
	prefsStore := settings.NewStore(cfg.Storage.SettingsFile, logger.Named("settings"))
	prefs, err := prefsStore.Load()
	if err != nil {
		logger.Warn("Failed to load preferences, using defaults", zap.Error(err))
	}

	space := workspace.NewSession().WithObserver(metrics)
	if err := space.SetAutoSave(cfg.AutoSave.Enabled, cfg.AutoSave.Interval); err != nil {
		logger.Warn("Ignoring auto-save config", zap.Error(err))
	}
	if _, err := os.Stat(prefsStore.Path()); err == nil {
		applyAutoSave(space, prefs, logger.Logger)
	}
	st := studio.NewController(space, prefs.ToolConfig(), logger.Named("studio")).WithObserver(metrics)

	files := filesystem.NewStore(cfg.Storage.DocumentsRoot, logger.Named("files"))
	watcher, err := filesystem.NewWatcher(logger.Named("watcher"))
	if err != nil {
		return nil, err
	}

	// Outbound HTTP for AI providers and web metadata
	aiOpts := client.DefaultOptions("ai")
	aiOpts.Timeout = cfg.AI.Timeout
	aiOpts.RPS = cfg.AI.RPS
	aiOpts.OnStateChange = breakerLogger(logger.Logger)
	aiClient := client.New(aiOpts, logger.Named("ai-http"))

	webOpts := client.DefaultOptions("web")
	webOpts.Timeout = webTimeout
	webOpts.OnStateChange = breakerLogger(logger.Logger)
	fetcher := web.NewFetcher(client.New(webOpts, logger.Named("web-http")), logger.Named("web"))

	completer, configured := ai.Select(aiConfig(cfg.AI), aiClient)
	asst := ai.NewAssistant(completer, logger.Named("ai")).WithObserver(metrics)
	if configured {
		name, model := asst.Provider()
		logger.Info("AI provider configured", zap.String("provider", name), zap.String("model", model))
	} else {
		logger.Info("No usable AI credentials, using simulated responses",
			zap.String("provider", cfg.AI.Provider))
	}

	// Service registry
	registry := service.NewRegistry()
	providers := []service.Provider{
		filesystem.NewService(files),
		ai.NewService(asst),
		web.NewService(fetcher),
		settings.NewProvider(prefsStore, func(p settings.Preferences) {
			st.SetDefaults(p.ToolConfig())
			applyAutoSave(space, p, logger.Logger)
		}),
	}
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("register %s: %w", p.Definition().ID, err)
		}
	}

	sessions, err := session.NewManager(filepath.Join(cfg.Storage.Root, "sessions"), logger.Named("sessions"))
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub(logger.Named("ws")).WithMetrics(metrics)
	sequencer := assistant.NewSequencer().OnStale(func(channel string) {
		metrics.IncStaleDrops(ws.BaseChannel(channel))
	})
	conversation := assistant.NewConversation()

	documents := app.NewManager(st, files, logger.Named("documents")).
		WithWatcher(watcher).
		WithNotifier(hub).
		WithMetrics(metrics)

	// Router
	if !cfg.Server.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		rl := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(rl))
		} else {
			router.Use(middleware.RateLimit(rl))
		}
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Studio:       st,
		Documents:    documents,
		Files:        files,
		Registry:     registry,
		Sessions:     sessions,
		Assistant:    asst,
		Conversation: conversation,
		Sequencer:    sequencer,
		Fetcher:      fetcher,
		Metrics:      metrics,
		Config:       cfg,
		Logger:       logger.Named("api"),
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(hub, asst, sequencer, conversation, logger.Named("ws"))
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	logger.Info("Server initialized successfully",
		zap.Int("services", len(registry.List(nil))),
		zap.Int("commands", len(st.Commands())),
	)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		studio:    st,
		documents: documents,
		watcher:   watcher,
		sessions:  sessions,
		hub:       hub,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and runs the watcher and auto-save loops until ctx is
// cancelled or the listener fails. Pending auto-saves are flushed on the
// way out.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.documents.ForwardChanges(ctx, s.watcher.Changes())
	}()
	go func() {
		defer wg.Done()
		s.documents.RunAutoSave(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("http server: %w", err)
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	s.hub.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown: %w", err)
	}
	cancel()
	wg.Wait()

	if n := s.documents.AutoSave(shutdownCtx); n > 0 {
		s.logger.Info("Flushed pending saves", zap.Int("tabs", n))
	}
	return runErr
}

// Close releases resources that outlive Run
func (s *Server) Close() error {
	s.sessions.Close()
	_ = s.logger.Sync()
	return nil
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	lc := logging.DefaultConfig()
	if cfg.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	if cfg.File != "" {
		lc.File = &logging.FileConfig{Path: cfg.File, Compress: true}
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func aiConfig(c config.AIConfig) ai.Config {
	return ai.Config{
		Provider:     c.Provider,
		Model:        c.Model,
		Temperature:  c.Temperature,
		OpenAIKey:    c.OpenAIKey,
		AnthropicKey: c.AnthropicKey,
		GoogleKey:    c.GoogleKey,
		OllamaURL:    c.OllamaURL,
		Timeout:      c.Timeout,
		RPS:          c.RPS,
	}
}

func applyAutoSave(space *workspace.Session, p settings.Preferences, logger *zap.Logger) {
	if err := space.SetAutoSave(p.AutoSaveEnabled, p.AutoSaveInterval); err != nil {
		logger.Warn("Ignoring auto-save preference", zap.Error(err))
	}
}

func breakerLogger(logger *zap.Logger) func(name string, from, to resilience.State) {
	return func(name string, from, to resilience.State) {
		logger.Warn("Circuit breaker state changed",
			zap.String("client", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
}
