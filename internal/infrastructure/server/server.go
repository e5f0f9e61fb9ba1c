package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/placechat/internal/api/http"
	"github.com/GriffinCanCode/placechat/internal/api/middleware"
	"github.com/GriffinCanCode/placechat/internal/api/ws"
	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/domain/intent"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/config"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/placechat/internal/providers/llm"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  *zap.Logger
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
}

// NewServer wires providers, domain services and routes from cfg
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Initializing placechat server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("llm_url", cfg.LLM.BaseURL),
		zap.String("llm_model", cfg.LLM.Model),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("placechat", logger)

	prompts, err := intent.LoadPromptPack(cfg.LLM.PromptsFile)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to load prompt pack: %w", err)
	}

	llmClient := llm.New(cfg.LLM, logger, metrics)
	gateway := maps.New(cfg.Maps, logger, metrics)
	if !gateway.Configured() {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set; place lookups will report as unavailable")
	}

	extractor, err := intent.NewExtractor(llmClient, cfg.LLM, prompts, logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to create intent extractor: %w", err)
	}

	orchestrator := chat.New(chat.Deps{
		Intents:  extractor,
		Places:   gateway,
		Narrator: llmClient,
		Prompts:  prompts,
		Tracer:   tracer,
		Logger:   logger,
		Metrics:  metrics,
	}, chat.OptionsFromConfig(cfg))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.CORS)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Chat:     orchestrator,
		Maps:     gateway,
		Model:    llmClient.Model(),
		Breakers: []*resilience.Breaker{gateway.Breaker(), llmClient.Breaker()},
		Logger:   logger,
		Metrics:  metrics,
	})
	handlers.Register(router, middleware.Gzip(gzip.DefaultCompression))

	wsHandler := ws.NewHandler(orchestrator, cfg.CORS.AllowedOrigins, logger, metrics)
	router.GET("/api/chat/ws", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		config:  cfg,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close releases background resources
func (s *Server) Close() error {
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}
