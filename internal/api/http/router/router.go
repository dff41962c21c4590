package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/vision-analyzer/internal/api/http/handler"
	"github.com/dtroode/vision-analyzer/internal/api/http/middleware"
	"github.com/dtroode/vision-analyzer/internal/logger"
	"github.com/dtroode/vision-analyzer/internal/metrics"
	"github.com/dtroode/vision-analyzer/internal/model"
)

// Burst limits applied to the analyze route.
type Burst struct {
	PerSecond float64
	Size      int
}

// Router represents the client-facing HTTP router.
type Router struct {
	usageService   handler.UsageService
	analyzer       handler.Analyzer
	verifier       model.IdentityVerifier
	contextManager model.ContextManager
	burst          Burst
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	usageService handler.UsageService,
	analyzer handler.Analyzer,
	verifier model.IdentityVerifier,
	contextManager model.ContextManager,
	burst Burst,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Router {
	return &Router{
		usageService:   usageService,
		analyzer:       analyzer,
		verifier:       verifier,
		contextManager: contextManager,
		burst:          burst,
		metrics:        metrics,
		logger:         logger,
	}
}

// Register builds the gin engine with all routes and middleware.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger, r.metrics)
	authenticate := middleware.NewAuthenticate(r.verifier, r.contextManager, r.logger)
	rateLimit := middleware.NewRateLimit(r.burst.PerSecond, r.burst.Size, r.contextManager)

	engine := gin.New()
	engine.Use(gin.Recovery(), logging.Handle)

	engine.GET("/", handler.Health)
	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := engine.Group("/api", authenticate.Handle)
	r.registerUsageRoutes(api)
	r.registerAnalyzeRoutes(api, rateLimit)

	return engine
}

func (r *Router) registerUsageRoutes(group *gin.RouterGroup) {
	usageHandler := handler.NewUsage(r.usageService, r.contextManager, r.logger)
	group.GET("/usage", usageHandler.Get)
}

func (r *Router) registerAnalyzeRoutes(group *gin.RouterGroup, rateLimit *middleware.RateLimit) {
	analyzeHandler := handler.NewAnalyze(r.analyzer, r.contextManager, r.logger)
	group.POST("/analyze", rateLimit.Handle, analyzeHandler.Post)
}
