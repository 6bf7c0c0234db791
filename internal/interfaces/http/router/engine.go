package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/infrastructure/cache"
	"github.com/erp/stockledger/internal/infrastructure/logger"
	"github.com/erp/stockledger/internal/interfaces/http/dto"
	"github.com/erp/stockledger/internal/interfaces/http/handler"
	"github.com/erp/stockledger/internal/interfaces/http/middleware"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is a multi-line order.
const maxBodyBytes = 1 << 20

// EngineConfig carries what the HTTP engine needs besides the handlers
type EngineConfig struct {
	ServiceName    string
	CORSOrigins    []string
	TracingEnabled bool
	Meter          metric.Meter
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	Health         *handler.HealthHandler
	Logger         *zap.Logger
}

// NewEngine builds the gin engine with the middleware chain and every route
func NewEngine(cfg EngineConfig, handlers Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanAttributes(),
		logger.GinMiddleware(cfg.Logger),
		middleware.HTTPMetrics(cfg.Meter),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Secure(),
		middleware.BodyLimit(maxBodyBytes),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if cfg.Health != nil {
		engine.GET("/health", cfg.Health.Health)
	}

	r := NewRouter(engine)
	for _, group := range handlers.Groups() {
		if cfg.Idempotency != nil {
			group.Use(middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, cfg.Logger))
		}
		r.Register(group)
	}
	r.Setup()
	return engine
}
