package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maayanhealth/clinic-api/internal/handler"
	"github.com/maayanhealth/clinic-api/internal/handler/prometheus"
	"github.com/maayanhealth/clinic-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	JWTSecret         string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	RateBurst         int
	CORS              middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
}

// NewRouter wires the middleware chain and mounts every handler under
// /api/v1 behind authentication. Health and metrics stay public.
func NewRouter(cfg Config, health *handler.HealthHandler, metrics *prometheus.Handler, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidations()
	engine := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RequestsPerSecond, cfg.RateBurst)

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.CORS(cfg.CORS),
		limiter.RateLimit(),
		middleware.Timeout(cfg.RequestTimeout),
	)

	health.RegisterRoutes(engine)
	engine.GET("/metrics", metrics.Handler())

	api := engine.Group("/api/v1")
	api.Use(middleware.Authenticate(cfg.JWTSecret))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
