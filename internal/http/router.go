package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/ledger-service/internal/http/middleware"
	"github.com/nurpe/ledger-service/internal/metrics"
)

type RouterConfig struct {
	Handler        *Handler
	AuthMiddleware gin.HandlerFunc
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Environment    string
	Log            zerolog.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	var extra []gin.HandlerFunc
	if cfg.RateLimiter != nil {
		extra = append(extra, cfg.RateLimiter.Handler())
	}
	cfg.Handler.Register(r, cfg.AuthMiddleware, extra...)
	return r
}
