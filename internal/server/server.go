package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/api"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/metrics"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	log    logrus.FieldLogger
}

// Deps are the wired collaborators of the server. DB and Redis may be nil.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Services api.Services
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      logrus.FieldLogger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, deps Deps) *Server {
	router := gin.New()
	router.MaxMultipartMemory = service.MaxImageSize

	router.Use(
		middleware.RequestLogger(deps.Log, deps.Metrics),
		middleware.Recovery(deps.Log),
		middleware.CORS(cfg.CORSOrigins),
	)

	s := &Server{
		router: router,
		db:     deps.DB,
		redis:  deps.Redis,
		log:    deps.Log.WithField("component", "server"),
	}

	router.GET("/health", s.health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	api.SetupAPI(router, deps.Services, deps.Log)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if s.db != nil {
		if err := database.HealthCheck(ctx, s.db); err != nil {
			s.log.WithError(err).Warn("database health check failed")
			checks["database"] = "unavailable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// the rate limiter fails open, so redis is not fatal
			checks["redis"] = "unavailable"
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
