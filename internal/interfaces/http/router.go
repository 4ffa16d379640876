// Package http wires the gin engine: middleware chain, routes, and the
// server lifecycle.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appservice "github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/internal/config"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/infrastructure/monitoring"
	"github.com/snowch/vast-sp-console/internal/interfaces/http/handlers"
	"github.com/snowch/vast-sp-console/internal/interfaces/http/middleware"
	"github.com/snowch/vast-sp-console/pkg/constants"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// Router owns the gin engine and the HTTP server lifecycle.
type Router struct {
	engine  *gin.Engine
	config  *config.Config
	logger  logger.Logger
	server  *http.Server
	metrics *monitoring.Metrics

	authService   appservice.AuthAppService
	schemaService appservice.SchemaAppService
	cluster       service.ClusterAuthService
	limiter       service.RateLimitService
}

// NewRouter creates a router with all routes and middleware registered.
func NewRouter(
	cfg *config.Config,
	log logger.Logger,
	metrics *monitoring.Metrics,
	authService appservice.AuthAppService,
	schemaService appservice.SchemaAppService,
	cluster service.ClusterAuthService,
	limiter service.RateLimitService,
) *Router {
	if cfg.Environment == constants.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:        gin.New(),
		config:        cfg,
		logger:        log,
		metrics:       metrics,
		authService:   authService,
		schemaService: schemaService,
		cluster:       cluster,
		limiter:       limiter,
	}
	r.setupRoutes()
	return r
}

// Engine exposes the underlying gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logging(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	if r.metrics != nil {
		r.engine.Use(middleware.Metrics(r.metrics))
	}

	corsConfig := cors.Config{
		AllowOrigins:     []string{r.config.Server.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if r.config.Environment != constants.EnvProduction {
		// Credentialed CORS cannot use a wildcard origin, so development
		// accepts any caller via the origin callback instead.
		corsConfig.AllowOrigins = nil
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	r.engine.Use(cors.New(corsConfig))

	healthHandler := handlers.NewHealthHandler(r.schemaService)
	authHandler := handlers.NewAuthHandler(r.authService)
	schemaHandler := handlers.NewSchemaHandler(r.schemaService)
	clusterHandler := handlers.NewClusterHandler(r.cluster)

	r.engine.GET("/health", healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if r.config.Environment != constants.EnvProduction {
		pprof.Register(r.engine)
	}

	api := r.engine.Group("/api")
	api.Use(middleware.RateLimit(r.limiter, r.metrics, r.logger))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/verify", authHandler.Verify)
			auth.GET("/me", middleware.SessionAuth(r.authService), authHandler.Me)
		}

		cluster := api.Group("/cluster")
		cluster.Use(middleware.SessionAuth(r.authService))
		{
			cluster.GET("/tenants", clusterHandler.Tenants)
			cluster.GET("/vippools", clusterHandler.VipPools)
		}

		database := api.Group("/database")
		database.Use(middleware.SessionAuth(r.authService))
		{
			database.GET("/connection", schemaHandler.ConnectionInfo)
			database.POST("/connection/test", schemaHandler.TestConnection)
			database.GET("/schemas", schemaHandler.ListSchemas)
			database.POST("/schemas", schemaHandler.CreateSchema)
			database.GET("/schemas/:name", schemaHandler.GetSchema)
			database.DELETE("/schemas/:name", schemaHandler.DeleteSchema)
			database.GET("/schemas/:name/tables", schemaHandler.ListTables)
			database.POST("/schemas/:name/tables", schemaHandler.CreateTable)
		}
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"kind": "NotFound", "message": "the requested resource was not found"},
		})
	})
}

// Start runs the HTTP server until it is shut down.
func (r *Router) Start() error {
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.logger.Info(context.Background(), "starting HTTP server", logger.String("address", addr))
	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.logger.Info(ctx, "stopping HTTP server")
	return r.server.Shutdown(ctx)
}
