package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/lookupdesk/backend/internal/application/identity"
	lookupapp "github.com/lookupdesk/backend/internal/application/lookup"
	"github.com/lookupdesk/backend/internal/infrastructure/auth"
	"github.com/lookupdesk/backend/internal/infrastructure/config"
	"github.com/lookupdesk/backend/internal/infrastructure/event"
	"github.com/lookupdesk/backend/internal/infrastructure/logger"
	"github.com/lookupdesk/backend/internal/infrastructure/persistence"
	"github.com/lookupdesk/backend/internal/infrastructure/realtime"
	"github.com/lookupdesk/backend/internal/interfaces/http/handler"
	"github.com/lookupdesk/backend/internal/interfaces/http/middleware"
	"github.com/lookupdesk/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting lookup backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Token blacklist: Redis when reachable, in-memory otherwise. A
	// restart with the in-memory fallback forgets revoked tokens, so
	// Redis should be available in production.
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected", zap.String("addr", cfg.Redis.Addr()))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	hub := realtime.NewHub(cfg.Realtime, jwtService, log)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	requestRepo := persistence.NewGormServiceRequestRepository(db.DB)
	ledgerRepo := persistence.NewGormDeliveredDataRepository(db.DB)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, bus, log)
	requestService := lookupapp.NewServiceRequestService(requestRepo, ledgerRepo, bus, log)
	deliveryService := lookupapp.NewDeliveryService(requestRepo, ledgerRepo, userRepo, bus, log)

	// Push request lifecycle events to connected clients
	notifier := lookupapp.NewNotifier(hub, log)
	bus.Subscribe(notifier, notifier.EventTypes()...)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	requestHandler := handler.NewServiceRequestHandler(requestService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	realtimeHandler := handler.NewRealtimeHandler(hub)
	systemHandler := handler.NewSystemHandler(cfg.App.Name)

	middleware.SetupValidator()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/lookup/prices",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		// The websocket hub authenticates in-band with a first-frame
		// token, so the handshake itself is unauthenticated.
		SkipPathPrefixes: []string{"/ws"},
		Logger:           log,
	}))

	engine.GET("/health", healthHandler(db))
	engine.GET("/ws", realtimeHandler.Serve)

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)

	lookupRoutes := router.NewDomainGroup("lookup", "/lookup")
	lookupRoutes.GET("/prices", requestHandler.Prices)
	lookupRoutes.POST("/requests", requestHandler.Submit)
	lookupRoutes.GET("/requests", requestHandler.ListMine)
	lookupRoutes.GET("/requests/:id", requestHandler.GetByID)
	lookupRoutes.GET("/requests/:id/deliveries", deliveryHandler.ListByRequest)

	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireModerator())
	adminRoutes.GET("/requests", requestHandler.ListAll)
	adminRoutes.GET("/stats", requestHandler.Stats)
	adminRoutes.GET("/requests/:id", requestHandler.GetByID)
	adminRoutes.PATCH("/requests/:id/status", requestHandler.SetStatus)
	adminRoutes.DELETE("/requests/:id", requestHandler.Delete)
	adminRoutes.POST("/requests/:id/deliveries", deliveryHandler.Deliver)
	adminRoutes.GET("/requests/:id/deliveries", deliveryHandler.ListByRequest)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(authRoutes).
		Register(lookupRoutes).
		Register(adminRoutes).
		Register(systemRoutes).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := bus.Stop(ctx); err != nil {
		log.Error("Event bus shutdown error", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
