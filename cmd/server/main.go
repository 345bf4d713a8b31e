package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appbilling "github.com/propertyhub/backend/internal/application/billing"
	appleasing "github.com/propertyhub/backend/internal/application/leasing"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/cache"
	"github.com/propertyhub/backend/internal/infrastructure/config"
	"github.com/propertyhub/backend/internal/infrastructure/logger"
	"github.com/propertyhub/backend/internal/infrastructure/persistence"
	"github.com/propertyhub/backend/internal/infrastructure/scheduler"
	"github.com/propertyhub/backend/internal/interfaces/http/handler"
	"github.com/propertyhub/backend/internal/interfaces/http/middleware"
	"github.com/propertyhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting PropertyHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Run lock for batch jobs. Redis gives cross-instance exclusion; a
	// single-instance deployment without Redis falls back to the in-process
	// lock.
	var runLock billing.RunLock
	redisLock, err := cache.NewRedisRunLock(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-process run lock", zap.Error(err))
		runLock = cache.NewInMemoryRunLock()
	} else {
		runLock = redisLock
		defer func() {
			if err := redisLock.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Billing dates are computed in the configured property timezone
	billingLoc := cfg.Billing.Location()
	clock := shared.NewSystemClock(billingLoc)

	// Initialize repositories
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	tenancyRepo := persistence.NewGormTenancyRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB, billingLoc)
	cycleRepo := persistence.NewGormRentCycleRepository(db.DB)
	runRepo := persistence.NewGormJobRunRepository(db.DB)
	txScope := persistence.NewGormBillingTransactionScope(db, billingLoc)

	// Initialize application services
	tenancyService := appleasing.NewTenancyService(tenancyRepo, unitRepo, runRepo, clock, log)
	occupancyService := appleasing.NewOccupancyService(unitRepo, clock, log, appleasing.OccupancyServiceConfig{
		UpcomingHorizonDays: cfg.Billing.UpcomingHorizonDays,
	})
	rentCycleService := appbilling.NewRentCycleService(
		tenancyRepo, cycleRepo, paymentRepo, runRepo, txScope, runLock, clock, log,
		appbilling.RentCycleServiceConfig{
			DueDay:   cfg.Billing.DueDay,
			Location: billingLoc,
			LockTTL:  cfg.Billing.LockTTL,
		},
	)
	paymentService := appbilling.NewPaymentService(paymentRepo, cycleRepo, runRepo, runLock, clock, billingLoc, log)
	agingService := appbilling.NewAgingService(paymentRepo, clock, billingLoc, log)

	// Initialize billing scheduler (if enabled)
	billingScheduler := scheduler.NewBillingScheduler(
		rentCycleService, paymentService, tenancyService, log,
		scheduler.BillingSchedulerConfig{
			Enabled:        cfg.Scheduler.Enabled,
			GenerationDay:  cfg.Scheduler.GenerationDay,
			GenerationHour: cfg.Scheduler.GenerationHour,
			SweepHour:      cfg.Scheduler.SweepHour,
			JobTimeout:     cfg.Scheduler.JobTimeout,
		},
	)
	if cfg.Scheduler.Enabled {
		if err := billingScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("generation_day", cfg.Scheduler.GenerationDay),
			zap.Int("generation_hour", cfg.Scheduler.GenerationHour),
			zap.Int("sweep_hour", cfg.Scheduler.SweepHour),
		)
	}

	// Initialize HTTP handlers
	tenancyHandler := handler.NewTenancyHandler(tenancyService)
	occupancyHandler := handler.NewOccupancyHandler(occupancyService)
	billingHandler := handler.NewBillingHandler(rentCycleService, paymentService, agingService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router with custom middleware
	engine := gin.New()
	middleware.SetupValidator()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Configure CORS from config
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(tenancyHandler).
		Register(occupancyHandler).
		Register(billingHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
