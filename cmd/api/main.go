// @title Practice Engine API
// @version 1.0
// @description Practice sessions over exam-prep question pools.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to attribute attempts to a user.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "practice-engine/cmd/api/docs"
	"practice-engine/internal/adapter"
	"practice-engine/internal/cache"
	"practice-engine/internal/config"
	"practice-engine/internal/database"
	"practice-engine/internal/domain"
	"practice-engine/internal/handler"
	"practice-engine/internal/logger"
	"practice-engine/internal/middleware"
	"practice-engine/internal/practice"
	"practice-engine/internal/repository"
	"practice-engine/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXDB(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	questionRepository := repository.NewQuestionDatabaseAdapter(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// The pool cache is optional; without Redis every session start reads the content store.
	var poolCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, pool cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			poolCache = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("RedisCacheAdapter initialized", zap.String("address", cfg.Redis.Address))
		}
	}

	writePolicy, err := service.ParseWritePolicy(cfg.Practice.WritePolicy)
	if err != nil {
		appLogger.Fatal("Invalid practice configuration", zap.Error(err))
	}

	poolLoader := service.NewPoolLoader(questionRepository, txManager, poolCache, cfg.Practice.PoolCacheTTL)
	attemptWriter := service.NewAttemptWriter(attemptRepository, writePolicy, cfg.Practice.AttemptWriteTimeout, cfg.Practice.MaxInflightWrites)
	practiceService := service.NewPracticeService(poolLoader, attemptRepository, attemptWriter, service.PracticeSettings{
		Policy: practice.MasteryPolicy{
			MinAttempts: cfg.Practice.MasteryMinAttempts,
			MinAccuracy: cfg.Practice.MasteryMinAccuracy,
		},
		IdleTimeout: cfg.Practice.SessionIdleTimeout,
		RNGSeed:     cfg.Practice.RNGSeed,
	})
	identityService := service.NewIdentityService(cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		appLogger.Warn("auth.jwt_secret is empty, all sessions are anonymous")
	}
	appLogger.Info("Practice services initialized",
		zap.String("write_policy", string(attemptWriter.Policy())),
		zap.Int("mastery_min_attempts", cfg.Practice.MasteryMinAttempts),
		zap.Int("mastery_min_accuracy", cfg.Practice.MasteryMinAccuracy),
	)

	practiceHandler := handler.NewPracticeHandler(practiceService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":          "ok",
			"active_sessions": practiceService.ActiveSessions(),
			"attempt_writes":  attemptWriter.Stats(),
			"write_policy":    attemptWriter.Policy(),
		}
		if err := db.PingContext(c.UserContext()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		if poolCache != nil {
			if err := poolCache.Ping(c.UserContext()); err != nil {
				status["cache"] = err.Error()
			}
		}
		return c.JSON(status)
	})

	apiGroup := app.Group("/api")
	practiceHandler.RegisterRoutes(apiGroup, middleware.OptionalIdentity(identityService))

	tickerCtx, stopTicker := context.WithCancel(context.Background())
	defer stopTicker()
	go service.NewSessionTicker(practiceService, cfg.Practice.TickInterval).Run(tickerCtx)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopTicker()
	if err := attemptWriter.Drain(ctx); err != nil {
		appLogger.Warn("Pending attempt writes abandoned", zap.Error(err), zap.Any("stats", attemptWriter.Stats()))
	}
	appLogger.Info("Server exited gracefully")
}
