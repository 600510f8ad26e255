package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daggergm/internal/config"
	"daggergm/internal/database"
	"daggergm/internal/generation"
	"daggergm/internal/handler"
	"daggergm/internal/interfaces"
	"daggergm/internal/logger"
	"daggergm/internal/messaging"
	"daggergm/internal/middleware"
	"daggergm/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting daggergm", zap.String("port", cfg.Port))

	if err := database.RunMigrations(cfg.GetDSN(), cfg.MigrationsPath, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.GetDSN(), cfg.DBMaxConns, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	var publisher interfaces.EventPublisher = messaging.NewNopPublisher()
	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		publisher, err = messaging.NewRabbitMQEventPublisher(conn, cfg.UpdatesQueueName, log)
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
	} else {
		log.Warn("RABBITMQ_URL not set, adventure updates disabled")
	}

	aiClient, err := generation.NewAIClient(generation.ClientConfig{
		ClientType: cfg.AIClientType,
		BaseURL:    cfg.AIBaseURL,
		APIKey:     cfg.AIAPIKey,
		Model:      cfg.AIModel,
		Timeout:    cfg.AITimeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create AI client", zap.Error(err))
	}

	adventureRepo := database.NewPgAdventureRepository(pool, log)
	creditRepo := database.NewPgCreditRepository(pool, log)
	generator := generation.NewGenerator(aiClient, log)

	adventureService := service.NewAdventureService(adventureRepo, creditRepo, generator, publisher, log)
	creditService := service.NewCreditService(creditRepo, log)
	adventureHandler := handler.NewAdventureHandler(adventureService, creditService, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ZapLoggingMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	prom := ginprometheus.NewPrometheus("gin")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret), log))
	adventureHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
