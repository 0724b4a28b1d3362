package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"learning-path-service/internal/cache"
	"learning-path-service/internal/config"
	"learning-path-service/internal/db"
	"learning-path-service/internal/event"
	"learning-path-service/internal/genai"
	"learning-path-service/internal/handlers"
	"learning-path-service/internal/repository"
	"learning-path-service/internal/service"
	"learning-path-service/pkg/discovery"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	db.InitMongo(cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	database := db.Client.Database(cfg.MongoDB.Database)

	// RabbitMQ event publisher (fire-and-forget notifications)
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, notifications will not be published")
	}

	// Redis path cache (best effort)
	var pathCache *cache.PathCache
	if cfg.Redis.Address != "" {
		var err error
		pathCache, err = cache.New(context.Background(), cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PathTTL)
		if err != nil {
			log.Printf("Redis not reachable, path caching disabled: %v", err)
		} else {
			defer pathCache.Close()
		}
	}

	// Question generation collaborator, with the deterministic fallback
	// when no API key is configured.
	var remote genai.Generator
	if cfg.OpenAI.APIKey != "" {
		gen, err := genai.NewOpenAIGenerator(genai.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			log.Fatalf("Failed to init question generator: %v", err)
		}
		remote = gen
	} else {
		log.Println("OPENAI_API_KEY not set, using local fallback generation")
	}
	questions := genai.NewService(remote, cfg.OpenAI.Timeout)

	// Repositories
	sessionRepo := repository.NewSessionRepository(database)
	pathRepo := repository.NewPathRepository(database)
	batchRepo := repository.NewBatchRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	rewardRepo := repository.NewRewardRepository(database)

	// Services
	pathService := service.NewPathService(pathRepo, sessionRepo, batchRepo, pathCache)
	sessionService := service.NewSessionService(sessionRepo, pathService)
	batchService := service.NewBatchService(batchRepo, pathService, questions)
	submissionService := service.NewSubmissionService(batchRepo, attemptRepo, rewardRepo, pathService, questions, publisher)
	rewardService := service.NewRewardService(rewardRepo)

	// Handlers
	pathHandler := handlers.NewPathHandler(pathService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	batchHandler := handlers.NewBatchHandler(batchService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	rewardHandler := handlers.NewRewardHandler(rewardService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://evolvia.phrimp.io.vn"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupPublicRoutes(r, pathHandler, publisher)
	setupProtectedRoutes(r, pathHandler, sessionHandler, batchHandler, submissionHandler, rewardHandler, publisher)

	// Consul registration
	if cfg.Consul.Enabled {
		registry, err := discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Fatalf("Service discovery init failed: %v", err)
		}
		if err := registry.Register(); err != nil {
			log.Fatalf("Service registration failed: %v", err)
		}
		defer registry.Deregister()
	} else {
		log.Println("Consul not configured, skipping service registration")
	}

	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("learning-path-service listening on %s", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func setupPublicRoutes(r *gin.Engine, pathHandler *handlers.PathHandler, publisher *event.EventPublisher) {
	publicPath := r.Group("/public/learning/path")
	{
		publicPath.GET("/:studentId/:subject", func(c *gin.Context) {
			pathHandler.GetPublicPath(c)
			if publisher != nil {
				publisher.Publish("learning.path.public_view", gin.H{
					"student_id": c.Param("studentId"),
					"subject":    c.Param("subject"),
				})
			}
		})
	}
}

func setupProtectedRoutes(
	r *gin.Engine,
	pathHandler *handlers.PathHandler,
	sessionHandler *handlers.SessionHandler,
	batchHandler *handlers.BatchHandler,
	submissionHandler *handlers.SubmissionHandler,
	rewardHandler *handlers.RewardHandler,
	publisher *event.EventPublisher,
) {
	protected := r.Group("/protected/learning")

	// Auth middleware: the gateway authenticates and forwards the identity.
	protected.Use(func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	})

	{
		protected.GET("/path/:subject", func(c *gin.Context) {
			pathHandler.GetPath(c)
			if publisher != nil {
				publisher.Publish("learning.path.viewed", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
					"subject": c.Param("subject"),
				})
			}
		})

		protected.POST("/session", func(c *gin.Context) {
			sessionHandler.RecordSession(c)
			if publisher != nil {
				publisher.Publish("learning.session.recorded", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
				})
			}
		})

		protected.POST("/batch", func(c *gin.Context) {
			batchHandler.StartBatch(c)
			if publisher != nil {
				publisher.Publish("learning.batch.started", gin.H{
					"user_id": c.GetHeader("X-User-ID"),
				})
			}
		})

		protected.GET("/batch/:id", batchHandler.GetBatch)

		protected.POST("/batch/:id/answer", func(c *gin.Context) {
			submissionHandler.SubmitAnswer(c)
			if publisher != nil {
				publisher.Publish("learning.answer.submitted", gin.H{
					"batch_id": c.Param("id"),
					"user_id":  c.GetHeader("X-User-ID"),
				})
			}
		})

		protected.POST("/batch/:id/skip", func(c *gin.Context) {
			batchHandler.SkipBatch(c)
			if publisher != nil {
				publisher.Publish("learning.batch.skipped", gin.H{
					"batch_id": c.Param("id"),
					"user_id":  c.GetHeader("X-User-ID"),
				})
			}
		})

		protected.GET("/reward", rewardHandler.GetRewardState)
	}
}
