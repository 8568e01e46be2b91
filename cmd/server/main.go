package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netero03/GoalToTaskAI-server/internal/config"
	"github.com/Netero03/GoalToTaskAI-server/internal/database"
	"github.com/Netero03/GoalToTaskAI-server/internal/handlers"
	"github.com/Netero03/GoalToTaskAI-server/internal/logging"
	"github.com/Netero03/GoalToTaskAI-server/internal/middleware"
	"github.com/Netero03/GoalToTaskAI-server/internal/services"
	"github.com/Netero03/GoalToTaskAI-server/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting GoalToTaskAI Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// Initialize MongoDB. Constructed once here, injected into the stores,
	// closed on shutdown.
	if cfg.MongoURI == "" {
		log.Fatal("❌ MONGODB_URI environment variable is required")
	}
	mongoDB, err := database.NewMongoDB(cfg.MongoURI, cfg.TransactionTimeout)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close(context.Background())

	if err := mongoDB.Initialize(context.Background()); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Initialize Redis (optional - generation result cache)
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (generation cache disabled)", err)
			redisService = nil
		} else {
			defer redisService.Close()
		}
	} else {
		log.Println("⚠️ REDIS_URL not set - generation cache disabled")
	}

	// Initialize auth
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET environment variable is required")
	}
	tokenAuth, err := auth.NewTokenAuth(cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("❌ Failed to initialize token auth: %v", err)
	}

	// Initialize services
	metrics := services.InitMetrics()
	userService := services.NewUserService(mongoDB)
	projectStore := services.NewProjectStore(mongoDB)
	taskStore := services.NewTaskStore(mongoDB, projectStore)
	aggregateService := services.NewAggregateService(mongoDB, projectStore, taskStore, metrics)

	var plannerService *services.PlannerService
	if cfg.GeminiAPIKey != "" {
		plannerService = services.NewPlannerService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, redisService, metrics)
		log.Printf("✅ Planner service initialized (model: %s)", cfg.GeminiModel)
	} else {
		log.Println("⚠️ GEMINI_API_KEY not set - goal generation disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(tokenAuth, userService)
	projectHandler := handlers.NewProjectHandler(projectStore, taskStore, aggregateService)
	taskHandler := handlers.NewTaskHandler(taskStore, aggregateService)
	healthHandler := handlers.NewHealthHandler(mongoDB)

	// Setup Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "goaltask-api",
		BodyLimit:    1 << 20, // 1MB
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		AllowHeaders: "Content-Type, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Prometheus metrics
	prometheus := fiberprometheus.New("goaltask")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Rate limiting
	rateLimits := middleware.LoadRateLimitConfig()
	app.Use("/api", middleware.GlobalRateLimiter(rateLimits))

	// Health endpoints
	app.Get("/health", healthHandler.Live)
	app.Get("/health/ready", healthHandler.Ready)

	// Auth routes
	api := app.Group("/api")
	authGroup := api.Group("/auth", middleware.AuthRateLimiter(rateLimits))
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Authenticated routes
	authed := api.Group("", middleware.RequireAuth(tokenAuth, userService))
	authed.Get("/me", authHandler.Me)

	projects := authed.Group("/projects")
	projects.Post("/", projectHandler.Create)
	projects.Post("/from-ai", projectHandler.CreateWithTasks)
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.Get)
	projects.Put("/:id", projectHandler.Update)
	projects.Delete("/:id", projectHandler.Delete)

	tasks := authed.Group("/tasks")
	tasks.Put("/reorder", taskHandler.Reorder)
	tasks.Post("/", taskHandler.Create)
	tasks.Get("/:id", taskHandler.Get)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Delete("/:id", taskHandler.Delete)

	if plannerService != nil {
		goalHandler := handlers.NewGoalHandler(plannerService)
		authed.Post("/goals/generate", middleware.GenerateRateLimiter(rateLimits), goalHandler.Generate)
	}

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()
	log.Printf("✅ Server listening on port %s", cfg.Port)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️ Server shutdown error: %v", err)
	}
	log.Println("👋 Server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
