package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"dialect-runner-server/handlers"
	"dialect-runner-server/middleware"
	"dialect-runner-server/services"

	_ "dialect-runner-server/docs"
)

// @title Machine Dialect Runner API
// @version 1.0
// @description API for executing Machine Dialect code
// @host localhost:8080
// @BasePath /
func main() {
	// Config
	serverPort := getEnv("SERVER_PORT", "8080")

	// Runtime Config
	runtimeType := getEnv("RUNTIME_TYPE", "cli")
	runtimeCommand := getEnv("RUNTIME_COMMAND", "machine-dialect")
	runtimeURL := getEnv("RUNTIME_URL", "http://localhost:8100")
	executionTimeout, _ := strconv.Atoi(getEnv("EXECUTION_TIMEOUT", "30"))
	maxSourceBytes, _ := strconv.Atoi(getEnv("MAX_SOURCE_BYTES", "65536"))
	maxConcurrent, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_EXECUTIONS", "0"))

	// Cache Config
	cacheEnabled := getEnv("CACHE_ENABLED", "false") == "true"
	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))

	// Initialize runtime adapter
	runtimeTarget := runtimeCommand
	if runtimeType == "http" {
		runtimeTarget = runtimeURL
	}
	runtime, err := services.NewRuntime(runtimeType, runtimeTarget)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	log.Printf("Runtime initialized: %s (%s)", runtimeType, runtimeTarget)

	// Initialize services
	runnerService := services.NewRunnerService(runtime, time.Duration(executionTimeout)*time.Second, maxConcurrent)

	var cacheService services.OutcomeCache
	if cacheEnabled {
		cache := services.NewCacheService(redisHost, redisPort, time.Duration(cacheTTL)*time.Minute)
		if err := cache.Ping(context.Background()); err != nil {
			log.Printf("Redis ping failed, cache degraded: %v", err)
		} else {
			log.Printf("Outcome cache enabled: redis %s:%d", redisHost, redisPort)
		}
		cacheService = cache
	}

	executeService := services.NewExecuteService(runnerService, cacheService, maxSourceBytes)

	// Initialize handlers
	executeHandler := handlers.NewExecuteHandler(executeService)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName: "Dialect Runner",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	if getEnv("XRAY_ENABLED", "false") == "true" {
		app.Use(middleware.XRayMiddleware())
	}

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Routes
	app.Get("/", executeHandler.Root)
	app.Get("/health", executeHandler.Health)
	app.Post("/execute", executeHandler.Execute)

	log.Printf("Dialect Runner starting on port %s", serverPort)
	log.Printf("Execution budget: %ds, max source: %d bytes", executionTimeout, maxSourceBytes)
	log.Fatal(app.Listen(":" + serverPort))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
