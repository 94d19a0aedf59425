package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/blogforge/api/internal/client"
	"github.com/blogforge/api/internal/config"
	"github.com/blogforge/api/internal/handler"
	"github.com/blogforge/api/internal/provider"
	"github.com/blogforge/api/internal/service"
	"github.com/blogforge/api/internal/storage"
	"github.com/blogforge/api/internal/store"
	"github.com/blogforge/api/internal/worker"
	ws "github.com/blogforge/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// External collaborators
	openaiClient := client.NewOpenAIClient(&cfg.OpenAI)
	archive := storage.NewLocalStore(cfg.Output.Dir)
	blogProvider := provider.New(openaiClient, archive)

	// Job store and runner
	jobStore := store.New()
	generator := worker.NewGenerator(jobStore, blogProvider, hub, nil)

	// Services and handlers
	blogService := service.NewBlogService(jobStore, generator, openaiClient.IsConfigured())
	blogHandler := handler.NewBlogHandler(blogService, validate)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai":  openaiClient.IsConfigured(),
				"storage": true,
			},
		})
	})

	// API routes
	api := app.Group("/api")

	blog := api.Group("/blog")
	blog.Post("/generate", blogHandler.Generate)
	blog.Get("/status/:jobId", blogHandler.Status)
	blog.Get("/result/:jobId", blogHandler.Result)
	blog.Delete("/:jobId", blogHandler.Cancel)
	blog.Get("/jobs", blogHandler.List)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (openai configured: %v)", addr, openaiClient.IsConfigured())
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
