package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/local/traingen/api/config"
	"github.com/local/traingen/api/db"
	"github.com/local/traingen/api/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ensure storage directories exist
	for _, dir := range []string{cfg.TempDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create storage directory")
		}
	}

	// Initialize database
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	log.Info().Str("db_path", cfg.DBPath).Msg("Database initialized")

	// Create Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize handlers
	h := handlers.New(database, cfg)

	// Health check
	router.GET("/api/health", h.Health)

	// Serve exported training packages
	router.Static("/packages", cfg.OutputDir)

	// API routes
	api := router.Group("/api")
	{
		api.POST("/upload", h.UploadDocument)
		api.POST("/topics/extract", h.ExtractTopics)
		api.PUT("/topics/:courseId", h.UpdateTopics)
		api.GET("/topics/:courseId", h.GetTopics)
		api.POST("/outline/generate", h.GenerateOutline)
		api.PUT("/outline/:courseId", h.UpdateOutline)
		api.GET("/outline/:courseId", h.GetOutline)
		api.POST("/slides/generate", h.GenerateSlides)
		api.GET("/slides/:courseId", h.GetSlides)
		api.POST("/questions/generate", h.GenerateQuestions)
		api.GET("/questions/:courseId", h.GetQuestions)
		api.GET("/course/:courseId", h.GetCourse)
		api.POST("/export/:courseId", h.ExportCourse)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().
		Str("port", cfg.Port).
		Str("model_provider", cfg.ModelProvider).
		Msg("Starting training generator API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
