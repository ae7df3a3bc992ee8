package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/api/internal/cache"
	"github.com/liftlog/api/internal/config"
	"github.com/liftlog/api/internal/database"
	"github.com/liftlog/api/internal/handler"
	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/repository"
	"github.com/liftlog/api/internal/scheduler"
	"github.com/liftlog/api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisCache = nil
		// Continue without Redis cache (fail-open)
	}

	// Load exercise names into Redis for autocomplete
	if redisCache != nil {
		go loadExerciseNamesToRedis(redisCache, "data/exercises.txt")
	}

	// Day-window boundaries are computed in one configured zone
	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("Invalid TIMEZONE %q: %v", cfg.Timezone, err)
		}
	}

	workoutRepo := repository.NewWorkoutRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	daySvc := service.NewDayService(workoutRepo, loc)

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)
	workoutHandler := handler.NewWorkoutHandler(daySvc, redisCache)
	catalogHandler := handler.NewCatalogHandler(catalogRepo, redisCache)
	statsHandler := handler.NewStatsHandler(daySvc)
	exportHandler := handler.NewExportHandler(daySvc)

	// Background auto-complete scheduler, if enabled
	var autoComplete *scheduler.AutoCompleteScheduler
	if cfg.SchedulerEnabled {
		autoComplete = scheduler.NewAutoCompleteScheduler(workoutRepo, scheduler.Config{
			Interval: cfg.SchedulerInterval,
			After:    cfg.AutoCompleteAfter,
		})
		go autoComplete.Start(context.Background())
		log.Println("Background auto-complete scheduler started")
	}

	// Setup router
	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Scheduler status
	r.GET("/scheduler/status", func(c *gin.Context) {
		if autoComplete != nil {
			c.JSON(200, autoComplete.GetStatus())
		} else {
			c.JSON(200, gin.H{"enabled": false, "message": "Scheduler is disabled"})
		}
	})

	// Auth routes
	r.GET("/auth/google", authHandler.GoogleAuth)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)
	r.POST("/auth/refresh", authHandler.RefreshToken)
	r.POST("/auth/logout", authHandler.Logout)

	// API routes (authenticated)
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("/me", authHandler.Me)

		// Workouts
		api.GET("/workouts", workoutHandler.ListByDay)
		api.POST("/workouts", workoutHandler.Create)
		api.GET("/workouts/:id", workoutHandler.Get)
		api.PUT("/workouts/:id", workoutHandler.Update)
		api.POST("/workouts/:id/complete", workoutHandler.Complete)

		// Exercise catalog
		api.GET("/exercises", catalogHandler.List)
		api.GET("/exercises/search", catalogHandler.Search)
		api.GET("/exercises/suggest", catalogHandler.Suggest)

		// Stats
		api.GET("/stats", statsHandler.Summary)

		// Export
		api.GET("/export/:date", exportHandler.Export)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware(cfg.JWTSecret, cfg.AdminEmails))
	{
		admin.PUT("/exercises/:id", catalogHandler.Rename)
		admin.POST("/exercises/:id/merge", catalogHandler.Merge)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("API server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadExerciseNamesToRedis loads catalog names from a file into Redis for autocomplete
func loadExerciseNamesToRedis(redisCache *cache.RedisCache, listPath string) {
	ctx := context.Background()

	// Skip when the index is already populated
	count, err := redisCache.AutocompleteCount(ctx)
	if err == nil && count > 0 {
		log.Printf("Autocomplete already populated with %d exercises, skipping load", count)
		return
	}

	file, err := os.Open(listPath)
	if err != nil {
		log.Printf("Warning: Failed to open exercise list for autocomplete: %v", err)
		return
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Warning: Error reading exercise list: %v", err)
		return
	}

	const batchSize = 500
	for i := 0; i < len(names); i += batchSize {
		end := i + batchSize
		if end > len(names) {
			end = len(names)
		}
		if err := redisCache.AddExerciseNames(ctx, names[i:end]); err != nil {
			log.Printf("Warning: Failed to add exercises to Redis autocomplete: %v", err)
			return
		}
	}

	log.Printf("Loaded %d exercises to Redis autocomplete", len(names))
}
