package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/cache"
	"github.com/rotina-app/rotina-api/internal/config"
	"github.com/rotina-app/rotina-api/internal/database"
	"github.com/rotina-app/rotina-api/internal/handlers"
	"github.com/rotina-app/rotina-api/internal/middleware"
	"github.com/rotina-app/rotina-api/internal/repository"
	"github.com/rotina-app/rotina-api/internal/services"
	"github.com/rotina-app/rotina-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Resolve the reference timezone once; every calendar-day comparison
	// uses it.
	loc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		log.Fatalf("Failed to load reference timezone %q: %v", cfg.ReferenceTimezone, err)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("rotina_session", store))

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	justRepo := repository.NewJustificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	ruleRepo := repository.NewRuleRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, tenantRepo)
	taskService := services.NewTaskService(taskRepo, ruleRepo, loc)
	evidenceStore := storage.NewEvidenceStore(cfg.EvidenceDir)
	justService := services.NewJustificationService(justRepo, taskRepo, evidenceStore, loc)

	// Listing cache (nil disables it)
	listingCache := cache.NewListingCache(cfg.ListingCacheSize, cfg.ListingCacheTTL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, listingCache, loc)
	justHandler := handlers.NewJustificationHandler(justService, listingCache)
	tenantHandler := handlers.NewTenantHandler(tenantRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Rotina API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/password-reset", authHandler.RequestPasswordReset)
			auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
			auth.POST("/impersonate", middleware.RequireAuth(), authHandler.Impersonate)
			auth.DELETE("/impersonate", middleware.RequireAuth(), authHandler.StopImpersonation)
		}

		// Tenant routes
		api.GET("/tenants", middleware.RequireAuth(), tenantHandler.ListTenants)
		api.GET("/tenants/current", middleware.RequireAuth(), middleware.RequireTenant(), tenantHandler.CurrentTenant)

		// Task routes (protected; impersonated sessions are read-only)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireTenant(), middleware.BlockImpersonatedWrites())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/unblock", justHandler.UnblockTask)
		}

		// Justification routes
		justifications := api.Group("/justifications")
		justifications.Use(middleware.RequireAuth(), middleware.RequireTenant(), middleware.BlockImpersonatedWrites())
		{
			justifications.POST("", justHandler.CreateJustification)
			justifications.GET("/mine", justHandler.MyLateTasks)
			justifications.GET("/queue/:status", justHandler.Queue)
			justifications.GET("/blocked-tasks", justHandler.BlockedTasks)
			justifications.POST("/:id/evidence", justHandler.AttachEvidence)
			justifications.DELETE("/:id/evidence", justHandler.RemoveEvidence)
			justifications.POST("/:id/review", justHandler.ReviewJustification)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
