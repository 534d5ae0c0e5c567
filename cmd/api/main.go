package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TrackBD/trackbd_api/internal/cache"
	"github.com/TrackBD/trackbd_api/internal/config"
	"github.com/TrackBD/trackbd_api/internal/database"
	"github.com/TrackBD/trackbd_api/internal/handler"
	"github.com/TrackBD/trackbd_api/internal/middleware"
	"github.com/TrackBD/trackbd_api/internal/repository"
	"github.com/TrackBD/trackbd_api/internal/service"
	"github.com/TrackBD/trackbd_api/internal/sse"
	"github.com/TrackBD/trackbd_api/internal/utils"
	"github.com/TrackBD/trackbd_api/internal/worker"
	"github.com/TrackBD/trackbd_api/pkg/smartsms"
)

// main is the application entrypoint for the TrackBD installation API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting trackbd api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize session cache
	sessionCache := cache.NewSessionCache(redisClient)

	// 4. Initialize Smart SMS BD WhatsApp client
	var smsOpts []smartsms.Option
	if cfg.SmartSMS.BaseURL != "" {
		smsOpts = append(smsOpts, smartsms.WithBaseURL(cfg.SmartSMS.BaseURL))
	}
	smsClient := smartsms.NewClient(cfg.SmartSMS.Secret, cfg.SmartSMS.Account, smsOpts...)

	// 5. Initialize repositories
	techRepo := repository.NewTechnicianRepository(db)
	installRepo := repository.NewInstallRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 5a. Initialize SSE hub for the admin dashboard
	hub := sse.NewHub()

	// 6. Initialize services
	authSvc := service.NewAuthService(cfg.Admin, techRepo, sessionCache, cfg.SessionTTL)
	techSvc := service.NewTechnicianService(techRepo)
	notificationSvc := service.NewNotificationService(smsClient, notificationRepo)
	installSvc := service.NewInstallService(installRepo, techRepo, notificationSvc, sse.NewHubNotifier(hub))
	reportSvc := service.NewReportService(installRepo, techRepo)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(db, redisClient),
		Auth:       handler.NewAuthHandler(authSvc, middleware.NewInvalidAuthRateLimiter()),
		Install:    handler.NewInstallHandler(installSvc, notificationSvc),
		Technician: handler.NewTechnicianHandler(techSvc),
		Dashboard:  handler.NewDashboardHandler(installSvc),
		SSE:        handler.NewSSEHandler(hub, sessionCache),
		Report:     handler.NewReportHandler(reportSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(sessionCache)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewReminderWorker(installRepo, notificationSvc, cfg.Worker.ReminderInterval, cfg.Worker.ReminderLeadTime).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Install    *handler.InstallHandler
	Technician *handler.TechnicianHandler
	Dashboard  *handler.DashboardHandler
	SSE        *handler.SSEHandler
	Report     *handler.ReportHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Auth
	router.POST("/v1/auth/login", handlers.Auth.Login)
	router.POST("/v1/auth/logout", jwtMiddleware.Handle(), handlers.Auth.Logout)

	// SSE carries its token in the query string, outside the JWT middleware.
	router.GET("/v1/dashboard/events", handlers.SSE.Stream)

	// Install lifecycle (admin and technicians; service scopes technicians
	// to their own assignments)
	installs := router.Group("/v1/installs")
	installs.Use(jwtMiddleware.Handle())
	{
		installs.GET("", handlers.Install.List)
		installs.GET("/:id", handlers.Install.Get)
		installs.POST("/:id/schedule", handlers.Install.Schedule)
		installs.POST("/:id/complete", handlers.Install.Complete)
		installs.POST("/:id/submit-payment", handlers.Install.SubmitPayment)
		installs.POST("/:id/cancel", handlers.Install.Cancel)
		installs.POST("/:id/notes", handlers.Install.AddNote)
		installs.GET("/:id/notifications", handlers.Install.ListNotifications)

		// Admin-only lifecycle operations
		installs.POST("", jwtMiddleware.RequireAdmin(), handlers.Install.Create)
		installs.POST("/:id/ship", jwtMiddleware.RequireAdmin(), handlers.Install.Ship)
		installs.POST("/:id/approve-expense", jwtMiddleware.RequireAdmin(), handlers.Install.ApproveExpense)
		installs.POST("/:id/approve-payment", jwtMiddleware.RequireAdmin(), handlers.Install.ApprovePayment)
	}

	// Technician management (admin-only)
	technicians := router.Group("/v1/technicians")
	technicians.Use(jwtMiddleware.Handle(), jwtMiddleware.RequireAdmin())
	{
		technicians.POST("", handlers.Technician.Create)
		technicians.GET("", handlers.Technician.List)
		technicians.GET("/:id", handlers.Technician.Get)
		technicians.PUT("/:id", handlers.Technician.Update)
		technicians.DELETE("/:id", handlers.Technician.Delete)
	}

	// Dashboard and reports (admin-only)
	admin := router.Group("/v1")
	admin.Use(jwtMiddleware.Handle(), jwtMiddleware.RequireAdmin())
	{
		admin.GET("/dashboard/metrics", handlers.Dashboard.Metrics)
		admin.GET("/reports/installs.xlsx", handlers.Report.InstallsExport)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://db/migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
