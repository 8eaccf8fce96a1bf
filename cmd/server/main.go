package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coworkhub/coworking-backend/internal/config"
	"github.com/coworkhub/coworking-backend/internal/database"
	"github.com/coworkhub/coworking-backend/internal/handlers"
	"github.com/coworkhub/coworking-backend/internal/middleware"
	"github.com/coworkhub/coworking-backend/internal/services"
	"github.com/coworkhub/coworking-backend/pkg/jwt"
	"github.com/coworkhub/coworking-backend/pkg/reservation"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

const (
	// pause before the single retry of a failed booking insert
	bookingRetryDelay = 500 * time.Millisecond
	limiterTTL        = 10 * time.Minute
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting CoworkHub booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, emails will be sent inline")
			rdb = nil
		}
	} else {
		logger.Info("REDIS_ADDR not set, emails will be sent inline")
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	companyRepo := database.NewCompanyRepository(db)
	siteRepo := database.NewSiteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentEventRepo := database.NewPaymentEventRepository(db, logger)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	codec, err := reservation.NewCodec(cfg.Payment.IntentSecret)
	if err != nil {
		logger.Fatalf("Failed to initialize reservation codec: %v", err)
	}

	paymentProvider := services.NewMercadoPagoService(cfg.Payment, logger)
	emailService := services.NewEmailService(cfg.Email, rdb, logger)
	publisher := services.NewEventPublisher(cfg.RabbitMQ, logger)
	defer publisher.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go emailService.Start(workerCtx)

	authService := services.NewAuthService(userRepo, companyRepo, jwtService, cfg.Security.BcryptCost, logger)
	companyService := services.NewCompanyService(companyRepo, userRepo, emailService, cfg.Security.BcryptCost, logger)
	checkoutService := services.NewCheckoutService(
		codec,
		paymentProvider,
		siteRepo,
		userRepo,
		bookingRepo,
		paymentEventRepo,
		emailService,
		publisher,
		services.CheckoutConfig{
			Currency:     cfg.Payment.Currency,
			Installments: cfg.Payment.Installments,
			BackendURL:   cfg.URLs.Backend,
			Location:     cfg.Location(),
			RetryDelay:   bookingRetryDelay,
		},
		logger,
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, limiterTTL)

	cronService := services.NewCronService(paymentEventRepo, emailService, rateLimiter, cfg.Security.PaymentEventsRetention, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	logger.Info("All services initialized successfully")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.JWT, logger)
	companyHandler := handlers.NewCompanyHandler(companyService, logger)
	siteHandler := handlers.NewSiteHandler(siteRepo, logger)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, logger)
	paymentHandler := handlers.NewPaymentHandler(checkoutService, cfg.URLs.Frontend, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(middleware.Metrics())

	// CORS configuration; the session cookie needs credentials
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(jwtService, cfg.JWT.CookieName, logger)
	// admin ids are not customer ids; checkout and bookings belong to customers
	customerOnly := middleware.RequireRole(jwt.RoleUser)
	limited := rateLimiter.Middleware()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", limited, authHandler.Login)
			auth.GET("/validate-token", requireAuth, authHandler.ValidateToken)
			auth.POST("/logout", authHandler.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("/register", limited, authHandler.Register)
			users.GET("/me", requireAuth, authHandler.Me)
			users.POST("/register-admin", limited, companyHandler.Apply)
		}

		admins := api.Group("/admins")
		{
			admins.POST("/register", limited, companyHandler.Register)
			admins.GET("/addresses", requireAuth, middleware.RequireRole(jwt.RoleAdmin), companyHandler.ListAddresses)
			admins.GET("/admins", requireAuth, middleware.RequireRole(jwt.RoleAdmin), companyHandler.ListAdmins)
		}

		coworkings := api.Group("/coworkings")
		{
			coworkings.GET("", companyHandler.ListCompanies)
			coworkings.GET("/search", siteHandler.Search)
			coworkings.GET("/:id", siteHandler.GetByID)
		}

		mine := api.Group("/my-coworkings")
		mine.Use(requireAuth, middleware.RequireCompanyAdmin(companyRepo, logger))
		{
			mine.POST("", siteHandler.Create)
			mine.GET("", siteHandler.List)
			mine.GET("/:id", siteHandler.Get)
			mine.PUT("/:id", siteHandler.Update)
		}

		api.GET("/bookings", requireAuth, customerOnly, bookingHandler.List)

		payment := api.Group("/payment")
		{
			payment.POST("/create-order", requireAuth, customerOnly, limited, paymentHandler.CreateOrder)
			payment.GET("/success", requireAuth, customerOnly, paymentHandler.Success)
			payment.GET("/pending", paymentHandler.Pending)
			payment.GET("/failure", paymentHandler.Failure)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	stopWorkers()

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Query strings on the payment callbacks carry signed references, so only
		// their presence is logged
		if c.Request.URL.RawQuery != "" {
			fields["has_query"] = true
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		// Log based on status code
		status := c.Writer.Status()
		if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Debug("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
