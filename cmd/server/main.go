package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
	"github.com/libreclinica/api-gateway/internal/dao"
	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/handlers"
	"github.com/libreclinica/api-gateway/internal/middleware"
	"github.com/libreclinica/api-gateway/internal/router"
	"github.com/libreclinica/api-gateway/internal/service"
	client "github.com/libreclinica/api-gateway/internal/soap-client"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting LibreClinica API Gateway...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
		"soapEnabled": cfg.SOAP.Enabled,
	}).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	// Initialize DAOs
	auditDAO := dao.NewAuditDAO(db)
	userDAO := dao.NewUserDAO(db)
	studyDAO := dao.NewStudyDAO(db)
	subjectDAO := dao.NewSubjectDAO(db)
	formDAO := dao.NewFormDAO(db)

	logger.Info("DAOs initialized successfully")

	// Initialize SOAP client
	soapClient := client.NewClient(&cfg.SOAP, logger)
	logger.WithField("enabled", soapClient.IsEnabled()).Info("SOAP client initialized")

	// Initialize services
	auditService := service.NewAuditService(auditDAO, userDAO, soapClient, cfg.SOAP.Enabled, logger)
	studyService := service.NewStudyService(studyDAO, userDAO, auditDAO, soapClient, db, cfg.SOAP.Enabled, logger)
	subjectService := service.NewSubjectService(subjectDAO, studyDAO, auditDAO, soapClient, db, cfg.SOAP.Enabled, logger)
	formService := service.NewFormService(formDAO, subjectDAO, auditDAO, soapClient, db, cfg.SOAP.Enabled, logger)

	logger.Info("Services initialized successfully")

	// Rate limiter
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, logger)
	defer rateLimiter.Close()

	// Setup router
	ginRouter := router.SetupRouter(&router.Dependencies{
		Config:         cfg,
		DB:             db,
		AuthHandler:    handlers.NewAuthHandler(userDAO, &cfg.JWT, logger),
		AuditHandler:   handlers.NewAuditHandler(auditService, logger),
		StudyHandler:   handlers.NewStudyHandler(studyService, logger),
		SubjectHandler: handlers.NewSubjectHandler(subjectService, logger),
		FormHandler:    handlers.NewFormHandler(formService, logger),
		RateLimiter:    rateLimiter,
		Logger:         logger,
	})

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited gracefully")
}
