package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/config"
	"github.com/munivial/flota-api/internal/database"
	"github.com/munivial/flota-api/internal/handler"
	"github.com/munivial/flota-api/internal/middleware"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/router"
	"github.com/munivial/flota-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.AuditLog{},
		&models.Machinery{},
		&models.MachineryRole{},
		&models.Operator{},
		&models.Report{},
		&models.RentalReport{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis only backs the stats cache; the API runs without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	auditRepo := repository.NewAuditLogRepository(db)
	reportRepo := repository.NewReportRepository(db)
	rentalRepo := repository.NewRentalReportRepository(db)
	machineryRepo := repository.NewMachineryRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)

	recorder := service.NewAuditRecorder(auditRepo, logger, cfg.AuditWriteTimeout)

	auditService := service.NewAuditQueryService(auditRepo, redisClient, cfg.StatsCacheTTL, logger)
	reportService := service.NewReportService(reportRepo, operatorRepo, machineryRepo, recorder, validate, logger)
	rentalService := service.NewRentalReportService(rentalRepo, operatorRepo, recorder, validate, nil, logger)
	machineryService := service.NewMachineryService(machineryRepo, recorder, validate, logger)
	operatorService := service.NewOperatorService(operatorRepo, recorder, validate, logger)

	auditHandler := handler.NewAuditHandler(auditService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	rentalHandler := handler.NewRentalReportHandler(rentalService, logger)
	machineryHandler := handler.NewMachineryHandler(machineryService, logger)
	operatorHandler := handler.NewOperatorHandler(operatorService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		JWTSecret: cfg.JWTSecret,
	})
	router.Register(app, cfg, router.Dependencies{
		AuditHandler:     auditHandler,
		ReportHandler:    reportHandler,
		RentalHandler:    rentalHandler,
		MachineryHandler: machineryHandler,
		OperatorHandler:  operatorHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
