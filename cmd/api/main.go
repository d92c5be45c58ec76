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
	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/config"
	"github.com/Polyratings/polyratings-api/internal/database"
	"github.com/Polyratings/polyratings-api/internal/handler"
	"github.com/Polyratings/polyratings-api/internal/middleware"
	"github.com/Polyratings/polyratings-api/internal/moderation"
	"github.com/Polyratings/polyratings-api/internal/notify"
	"github.com/Polyratings/polyratings-api/internal/observability"
	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/router"
	"github.com/Polyratings/polyratings-api/internal/service"
	"github.com/Polyratings/polyratings-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	typed, err := store.NewTyped(store.NewRedisKV(redisClient))
	if err != nil {
		log.Fatalf("failed to compile store schemas: %v", err)
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	engine := moderation.NewEngine(moderation.DefaultConfig())
	provider := moderation.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.ModerationModel, logger)
	sink := notify.NewNATSSink(natsConn, cfg.NATSSubject, logger)

	ratingRepo := repository.NewRatingRepository(typed, logger)

	submissionService := service.NewSubmissionService(ratingRepo, provider, engine, validate, logger)
	reportService := service.NewReportService(ratingRepo, sink, validate, logger)
	auditProcessor := service.NewAuditProcessor(ratingRepo, cfg.AuditPageSize, logger)

	professorHandler := handler.NewProfessorHandler(ratingRepo, logger)
	ratingHandler := handler.NewRatingHandler(submissionService, reportService, logger)
	adminHandler := handler.NewAdminHandler(auditProcessor, reportService, ratingRepo, provider, engine, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ProfessorHandler: professorHandler,
		RatingHandler:    ratingHandler,
		AdminHandler:     adminHandler,
		AdminMiddleware:  middleware.AdminProtected(cfg.JWTSecret),
		RedisClient:      redisClient,
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
