package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/database"
	"github.com/examina/examina-backend/internal/handler"
	"github.com/examina/examina-backend/internal/logger"
	"github.com/examina/examina-backend/internal/repository"
	"github.com/examina/examina-backend/internal/router"
	"github.com/examina/examina-backend/internal/service"
	"github.com/examina/examina-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Examina Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	studentRepo := repository.NewStudentRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)

	authService := service.NewAuthService(cfg, studentRepo)
	catalogService := service.NewCatalogService(examRepo, questionRepo, rdb, cfg.PaperCacheTTL, log)
	sessionService := service.NewExamSessionService(sessionRepo, catalogService, log)
	answerService := service.NewAnswerService(answerRepo, sessionRepo, catalogService, log)
	publisher := service.NewRedisSubmissionPublisher(rdb)
	scoringService := service.NewScoringService(sessionRepo, publisher, log)
	rankingService := service.NewRankingService(sessionRepo, log)

	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		StudentPortal: handler.NewStudentPortalHandler(
			sessionService,
			answerService,
			scoringService,
			rankingService,
			catalogService,
		),
		Results: handler.NewResultsHandler(rankingService, catalogService),
		Monitor: handler.NewMonitorHandler(rdb, log, cfg.AllowedOrigins),
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
