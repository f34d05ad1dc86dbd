package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gigmarket/backend/internal/config"
	"github.com/gigmarket/backend/internal/db"
	httpHandlers "github.com/gigmarket/backend/internal/http/handlers"
	httpRouter "github.com/gigmarket/backend/internal/http/router"
	"github.com/gigmarket/backend/internal/logger"
	"github.com/gigmarket/backend/internal/repository"
	"github.com/gigmarket/backend/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: failed to load configuration: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: failed to connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: failed to run migrations: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	assignmentRepo := repository.NewAssignmentRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	payoutRepo := repository.NewPayoutRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)

	authService := service.NewAuthService(userRepo, tokenManager)
	projectService := service.NewProjectService(projectRepo)
	proposalService := service.NewProposalService(proposalRepo, projectRepo, userRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, proposalRepo, projectRepo)
	paymentService := service.NewPaymentService(paymentRepo, assignmentRepo)
	payoutService := service.NewPayoutService(payoutRepo)
	reviewService := service.NewReviewService(reviewRepo, assignmentRepo)
	taskService := service.NewTaskService(taskRepo, assignmentRepo)

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:       httpHandlers.NewAuthHandler(authService),
		Project:    httpHandlers.NewProjectHandler(projectService),
		Proposal:   httpHandlers.NewProposalHandler(proposalService),
		Assignment: httpHandlers.NewAssignmentHandler(assignmentService),
		Payment:    httpHandlers.NewPaymentHandler(paymentService),
		Payout:     httpHandlers.NewPayoutHandler(payoutService),
		Review:     httpHandlers.NewReviewHandler(reviewService),
		Task:       httpHandlers.NewTaskHandler(taskService),
		Health:     httpHandlers.NewHealthHandler(dbConn),
	}, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	log.Printf("main: HTTP server listening on port %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server exited with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: failed to close database: %v", err)
	}
}
