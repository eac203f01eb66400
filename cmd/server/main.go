package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/cache"
	"github.com/SAP-F-2025/survey-service/internal/config"
	"github.com/SAP-F-2025/survey-service/internal/handlers"
	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories/mongodb"
	"github.com/SAP-F-2025/survey-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/survey-service/internal/services"
	"github.com/SAP-F-2025/survey-service/internal/utils"
	"github.com/SAP-F-2025/survey-service/internal/validator"
	"github.com/SAP-F-2025/survey-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Questions live in MongoDB.
	mongoClient, mongoDB, err := pkg.NewMongoDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", "error", err)
		}
	}()

	questionRepos := mongodb.NewQuestionRepositories(mongoDB)
	for _, collection := range []models.Collection{models.CollectionDraft, models.CollectionFinal} {
		if err := questionRepos.For(collection).EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	// Admin accounts and the audit trail live in PostgreSQL.
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	adminRepo := postgres.NewAdminPostgreSQL(db)
	auditRepo := postgres.NewAuditPostgreSQL(db)

	cacheService := cache.CacheService(cache.NoopCache{})
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, question lists will not be cached", "error", err)
		} else {
			defer redisClient.Close()
			cacheService = cache.NewRedisCache(redisClient, logger)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	v := validator.New()
	recorder := services.NewMutationRecorder(auditRepo, publisher, logger)
	tokens := services.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)

	questionService := services.NewQuestionService(questionRepos, cacheService, cfg.CacheTTL, recorder, v, logger)
	answerService := services.NewAnswerService(questionRepos, cacheService, recorder, logger)
	adminService := services.NewAdminService(adminRepo, tokens, cfg.BcryptCost, recorder, v, logger)
	importExportService := services.NewImportExportService(questionRepos, questionService, logger)
	auditService := services.NewAuditService(auditRepo, logger)
	rankingService := services.NewRankingService(questionRepos, cacheService, cfg.ScoringValues, recorder, logger)

	if err := adminService.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminUser, cfg.BootstrapAdminPassword); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.NewHandlerManager(handlers.ServiceSet{
		Questions:    questionService,
		Answers:      answerService,
		Admins:       adminService,
		ImportExport: importExportService,
		Audit:        auditService,
		Ranking:      rankingService,
		Tokens:       tokens,
	}, cfg.APIKey, handlers.CookieConfig{
		Secure:     cfg.IsProduction(),
		AccessTTL:  int(cfg.AccessTokenExpiry.Seconds()),
		RefreshTTL: int(cfg.RefreshTokenExpiry.Seconds()),
	}, utils.NewSlogLogger(logger)).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Survey service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
