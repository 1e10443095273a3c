package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/api"
	authService "recipe-finder/internal/core/auth"
	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/core/dataset"
	"recipe-finder/internal/core/enrich"
	"recipe-finder/internal/core/match"
	"recipe-finder/internal/core/service"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("starting application",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.Bool("debug", cfg.App.Debug),
	)

	ctx := context.Background()

	store, err := postgres.New(ctx, &cfg.Database)
	if err != nil {
		common.LogFatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Bootstrap(ctx); err != nil {
		common.LogFatal("Failed to bootstrap schema", zap.Error(err))
	}

	resultCache, err := cache.NewResultCache(&cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize result cache", zap.Error(err))
	}
	defer resultCache.Close()
	resultCache.LogStats()

	preprocessor := dataset.NewPreprocessor(cfg.Dataset.CSVPath, cfg.Dataset.ImagesDir)
	recipes, err := preprocessor.Load()
	if err != nil {
		// the API still serves auth and health without a corpus; readiness
		// stays red until a dataset is provided
		common.LogError("Failed to load dataset", zap.Error(err))
	}

	enricher := enrich.NewGeminiService(&cfg.Gemini)

	recipeSvc := service.NewRecipeService(
		recipes,
		match.NewMatcher(),
		store,
		resultCache,
		enricher,
		cfg.Search.TopK,
		cfg.Gemini.TopN,
	)

	if aggs, err := store.RatingAggregates(ctx); err != nil {
		common.LogWarn("Failed to load rating aggregates", zap.Error(err))
	} else {
		recipeSvc.ApplyRatingAggregates(aggs)
	}

	authSvc := authService.NewService(store, &cfg.Auth)

	router := api.SetupRouter(api.Dependencies{
		Config:  cfg,
		Recipes: recipeSvc,
		Auth:    authSvc,
		DB:      store,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("server listening", zap.Int("port", cfg.Server.Port))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}
