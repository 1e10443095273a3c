// Package api wires the HTTP surface: middleware stack, route groups and
// handler construction.
package api

import (
	"context"
	"net/http"
	"time"

	authHandler "recipe-finder/internal/api/handlers/auth"
	"recipe-finder/internal/api/handlers/health"
	recipeHandler "recipe-finder/internal/api/handlers/recipe"
	"recipe-finder/internal/api/middleware"
	authService "recipe-finder/internal/core/auth"
	"recipe-finder/internal/core/service"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	timeoutDuration = 30 * time.Second
	// request bodies are ingredient lists and credentials, 1MB is generous
	maxBodySize = 1 << 20
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config  *config.Config
	Recipes *service.RecipeService
	Auth    *authService.Service
	DB      health.Pinger
}

// SetupRouter builds the gin engine with the full middleware stack and all
// routes registered.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// request timeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
			})
		}
	})

	healthH := health.NewHandler(cfg, deps.DB, deps.Recipes)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	authH := authHandler.NewHandler(deps.Auth)
	recipeH := recipeHandler.NewHandler(deps.Recipes)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authH.Register)
			authGroup.POST("/login", authH.Login)
			authGroup.GET("/me", middleware.RequireAuth(deps.Auth), authH.Me)
			authGroup.DELETE("/delete", middleware.RequireAuth(deps.Auth), authH.Delete)
		}

		recipes := api.Group("/recipes", middleware.OptionalAuth(deps.Auth))
		{
			recipes.POST("/search", recipeH.Search)
			recipes.GET("", recipeH.List)
			recipes.GET("/:id", recipeH.Get)
			recipes.POST("/:id/favorite", middleware.RequireAuth(deps.Auth), recipeH.Favorite)
			recipes.POST("/:id/rate", middleware.RequireAuth(deps.Auth), recipeH.Rate)
		}

		api.GET("/favorites", middleware.RequireAuth(deps.Auth), recipeH.Favorites)
		api.GET("/recommendations", middleware.RequireAuth(deps.Auth), recipeH.Recommendations)
		api.GET("/popular", recipeH.Popular)
		api.GET("/stats", recipeH.Stats)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}
