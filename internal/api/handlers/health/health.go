// Package health exposes the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/core/service"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is the connectivity probe of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Recipes   int                    `json:"recipes"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler serves the probe endpoints.
type Handler struct {
	cfg *config.Config
	db  Pinger
	svc *service.RecipeService
}

// NewHandler creates the health handler.
func NewHandler(cfg *config.Config, db Pinger, svc *service.RecipeService) *Handler {
	return &Handler{cfg: cfg, db: db, svc: svc}
}

// HealthCheck reports process health plus runtime figures.
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Recipes:   h.svc.Stats().TotalRecipes,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// ReadinessCheck verifies the database is reachable and the corpus loaded.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		common.LogError("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}
	if h.svc.Stats().TotalRecipes == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "recipe corpus empty",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck only proves the process responds.
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
