// Package recipe holds the recipe endpoints: search, listing, retrieval,
// favorites, ratings, recommendations and corpus statistics.
package recipe

import (
	"errors"
	"net/http"
	"strconv"

	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/service"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchRequest is the ingredient search payload.
type SearchRequest struct {
	Ingredients        []string `json:"ingredients" binding:"required"`
	DietaryPreferences []string `json:"dietary_preferences"`
}

// Handler serves the recipe endpoints.
type Handler struct {
	svc *service.RecipeService
}

// NewHandler creates the recipe handler.
func NewHandler(svc *service.RecipeService) *Handler {
	return &Handler{svc: svc}
}

// Search ranks recipes against the submitted ingredient list.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one ingredient is required"})
		return
	}

	recipes, err := h.svc.SearchByIngredients(c.Request.Context(), req.Ingredients, req.DietaryPreferences, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// List returns the corpus with optional filters.
func (h *Handler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 50)

	recipes := h.svc.ListRecipes(c.Request.Context(), service.Filter{
		Dietary:     c.Query("dietary"),
		Difficulty:  c.Query("difficulty"),
		Cuisine:     c.Query("cuisine"),
		CookingTime: c.Query("cooking_time"),
		Limit:       limit,
	}, middleware.UserID(c))

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// Get returns one recipe, optionally rescaled via ?servings=.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	r, err := h.svc.GetRecipe(c.Request.Context(), id, intQuery(c, "servings", 0), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// Favorite toggles the favorite state and returns the new state.
func (h *Handler) Favorite(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	favorited, err := h.svc.ToggleFavorite(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Recipe unfavorited"
	if favorited {
		message = "Recipe favorited"
	}
	c.JSON(http.StatusOK, gin.H{"is_favorited": favorited, "message": message})
}

// Rate stores a 1..5 rating and returns the updated recipe.
func (h *Handler) Rate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	rating, err := strconv.Atoi(c.Query("rating"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating query parameter is required"})
		return
	}

	r, err := h.svc.RateRecipe(c.Request.Context(), middleware.UserID(c), id, rating)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// Favorites lists the authenticated user's favorite recipes.
func (h *Handler) Favorites(c *gin.Context) {
	recipes, err := h.svc.Favorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// Recommendations returns personalized suggestions, or the popular list for
// users without favorites.
func (h *Handler) Recommendations(c *gin.Context) {
	recipes, err := h.svc.Recommendations(c.Request.Context(), middleware.UserID(c), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// Popular returns the corpus ordered by average rating.
func (h *Handler) Popular(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": h.svc.Popular(intQuery(c, "limit", 10))})
}

// Stats summarizes the loaded corpus.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var customErr *common.CustomError
	if errors.As(err, &customErr) {
		c.JSON(customErr.Status, gin.H{"error": customErr.Message, "code": customErr.Code})
		return
	}

	common.LogError("recipe request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
