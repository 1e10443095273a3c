// Package service orchestrates the recipe domain: search, retrieval,
// favorites, ratings, recommendations. It owns the in-memory recipe corpus
// and coordinates the matcher, cache, enrichment and persistence layers.
package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"recipe-finder/internal/core/match"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage/postgres"

	"go.uber.org/zap"
)

// UserDataStore is the persistence surface for user-generated state.
// *postgres.Store satisfies it.
type UserDataStore interface {
	IsFavorited(ctx context.Context, userID, recipeID int) (bool, error)
	AddFavorite(ctx context.Context, userID, recipeID int) error
	RemoveFavorite(ctx context.Context, userID, recipeID int) (bool, error)
	FavoriteRecipeIDs(ctx context.Context, userID int) ([]int, error)
	UpsertRating(ctx context.Context, userID, recipeID, rating int) error
	UserRating(ctx context.Context, userID, recipeID int) (int, error)
	RecipeRatingAggregate(ctx context.Context, recipeID int) (postgres.RatingAggregate, error)
}

// SearchCache stores search results as ordered recipe ID lists.
type SearchCache interface {
	Get(ctx context.Context, ingredients, dietary []string) ([]int, error)
	Set(ctx context.Context, ingredients, dietary []string, ids []int) error
}

// Enricher fills in missing recipe metadata.
type Enricher interface {
	Enrich(ctx context.Context, r *recipe.Recipe)
}

// Filter narrows recipe listings.
type Filter struct {
	Dietary     string
	Difficulty  string
	Cuisine     string
	CookingTime string
	Limit       int
}

// RecipeService is the domain facade behind the HTTP handlers.
type RecipeService struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	byID    map[int]int

	matcher  *match.Matcher
	store    UserDataStore
	cache    SearchCache
	enricher Enricher

	topK       int
	enrichTopN int
}

// NewRecipeService builds the service around a loaded corpus and fits the
// match index.
func NewRecipeService(recipes []recipe.Recipe, matcher *match.Matcher, store UserDataStore, cache SearchCache, enricher Enricher, topK, enrichTopN int) *RecipeService {
	if topK <= 0 {
		topK = match.DefaultTopK
	}

	byID := make(map[int]int, len(recipes))
	for i := range recipes {
		byID[recipes[i].ID] = i
	}

	s := &RecipeService{
		recipes:    recipes,
		byID:       byID,
		matcher:    matcher,
		store:      store,
		cache:      cache,
		enricher:   enricher,
		topK:       topK,
		enrichTopN: enrichTopN,
	}
	matcher.BuildCorpus(recipes)
	return s
}

// ApplyRatingAggregates hydrates in-memory rating figures from persisted
// ratings, called once at startup.
func (s *RecipeService) ApplyRatingAggregates(aggs map[int]postgres.RatingAggregate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, agg := range aggs {
		if i, ok := s.byID[id]; ok {
			s.recipes[i].AverageRating = round1(agg.Average)
			s.recipes[i].RatingCount = agg.Count
		}
	}
}

// SearchByIngredients runs the cache-first search pipeline: cached ID list
// when available, otherwise match, dietary filter, enrichment of the leading
// hits, then cache fill. userID of 0 means anonymous.
func (s *RecipeService) SearchByIngredients(ctx context.Context, ingredients, dietary []string, userID int) ([]recipe.ScoredRecipe, error) {
	if ids, err := s.cache.Get(ctx, ingredients, dietary); err == nil {
		results := make([]recipe.ScoredRecipe, 0, len(ids))
		for _, id := range ids {
			r, ok := s.snapshot(id)
			if !ok {
				continue
			}
			s.applyUserData(ctx, &r, userID)
			results = append(results, recipe.ScoredRecipe{Recipe: r})
		}
		common.LogInfo("search served from cache", zap.Int("results", len(results)))
		return results, nil
	}

	s.mu.RLock()
	matched := s.matcher.FindBestMatches(ingredients, s.recipes, s.topK)
	s.mu.RUnlock()

	if len(dietary) > 0 {
		matched = filterByDietary(matched, dietary)
	}

	for i := range matched {
		if i < s.enrichTopN && matched[i].Calories == 0 {
			s.enricher.Enrich(ctx, &matched[i].Recipe)
			s.commit(matched[i].Recipe)
		}
		s.applyUserData(ctx, &matched[i].Recipe, userID)
	}

	ids := make([]int, len(matched))
	for i := range matched {
		ids[i] = matched[i].ID
	}
	if err := s.cache.Set(ctx, ingredients, dietary, ids); err != nil {
		common.LogWarn("failed to cache search results", zap.Error(err))
	}

	common.LogInfo("search completed",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("results", len(matched)),
	)
	return matched, nil
}

// filterByDietary keeps recipes carrying at least one of the requested tags.
func filterByDietary(matched []recipe.ScoredRecipe, dietary []string) []recipe.ScoredRecipe {
	out := matched[:0]
	for _, m := range matched {
		if hasAnyTag(m.DietaryTags, dietary) {
			out = append(out, m)
		}
	}
	return out
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

// GetRecipe returns one recipe with user flags, lazily enriched, optionally
// rescaled to desiredServings.
func (s *RecipeService) GetRecipe(ctx context.Context, id, desiredServings, userID int) (*recipe.Recipe, error) {
	r, ok := s.snapshot(id)
	if !ok {
		return nil, common.ErrRecipeNotFound
	}

	if r.Calories == 0 {
		s.enricher.Enrich(ctx, &r)
		s.commit(r)
	}

	s.applyUserData(ctx, &r, userID)

	if desiredServings > 0 && desiredServings != r.Servings {
		original := r.Servings
		r.Ingredients = recipe.AdjustIngredients(r.Ingredients, original, desiredServings)
		n := recipe.AdjustNutrition(recipe.Nutrition{
			Calories: r.Calories, Protein: r.Protein, Carbs: r.Carbs, Fat: r.Fat,
		}, original, desiredServings)
		r.Calories, r.Protein, r.Carbs, r.Fat = n.Calories, n.Protein, n.Carbs, n.Fat
		r.AdjustedServings = desiredServings
		r.OriginalServings = original
	}

	return &r, nil
}

// ListRecipes returns the corpus narrowed by filter, with user flags.
func (s *RecipeService) ListRecipes(ctx context.Context, f Filter, userID int) []recipe.Recipe {
	s.mu.RLock()
	out := make([]recipe.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if f.Dietary != "" && !hasAnyTag(r.DietaryTags, []string{f.Dietary}) {
			continue
		}
		if f.Difficulty != "" && r.Difficulty != f.Difficulty {
			continue
		}
		if f.Cuisine != "" && !strings.EqualFold(r.Cuisine, f.Cuisine) {
			continue
		}
		if !matchesCookingTime(r.CookingTime, f.CookingTime) {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	for i := range out {
		s.applyUserData(ctx, &out[i], userID)
	}
	return out
}

// matchesCookingTime buckets: Quick under 30, Moderate 30 to 60, Long over
// 60 minutes. An empty or unknown bucket matches everything.
func matchesCookingTime(minutes int, bucket string) bool {
	switch bucket {
	case "Quick":
		return minutes < 30
	case "Moderate":
		return minutes >= 30 && minutes <= 60
	case "Long":
		return minutes > 60
	default:
		return true
	}
}

// ToggleFavorite flips the favorite state and returns the new state.
func (s *RecipeService) ToggleFavorite(ctx context.Context, userID, recipeID int) (bool, error) {
	if _, ok := s.snapshot(recipeID); !ok {
		return false, common.ErrRecipeNotFound
	}

	removed, err := s.store.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, err
	}
	if removed {
		common.LogInfo("favorite removed", zap.Int("user_id", userID), zap.Int("recipe_id", recipeID))
		return false, nil
	}

	if err := s.store.AddFavorite(ctx, userID, recipeID); err != nil {
		return false, err
	}
	common.LogInfo("favorite added", zap.Int("user_id", userID), zap.Int("recipe_id", recipeID))
	return true, nil
}

// RateRecipe upserts the user's rating, recalculates the average and returns
// the updated recipe.
func (s *RecipeService) RateRecipe(ctx context.Context, userID, recipeID, rating int) (*recipe.Recipe, error) {
	if rating < 1 || rating > 5 {
		return nil, common.ErrInvalidRating
	}
	if _, ok := s.snapshot(recipeID); !ok {
		return nil, common.ErrRecipeNotFound
	}

	if err := s.store.UpsertRating(ctx, userID, recipeID, rating); err != nil {
		return nil, err
	}

	agg, err := s.store.RecipeRatingAggregate(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if i, ok := s.byID[recipeID]; ok {
		s.recipes[i].AverageRating = round1(agg.Average)
		s.recipes[i].RatingCount = agg.Count
	}
	s.mu.Unlock()

	r, _ := s.snapshot(recipeID)
	s.applyUserData(ctx, &r, userID)
	r.UserRating = rating
	return &r, nil
}

// Favorites returns the user's favorited recipes with user flags set.
func (s *RecipeService) Favorites(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	ids, err := s.store.FavoriteRecipeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		r, ok := s.snapshot(id)
		if !ok {
			continue
		}
		r.IsFavorited = true
		if rating, err := s.store.UserRating(ctx, userID, id); err == nil {
			r.UserRating = rating
		}
		out = append(out, r)
	}
	return out, nil
}

// Recommendations scores the corpus against the user's favorites. Users
// without favorites get the popularity list instead.
func (s *RecipeService) Recommendations(ctx context.Context, userID, limit int) ([]recipe.RecommendedRecipe, error) {
	if limit <= 0 {
		limit = s.topK
	}

	ids, err := s.store.FavoriteRecipeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return s.popularAsRecommendations(limit), nil
	}

	favorited := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.snapshot(id); ok {
			favorited = append(favorited, r)
		}
	}

	s.mu.RLock()
	recommended := match.Recommend(favorited, s.recipes, limit)
	s.mu.RUnlock()

	for i := range recommended {
		s.applyUserData(ctx, &recommended[i].Recipe, userID)
	}
	return recommended, nil
}

// Popular returns the corpus ordered by average rating.
func (s *RecipeService) Popular(limit int) []recipe.Recipe {
	if limit <= 0 {
		limit = s.topK
	}

	s.mu.RLock()
	out := make([]recipe.Recipe, len(s.recipes))
	copy(out, s.recipes)
	s.mu.RUnlock()

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].AverageRating > out[b].AverageRating
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *RecipeService) popularAsRecommendations(limit int) []recipe.RecommendedRecipe {
	popular := s.Popular(limit)
	out := make([]recipe.RecommendedRecipe, len(popular))
	for i, r := range popular {
		out[i] = recipe.RecommendedRecipe{
			Recipe:              r,
			RecommendationScore: r.AverageRating / 5.0,
			MatchingIngredients: []string{},
		}
	}
	return out
}

// Stats summarizes the loaded corpus.
func (s *RecipeService) Stats() recipe.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := recipe.Stats{
		TotalRecipes: len(s.recipes),
		Cuisines:     map[string]int{},
		Difficulties: map[string]int{},
		DietaryTags:  map[string]int{},
	}
	for _, r := range s.recipes {
		if r.Calories > 0 {
			stats.EnhancedRecipes++
		}
		stats.Cuisines[r.Cuisine]++
		stats.Difficulties[r.Difficulty]++
		for _, tag := range r.DietaryTags {
			stats.DietaryTags[tag]++
		}
	}
	return stats
}

// snapshot returns a copy of one recipe by ID.
func (s *RecipeService) snapshot(id int) (recipe.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return recipe.Recipe{}, false
	}
	return s.recipes[i], true
}

// commit writes an updated recipe back into the corpus. Enrichment results
// must stick so a recipe is not enriched again on the next request.
func (s *RecipeService) commit(r recipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byID[r.ID]; ok {
		// keep live rating figures, the caller's copy may be stale
		r.AverageRating = s.recipes[i].AverageRating
		r.RatingCount = s.recipes[i].RatingCount
		s.recipes[i] = r
	}
}

// applyUserData fills the per-user view fields. Anonymous requests and store
// errors leave the zero values in place.
func (s *RecipeService) applyUserData(ctx context.Context, r *recipe.Recipe, userID int) {
	if userID <= 0 {
		return
	}
	if fav, err := s.store.IsFavorited(ctx, userID, r.ID); err == nil {
		r.IsFavorited = fav
	}
	if rating, err := s.store.UserRating(ctx, userID, r.ID); err == nil {
		r.UserRating = rating
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
