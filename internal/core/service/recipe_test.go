package service

import (
	"context"
	"testing"

	"recipe-finder/internal/core/match"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	favorites map[int]map[int]bool // userID -> recipeID
	ratings   map[int]map[int]int  // userID -> recipeID -> rating
}

func newStubStore() *stubStore {
	return &stubStore{
		favorites: map[int]map[int]bool{},
		ratings:   map[int]map[int]int{},
	}
}

func (s *stubStore) IsFavorited(_ context.Context, userID, recipeID int) (bool, error) {
	return s.favorites[userID][recipeID], nil
}

func (s *stubStore) AddFavorite(_ context.Context, userID, recipeID int) error {
	if s.favorites[userID] == nil {
		s.favorites[userID] = map[int]bool{}
	}
	s.favorites[userID][recipeID] = true
	return nil
}

func (s *stubStore) RemoveFavorite(_ context.Context, userID, recipeID int) (bool, error) {
	if s.favorites[userID][recipeID] {
		delete(s.favorites[userID], recipeID)
		return true, nil
	}
	return false, nil
}

func (s *stubStore) FavoriteRecipeIDs(_ context.Context, userID int) ([]int, error) {
	var ids []int
	for id := range s.favorites[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *stubStore) UpsertRating(_ context.Context, userID, recipeID, rating int) error {
	if s.ratings[userID] == nil {
		s.ratings[userID] = map[int]int{}
	}
	s.ratings[userID][recipeID] = rating
	return nil
}

func (s *stubStore) UserRating(_ context.Context, userID, recipeID int) (int, error) {
	return s.ratings[userID][recipeID], nil
}

func (s *stubStore) RecipeRatingAggregate(_ context.Context, recipeID int) (postgres.RatingAggregate, error) {
	sum, count := 0, 0
	for _, perUser := range s.ratings {
		if r, ok := perUser[recipeID]; ok {
			sum += r
			count++
		}
	}
	if count == 0 {
		return postgres.RatingAggregate{}, nil
	}
	return postgres.RatingAggregate{Average: float64(sum) / float64(count), Count: count}, nil
}

type stubCache struct {
	entries map[string][]int
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string][]int{}}
}

func cacheKey(ingredients, dietary []string) string {
	key := ""
	for _, s := range ingredients {
		key += s + ","
	}
	key += "|"
	for _, s := range dietary {
		key += s + ","
	}
	return key
}

func (c *stubCache) Get(_ context.Context, ingredients, dietary []string) ([]int, error) {
	if ids, ok := c.entries[cacheKey(ingredients, dietary)]; ok {
		return ids, nil
	}
	return nil, common.ErrCacheMiss
}

func (c *stubCache) Set(_ context.Context, ingredients, dietary []string, ids []int) error {
	c.entries[cacheKey(ingredients, dietary)] = ids
	c.sets++
	return nil
}

type stubEnricher struct{ calls int }

func (e *stubEnricher) Enrich(_ context.Context, r *recipe.Recipe) {
	e.calls++
	r.Calories = 500
	r.Enhanced = true
}

func corpusRecipe(id int, title string, tags []string, rating float64, ingredientNames ...string) recipe.Recipe {
	ingredients := make([]recipe.Ingredient, 0, len(ingredientNames))
	for _, n := range ingredientNames {
		ingredients = append(ingredients, recipe.Ingredient{Name: n, Amount: "1"})
	}
	return recipe.Recipe{
		ID: id, Title: title, Servings: 4, CookingTime: 30,
		Difficulty: "Medium", Cuisine: "International",
		Calories: 400, DietaryTags: tags, AverageRating: rating,
		Ingredients: ingredients,
	}
}

func newTestService() (*RecipeService, *stubStore, *stubCache, *stubEnricher) {
	recipes := []recipe.Recipe{
		corpusRecipe(1, "Tomato Basil Pasta", []string{"Vegetarian"}, 4.5, "tomato", "basil", "pasta"),
		corpusRecipe(2, "Beef Fried Rice", nil, 3.0, "beef", "rice"),
		corpusRecipe(3, "Tomato Soup", []string{"Vegetarian", "Vegan"}, 4.0, "tomato", "cream"),
		corpusRecipe(4, "Garden Salad", []string{"Vegan", "Gluten-Free"}, 2.5, "lettuce", "tomato"),
	}
	store := newStubStore()
	cache := newStubCache()
	enricher := &stubEnricher{}
	svc := NewRecipeService(recipes, match.NewMatcher(), store, cache, enricher, 10, 5)
	return svc, store, cache, enricher
}

func TestSearchByIngredients(t *testing.T) {
	svc, _, cache, _ := newTestService()
	ctx := context.Background()

	results, err := svc.SearchByIngredients(ctx, []string{"tomato", "basil"}, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, results[0].ID)
	assert.Equal(t, 1, cache.sets, "miss should populate the cache")
}

func TestSearchDietaryFilter(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	results, err := svc.SearchByIngredients(ctx, []string{"tomato"}, []string{"Vegan"}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Contains(t, r.DietaryTags, "Vegan")
	}
}

func TestSearchServedFromCache(t *testing.T) {
	svc, _, cache, _ := newTestService()
	ctx := context.Background()

	first, err := svc.SearchByIngredients(ctx, []string{"tomato"}, nil, 0)
	require.NoError(t, err)

	second, err := svc.SearchByIngredients(ctx, []string{"tomato"}, nil, 0)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "cached order must match the computed order")
	}
	assert.Equal(t, 1, cache.sets, "hit must not repopulate the cache")
}

func TestSearchEnrichesZeroCalorieHits(t *testing.T) {
	svc, _, _, enricher := newTestService()
	ctx := context.Background()

	// zero out one recipe's calories so it qualifies for enrichment
	svc.mu.Lock()
	svc.recipes[0].Calories = 0
	svc.mu.Unlock()

	results, err := svc.SearchByIngredients(ctx, []string{"tomato", "basil"}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls)
	assert.InDelta(t, 500, results[0].Calories, 1e-9)

	// enrichment persisted into the corpus
	r, err := svc.GetRecipe(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 500, r.Calories, 1e-9)
	assert.Equal(t, 1, enricher.calls, "already enriched recipe must not be re-enriched")
}

func TestGetRecipe(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.GetRecipe(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Basil Pasta", r.Title)

	_, err = svc.GetRecipe(ctx, 999, 0, 0)
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestGetRecipeServingAdjustment(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.GetRecipe(ctx, 1, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, r.AdjustedServings)
	assert.Equal(t, 4, r.OriginalServings)
	assert.Equal(t, "2", r.Ingredients[0].Amount)
	assert.Equal(t, "1", r.Ingredients[0].OriginalAmount)
	assert.InDelta(t, 800, r.Calories, 1e-9)

	// the stored corpus copy stays unscaled
	again, err := svc.GetRecipe(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", again.Ingredients[0].Amount)
	assert.InDelta(t, 400, again.Calories, 1e-9)
}

func TestListRecipesFilters(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	all := svc.ListRecipes(ctx, Filter{}, 0)
	assert.Len(t, all, 4)

	vegan := svc.ListRecipes(ctx, Filter{Dietary: "Vegan"}, 0)
	assert.Len(t, vegan, 2)

	quick := svc.ListRecipes(ctx, Filter{CookingTime: "Quick"}, 0)
	assert.Empty(t, quick)

	moderate := svc.ListRecipes(ctx, Filter{CookingTime: "Moderate"}, 0)
	assert.Len(t, moderate, 4)

	limited := svc.ListRecipes(ctx, Filter{Limit: 2}, 0)
	assert.Len(t, limited, 2)
}

func TestToggleFavorite(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	state, err := svc.ToggleFavorite(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, state)

	state, err = svc.ToggleFavorite(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, state)

	_, err = svc.ToggleFavorite(ctx, 7, 999)
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestRateRecipe(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.RateRecipe(ctx, 7, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.UserRating)
	assert.InDelta(t, 5.0, r.AverageRating, 1e-9)
	assert.Equal(t, 1, r.RatingCount)

	// second rater moves the average
	r, err = svc.RateRecipe(ctx, 8, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, r.AverageRating, 1e-9)
	assert.Equal(t, 2, r.RatingCount)

	_, err = svc.RateRecipe(ctx, 7, 2, 6)
	assert.ErrorIs(t, err, common.ErrInvalidRating)
	_, err = svc.RateRecipe(ctx, 7, 999, 3)
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestFavorites(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, 7, 1)
	require.NoError(t, err)
	_, err = svc.ToggleFavorite(ctx, 7, 3)
	require.NoError(t, err)

	favs, err := svc.Favorites(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, favs, 2)
	for _, f := range favs {
		assert.True(t, f.IsFavorited)
	}
}

func TestRecommendationsWithFavorites(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, 7, 1)
	require.NoError(t, err)

	recs, err := svc.Recommendations(ctx, 7, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.NotEqual(t, 1, r.ID, "favorited recipes are not recommended")
	}

	// tomato-bearing recipes outrank the beef one
	assert.Contains(t, []int{3, 4}, recs[0].ID)
}

func TestRecommendationsFallBackToPopular(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	recs, err := svc.Recommendations(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].ID, "highest rated first")
	assert.Equal(t, 3, recs[1].ID)
}

func TestPopular(t *testing.T) {
	svc, _, _, _ := newTestService()

	popular := svc.Popular(3)
	require.Len(t, popular, 3)
	assert.Equal(t, 1, popular[0].ID)
	assert.Equal(t, 3, popular[1].ID)
	assert.Equal(t, 2, popular[2].ID)
}

func TestStats(t *testing.T) {
	svc, _, _, _ := newTestService()

	stats := svc.Stats()
	assert.Equal(t, 4, stats.TotalRecipes)
	assert.Equal(t, 4, stats.EnhancedRecipes)
	assert.Equal(t, 4, stats.Cuisines["International"])
	assert.Equal(t, 4, stats.Difficulties["Medium"])
	assert.Equal(t, 2, stats.DietaryTags["Vegetarian"])
	assert.Equal(t, 2, stats.DietaryTags["Vegan"])
}

func TestApplyRatingAggregates(t *testing.T) {
	svc, _, _, _ := newTestService()

	svc.ApplyRatingAggregates(map[int]postgres.RatingAggregate{
		2:   {Average: 4.67, Count: 3},
		999: {Average: 5, Count: 1}, // unknown recipe, ignored
	})

	r, err := svc.GetRecipe(context.Background(), 2, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4.7, r.AverageRating, 1e-9)
	assert.Equal(t, 3, r.RatingCount)
}
