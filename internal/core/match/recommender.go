package match

import (
	"sort"
	"strings"

	"recipe-finder/internal/core/recipe"
)

// Recommendation blend weights: ingredient affinity with the user's
// favorites dominates, average rating breaks the rest.
const (
	affinityWeight = 0.7
	ratingWeight   = 0.3
)

// Recommend scores candidate recipes against the union of ingredients from
// the user's favorited recipes, descending, truncated to limit. Already
// favorited candidates are skipped. With no favorite ingredients at all the
// ranking degenerates to pure rating order, which is fine; callers substitute
// a popularity ordering before ever reaching that state.
func Recommend(favorited, candidates []recipe.Recipe, limit int) []recipe.RecommendedRecipe {
	if limit <= 0 {
		limit = DefaultTopK
	}

	favoriteIngredients := make(map[string]struct{})
	favoritedIDs := make(map[int]struct{}, len(favorited))
	for i := range favorited {
		favoritedIDs[favorited[i].ID] = struct{}{}
		for _, ing := range favorited[i].Ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Name))
			if name != "" {
				favoriteIngredients[name] = struct{}{}
			}
		}
	}

	scored := make([]recipe.RecommendedRecipe, 0, len(candidates))
	for i := range candidates {
		if _, fav := favoritedIDs[candidates[i].ID]; fav {
			continue
		}

		matching := commonIngredients(candidates[i].Ingredients, favoriteIngredients)
		similarity := float64(len(matching)) / float64(max(len(favoriteIngredients), 1))
		ratingBoost := candidates[i].AverageRating / 5.0

		scored = append(scored, recipe.RecommendedRecipe{
			Recipe:              candidates[i],
			RecommendationScore: affinityWeight*similarity + ratingWeight*ratingBoost,
			MatchingIngredients: matching,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].RecommendationScore > scored[b].RecommendationScore
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// commonIngredients returns the candidate's ingredient names, lowercased,
// that appear in the favorite set, in list order without duplicates.
func commonIngredients(ingredients []recipe.Ingredient, favorites map[string]struct{}) []string {
	matching := make([]string, 0, len(ingredients))
	seen := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		if _, ok := favorites[name]; ok {
			matching = append(matching, name)
			seen[name] = struct{}{}
		}
	}
	return matching
}
