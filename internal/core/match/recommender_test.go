package match

import (
	"testing"

	"recipe-finder/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratedRecipe(id int, title string, rating float64, ingredientNames ...string) recipe.Recipe {
	r := makeRecipe(id, title, ingredientNames...)
	r.AverageRating = rating
	return r
}

func TestRecommendSkipsFavorited(t *testing.T) {
	favorited := []recipe.Recipe{
		makeRecipe(1, "Tomato Basil Pasta", "tomato", "basil", "pasta"),
	}
	candidates := []recipe.Recipe{
		makeRecipe(1, "Tomato Basil Pasta", "tomato", "basil", "pasta"),
		makeRecipe(2, "Tomato Soup", "tomato", "cream"),
		makeRecipe(3, "Beef Stew", "beef", "carrot"),
	}

	results := Recommend(favorited, candidates, 10)
	for _, r := range results {
		assert.NotEqual(t, 1, r.ID, "already favorited recipes must not be recommended")
	}
	require.Len(t, results, 2)
}

func TestRecommendRanksByFavoriteAffinity(t *testing.T) {
	favorited := []recipe.Recipe{
		makeRecipe(1, "Tomato Basil Pasta", "tomato", "basil", "pasta"),
	}
	candidates := []recipe.Recipe{
		makeRecipe(2, "Tomato Basil Bruschetta", "tomato", "basil", "bread"),
		makeRecipe(3, "Beef Stew", "beef", "carrot"),
		makeRecipe(4, "Tomato Soup", "tomato", "cream"),
	}

	results := Recommend(favorited, candidates, 10)
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].ID)
	assert.Equal(t, 4, results[1].ID)
	assert.Equal(t, 3, results[2].ID)

	assert.ElementsMatch(t, []string{"tomato", "basil"}, results[0].MatchingIngredients)
	assert.Equal(t, []string{"tomato"}, results[1].MatchingIngredients)
	assert.Empty(t, results[2].MatchingIngredients)
}

func TestRecommendNoFavoritesDegeneratesToRating(t *testing.T) {
	candidates := []recipe.Recipe{
		ratedRecipe(1, "Okay Omelette", 3.0, "egg"),
		ratedRecipe(2, "Great Gnocchi", 4.8, "potato", "flour"),
		ratedRecipe(3, "Fine Frittata", 4.0, "egg", "spinach"),
	}

	results := Recommend(nil, candidates, 10)
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].ID)
	assert.Equal(t, 3, results[1].ID)
	assert.Equal(t, 1, results[2].ID)

	// pure rating order: 0.3 * rating/5, no affinity component
	assert.InDelta(t, 0.3*4.8/5.0, results[0].RecommendationScore, 1e-9)
}

func TestRecommendRatingBreaksAffinityTies(t *testing.T) {
	favorited := []recipe.Recipe{
		makeRecipe(1, "Tomato Salad", "tomato"),
	}
	candidates := []recipe.Recipe{
		ratedRecipe(2, "Tomato Soup", 3.0, "tomato", "cream"),
		ratedRecipe(3, "Tomato Tart", 4.5, "tomato", "pastry"),
	}

	results := Recommend(favorited, candidates, 10)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].ID)
	assert.Equal(t, 2, results[1].ID)
}

func TestRecommendLimit(t *testing.T) {
	favorited := []recipe.Recipe{
		makeRecipe(1, "Tomato Salad", "tomato"),
	}
	candidates := []recipe.Recipe{
		makeRecipe(2, "A", "tomato"),
		makeRecipe(3, "B", "tomato"),
		makeRecipe(4, "C", "tomato"),
	}

	results := Recommend(favorited, candidates, 2)
	assert.Len(t, results, 2)

	// equal scores: stable sort keeps candidate order
	assert.Equal(t, 2, results[0].ID)
	assert.Equal(t, 3, results[1].ID)
}

func TestRecommendEmptyCandidates(t *testing.T) {
	results := Recommend([]recipe.Recipe{makeRecipe(1, "X", "tomato")}, nil, 10)
	assert.Empty(t, results)
}
