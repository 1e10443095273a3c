package match

import (
	"testing"

	"recipe-finder/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecipe(id int, title string, ingredientNames ...string) recipe.Recipe {
	ingredients := make([]recipe.Ingredient, 0, len(ingredientNames))
	for _, name := range ingredientNames {
		ingredients = append(ingredients, recipe.Ingredient{Name: name, Amount: "1", Unit: ""})
	}
	return recipe.Recipe{ID: id, Title: title, Ingredients: ingredients}
}

func testRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		makeRecipe(1, "Tomato Basil Pasta", "tomato", "onion", "garlic", "basil"),
		makeRecipe(2, "Beef Fried Rice", "beef", "rice"),
		makeRecipe(3, "Tomato Soup", "tomato", "cream"),
		makeRecipe(4, "Chicken Curry", "chicken", "coconut milk", "curry paste"),
	}
}

func TestFindBestMatchesEmptyInputs(t *testing.T) {
	m := NewMatcher()

	assert.Empty(t, m.FindBestMatches(nil, testRecipes(), 10))
	assert.Empty(t, m.FindBestMatches([]string{"tomato"}, nil, 10))

	// all stop ingredients: zero tokens after normalization
	assert.Empty(t, m.FindBestMatches([]string{"salt", "water"}, testRecipes(), 10))
}

func TestFindBestMatchesBounds(t *testing.T) {
	m := NewMatcher()
	recipes := testRecipes()

	results := m.FindBestMatches([]string{"tomato", "onion"}, recipes, 2)
	assert.LessOrEqual(t, len(results), 2)

	results = m.FindBestMatches([]string{"tomato", "onion"}, recipes, 100)
	assert.LessOrEqual(t, len(results), len(recipes))

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore,
			"results must be sorted non-increasing by match score")
	}
}

func TestFindBestMatchesOrdering(t *testing.T) {
	m := NewMatcher()
	recipes := testRecipes()

	results := m.FindBestMatches([]string{"tomato", "onion", "garlic"}, recipes, 10)
	require.NotEmpty(t, results)

	pos := make(map[int]int)
	for i, r := range results {
		pos[r.ID] = i
	}

	// the recipe sharing tomato/onion/garlic must beat the beef+rice one
	require.Contains(t, pos, 1)
	require.Contains(t, pos, 2)
	assert.Less(t, pos[1], pos[2])
}

func TestFindBestMatchesExactMatchTops(t *testing.T) {
	m := NewMatcher()
	recipes := testRecipes()

	results := m.FindBestMatches([]string{"beef", "rice"}, recipes, 10)
	require.NotEmpty(t, results)
	assert.Equal(t, 2, results[0].ID, "exact ingredient match should rank first")

	// exact match: full raw overlap plus cosine 1 on its own document
	assert.InDelta(t, 1.0, results[0].MatchScore, 0.01)
}

func TestFindBestMatchesMatchingIngredients(t *testing.T) {
	m := NewMatcher()
	recipes := testRecipes()

	results := m.FindBestMatches([]string{"Tomato", "basil", "beef"}, recipes, 10)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, results[0].ID)
	assert.ElementsMatch(t, []string{"Tomato", "basil"}, results[0].MatchingIngredients)
}

// The token path and the raw-name path use different intersection semantics
// on purpose: stop ingredients are invisible to the vectorizer but still
// count toward the displayed raw-name overlap.
func TestStopIngredientsTwoIntersections(t *testing.T) {
	m := NewMatcher()
	recipes := []recipe.Recipe{
		makeRecipe(1, "Salted Tomato", "salt", "tomato"),
		makeRecipe(2, "Plain Rice", "rice"),
	}

	// token path: salt never survives normalization
	assert.NotContains(t, NormalizeIngredients([]string{"salt", "tomato"}), "salt")

	// raw-name path: salt is a literal shared name and shows up in the display set
	results := m.FindBestMatches([]string{"salt", "tomato"}, recipes, 10)
	require.NotEmpty(t, results)
	assert.Equal(t, 1, results[0].ID)
	assert.Contains(t, results[0].MatchingIngredients, "salt")
	assert.Contains(t, results[0].MatchingIngredients, "tomato")
}

func TestFindBestMatchesSkipsRecipesWithoutIngredients(t *testing.T) {
	m := NewMatcher()
	recipes := []recipe.Recipe{
		{ID: 1, Title: "Broken Import"},
		makeRecipe(2, "Tomato Soup", "tomato"),
	}

	results := m.FindBestMatches([]string{"tomato"}, recipes, 10)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].ID)
}

func TestFindBestMatchesStopwordOnlyCorpusFallsBackToOverlap(t *testing.T) {
	m := NewMatcher()
	recipes := []recipe.Recipe{
		makeRecipe(1, "Pantry Special", "salt", "water"),
		makeRecipe(2, "Tomato Toast", "tomato", "bread"),
	}

	// cosine carries nothing for recipe 1, the raw overlap still ranks it
	results := m.FindBestMatches([]string{"tomato", "salt"}, recipes, 10)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].ID)
	assert.Greater(t, results[1].MatchScore, 0.0)
}

func TestBuildCorpusFastPathMatchesAdHoc(t *testing.T) {
	recipes := testRecipes()
	query := []string{"tomato", "basil"}

	cold := NewMatcher()
	adHoc := cold.FindBestMatches(query, recipes, 10)

	warm := NewMatcher()
	warm.BuildCorpus(recipes)
	fast := warm.FindBestMatches(query, recipes, 10)

	require.Equal(t, len(adHoc), len(fast))
	for i := range adHoc {
		assert.Equal(t, adHoc[i].ID, fast[i].ID,
			"fast path and ad hoc path should agree on ordering")
	}
}

func TestBuildCorpusDeterministicRebuild(t *testing.T) {
	recipes := testRecipes()
	query := []string{"tomato", "onion", "rice"}

	m := NewMatcher()
	m.BuildCorpus(recipes)
	first := m.FindBestMatches(query, recipes, 10)

	m.BuildCorpus(recipes)
	second := m.FindBestMatches(query, recipes, 10)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].MatchScore, second[i].MatchScore,
			"identical rebuilds must produce bit-for-bit identical scores")
	}
}

func TestFindBestMatchesStaleIndexFallsBack(t *testing.T) {
	recipes := testRecipes()

	m := NewMatcher()
	m.BuildCorpus(recipes)

	// grow the collection without rebuilding: index is stale, the matcher
	// must fit an ad hoc space instead of using mismatched vectors
	grown := append(append([]recipe.Recipe{}, recipes...), makeRecipe(5, "Basil Lemonade", "basil", "lemon"))
	results := m.FindBestMatches([]string{"basil", "lemon"}, grown, 10)
	require.NotEmpty(t, results)
	assert.Equal(t, 5, results[0].ID)
}
