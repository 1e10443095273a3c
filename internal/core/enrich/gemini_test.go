package enrich

import (
	"context"
	"testing"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEstimateFencedJSON(t *testing.T) {
	text := "Here you go:\n```json\n{\"cooking_time\": 45, \"difficulty\": \"Hard\", \"calories\": 650, \"cuisine\": \"Thai\"}\n```"

	est, err := parseEstimate(text)
	require.NoError(t, err)
	assert.Equal(t, 45, est.CookingTime)
	assert.Equal(t, "Hard", est.Difficulty)
	assert.InDelta(t, 650, est.Calories, 1e-9)
	assert.Equal(t, "Thai", est.Cuisine)

	// absent fields keep the documented defaults
	assert.InDelta(t, DefaultProtein, est.Protein, 1e-9)
	assert.InDelta(t, DefaultFat, est.Fat, 1e-9)
}

func TestParseEstimateBareJSON(t *testing.T) {
	est, err := parseEstimate(`{"cooking_time": 20, "dietary_tags": ["Vegan"]}`)
	require.NoError(t, err)
	assert.Equal(t, 20, est.CookingTime)
	assert.Equal(t, []string{"Vegan"}, est.DietaryTags)
	assert.Equal(t, DefaultDifficulty, est.Difficulty)
}

func TestParseEstimateEmbeddedJSON(t *testing.T) {
	est, err := parseEstimate(`Sure! The estimates are {"calories": 300} for this one.`)
	require.NoError(t, err)
	assert.InDelta(t, 300, est.Calories, 1e-9)
}

func TestParseEstimateGarbage(t *testing.T) {
	_, err := parseEstimate("I cannot estimate this recipe.")
	assert.Error(t, err)
}

func TestEnrichDisabledAppliesDefaults(t *testing.T) {
	s := NewGeminiService(&config.GeminiConfig{Enabled: false})
	r := &recipe.Recipe{Title: "Mystery Stew", Cuisine: "Thai", DietaryTags: []string{"Gluten-Free"}}

	s.Enrich(context.Background(), r)

	assert.True(t, r.Enhanced)
	assert.Equal(t, DefaultCookingTime, r.CookingTime)
	assert.Equal(t, DefaultDifficulty, r.Difficulty)
	assert.InDelta(t, DefaultCalories, r.Calories, 1e-9)

	// inferred metadata survives the default fallback
	assert.Equal(t, "Thai", r.Cuisine)
	assert.Equal(t, []string{"Gluten-Free"}, r.DietaryTags)
}

func TestEnrichDefaultsFillEmptyMetadata(t *testing.T) {
	s := NewGeminiService(&config.GeminiConfig{Enabled: false})
	r := &recipe.Recipe{Title: "Mystery Stew"}

	s.Enrich(context.Background(), r)
	assert.Equal(t, DefaultCuisine, r.Cuisine)
	assert.Equal(t, []string{"Vegetarian"}, r.DietaryTags)
}
