package recipe

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Name           string `json:"name"`
	Amount         string `json:"amount"`
	Unit           string `json:"unit"`
	OriginalAmount string `json:"original_amount,omitempty"`
}

// Recipe is a full recipe record. AverageRating defaults to 0 when a recipe
// has never been rated.
type Recipe struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ImageURL      string       `json:"image_url"`
	Difficulty    string       `json:"difficulty"`
	CookingTime   int          `json:"cooking_time"`
	Servings      int          `json:"servings"`
	Cuisine       string       `json:"cuisine"`
	Calories      float64      `json:"calories"`
	Protein       float64      `json:"protein"`
	Carbs         float64      `json:"carbs"`
	Fat           float64      `json:"fat"`
	Ingredients   []Ingredient `json:"ingredients"`
	Instructions  []string     `json:"instructions"`
	DietaryTags   []string     `json:"dietary_tags"`
	AverageRating float64      `json:"average_rating"`
	RatingCount   int          `json:"rating_count"`

	// user-specific view fields, populated per request
	IsFavorited bool `json:"is_favorited"`
	UserRating  int  `json:"user_rating"`

	// serving adjustment bookkeeping
	AdjustedServings int  `json:"adjusted_servings,omitempty"`
	OriginalServings int  `json:"original_servings,omitempty"`
	Enhanced         bool `json:"enhanced"`
}

// IngredientNames returns the raw ingredient names in list order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// ScoredRecipe is a search hit: a recipe plus its blended match score and the
// raw ingredient names shared with the query.
type ScoredRecipe struct {
	Recipe
	MatchScore          float64  `json:"match_score"`
	MatchingIngredients []string `json:"matching_ingredients"`
}

// RecommendedRecipe is a recommendation candidate with its score and the
// ingredient names shared with the user's favorites.
type RecommendedRecipe struct {
	Recipe
	RecommendationScore float64  `json:"recommendation_score"`
	MatchingIngredients []string `json:"matching_ingredients"`
}

// Nutrition groups the per-recipe nutrition figures for scaling.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Stats summarizes the loaded corpus.
type Stats struct {
	TotalRecipes    int            `json:"total_recipes"`
	EnhancedRecipes int            `json:"enhanced_recipes"`
	Cuisines        map[string]int `json:"cuisines"`
	Difficulties    map[string]int `json:"difficulties"`
	DietaryTags     map[string]int `json:"dietary_tags"`
}
