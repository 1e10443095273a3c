// Package enrich fills in recipe metadata the dataset lacks (cooking time,
// difficulty, nutrition) by asking the Gemini API for estimates.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Default estimates applied whenever the model is unavailable or returns
// something unusable. A recipe enriched with defaults is still marked
// Enhanced so it is not retried on every request.
const (
	DefaultCookingTime = 30
	DefaultDifficulty  = "Medium"
	DefaultCalories    = 400
	DefaultProtein     = 15.0
	DefaultCarbs       = 50.0
	DefaultFat         = 15.0
	DefaultCuisine     = "International"
)

const maxPromptIngredients = 10

// Estimate is the structured answer expected from the model.
type Estimate struct {
	CookingTime int      `json:"cooking_time"`
	Difficulty  string   `json:"difficulty"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	DietaryTags []string `json:"dietary_tags"`
	Cuisine     string   `json:"cuisine"`
}

// GeminiService estimates missing recipe metadata via the Gemini API.
type GeminiService struct {
	config *config.GeminiConfig
	client *resty.Client
}

// NewGeminiService creates the enrichment client. With no API key the
// service still works, every call falls through to defaults.
func NewGeminiService(cfg *config.GeminiConfig) *GeminiService {
	client := resty.New().
		SetBaseURL("https://generativelanguage.googleapis.com/v1beta").
		SetTimeout(cfg.Timeout)

	return &GeminiService{
		config: cfg,
		client: client,
	}
}

// Enrich fills in a recipe's missing metadata in place and marks it
// Enhanced. Model failure is never an error for the caller; defaults apply.
func (s *GeminiService) Enrich(ctx context.Context, r *recipe.Recipe) {
	start := time.Now()

	est, err := s.estimate(ctx, r)
	if err != nil {
		common.LogEnrichment(r.Title, time.Since(start), err)
		applyDefaults(r)
		return
	}

	r.CookingTime = est.CookingTime
	r.Difficulty = est.Difficulty
	r.Calories = est.Calories
	r.Protein = est.Protein
	r.Carbs = est.Carbs
	r.Fat = est.Fat
	if len(est.DietaryTags) > 0 {
		r.DietaryTags = est.DietaryTags
	}
	if est.Cuisine != "" {
		r.Cuisine = est.Cuisine
	}
	r.Enhanced = true

	common.LogEnrichment(r.Title, time.Since(start), nil)
}

// estimate asks the model for the missing fields and parses its answer.
func (s *GeminiService) estimate(ctx context.Context, r *recipe.Recipe) (*Estimate, error) {
	if !s.config.Enabled || s.config.APIKey == "" {
		return nil, common.ErrEnrichmentError
	}

	body := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": buildPrompt(r)},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": s.config.MaxTokens,
		},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.config.APIKey).
		SetBody(body).
		Post(fmt.Sprintf("/models/%s:generateContent", s.config.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Gemini: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("Gemini API returned error: %s", resp.String())
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	return parseEstimate(result.Candidates[0].Content.Parts[0].Text)
}

// buildPrompt lists the title and leading ingredient names and asks for a
// bare JSON object.
func buildPrompt(r *recipe.Recipe) string {
	names := r.IngredientNames()
	if len(names) > maxPromptIngredients {
		names = names[:maxPromptIngredients]
	}

	var b strings.Builder
	b.WriteString("Recipe: " + r.Title + "\n")
	b.WriteString("Ingredients: " + strings.Join(names, ", ") + "\n\n")
	b.WriteString("Estimate in JSON:\n")
	b.WriteString("- cooking_time: minutes (number)\n")
	b.WriteString("- difficulty: Easy, Medium, or Hard\n")
	b.WriteString("- calories: number\n")
	b.WriteString("- protein: grams (number)\n")
	b.WriteString("- carbs: grams (number)\n")
	b.WriteString("- fat: grams (number)\n")
	b.WriteString("- dietary_tags: array of applicable tags\n")
	b.WriteString("- cuisine: string\n\n")
	b.WriteString("JSON only, no explanations.")
	return b.String()
}

// parseEstimate extracts the JSON object from model output, filling absent
// fields with defaults.
func parseEstimate(text string) (*Estimate, error) {
	raw, err := common.ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	est := Estimate{
		CookingTime: DefaultCookingTime,
		Difficulty:  DefaultDifficulty,
		Calories:    DefaultCalories,
		Protein:     DefaultProtein,
		Carbs:       DefaultCarbs,
		Fat:         DefaultFat,
	}
	if err := common.ParseJSON(raw, &est); err != nil {
		return nil, fmt.Errorf("failed to parse estimate: %w", err)
	}
	return &est, nil
}

// applyDefaults sets the documented fallback estimates, keeping any dietary
// tags and cuisine the dataset already inferred.
func applyDefaults(r *recipe.Recipe) {
	r.CookingTime = DefaultCookingTime
	r.Difficulty = DefaultDifficulty
	r.Calories = DefaultCalories
	r.Protein = DefaultProtein
	r.Carbs = DefaultCarbs
	r.Fat = DefaultFat
	if len(r.DietaryTags) == 0 {
		r.DietaryTags = []string{"Vegetarian"}
	}
	if r.Cuisine == "" {
		r.Cuisine = DefaultCuisine
	}
	r.Enhanced = true
}
