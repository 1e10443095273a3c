// Package dataset loads the recipe corpus from the Kaggle CSV export and
// turns free-text rows into structured recipes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// pantryLines are ingredient lines that carry no amount; they come through
// as "to taste" entries instead of being force-fit into the amount patterns.
var pantryLines = map[string]struct{}{
	"salt": {}, "pepper": {}, "water": {}, "oil": {}, "sugar": {},
	"flour": {}, "butter": {}, "garlic": {}, "onion": {}, "spices": {},
	"turmeric": {}, "cumin": {}, "coriander": {}, "paprika": {}, "chili": {},
	"vinegar": {}, "soy sauce": {}, "olive oil": {}, "vegetable oil": {},
	"black pepper": {}, "white pepper": {}, "ginger": {}, "cinnamon": {},
	"nutmeg": {}, "cloves": {}, "cardamom": {}, "baking soda": {},
	"baking powder": {}, "yeast": {}, "vanilla": {}, "honey": {},
	"maple syrup": {}, "salt and pepper": {}, "salt to taste": {},
	"pepper to taste": {},
}

var (
	amountUnitName   = regexp.MustCompile(`^(\d+\.?\d*)\s*([a-zA-Z0-9_]+)\s+(.+)`)
	amountName       = regexp.MustCompile(`^(\d+\.?\d*)\s+(.+)`)
	fractionUnitName = regexp.MustCompile(`^(\d+/\d+)\s*([a-zA-Z0-9_]+)\s+(.+)`)
	fractionName     = regexp.MustCompile(`^(\d+/\d+)\s+(.+)`)

	whitespaceRun = regexp.MustCompile(`\s+`)
	numberedStep  = regexp.MustCompile(`\d+\.`)
	titleSanitize = regexp.MustCompile(`[^a-z0-9]+`)
)

// cuisineKeywords is checked in order; the first cuisine with a keyword hit
// in the title or ingredient names wins.
var cuisineKeywords = []struct {
	cuisine  string
	keywords []string
}{
	{"Italian", []string{"pasta", "pizza", "risotto", "mozzarella", "parmesan", "basil", "oregano"}},
	{"Mexican", []string{"taco", "burrito", "salsa", "avocado", "cilantro", "lime", "chili"}},
	{"Indian", []string{"curry", "masala", "turmeric", "cumin", "coriander", "ginger", "garam"}},
	{"Chinese", []string{"soy", "ginger", "stir fry", "noodle", "rice", "sesame", "five spice"}},
	{"Mediterranean", []string{"olive", "feta", "hummus", "tzatziki", "lemon", "oregano"}},
	{"American", []string{"burger", "cheese", "bacon", "bbq", "potato", "corn"}},
	{"Thai", []string{"coconut", "lemongrass", "thai basil", "fish sauce", "lime"}},
	{"Japanese", []string{"soy", "miso", "sushi", "rice", "ginger", "wasabi"}},
}

// cuisineImages provides a stock photo per cuisine when no local image
// matches a recipe.
var cuisineImages = []struct {
	cuisine string
	url     string
}{
	{"italian", "https://images.pexels.com/photos/1437267/pexels-photo-1437267.jpeg"},
	{"chinese", "https://images.pexels.com/photos/2679501/pexels-photo-2679501.jpeg"},
	{"indian", "https://images.pexels.com/photos/2474658/pexels-photo-2474658.jpeg"},
	{"mexican", "https://images.pexels.com/photos/461198/pexels-photo-461198.jpeg"},
	{"american", "https://images.pexels.com/photos/699544/pexels-photo-699544.jpeg"},
	{"thai", "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg"},
	{"japanese", "https://images.pexels.com/photos/2092507/pexels-photo-2092507.jpeg"},
	{"mediterranean", "https://images.pexels.com/photos/6275121/pexels-photo-6275121.jpeg"},
}

const defaultImage = "https://images.pexels.com/photos/1640770/pexels-photo-1640770.jpeg"

const (
	maxIngredients = 20
	maxSteps       = 10
)

// Preprocessor loads and normalizes the raw CSV dataset.
type Preprocessor struct {
	csvPath   string
	imagesDir string
}

// NewPreprocessor creates a Preprocessor reading from csvPath and resolving
// recipe images under imagesDir.
func NewPreprocessor(csvPath, imagesDir string) *Preprocessor {
	return &Preprocessor{csvPath: csvPath, imagesDir: imagesDir}
}

// Load reads the CSV and returns the processed recipe corpus. Malformed rows
// are skipped with a warning; only an unreadable file is an error.
func (p *Preprocessor) Load() ([]recipe.Recipe, error) {
	f, err := os.Open(p.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(rows) < 2 {
		return []recipe.Recipe{}, nil
	}

	cols := columnIndex(rows[0])
	recipes := make([]recipe.Recipe, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, ok := p.processRow(row, cols, i)
		if !ok {
			continue
		}
		recipes = append(recipes, r)
	}

	common.LogInfo("dataset loaded",
		zap.String("path", p.csvPath),
		zap.Int("rows", len(rows)-1),
		zap.Int("recipes", len(recipes)),
	)
	return recipes, nil
}

// columnIndex maps header names to positions, case-insensitive.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	if i, ok := cols[name]; ok && i < len(row) {
		return row[i]
	}
	return ""
}

// processRow turns one CSV row into a recipe. Rows without a usable
// ingredient list or instructions are dropped.
func (p *Preprocessor) processRow(row []string, cols map[string]int, index int) (recipe.Recipe, bool) {
	title := cleanText(field(row, cols, "title"))
	if title == "" {
		title = fmt.Sprintf("Recipe %d", index)
	}

	ingredientsText := field(row, cols, "cleaned_ingredients")
	if ingredientsText == "" {
		ingredientsText = field(row, cols, "ingredients")
	}
	instructionsText := field(row, cols, "instructions")
	if ingredientsText == "" || instructionsText == "" {
		return recipe.Recipe{}, false
	}

	ingredients := parseIngredients(ingredientsText)
	if len(ingredients) == 0 {
		return recipe.Recipe{}, false
	}
	instructions := parseInstructions(instructionsText)
	if len(instructions) == 0 {
		return recipe.Recipe{}, false
	}

	return recipe.Recipe{
		ID:           index + 1,
		Title:        title,
		Description:  describeRecipe(title, ingredients),
		ImageURL:     p.imageURL(field(row, cols, "image_name"), title),
		Difficulty:   "Medium",
		CookingTime:  30,
		Servings:     4,
		Cuisine:      inferCuisine(title, ingredients),
		Ingredients:  ingredients,
		Instructions: instructions,
		DietaryTags:  inferDietaryTags(ingredients),
	}, true
}

func cleanText(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// parseIngredients splits the raw ingredient text into structured entries,
// capped at maxIngredients.
func parseIngredients(text string) []recipe.Ingredient {
	ingredients := make([]recipe.Ingredient, 0, maxIngredients)
	for _, line := range strings.Split(text, "\n") {
		line = cleanText(strings.Trim(line, `[]'",`))
		if len(line) < 2 {
			continue
		}
		ing := parseIngredientLine(line)
		if ing.Name == "" {
			continue
		}
		ingredients = append(ingredients, ing)
		if len(ingredients) == maxIngredients {
			break
		}
	}
	return ingredients
}

// parseIngredientLine extracts amount/unit/name from a single line. Pantry
// staples without an amount become "to taste"; unmatched lines keep the whole
// text as the name with an amount of 1.
func parseIngredientLine(line string) recipe.Ingredient {
	lower := strings.ToLower(line)
	if _, ok := pantryLines[lower]; ok {
		return recipe.Ingredient{Name: line, Amount: "to taste"}
	}

	for _, re := range []*regexp.Regexp{amountUnitName, fractionUnitName} {
		if m := re.FindStringSubmatch(lower); m != nil {
			return recipe.Ingredient{Name: titleCase(m[3]), Amount: m[1], Unit: m[2]}
		}
	}
	for _, re := range []*regexp.Regexp{amountName, fractionName} {
		if m := re.FindStringSubmatch(lower); m != nil {
			return recipe.Ingredient{Name: titleCase(m[2]), Amount: m[1]}
		}
	}

	return recipe.Ingredient{Name: titleCase(line), Amount: "1"}
}

// parseInstructions splits the instruction text into steps: first by
// newlines, then sentence boundaries, then numbered or bulleted lists. Steps
// shorter than ten characters are noise and dropped. Capped at maxSteps.
func parseInstructions(text string) []string {
	var steps []string
	switch {
	case strings.Contains(text, "\n"):
		steps = strings.Split(text, "\n")
	case len(splitSentences(text)) > 1:
		steps = splitSentences(text)
	case numberedStep.MatchString(text):
		steps = numberedStep.Split(text, -1)
	case strings.Contains(text, "•"):
		steps = strings.Split(text, "•")
	default:
		steps = splitSentences(text)
	}

	out := make([]string, 0, maxSteps)
	for _, step := range steps {
		step = cleanText(step)
		if len(step) <= 10 {
			continue
		}
		out = append(out, capitalize(step))
		if len(out) == maxSteps {
			break
		}
	}
	return out
}

// splitSentences breaks text at ". " boundaries followed by an uppercase
// letter, keeping abbreviations and decimals intact.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] != '.' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && unicode.IsUpper(runes[j]) {
			parts = append(parts, string(runes[start:i]))
			start = j
			i = j - 1
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// describeRecipe builds a one-line description from the leading ingredients.
func describeRecipe(title string, ingredients []recipe.Ingredient) string {
	n := len(ingredients)
	if n > 3 {
		n = 3
	}
	names := make([]string, 0, n)
	for _, ing := range ingredients[:n] {
		names = append(names, ing.Name)
	}
	return fmt.Sprintf("A delicious %s made with %s. Perfect for any occasion.",
		strings.ToLower(title), strings.Join(names, ", "))
}

// inferCuisine guesses a cuisine from keywords in the title and ingredient
// names, defaulting to International.
func inferCuisine(title string, ingredients []recipe.Ingredient) string {
	titleLower := strings.ToLower(title)
	var names strings.Builder
	for _, ing := range ingredients {
		names.WriteString(strings.ToLower(ing.Name))
		names.WriteByte(' ')
	}
	ingredientNames := names.String()

	for _, ck := range cuisineKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(titleLower, kw) || strings.Contains(ingredientNames, kw) {
				return ck.cuisine
			}
		}
	}
	return "International"
}

// inferDietaryTags tags a recipe by the absence of indicator ingredients.
// Substring matching is intentionally loose; enrichment refines these later.
func inferDietaryTags(ingredients []recipe.Ingredient) []string {
	var names strings.Builder
	for _, ing := range ingredients {
		names.WriteString(strings.ToLower(ing.Name))
		names.WriteByte(' ')
	}
	joined := names.String()

	containsAny := func(indicators []string) bool {
		for _, ind := range indicators {
			if strings.Contains(joined, ind) {
				return true
			}
		}
		return false
	}

	tags := []string{}
	if !containsAny([]string{"chicken", "beef", "pork", "lamb", "fish", "seafood", "meat", "bacon"}) {
		tags = append(tags, "Vegetarian")
	}
	if !containsAny([]string{"milk", "cheese", "butter", "cream", "egg", "yogurt", "honey"}) {
		tags = append(tags, "Vegan")
	}
	if !containsAny([]string{"wheat", "flour", "bread", "pasta", "barley", "rye"}) {
		tags = append(tags, "Gluten-Free")
	}
	return tags
}

// imageURL resolves a recipe image: the named file under imagesDir if it
// exists, then a title-based filename match, then a cuisine stock photo.
func (p *Preprocessor) imageURL(imageName, title string) string {
	imageName = strings.TrimSpace(imageName)
	dirExists := false
	if info, err := os.Stat(p.imagesDir); err == nil && info.IsDir() {
		dirExists = true
	}

	if imageName != "" && dirExists {
		if _, err := os.Stat(filepath.Join(p.imagesDir, imageName)); err == nil {
			return "/static/" + imageName
		}
	}

	if dirExists {
		sanitized := strings.Trim(titleSanitize.ReplaceAllString(strings.ToLower(title), "-"), "-")
		for _, pattern := range []string{"*.jpg", "*.jpeg", "*.png"} {
			matches, err := filepath.Glob(filepath.Join(p.imagesDir, pattern))
			if err != nil {
				continue
			}
			for _, path := range matches {
				if strings.Contains(strings.ToLower(filepath.Base(path)), sanitized) {
					return "/static/" + filepath.Base(path)
				}
			}
		}
	}

	cuisine := strings.ToLower(inferCuisine(title, nil))
	for _, ci := range cuisineImages {
		if strings.Contains(cuisine, ci.cuisine) {
			return ci.url
		}
	}
	return defaultImage
}
