package match

import (
	"regexp"
	"strings"
)

// stopIngredients are pantry staples that appear in almost every recipe and
// carry no discriminative signal for matching.
var stopIngredients = map[string]struct{}{
	"salt":          {},
	"pepper":        {},
	"water":         {},
	"oil":           {},
	"sugar":         {},
	"flour":         {},
	"butter":        {},
	"garlic":        {},
	"onion":         {},
	"spices":        {},
	"turmeric":      {},
	"cumin":         {},
	"coriander":     {},
	"paprika":       {},
	"chili":         {},
	"vinegar":       {},
	"soy sauce":     {},
	"olive oil":     {},
	"vegetable oil": {},
	"black pepper":  {},
	"white pepper":  {},
	"ginger":        {},
	"cinnamon":      {},
	"nutmeg":        {},
	"cloves":        {},
	"cardamom":      {},
	"baking soda":   {},
	"baking powder": {},
	"yeast":         {},
	"vanilla":       {},
	"honey":         {},
	"maple syrup":   {},
}

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	numberPattern        = regexp.MustCompile(`\d+/\d+|\d+\.\d+|\d+`)
	nonWordPattern       = regexp.MustCompile(`[^\w\s]`)
)

// NormalizeIngredient canonicalizes a raw ingredient name: lowercase, strip
// parenthetical content, quantities and punctuation, collapse whitespace.
// Returns false when nothing usable remains or the result is a stop
// ingredient. The same normalization is applied to user input and recipe
// ingredients; normalizing only one side would skew every comparison.
func NormalizeIngredient(raw string) (string, bool) {
	clean := strings.ToLower(strings.TrimSpace(raw))
	clean = parentheticalPattern.ReplaceAllString(clean, "")
	clean = numberPattern.ReplaceAllString(clean, "")
	clean = nonWordPattern.ReplaceAllString(clean, " ")
	clean = strings.Join(strings.Fields(clean), " ")

	if clean == "" {
		return "", false
	}
	if _, stop := stopIngredients[clean]; stop {
		return "", false
	}
	return clean, true
}

// NormalizeIngredients normalizes a list of raw names, dropping entries that
// normalize to nothing. Duplicates are kept: term frequency matters to the
// vectorizer.
func NormalizeIngredients(raw []string) []string {
	processed := make([]string, 0, len(raw))
	for _, ingredient := range raw {
		if clean, ok := NormalizeIngredient(ingredient); ok {
			processed = append(processed, clean)
		}
	}
	return processed
}

// IsStopIngredient reports whether the normalized form of name is in the
// stop set.
func IsStopIngredient(name string) bool {
	clean := strings.ToLower(strings.TrimSpace(name))
	_, stop := stopIngredients[clean]
	return stop
}
