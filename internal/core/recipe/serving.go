package recipe

import (
	"math"
	"strconv"
	"strings"
)

// commonFractions maps decimal values back to kitchen-friendly fraction
// strings. Checked in order with a tolerance, so 0.33 still prints as 1/3.
var commonFractions = []struct {
	value float64
	text  string
}{
	{0.125, "1/8"},
	{0.25, "1/4"},
	{0.333, "1/3"},
	{0.5, "1/2"},
	{0.666, "2/3"},
	{0.75, "3/4"},
	{0.875, "7/8"},
}

// ParseAmount converts an ingredient amount string to a float. Understands
// plain numbers, fractions ("1/2") and mixed numbers ("1 1/2"). Anything
// unparseable comes back as 0, amounts are advisory, never fatal.
func ParseAmount(amount string) float64 {
	amount = strings.ToLower(strings.TrimSpace(amount))
	if amount == "" {
		return 0
	}

	if strings.Contains(amount, "/") {
		if whole, rest, found := strings.Cut(amount, " "); found {
			w, err := strconv.ParseFloat(whole, 64)
			if err != nil {
				return 0
			}
			frac, ok := parseFraction(rest)
			if !ok {
				return 0
			}
			return w + frac
		}
		frac, ok := parseFraction(amount)
		if !ok {
			return 0
		}
		return frac
	}

	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFraction(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0, false
	}
	return n / d, true
}

// FormatAmount renders a scaled amount back into a readable string: whole
// numbers without a decimal point, common fractions as fractions, everything
// else rounded to one decimal place.
func FormatAmount(amount float64) string {
	if amount == 0 {
		return "0"
	}
	if amount == math.Trunc(amount) {
		return strconv.Itoa(int(amount))
	}

	for _, cf := range commonFractions {
		if math.Abs(amount-cf.value) < 0.01 {
			return cf.text
		}
	}

	rounded := math.Round(amount*10) / 10
	if rounded == math.Trunc(rounded) {
		return strconv.Itoa(int(rounded))
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

// AdjustIngredients scales ingredient amounts from originalServings to
// desiredServings, keeping the unscaled amount in OriginalAmount. A zero
// original serving count leaves the list untouched.
func AdjustIngredients(ingredients []Ingredient, originalServings, desiredServings int) []Ingredient {
	if originalServings == 0 {
		return ingredients
	}

	ratio := float64(desiredServings) / float64(originalServings)
	adjusted := make([]Ingredient, len(ingredients))
	for i, ing := range ingredients {
		adjusted[i] = ing
		adjusted[i].Amount = FormatAmount(ParseAmount(ing.Amount) * ratio)
		adjusted[i].OriginalAmount = ing.Amount
	}
	return adjusted
}

// AdjustNutrition scales per-recipe nutrition figures to the desired serving
// count, rounded to one decimal place.
func AdjustNutrition(n Nutrition, originalServings, desiredServings int) Nutrition {
	if originalServings == 0 {
		return n
	}

	ratio := float64(desiredServings) / float64(originalServings)
	scale := func(v float64) float64 {
		return math.Round(v*ratio*10) / 10
	}
	return Nutrition{
		Calories: scale(n.Calories),
		Protein:  scale(n.Protein),
		Carbs:    scale(n.Carbs),
		Fat:      scale(n.Fat),
	}
}
