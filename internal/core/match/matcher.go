package match

import (
	"sort"
	"strings"
	"sync/atomic"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultTopK caps result lists when the caller passes no explicit limit.
const DefaultTopK = 10

// Score blend weights: cosine similarity dominates, exact name overlap keeps
// recipes with the literal ingredients from drowning in tokenization noise.
const (
	similarityWeight = 0.7
	overlapWeight    = 0.3
)

// Matcher scores recipes against a user's available ingredients. The fitted
// corpus index is shared by concurrent searches and replaced wholesale on
// rebuild.
type Matcher struct {
	index atomic.Pointer[corpusIndex]
}

// NewMatcher creates a Matcher with no fitted corpus. Searches work before
// the first BuildCorpus call, they just fit an ad hoc space per call.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// BuildCorpus fits the TF-IDF space over the given recipe collection and
// atomically installs it. Safe to call while searches are in flight.
func (m *Matcher) BuildCorpus(recipes []recipe.Recipe) {
	idx := fitRecipeCorpus(recipes)
	m.index.Store(idx)

	common.LogInfo("recipe corpus built",
		zap.Int("recipes", idx.docCount),
		zap.Int("vocabulary", len(idx.vocabulary)),
	)
}

// FindBestMatches ranks recipes by how well their ingredients match the
// user's, descending by blended score, truncated to topK. Empty input on
// either side yields an empty slice, never an error.
func (m *Matcher) FindBestMatches(userIngredients []string, recipes []recipe.Recipe, topK int) []recipe.ScoredRecipe {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(recipes) == 0 {
		return []recipe.ScoredRecipe{}
	}

	userTokens := strings.Fields(strings.Join(NormalizeIngredients(userIngredients), " "))
	if len(userTokens) == 0 {
		return []recipe.ScoredRecipe{}
	}

	userNames := lowerUserNames(userIngredients)

	// Fast path: reuse the prebuilt space when it still covers the current
	// collection, vectorizing only the user document. The count check is
	// deliberately coarse; anything finer would need per-recipe diffing.
	idx := m.index.Load()
	var userVec docVector
	var recipeVecs []docVector
	var rawSets []map[string]struct{}

	if idx != nil && idx.docCount == len(recipes) {
		userVec = idx.weigh(userTokens)
		recipeVecs = idx.vectors
		rawSets = idx.rawNameSets
	} else {
		if idx != nil {
			common.LogWarn("corpus index stale, fitting ad hoc space",
				zap.Int("indexed", idx.docCount),
				zap.Int("current", len(recipes)),
			)
		}
		adHoc := fitAdHoc(userTokens, recipes)
		userVec = adHoc.vectors[0]
		recipeVecs = adHoc.vectors[1:]
		rawSets = adHoc.rawNameSets
	}

	scored := make([]recipe.ScoredRecipe, 0, len(recipes))
	for i := range recipes {
		// records without ingredients carry no signal, skip them
		if len(recipes[i].Ingredients) == 0 {
			continue
		}

		sim := cosine(userVec, recipeVecs[i])

		// Second, coarser signal: exact raw-name overlap, case-insensitive,
		// independent of the stop-ingredient filtering above.
		matching := intersectNames(userIngredients, rawSets[i])
		overlap := float64(len(matching)) / float64(max(len(userNames), 1))

		scored = append(scored, recipe.ScoredRecipe{
			Recipe:              recipes[i],
			MatchScore:          similarityWeight*sim + overlapWeight*overlap,
			MatchingIngredients: matching,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].MatchScore > scored[b].MatchScore
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// fitAdHoc fits a throwaway space over the user document plus the current
// recipe set, used whenever the shared index is absent or stale.
func fitAdHoc(userTokens []string, recipes []recipe.Recipe) *corpusIndex {
	docs := make([]string, 0, len(recipes)+1)
	docs = append(docs, strings.Join(userTokens, " "))
	for i := range recipes {
		docs = append(docs, buildDocument(recipes[i].Ingredients))
	}

	idx := fitCorpus(docs)
	idx.rawNameSets = make([]map[string]struct{}, len(recipes))
	for i := range recipes {
		idx.rawNameSets[i] = lowerNameSet(recipes[i].Ingredients)
	}
	return idx
}

// lowerUserNames dedupes the user's raw ingredient names, lowercased.
func lowerUserNames(userIngredients []string) map[string]struct{} {
	set := make(map[string]struct{}, len(userIngredients))
	for _, name := range userIngredients {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// intersectNames returns the user's raw names (as typed, trimmed) whose
// lowercase form appears in the recipe's name set, in input order without
// duplicates.
func intersectNames(userIngredients []string, recipeNames map[string]struct{}) []string {
	matching := make([]string, 0, len(userIngredients))
	seen := make(map[string]struct{}, len(userIngredients))
	for _, raw := range userIngredients {
		trimmed := strings.TrimSpace(raw)
		lower := strings.ToLower(trimmed)
		if lower == "" {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		if _, ok := recipeNames[lower]; ok {
			matching = append(matching, trimmed)
			seen[lower] = struct{}{}
		}
	}
	return matching
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
