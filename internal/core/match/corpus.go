package match

import (
	"math"
	"sort"
	"strings"

	"recipe-finder/internal/core/recipe"
)

// docVector is a sparse TF-IDF document vector. Indices are sorted ascending
// so dot products run as deterministic merge joins regardless of map
// iteration order during the fit.
type docVector struct {
	indices []int
	values  []float64
}

// corpusIndex is an immutable fitted vector space over a recipe collection.
// It is built once and swapped in whole; readers never observe a partially
// written index.
type corpusIndex struct {
	vocabulary  map[string]int
	idf         []float64
	vectors     []docVector
	rawNameSets []map[string]struct{}
	docCount    int
}

// buildDocument joins a recipe's normalized ingredient names into one
// space-separated document. Duplicates survive normalization on purpose.
func buildDocument(ingredients []recipe.Ingredient) string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}
	return strings.Join(NormalizeIngredients(names), " ")
}

// lowerNameSet collects a recipe's raw ingredient names, lowercased.
func lowerNameSet(ingredients []recipe.Ingredient) map[string]struct{} {
	set := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// fitCorpus fits a TF-IDF model over the given documents. The vocabulary is
// assigned in sorted token order so repeated fits over the same corpus
// produce identical vectors.
func fitCorpus(docs []string) *corpusIndex {
	docFreq := make(map[string]int)
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokens := strings.Fields(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	total := float64(len(docs))
	for i, term := range terms {
		vocabulary[term] = i
		// smoothed idf, keeps weights positive even for terms in every doc
		idf[i] = math.Log((1+total)/(1+float64(docFreq[term]))) + 1
	}

	idx := &corpusIndex{
		vocabulary: vocabulary,
		idf:        idf,
		docCount:   len(docs),
	}

	idx.vectors = make([]docVector, len(docs))
	for i, tokens := range tokenized {
		idx.vectors[i] = idx.weigh(tokens)
	}

	return idx
}

// weigh turns a token list into an L2-normalized TF-IDF vector in this
// index's space. Tokens outside the vocabulary are ignored.
func (idx *corpusIndex) weigh(tokens []string) docVector {
	counts := make(map[int]float64, len(tokens))
	for _, tok := range tokens {
		if col, ok := idx.vocabulary[tok]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return docVector{}
	}

	indices := make([]int, 0, len(counts))
	for col := range counts {
		indices = append(indices, col)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, col := range indices {
		w := counts[col] * idx.idf[col]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}

	return docVector{indices: indices, values: values}
}

// cosine returns the dot product of two L2-normalized sparse vectors, which
// for non-negative weights lands in [0,1].
func cosine(a, b docVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.indices) && j < len(b.indices) {
		switch {
		case a.indices[i] == b.indices[j]:
			sum += a.values[i] * b.values[j]
			i++
			j++
		case a.indices[i] < b.indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// fitRecipeCorpus builds the full index state for a recipe collection.
func fitRecipeCorpus(recipes []recipe.Recipe) *corpusIndex {
	docs := make([]string, len(recipes))
	for i := range recipes {
		docs[i] = buildDocument(recipes[i].Ingredients)
	}

	idx := fitCorpus(docs)
	idx.rawNameSets = make([]map[string]struct{}, len(recipes))
	for i := range recipes {
		idx.rawNameSets[i] = lowerNameSet(recipes[i].Ingredients)
	}
	return idx
}
