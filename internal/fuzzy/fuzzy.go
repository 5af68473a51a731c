// Package fuzzy provides the string-similarity scoring used to match
// merchant name variations like "STARBUCKS 001" vs "STARBUCKS 002".
package fuzzy

import (
	"sort"

	lev "github.com/lithammer/fuzzysearch/fuzzy"

	"ledgerline/bankfeed/internal/models"
)

// DefaultMinSimilarity is the similarity threshold below which two merchant
// names are not considered variations of each other.
const DefaultMinSimilarity = 0.85

// maxMatches caps the candidate list kept per queried merchant.
const maxMatches = 5

// CalculateSimilarity scores the similarity of two strings as
// 1 - distance/len(longer), where distance is the Levenshtein edit distance.
// Identical strings score 1.0; maximally dissimilar strings of equal length
// approach 0. The function is symmetric.
func CalculateSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := lev.LevenshteinDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}

// FindSimilarMerchants scores query against every candidate, keeps the
// candidates scoring at least minSimilarity, and returns them sorted
// descending by score, capped at five entries. Ties keep the candidates'
// input order.
func FindSimilarMerchants(query string, candidates []string, minSimilarity float64) []models.SimilarityMatch {
	matches := make([]models.SimilarityMatch, 0, len(candidates))

	for _, candidate := range candidates {
		score := CalculateSimilarity(query, candidate)
		if score >= minSimilarity {
			matches = append(matches, models.SimilarityMatch{Merchant: candidate, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}
