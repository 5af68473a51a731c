package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{name: "identical strings", a: "STARBUCKS", b: "STARBUCKS", expected: 1.0},
		{name: "both empty", a: "", b: "", expected: 1.0},
		{name: "one empty", a: "ABC", b: "", expected: 0.0},
		{name: "single substitution", a: "STARBUCKS", b: "STARBUKS", expected: 1.0 - 1.0/9.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateSimilarity(tt.a, tt.b), 0.0001)
		})
	}
}

func TestCalculateSimilarityIsSymmetric(t *testing.T) {
	assert.Equal(t, CalculateSimilarity("STARBUCKS", "STARBUKS"), CalculateSimilarity("STARBUKS", "STARBUCKS"))
}

func TestFindSimilarMerchants(t *testing.T) {
	candidates := []string{"STARBUCKS", "WALMART", "STARBUCK", "AMAZON"}

	matches := FindSimilarMerchants("STARBUKS", candidates, DefaultMinSimilarity)

	assert.NotEmpty(t, matches)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, DefaultMinSimilarity)
	}
	// Sorted descending by score.
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestFindSimilarMerchantsFiltersBelowThreshold(t *testing.T) {
	matches := FindSimilarMerchants("STARBUCKS", []string{"WALMART", "AMAZON"}, DefaultMinSimilarity)
	assert.Empty(t, matches)
}

func TestFindSimilarMerchantsCapsAtFive(t *testing.T) {
	candidates := []string{"MERCHANT1", "MERCHANT2", "MERCHANT3", "MERCHANT4", "MERCHANT5", "MERCHANT6", "MERCHANT7"}

	matches := FindSimilarMerchants("MERCHANT0", candidates, 0.5)

	assert.Len(t, matches, 5)
}

func TestFindSimilarMerchantsExactMatchFirst(t *testing.T) {
	matches := FindSimilarMerchants("MIGROS", []string{"MIGROS ZH", "MIGROS"}, 0.5)

	assert.NotEmpty(t, matches)
	assert.Equal(t, "MIGROS", matches[0].Merchant)
	assert.Equal(t, 1.0, matches[0].Score)
}
