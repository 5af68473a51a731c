package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
)

func newTestStore(t *testing.T) *YAMLStore {
	t.Helper()
	return NewYAMLStore(t.TempDir(), &logging.MockLogger{})
}

func TestYAMLStoreMerchantMappingsRoundtrip(t *testing.T) {
	s := newTestStore(t)

	mappings := []models.MerchantMapping{
		{Merchant: "STARBUCKS", Category: "food", Confidence: 0.7},
		{Merchant: "SHELL", Category: "transport", Confidence: 1.0, IsManual: true, Aliases: []string{"SHELL ZH"}},
	}
	assert.NoError(t, s.SaveMerchantMappings(mappings))

	loaded, err := s.LoadMerchantMappings()
	assert.NoError(t, err)
	assert.Equal(t, mappings, loaded)
}

func TestYAMLStorePatternsPreserveOrder(t *testing.T) {
	s := newTestStore(t)

	patterns := []models.TransactionPattern{
		{Pattern: "market", Category: "food", Confidence: 0.8},
		{Pattern: "super market", Category: "shopping", Confidence: 0.9},
		{Pattern: `^UBER`, Category: "transport", Confidence: 0.8, IsRegex: true},
	}
	assert.NoError(t, s.SavePatterns(patterns))

	loaded, err := s.LoadPatterns()
	assert.NoError(t, err)
	assert.Equal(t, patterns, loaded)
}

func TestYAMLStoreSimilarityCacheRoundtrip(t *testing.T) {
	s := newTestStore(t)

	cache := models.SimilarityCache{
		"STARBUKS": {{Merchant: "STARBUCKS", Score: 0.888}},
	}
	assert.NoError(t, s.SaveSimilarityCache(cache))

	loaded, err := s.LoadSimilarityCache()
	assert.NoError(t, err)
	assert.Equal(t, cache, loaded)
}

func TestYAMLStoreMissingFilesLoadEmpty(t *testing.T) {
	s := newTestStore(t)

	mappings, err := s.LoadMerchantMappings()
	assert.NoError(t, err)
	assert.Empty(t, mappings)

	patterns, err := s.LoadPatterns()
	assert.NoError(t, err)
	assert.Empty(t, patterns)

	cache, err := s.LoadSimilarityCache()
	assert.NoError(t, err)
	assert.Empty(t, cache)
}

func TestYAMLStoreMalformedFile(t *testing.T) {
	dir := t.TempDir()
	s := NewYAMLStore(dir, &logging.MockLogger{})

	err := os.WriteFile(filepath.Join(dir, "merchant_mappings.yaml"), []byte("mappings: {not: [a, list"), 0600)
	assert.NoError(t, err)

	_, err = s.LoadMerchantMappings()
	assert.Error(t, err)
}

func TestYAMLStoreCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewYAMLStore(dir, &logging.MockLogger{})

	assert.NoError(t, s.SaveMerchantMappings([]models.MerchantMapping{
		{Merchant: "COOP", Category: "food", Confidence: 1.0},
	}))

	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestYAMLStoreSaveReplacesCollection(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.SaveMerchantMappings([]models.MerchantMapping{
		{Merchant: "A", Category: "food", Confidence: 1.0},
		{Merchant: "B", Category: "food", Confidence: 1.0},
	}))
	assert.NoError(t, s.SaveMerchantMappings([]models.MerchantMapping{
		{Merchant: "C", Category: "shopping", Confidence: 0.7},
	}))

	loaded, err := s.LoadMerchantMappings()
	assert.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].Merchant)
}

func TestMemoryStoreImplementsBackend(t *testing.T) {
	var _ Backend = NewMemoryStore()
	var _ Backend = &YAMLStore{}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()

	mappings := []models.MerchantMapping{{Merchant: "COOP", Category: "food", Confidence: 1.0}}
	assert.NoError(t, s.SaveMerchantMappings(mappings))

	loaded, err := s.LoadMerchantMappings()
	assert.NoError(t, err)
	assert.Equal(t, mappings, loaded)

	// Mutating the loaded slice does not affect the store.
	loaded[0].Category = "shopping"
	again, err := s.LoadMerchantMappings()
	assert.NoError(t, err)
	assert.Equal(t, "food", again[0].Category)
}
