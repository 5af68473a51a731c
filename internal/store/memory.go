package store

import (
	"sync"

	"ledgerline/bankfeed/internal/models"
)

// MemoryStore is an in-memory Backend for tests. It mirrors the replace
// semantics of the YAML store: each save swaps the whole collection.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings []models.MerchantMapping
	patterns []models.TransactionPattern
	cache    models.SimilarityCache
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: models.SimilarityCache{}}
}

// LoadMerchantMappings returns the stored merchant mappings.
func (s *MemoryStore) LoadMerchantMappings() ([]models.MerchantMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MerchantMapping, len(s.mappings))
	copy(out, s.mappings)
	return out, nil
}

// SaveMerchantMappings replaces the stored merchant mappings.
func (s *MemoryStore) SaveMerchantMappings(mappings []models.MerchantMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = make([]models.MerchantMapping, len(mappings))
	copy(s.mappings, mappings)
	return nil
}

// LoadPatterns returns the stored patterns in insertion order.
func (s *MemoryStore) LoadPatterns() ([]models.TransactionPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TransactionPattern, len(s.patterns))
	copy(out, s.patterns)
	return out, nil
}

// SavePatterns replaces the stored patterns.
func (s *MemoryStore) SavePatterns(patterns []models.TransactionPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = make([]models.TransactionPattern, len(patterns))
	copy(s.patterns, patterns)
	return nil
}

// LoadSimilarityCache returns the stored similarity cache.
func (s *MemoryStore) LoadSimilarityCache() (models.SimilarityCache, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := models.SimilarityCache{}
	for k, v := range s.cache {
		out[k] = v
	}
	return out, nil
}

// SaveSimilarityCache replaces the stored similarity cache.
func (s *MemoryStore) SaveSimilarityCache(cache models.SimilarityCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = models.SimilarityCache{}
	for k, v := range cache {
		s.cache[k] = v
	}
	return nil
}
