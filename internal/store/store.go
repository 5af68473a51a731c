// Package store provides persistence for categorization data: merchant
// mappings, transaction patterns and the fuzzy-similarity cache.
package store

import "ledgerline/bankfeed/internal/models"

// Backend is the categorization persistence contract. Each save replaces the
// full collection; callers read, modify and write back. No transactional
// guarantee spans the three collections.
type Backend interface {
	LoadMerchantMappings() ([]models.MerchantMapping, error)
	SaveMerchantMappings(mappings []models.MerchantMapping) error

	LoadPatterns() ([]models.TransactionPattern, error)
	SavePatterns(patterns []models.TransactionPattern) error

	LoadSimilarityCache() (models.SimilarityCache, error)
	SaveSimilarityCache(cache models.SimilarityCache) error
}
