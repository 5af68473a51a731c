// Package categorizer assigns categories to transactions using multiple
// tiers, cheapest first:
// 1. Stored merchant mappings (exact match)
// 2. Transaction patterns (literal substring or regex, insertion order)
// 3. Fuzzy matching against known merchant names
// 4. Batched AI categorization as the fallback for everything else
// Newly learned categories are written back to the store so similar
// transactions skip the AI tier in the future.
package categorizer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"ledgerline/bankfeed/internal/fuzzy"
	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
	"ledgerline/bankfeed/internal/store"
)

// Result is one resolved categorization: what to assign and which tier
// resolved it.
type Result struct {
	Category   string
	Confidence float64
	Method     models.CategorizationMethod
}

// Categorizer resolves merchant categories and manages the mapping, pattern
// and similarity-cache collections backed by the store.
type Categorizer struct {
	mu            sync.RWMutex
	mappings      map[string]models.MerchantMapping
	patterns      []models.TransactionPattern
	simCache      models.SimilarityCache
	dirtyMappings bool
	dirtyCache    bool

	store          store.Backend
	client         llm.Client
	logger         logging.Logger
	minSimilarity  float64
	preserveManual bool
}

// New creates a Categorizer with the given AI client and storage backend,
// loading the persisted collections. Load failures are logged and start the
// collection empty rather than failing construction.
func New(client llm.Client, backend store.Backend, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	c := &Categorizer{
		mappings:       make(map[string]models.MerchantMapping),
		simCache:       models.SimilarityCache{},
		store:          backend,
		client:         client,
		logger:         logger,
		minSimilarity:  fuzzy.DefaultMinSimilarity,
		preserveManual: true,
	}

	mappings, err := backend.LoadMerchantMappings()
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load merchant mappings")
	} else {
		for _, m := range mappings {
			c.mappings[m.Merchant] = m
		}
	}

	patterns, err := backend.LoadPatterns()
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load patterns")
	} else {
		c.patterns = patterns
	}

	cache, err := backend.LoadSimilarityCache()
	if err != nil {
		c.logger.WithError(err).Warn("Failed to load similarity cache")
	} else if cache != nil {
		c.simCache = cache
	}

	return c
}

// SetMinSimilarity overrides the fuzzy-match threshold.
func (c *Categorizer) SetMinSimilarity(threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minSimilarity = threshold
}

// SetPreserveManual controls whether batch learning may overwrite manually
// curated mappings. Defaults to true (manual mappings win).
func (c *Categorizer) SetPreserveManual(preserve bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preserveManual = preserve
}

// FindMerchantCategory resolves a single merchant through the local tiers
// only (stored, pattern, fuzzy). Returns false when none of them match; the
// AI tier is reserved for batched resolution.
func (c *Categorizer) FindMerchantCategory(merchant string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocally(merchant)
}

// resolveLocally runs tiers 1-3. Callers must hold the write lock: the
// fuzzy tier populates the similarity cache.
func (c *Categorizer) resolveLocally(merchant string) (Result, bool) {
	// Tier 1: stored mapping, exact match.
	if mapping, ok := c.mappings[merchant]; ok {
		return Result{
			Category:   mapping.Category,
			Confidence: mapping.Confidence,
			Method:     models.MethodStored,
		}, true
	}

	// Tier 2: patterns, insertion order, first match wins.
	for _, pattern := range c.patterns {
		if c.patternMatches(pattern, merchant) {
			return Result{
				Category:   pattern.Category,
				Confidence: pattern.Confidence,
				Method:     models.MethodPattern,
			}, true
		}
	}

	// Tier 3: fuzzy match against every known merchant name.
	matches, ok := c.simCache[merchant]
	if !ok {
		candidates := make([]string, 0, len(c.mappings))
		for name := range c.mappings {
			candidates = append(candidates, name)
		}
		matches = fuzzy.FindSimilarMerchants(merchant, candidates, c.minSimilarity)
		c.simCache[merchant] = matches
		c.dirtyCache = true
	}

	if len(matches) > 0 {
		best := matches[0]
		if mapping, ok := c.mappings[best.Merchant]; ok {
			return Result{
				Category:   mapping.Category,
				Confidence: mapping.Confidence * best.Score,
				Method:     models.MethodFuzzy,
			}, true
		}
	}

	return Result{}, false
}

func (c *Categorizer) patternMatches(pattern models.TransactionPattern, merchant string) bool {
	if pattern.IsRegex {
		re, err := regexp.Compile("(?i)" + pattern.Pattern)
		if err != nil {
			c.logger.WithError(err).WithField("pattern", pattern.Pattern).Warn("Skipping invalid regex pattern")
			return false
		}
		return re.MatchString(merchant)
	}
	return strings.Contains(strings.ToLower(merchant), strings.ToLower(pattern.Pattern))
}

// BulkCategorize assigns a category, confidence and method to every
// transaction in the batch. Merchants are deduplicated so each unique name
// is resolved once; those the local tiers cannot resolve go to the AI
// collaborator in a single batched request. Categorization never fails past
// this boundary: AI trouble degrades the affected merchants to the fallback
// category instead.
func (c *Categorizer) BulkCategorize(ctx context.Context, transactions []models.Transaction) []models.Transaction {
	c.mu.Lock()

	resolved := make(map[string]Result)
	var unmatched []string
	for _, tx := range transactions {
		merchant := tx.Merchant
		if _, seen := resolved[merchant]; seen {
			continue
		}
		if result, ok := c.resolveLocally(merchant); ok {
			resolved[merchant] = result
		} else {
			resolved[merchant] = Result{} // placeholder keeps dedup simple
			unmatched = append(unmatched, merchant)
		}
	}
	c.mu.Unlock()

	if len(unmatched) > 0 {
		for merchant, result := range c.aiBatchCategorize(ctx, unmatched) {
			resolved[merchant] = result
		}
		c.learnFromBatch(resolved, unmatched)
	}

	if err := c.persist(); err != nil {
		c.logger.WithError(err).Warn("Failed to persist learned mappings")
	}

	out := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		result, ok := resolved[tx.Merchant]
		if !ok || result.Method == "" {
			out = append(out, tx)
			continue
		}
		out = append(out, tx.Categorize(result.Category, result.Confidence, result.Method))
	}
	return out
}

// learnFromBatch writes AI-resolved categories back as merchant mappings so
// the next batch resolves them in tier 1. While preserveManual is set,
// manually curated mappings are never overwritten.
func (c *Categorizer) learnFromBatch(resolved map[string]Result, merchants []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, merchant := range merchants {
		result := resolved[merchant]
		if result.Method != models.MethodAIBatch {
			continue
		}
		if existing, ok := c.mappings[merchant]; ok && existing.IsManual && c.preserveManual {
			continue
		}
		c.mappings[merchant] = models.MerchantMapping{
			Merchant:   merchant,
			Category:   result.Category,
			Confidence: result.Confidence,
		}
		c.dirtyMappings = true

		c.logger.WithFields(
			logging.Field{Key: logging.FieldMerchant, Value: merchant},
			logging.Field{Key: logging.FieldCategory, Value: result.Category},
			logging.Field{Key: logging.FieldMethod, Value: string(result.Method)},
			logging.Field{Key: logging.FieldConfidence, Value: result.Confidence},
		).Debug("Learned merchant mapping from AI batch")
	}
}

// AddMerchantMapping inserts or updates a manual mapping with confidence
// 1.0, bypassing the pattern, fuzzy and AI tiers for future lookups of this
// merchant.
func (c *Categorizer) AddMerchantMapping(merchant, category string) error {
	if strings.TrimSpace(merchant) == "" {
		return fmt.Errorf("merchant cannot be empty")
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category cannot be empty")
	}

	c.mu.Lock()
	c.mappings[merchant] = models.MerchantMapping{
		Merchant:   merchant,
		Category:   category,
		Confidence: 1.0,
		IsManual:   true,
	}
	c.dirtyMappings = true
	c.mu.Unlock()

	return c.persist()
}

// AddPattern appends a pattern; patterns are evaluated in the order they
// were added.
func (c *Categorizer) AddPattern(pattern models.TransactionPattern) error {
	if strings.TrimSpace(pattern.Pattern) == "" {
		return fmt.Errorf("pattern cannot be empty")
	}

	c.mu.Lock()
	c.patterns = append(c.patterns, pattern)
	patterns := make([]models.TransactionPattern, len(c.patterns))
	copy(patterns, c.patterns)
	c.mu.Unlock()

	return c.store.SavePatterns(patterns)
}

// ImportReport lists which merchants imported cleanly and which failed
// validation.
type ImportReport struct {
	Success []string
	Errors  map[string]error
}

// ImportMappings bulk-imports merchant mappings, overwriting existing
// entries in place. Aliases prime the similarity cache so lookups under an
// alternate spelling resolve through the fuzzy tier immediately.
func (c *Categorizer) ImportMappings(mappings []models.MerchantMapping) ImportReport {
	report := ImportReport{Errors: make(map[string]error)}

	c.mu.Lock()
	for _, mapping := range mappings {
		if strings.TrimSpace(mapping.Merchant) == "" {
			report.Errors[mapping.Merchant] = fmt.Errorf("merchant cannot be empty")
			continue
		}
		if mapping.Confidence < 0 || mapping.Confidence > 1 {
			report.Errors[mapping.Merchant] = fmt.Errorf("confidence %v outside [0,1]", mapping.Confidence)
			continue
		}

		c.mappings[mapping.Merchant] = mapping
		c.dirtyMappings = true

		// Aliases are declared equivalences, so they prime the similarity
		// cache regardless of how far the spelling drifts.
		for _, alias := range mapping.Aliases {
			score := fuzzy.CalculateSimilarity(mapping.Merchant, alias)
			c.simCache[alias] = []models.SimilarityMatch{{Merchant: mapping.Merchant, Score: score}}
			c.dirtyCache = true
		}

		report.Success = append(report.Success, mapping.Merchant)
	}
	c.mu.Unlock()

	if err := c.persist(); err != nil {
		c.logger.WithError(err).Warn("Failed to persist imported mappings")
	}
	return report
}

// Mappings returns a snapshot of the current merchant mappings.
func (c *Categorizer) Mappings() []models.MerchantMapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.MerchantMapping, 0, len(c.mappings))
	for _, m := range c.mappings {
		out = append(out, m)
	}
	return out
}

// persist saves whichever collections changed since the last save. There is
// no transaction across collections; a crash between saves can leave them
// mutually inconsistent, which is acceptable here.
func (c *Categorizer) persist() error {
	c.mu.Lock()
	saveMappings := c.dirtyMappings
	saveCache := c.dirtyCache

	var mappings []models.MerchantMapping
	if saveMappings {
		for _, m := range c.mappings {
			mappings = append(mappings, m)
		}
	}
	cache := models.SimilarityCache{}
	if saveCache {
		for k, v := range c.simCache {
			cache[k] = v
		}
	}
	c.dirtyMappings = false
	c.dirtyCache = false
	c.mu.Unlock()

	if saveMappings {
		if err := c.store.SaveMerchantMappings(mappings); err != nil {
			return fmt.Errorf("persisting merchant mappings: %w", err)
		}
	}
	if saveCache {
		if err := c.store.SaveSimilarityCache(cache); err != nil {
			return fmt.Errorf("persisting similarity cache: %w", err)
		}
	}
	return nil
}
