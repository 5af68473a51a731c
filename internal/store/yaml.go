package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
)

// File permissions for persisted categorization data.
const (
	permDataFile  = 0600
	permDirectory = 0750
)

// YAMLStore is the production Backend: one YAML file per collection. Missing
// files load as empty collections, not errors, so a fresh data directory
// works without setup.
type YAMLStore struct {
	MappingsFile   string
	PatternsFile   string
	SimilarityFile string

	logger logging.Logger
}

// NewYAMLStore creates a YAML-backed store rooted at dir, using the default
// file names.
func NewYAMLStore(dir string, logger logging.Logger) *YAMLStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &YAMLStore{
		MappingsFile:   filepath.Join(dir, "merchant_mappings.yaml"),
		PatternsFile:   filepath.Join(dir, "patterns.yaml"),
		SimilarityFile: filepath.Join(dir, "similarity_cache.yaml"),
		logger:         logger,
	}
}

// mappingsDoc is the on-disk shape of the merchant mappings file.
type mappingsDoc struct {
	Mappings []models.MerchantMapping `yaml:"mappings"`
}

// patternsDoc is the on-disk shape of the patterns file. Slice order is
// preserved, which carries the patterns' first-match-wins evaluation order.
type patternsDoc struct {
	Patterns []models.TransactionPattern `yaml:"patterns"`
}

// LoadMerchantMappings loads all merchant mappings from the YAML file.
func (s *YAMLStore) LoadMerchantMappings() ([]models.MerchantMapping, error) {
	var doc mappingsDoc
	if err := s.loadFile(s.MappingsFile, &doc); err != nil {
		return nil, fmt.Errorf("loading merchant mappings: %w", err)
	}
	s.logger.WithField(logging.FieldCount, len(doc.Mappings)).Debug("Loaded merchant mappings")
	return doc.Mappings, nil
}

// SaveMerchantMappings replaces the persisted merchant mapping collection.
func (s *YAMLStore) SaveMerchantMappings(mappings []models.MerchantMapping) error {
	if err := s.saveFile(s.MappingsFile, mappingsDoc{Mappings: mappings}); err != nil {
		return fmt.Errorf("saving merchant mappings: %w", err)
	}
	s.logger.WithField(logging.FieldCount, len(mappings)).Debug("Saved merchant mappings")
	return nil
}

// LoadPatterns loads all transaction patterns, in insertion order.
func (s *YAMLStore) LoadPatterns() ([]models.TransactionPattern, error) {
	var doc patternsDoc
	if err := s.loadFile(s.PatternsFile, &doc); err != nil {
		return nil, fmt.Errorf("loading patterns: %w", err)
	}
	s.logger.WithField(logging.FieldCount, len(doc.Patterns)).Debug("Loaded patterns")
	return doc.Patterns, nil
}

// SavePatterns replaces the persisted pattern collection.
func (s *YAMLStore) SavePatterns(patterns []models.TransactionPattern) error {
	if err := s.saveFile(s.PatternsFile, patternsDoc{Patterns: patterns}); err != nil {
		return fmt.Errorf("saving patterns: %w", err)
	}
	return nil
}

// LoadSimilarityCache loads the persisted fuzzy-similarity cache.
func (s *YAMLStore) LoadSimilarityCache() (models.SimilarityCache, error) {
	cache := models.SimilarityCache{}
	if err := s.loadFile(s.SimilarityFile, &cache); err != nil {
		return nil, fmt.Errorf("loading similarity cache: %w", err)
	}
	return cache, nil
}

// SaveSimilarityCache replaces the persisted fuzzy-similarity cache.
func (s *YAMLStore) SaveSimilarityCache(cache models.SimilarityCache) error {
	if err := s.saveFile(s.SimilarityFile, cache); err != nil {
		return fmt.Errorf("saving similarity cache: %w", err)
	}
	return nil
}

// loadFile reads and unmarshals one YAML file into out. A missing file
// leaves out at its zero value.
func (s *YAMLStore) loadFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField(logging.FieldFile, path).Debug("Data file not found, starting empty")
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// saveFile marshals in and writes it to path, creating the parent directory
// when needed.
func (s *YAMLStore) saveFile(path string, in interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), permDirectory); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, permDataFile); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
