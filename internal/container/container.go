// Package container provides dependency injection for the bankfeed
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"

	"ledgerline/bankfeed/internal/categorizer"
	"ledgerline/bankfeed/internal/config"
	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/store"
	"ledgerline/bankfeed/internal/txparser"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation; all fields are private and
// can only be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.Backend
	aiClient    llm.Client
	gemini      *llm.GeminiClient
	parser      *txparser.Parser
	categorizer *categorizer.Categorizer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	dataDir, err := cfg.DataDirectory()
	if err != nil {
		return nil, err
	}
	backend := store.NewYAMLStore(dataDir, logger)

	// Create AI client (if enabled and a key is configured)
	var aiClient llm.Client
	var gemini *llm.GeminiClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
		gemini, err = llm.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("creating AI client: %w", err)
		}
		aiClient = gemini
		logger.Info("AI collaboration enabled")
	} else {
		logger.Info("AI collaboration disabled")
	}

	cat := categorizer.New(aiClient, backend, logger)
	cat.SetMinSimilarity(cfg.Categorization.MinSimilarity)
	cat.SetPreserveManual(cfg.Categorization.PreserveManual)

	parser := txparser.New(aiClient, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "ai_enabled", Value: aiClient != nil},
		logging.Field{Key: "data_directory", Value: dataDir})

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       backend,
		aiClient:    aiClient,
		gemini:      gemini,
		parser:      parser,
		categorizer: cat,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetParser returns the container's transaction parser instance.
func (c *Container) GetParser() *txparser.Parser {
	return c.parser
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetStore returns the container's storage backend.
func (c *Container) GetStore() store.Backend {
	return c.store
}

// GetAIClient returns the container's AI client instance.
// Returns nil if AI is not enabled.
func (c *Container) GetAIClient() llm.Client {
	return c.aiClient
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("Container closed")
	return nil
}
