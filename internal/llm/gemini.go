package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ledgerline/bankfeed/internal/logging"
)

// GeminiClient implements Client against the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini-backed inference client. The timeout is
// the hard per-request deadline; on expiry the request is treated as failed
// and the caller's fallback policy applies.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// RequestInference sends the messages as a single prompt and returns the
// model's completion. One attempt, bounded by the configured timeout.
func (c *GeminiClient) RequestInference(ctx context.Context, messages []ChatMessage) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	model := c.client.GenerativeModel(c.model)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(messages)))
	if err != nil {
		c.logger.WithError(err).WithFields(
			logging.Field{Key: logging.FieldOperation, Value: "inference"},
			logging.Field{Key: "model", Value: c.model},
		).Warn("Inference request failed")
		return Response{}, fmt.Errorf("inference request failed: %w", err)
	}

	content := extractText(resp)
	if content == "" {
		return Response{}, fmt.Errorf("inference response contained no text")
	}

	c.logger.WithFields(
		logging.Field{Key: logging.FieldOperation, Value: "inference"},
		logging.Field{Key: "model", Value: c.model},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
	).Debug("Inference request completed")

	return NewResponse(content), nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// buildPrompt flattens role/content messages into a single prompt, keeping
// message order. Gemini has no separate system channel in this API surface,
// so system messages are prepended verbatim.
func buildPrompt(messages []ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
