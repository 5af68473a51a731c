package categorizer

import (
	"context"
	"encoding/json"
	"strings"

	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/models"
)

const (
	aiBatchConfidence      = 0.7
	aiBatchErrorConfidence = 0.1
)

// aiBatchCategorize resolves every merchant in the slice with one AI
// request. Every requested merchant gets an entry in the result: merchants
// the response omits, assigns an unknown category, or that cannot be
// resolved because the call failed degrade to the fallback category with
// low confidence rather than staying uncategorized.
func (c *Categorizer) aiBatchCategorize(ctx context.Context, merchants []string) map[string]Result {
	results := make(map[string]Result, len(merchants))
	for _, merchant := range merchants {
		results[merchant] = Result{
			Category:   models.CategoryOther,
			Confidence: aiBatchErrorConfidence,
			Method:     models.MethodAIBatchError,
		}
	}

	if c.client == nil {
		c.logger.WithField(logging.FieldCount, len(merchants)).Warn("AI categorization unavailable, using fallback category")
		return results
	}

	resp, err := c.client.RequestInference(ctx, []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: batchSystemPrompt()},
		{Role: llm.RoleUser, Content: "Categorize these transactions merchants: " + strings.Join(merchants, ", ")},
	})
	if err != nil {
		c.logger.WithError(err).WithField(logging.FieldCount, len(merchants)).Warn("AI batch categorization failed, using fallback category")
		return results
	}

	assigned, err := decodeBatchResponse(resp.Content())
	if err != nil {
		c.logger.WithError(err).Warn("Failed to parse AI batch categorization response, using fallback category")
		return results
	}

	for merchant, category := range assigned {
		if _, requested := results[merchant]; !requested {
			continue
		}
		if !models.IsKnownCategory(category) {
			c.logger.WithFields(
				logging.Field{Key: logging.FieldMerchant, Value: merchant},
				logging.Field{Key: logging.FieldCategory, Value: category},
			).Warn("AI returned unknown category, using fallback")
			continue
		}
		results[merchant] = Result{
			Category:   category,
			Confidence: aiBatchConfidence,
			Method:     models.MethodAIBatch,
		}
	}

	return results
}

func batchSystemPrompt() string {
	return "You are a financial categorization expert. Respond with a json array of categories matching the input merchants. " +
		"Use only these categories: " + strings.Join(models.Categories, ", ") + ". " +
		`Format: "[{ Merchant1:Category1}, {Merchant2:Category2}, ...]"`
}

// decodeBatchResponse parses the expected payload, a JSON array of
// single-pair merchant to category objects, tolerating a Markdown code
// fence around it.
func decodeBatchResponse(content string) (map[string]string, error) {
	var entries []map[string]string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &entries); err != nil {
		return nil, err
	}

	assigned := make(map[string]string, len(entries))
	for _, entry := range entries {
		for merchant, category := range entry {
			assigned[merchant] = strings.TrimSpace(category)
			break
		}
	}
	return assigned, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
