package headerdetect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/parsererror"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected rune
	}{
		{name: "comma", line: "Date,Description,Amount", expected: ','},
		{name: "semicolon", line: "Date;Description;Amount", expected: ';'},
		{name: "tab", line: "Date\tDescription\tAmount", expected: '\t'},
		{name: "pipe", line: "Date|Description|Amount", expected: '|'},
		{name: "semicolon beats single comma", line: "Date;Description, extra;Amount", expected: ';'},
		{name: "tie prefers comma", line: "a,b;c", expected: ','},
		{name: "no delimiter defaults to comma", line: "just text", expected: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.line))
		})
	}
}

func TestExtractHeaderLine(t *testing.T) {
	client := llm.NewMockClient(`{"headers": "Date,Description,Amount"}`)
	detector := NewDetector(client, &logging.MockLogger{})

	header, err := detector.ExtractHeaderLine(context.Background(), []string{
		"Bank Statement Export",
		"Date,Description,Amount",
		"2024-01-01,Coffee,-4.50",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount", header)
	assert.Equal(t, 1, client.CallCount())
}

func TestExtractHeaderLineCodeFencedResponse(t *testing.T) {
	client := llm.NewMockClient("```json\n{\"headers\": \"Date;Amount;Concepto\"}\n```")
	detector := NewDetector(client, &logging.MockLogger{})

	header, err := detector.ExtractHeaderLine(context.Background(), []string{"Date;Amount;Concepto"})

	assert.NoError(t, err)
	assert.Equal(t, "Date;Amount;Concepto", header)
}

func TestExtractHeaderLineNotCSV(t *testing.T) {
	client := llm.NewMockClient(`{"error": "not_csv"}`)
	detector := NewDetector(client, &logging.MockLogger{})

	_, err := detector.ExtractHeaderLine(context.Background(), []string{"<html><body>Login required</body></html>"})

	assert.Error(t, err)
	var notCSV *parsererror.NotCSVError
	assert.True(t, errors.As(err, &notCSV))
	assert.Contains(t, err.Error(), "AI determined the content is not a CSV file")

	// A NotCSVError is also a ParseError.
	var parseErr *parsererror.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestExtractHeaderLineUnknownErrorCode(t *testing.T) {
	client := llm.NewMockClient(`{"error": "rate_limited"}`)
	detector := NewDetector(client, &logging.MockLogger{})

	_, err := detector.ExtractHeaderLine(context.Background(), []string{"Date,Amount"})

	assert.Error(t, err)
	var notCSV *parsererror.NotCSVError
	assert.False(t, errors.As(err, &notCSV))
	assert.Contains(t, err.Error(), "rate_limited")
}

func TestExtractHeaderLineMalformedResponse(t *testing.T) {
	client := llm.NewMockClient("sure, the headers are Date and Amount")
	detector := NewDetector(client, &logging.MockLogger{})

	_, err := detector.ExtractHeaderLine(context.Background(), []string{"Date,Amount"})

	assert.Error(t, err)
	var parseErr *parsererror.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "Failed to parse AI response to valid CSV headers")
}

func TestExtractHeaderLineInferenceFailure(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("connection refused")}
	detector := NewDetector(client, &logging.MockLogger{})

	_, err := detector.ExtractHeaderLine(context.Background(), []string{"Date,Amount"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "AI header extraction failed")
}

func TestExtractHeaderLineNilClient(t *testing.T) {
	detector := NewDetector(nil, &logging.MockLogger{})

	_, err := detector.ExtractHeaderLine(context.Background(), []string{"Date,Amount"})

	assert.Error(t, err)
}

func TestExtractHeaderLineTruncatesToFiveLines(t *testing.T) {
	client := llm.NewMockClient(`{"headers": "Date,Amount"}`)
	detector := NewDetector(client, &logging.MockLogger{})

	lines := []string{"one", "two", "three", "four", "Date,Amount", "2024-01-01,-4.50", "2024-01-02,-9.00"}
	_, err := detector.ExtractHeaderLine(context.Background(), lines)
	assert.NoError(t, err)

	prompt := client.Requests[0][1].Content
	assert.Contains(t, prompt, "Date,Amount")
	assert.NotContains(t, prompt, "2024-01-01")
}
