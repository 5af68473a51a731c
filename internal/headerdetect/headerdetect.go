// Package headerdetect infers CSV structure from raw statement text: the
// delimiter by counting candidates, and the header line by a single
// AI-assisted extraction call over the file's noisy preamble.
package headerdetect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ledgerline/bankfeed/internal/llm"
	"ledgerline/bankfeed/internal/logging"
	"ledgerline/bankfeed/internal/parsererror"
)

// headerLineCount is how many leading non-blank lines are shown to the AI
// collaborator when extracting the header line.
const headerLineCount = 5

// delimiterCandidates in tie-break order: the first candidate with the
// highest count wins.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DetectDelimiter counts the occurrences of each candidate delimiter in the
// line and returns the one with the highest count.
func DetectDelimiter(firstLine string) rune {
	best := delimiterCandidates[0]
	bestCount := strings.Count(firstLine, string(best))

	for _, candidate := range delimiterCandidates[1:] {
		if count := strings.Count(firstLine, string(candidate)); count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// Detector extracts the literal header line of a CSV file via the AI
// inference collaborator.
type Detector struct {
	client llm.Client
	logger logging.Logger
}

// NewDetector creates a Detector using the given inference client.
func NewDetector(client llm.Client, logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Detector{client: client, logger: logger}
}

// aiHeaderResponse is the strict shape accepted from the collaborator:
// either a headers payload or a structured error code. Anything else is a
// parse failure.
type aiHeaderResponse struct {
	Headers string `json:"headers"`
	Error   string `json:"error"`
}

const errCodeNotCSV = "not_csv"

// ExtractHeaderLine sends the first lines of the file to the AI collaborator
// and returns the literal header line it identifies. It fails with
// NotCSVError when the collaborator signals not_csv, and with ParseError when
// the response is not valid JSON or carries an unrecognized error code.
func (d *Detector) ExtractHeaderLine(ctx context.Context, lines []string) (string, error) {
	if d.client == nil {
		return "", parsererror.NewParseError("", "AI inference collaborator not available")
	}

	leading := lines
	if len(leading) > headerLineCount {
		leading = leading[:headerLineCount]
	}

	response, err := d.client.RequestInference(ctx, buildMessages(strings.Join(leading, "\n")))
	if err != nil {
		return "", &parsererror.ParseError{Msg: "AI header extraction failed", Err: err}
	}

	parsed, err := decodeResponse(response.Content())
	if err != nil {
		return "", err
	}

	d.logger.WithField("headers", parsed.Headers).Debug("AI extracted header line")
	return parsed.Headers, nil
}

func buildMessages(headerLines string) []llm.ChatMessage {
	prompt := fmt.Sprintf(`You are an expert in identifying the table headers from csv files.

Respond with a JSON object with these fields:
{
    "headers": "the original detected line of CSV headers",
}

If the input does not contain CSV table headers respond with "{ "error": "not_csv" }".
Extract the table headers from this csv file:

%s`, headerLines)

	return []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: "You are an experienced CSV expert that identifies CSV headers."},
		{Role: llm.RoleUser, Content: prompt},
	}
}

// decodeResponse validates the collaborator's completion. The content is
// untrusted text: it is unwrapped from code fences if present and must decode
// to exactly one of the two accepted shapes.
func decodeResponse(content string) (aiHeaderResponse, error) {
	var parsed aiHeaderResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return aiHeaderResponse{}, &parsererror.ParseError{
			Msg: "Failed to parse AI response to valid CSV headers",
			Err: err,
		}
	}

	if parsed.Error != "" {
		if parsed.Error == errCodeNotCSV {
			return aiHeaderResponse{}, parsererror.NewNotCSVError("")
		}
		return aiHeaderResponse{}, parsererror.NewParseError("",
			fmt.Sprintf("AI responded with unknown error: %s", parsed.Error))
	}

	if strings.TrimSpace(parsed.Headers) == "" {
		return aiHeaderResponse{}, parsererror.NewParseError("", "AI response contained no header line")
	}

	return parsed, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// frequently add around JSON payloads.
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
