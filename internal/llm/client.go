// Package llm defines the request/response contract with the AI inference
// collaborator. The pipeline never assumes a transport: anything that can
// take an ordered list of role/content messages and produce one completion
// satisfies Client. Completions are untrusted text and callers must validate
// them before use.
package llm

import "context"

// Chat roles understood by the inference collaborator.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one role/content pair of an inference request.
type ChatMessage struct {
	Role    string
	Content string
}

// Choice is a single completion alternative.
type Choice struct {
	Message ChatMessage
}

// Response is a completion returned by the collaborator. Callers read the
// first choice's content.
type Response struct {
	Choices []Choice
}

// Content returns the first choice's content, or the empty string when the
// response carries no choices.
func (r Response) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Client is the AI inference collaborator. A single attempt is made per
// call; the implementation enforces its own hard timeout and retries, if
// desired, belong to the caller.
type Client interface {
	RequestInference(ctx context.Context, messages []ChatMessage) (Response, error)
}

// NewResponse wraps a content string in a single-choice Response.
func NewResponse(content string) Response {
	return Response{Choices: []Choice{{Message: ChatMessage{Content: content}}}}
}
