package llm

import "context"

// MockClient is a scripted Client for tests. Responses are returned in
// order; once exhausted, the last one repeats. Requests are recorded for
// verification.
type MockClient struct {
	Responses []Response
	Err       error
	Requests  [][]ChatMessage
}

// NewMockClient creates a MockClient that answers every request with the
// given content strings, in order.
func NewMockClient(contents ...string) *MockClient {
	responses := make([]Response, 0, len(contents))
	for _, c := range contents {
		responses = append(responses, NewResponse(c))
	}
	return &MockClient{Responses: responses}
}

// RequestInference records the request and returns the next scripted
// response, or the configured error.
func (m *MockClient) RequestInference(_ context.Context, messages []ChatMessage) (Response, error) {
	m.Requests = append(m.Requests, messages)

	if m.Err != nil {
		return Response{}, m.Err
	}
	if len(m.Responses) == 0 {
		return NewResponse(""), nil
	}

	idx := len(m.Requests) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// CallCount returns how many inference requests were made.
func (m *MockClient) CallCount() int {
	return len(m.Requests)
}
