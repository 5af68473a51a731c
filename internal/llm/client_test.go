package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseContent(t *testing.T) {
	assert.Equal(t, "hello", NewResponse("hello").Content())
	assert.Equal(t, "", Response{}.Content())
}

func TestMockClientScriptedResponses(t *testing.T) {
	client := NewMockClient("first", "second")

	resp, err := client.RequestInference(context.Background(), []ChatMessage{{Role: RoleUser, Content: "a"}})
	assert.NoError(t, err)
	assert.Equal(t, "first", resp.Content())

	resp, err = client.RequestInference(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "second", resp.Content())

	// Exhausted scripts repeat the last response.
	resp, err = client.RequestInference(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "second", resp.Content())

	assert.Equal(t, 3, client.CallCount())
}

func TestMockClientError(t *testing.T) {
	client := &MockClient{Err: errors.New("unavailable")}

	_, err := client.RequestInference(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 1, client.CallCount())
}

func TestMockClientRecordsRequests(t *testing.T) {
	client := NewMockClient("ok")

	messages := []ChatMessage{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "categorize"},
	}
	_, err := client.RequestInference(context.Background(), messages)
	assert.NoError(t, err)

	assert.Len(t, client.Requests, 1)
	assert.Equal(t, messages, client.Requests[0])
}
