package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webpilot/pkg/types"
)

const toolCallResponse = `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1700000000, "model": "gpt-5.1",
  "choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
    "role": "assistant", "content": null,
    "tool_calls": [
      {"id": "call_1", "type": "function", "function": {"name": "navigate", "arguments": "{\"url\":\"example.com\"}"}},
      {"id": "", "type": "function", "function": {"name": "read_visible_text", "arguments": "{}"}}
    ]}}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
}`

const textResponse = `{
  "id": "chatcmpl-2", "object": "chat.completion", "created": 1700000000, "model": "gpt-4o",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "All done."}}]
}`

type recorded struct {
	Model    string                   `json:"model"`
	Messages []map[string]interface{} `json:"messages"`
	Tools    []map[string]interface{} `json:"tools"`
}

func newTestServer(t *testing.T, status int, body string, got *recorded) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil && r.Method == http.MethodPost {
			raw, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(raw, got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	_, err := NewProvider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	p, err := NewProvider("")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.GetModel())
	assert.Equal(t, "http://localhost:9999/v1", p.GetBaseURL())

	p, err = NewProvider("key", WithModel("o4-mini"), WithBaseURL("http://example.test/v1"))
	require.NoError(t, err)
	assert.Equal(t, "o4-mini", p.GetModel())
	assert.Equal(t, "http://example.test/v1", p.GetBaseURL())
}

func TestDecideToolCalls(t *testing.T) {
	var got recorded
	srv := newTestServer(t, http.StatusOK, toolCallResponse, &got)
	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	history := []*types.Message{
		types.NewSystemMessage("You drive a browser."),
		types.NewUserMessage("open example.com"),
		types.NewToolRequestMessage("", []types.ToolInvocation{
			{ID: "call_0", Name: "wait", Arguments: json.RawMessage(`{"seconds":1}`)},
		}),
		types.NewToolResultMessage(types.ToolOutcome{InvocationID: "call_0", ToolName: "wait", Text: "Waited 1s"}),
	}
	tools := []types.ToolDefinition{{
		Name:        "navigate",
		Description: "Open a URL",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"url": map[string]interface{}{"type": "string"}},
			"required":   []string{"url"},
		},
	}}

	decision, err := p.Decide(context.Background(), history, tools, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0]["role"])
	assert.Equal(t, "assistant", got.Messages[2]["role"])
	assert.NotEmpty(t, got.Messages[2]["tool_calls"])
	assert.Equal(t, "tool", got.Messages[3]["role"])
	assert.Equal(t, "call_0", got.Messages[3]["tool_call_id"])
	require.Len(t, got.Tools, 1)
	fn, _ := got.Tools[0]["function"].(map[string]interface{})
	assert.Equal(t, "navigate", fn["name"])

	assert.Empty(t, decision.Text)
	require.True(t, decision.HasInvocations())
	require.Len(t, decision.Invocations, 2)
	assert.Equal(t, "call_1", decision.Invocations[0].ID)
	assert.Equal(t, "navigate", decision.Invocations[0].Name)
	assert.JSONEq(t, `{"url":"example.com"}`, string(decision.Invocations[0].Arguments))
	assert.NotEmpty(t, decision.Invocations[1].ID, "missing ids are generated")

	require.NotNil(t, decision.Usage)
	assert.Equal(t, 150, decision.Usage.TotalTokens)
}

func TestDecideTextAndModelOverride(t *testing.T) {
	var got recorded
	srv := newTestServer(t, http.StatusOK, textResponse, &got)
	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	decision, err := p.Decide(context.Background(), []*types.Message{types.NewUserMessage("hi")}, nil, "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Empty(t, got.Tools)
	assert.Equal(t, "All done.", decision.Text)
	assert.False(t, decision.HasInvocations())
	assert.Nil(t, decision.Usage)
}

func TestDecideTransportErrors(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, nil)
	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Decide(context.Background(), []*types.Message{types.NewUserMessage("hi")}, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")

	srv = newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil)
	p, err = NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = p.Decide(context.Background(), []*types.Message{types.NewUserMessage("hi")}, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestValidateKey(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"object":"list","data":[{"id":"gpt-5.1","object":"model","created":1,"owned_by":"openai"}]}`, nil)
	p, err := NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	assert.NoError(t, p.ValidateKey(context.Background()))

	srv = newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, nil)
	p, err = NewProvider("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	err = p.ValidateKey(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
