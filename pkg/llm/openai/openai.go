// Package openai provides the reasoning client for OpenAI-compatible chat
// completion APIs with native tool calling.
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	decision, err := provider.Decide(ctx, history, tools, "")
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/types"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-5.1"
)

var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	client     openai.Client
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the default model.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// NewProvider creates a provider for the given API key.
//
// If apiKey is empty, OPENAI_API_KEY is used. If no base URL option is given,
// OPENAI_BASE_URL is used when set. The SDK's automatic retries are disabled:
// a failed call is reported to the caller as is.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.baseURL == DefaultBaseURL {
		if env := os.Getenv("OPENAI_BASE_URL"); env != "" {
			p.baseURL = env
		}
	}

	p.client = newClient(p.apiKey, p.baseURL, p.httpClient)
	return p, nil
}

func newClient(apiKey, baseURL string, httpClient *http.Client) openai.Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
}

// Decide implements llm.Provider.
func (p *Provider) Decide(ctx context.Context, messages []*types.Message, tools []types.ToolDefinition, model string) (*types.Decision, error) {
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: convertToOpenAIMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = convertToOpenAITools(tools)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("reasoning response contained no choices")
	}

	msg := resp.Choices[0].Message
	decision := &types.Decision{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		id := call.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		decision.Invocations = append(decision.Invocations, types.ToolInvocation{
			ID:        id,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	if resp.Usage.TotalTokens > 0 {
		decision.Usage = &types.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	return decision, nil
}

// ValidateKey lists the available models, which requires a valid key.
func (p *Provider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return describeAPIError(err)
	}
	return nil
}

// GetModel returns the default model name.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used for API requests.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

func describeAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("authentication failed (HTTP 401): %w", err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("rate limited (HTTP 429): %w", err)
		}
		return fmt.Errorf("API request failed (HTTP %d): %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("API request failed: %w", err)
}

func convertToOpenAITools(tools []types.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}

func convertToOpenAIMessages(messages []*types.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case types.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case types.RoleAssistant:
			if !msg.IsToolRequest() {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			out = append(out, assistantToolRequest(msg))
		case types.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func assistantToolRequest(msg *types.Message) openai.ChatCompletionMessageParamUnion {
	asst := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		asst.Content.OfString = openai.String(msg.Content)
	}
	for _, inv := range msg.ToolCalls {
		args := string(inv.Arguments)
		if args == "" {
			args = "{}"
		}
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: inv.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      inv.Name,
				Arguments: args,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}
