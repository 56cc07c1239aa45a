// Package llm defines the reasoning client used by the orchestrator.
//
// A Provider turns a conversation and a set of tool definitions into a
// Decision: free text, tool invocations, or both. Providers know nothing
// about sessions, events or the browser.
//
//	provider, err := openai.NewProvider(os.Getenv("OPENAI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	decision, err := provider.Decide(ctx, history, catalog.Definitions(), "")
package llm

import (
	"context"

	"github.com/entrhq/webpilot/pkg/types"
)

// Provider is the reasoning client interface.
type Provider interface {
	// Decide sends the conversation and the tool definitions to the model and
	// returns its decision. An empty model selects the provider default.
	//
	// Transport failures (network, authentication, rate limiting, malformed
	// responses) are returned as errors. Decide never retries.
	Decide(ctx context.Context, messages []*types.Message, tools []types.ToolDefinition, model string) (*types.Decision, error)

	// GetModel returns the default model name.
	GetModel() string

	// ValidateKey performs a cheap authenticated call to confirm the
	// configured credentials are accepted.
	ValidateKey(ctx context.Context) error
}
