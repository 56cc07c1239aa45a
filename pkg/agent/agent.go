// Package agent provides the orchestrator that turns operator tasks into a
// decide, act, observe loop over the reasoning client and the browser.
//
// The Orchestrator runs as its own task and talks to the presentation layer
// only through channels:
//
//	orch, err := agent.New(provider, driver)
//	if err != nil {
//	    return err
//	}
//	if err := orch.Start(ctx); err != nil {
//	    return err
//	}
//	ch := orch.GetChannels()
//	ch.Input <- types.NewUserInput("open example.com")
//	for ev := range ch.Event {
//	    ...
//	}
//
// Subpackages:
//   - memory: the conversation log and its tool pairing invariant
//   - tools: the Action Catalog and argument validation
package agent

import (
	"context"

	"github.com/entrhq/webpilot/pkg/types"
)

// Agent is the interface the executors depend on.
type Agent interface {
	// Start begins the event loop in a goroutine and returns immediately.
	// The loop runs until the context is canceled, Shutdown is called or a
	// cancel input arrives.
	Start(ctx context.Context) error

	// Shutdown stops the event loop and waits for it to exit or for ctx.
	Shutdown(ctx context.Context) error

	// GetChannels returns the queues shared with the presentation layer.
	GetChannels() *types.AgentChannels

	// State returns the current RunState.
	State() types.RunState

	// ToolNames lists the catalog tools in order.
	ToolNames() []string
}
