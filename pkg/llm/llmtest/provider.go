// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/webpilot/pkg/types"
)

// ErrScriptExhausted is returned when Decide is called more often than scripted.
var ErrScriptExhausted = errors.New("llmtest: no scripted decision left")

// Call is one recorded Decide call.
type Call struct {
	Messages []*types.Message
	Tools    []types.ToolDefinition
	Model    string
}

type step struct {
	decision *types.Decision
	err      error
}

// Provider returns scripted decisions in order and records every call.
type Provider struct {
	Model string

	// KeyErr is returned by ValidateKey.
	KeyErr error

	mu    sync.Mutex
	steps []step
	calls []Call
}

// New creates an empty script.
func New() *Provider {
	return &Provider{Model: "test-model"}
}

// Text queues a plain-text reply.
func (p *Provider) Text(text string) *Provider {
	return p.push(step{decision: &types.Decision{Text: text}})
}

// Tools queues a tool request.
func (p *Provider) Tools(invs ...types.ToolInvocation) *Provider {
	return p.push(step{decision: &types.Decision{Invocations: invs}})
}

// Decision queues an arbitrary decision.
func (p *Provider) Decision(d *types.Decision) *Provider {
	return p.push(step{decision: d})
}

// Fail queues a transport error.
func (p *Provider) Fail(err error) *Provider {
	return p.push(step{err: err})
}

func (p *Provider) push(s step) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, s)
	return p
}

// Decide implements llm.Provider.
func (p *Provider) Decide(ctx context.Context, messages []*types.Message, tools []types.ToolDefinition, model string) (*types.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]*types.Message, len(messages))
	for i, m := range messages {
		c := *m
		snapshot[i] = &c
	}
	p.calls = append(p.calls, Call{Messages: snapshot, Tools: tools, Model: model})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	s := p.steps[0]
	p.steps = p.steps[1:]
	return s.decision, s.err
}

// GetModel implements llm.Provider.
func (p *Provider) GetModel() string {
	return p.Model
}

// ValidateKey implements llm.Provider.
func (p *Provider) ValidateKey(context.Context) error {
	return p.KeyErr
}

// Calls returns the recorded calls.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// Remaining returns the number of unused scripted steps.
func (p *Provider) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.steps)
}

// Invocation builds a ToolInvocation with JSON-encoded args.
func Invocation(id, name string, args map[string]interface{}) types.ToolInvocation {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(fmt.Sprintf("llmtest: cannot encode args: %v", err))
	}
	return types.ToolInvocation{ID: id, Name: name, Arguments: raw}
}
