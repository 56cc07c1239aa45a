// Package tools declares the Action Catalog: the fixed set of tools the model
// may invoke, their parameter schemas, and the handler each one binds to.
package tools

import (
	"context"

	"github.com/entrhq/webpilot/pkg/tools/browser"
)

// Kind tells the orchestrator how a tool's outcome is produced.
type Kind int

const (
	// KindAction tools run against the Automation Surface.
	KindAction Kind = iota
	// KindAskOperator tools suspend the run until the operator answers.
	KindAskOperator
	// KindTerminal tools end the run successfully.
	KindTerminal
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindAskOperator:
		return "ask_operator"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Tool is one entry of the Action Catalog.
type Tool interface {
	// Name returns the identifier the model uses (e.g., "navigate")
	Name() string

	// Description returns a natural-language description shown to the model
	Description() string

	// Schema returns the JSON schema of the tool's argument object
	Schema() map[string]interface{}

	// Kind returns how the tool's outcome is produced
	Kind() Kind

	// Prepare validates the decoded arguments and binds them into a Step.
	// It returns an *ArgumentError when a required argument is missing or malformed.
	Prepare(args Arguments) (*Step, error)
}

// Step is a validated invocation ready to be carried out.
//
// For KindAction steps, Execute runs the bound surface operation. For
// KindAskOperator steps Text holds the question; for KindTerminal steps Text
// holds the summary.
type Step struct {
	Tool string
	Kind Kind
	Text string

	run func(ctx context.Context, surface browser.Surface) string
}

// Execute runs an action step against the surface and returns its result text
// verbatim. Non-action steps return Text.
func (s *Step) Execute(ctx context.Context, surface browser.Surface) string {
	if s.run == nil {
		return s.Text
	}
	return s.run(ctx, surface)
}

func actionStep(name string, run func(ctx context.Context, surface browser.Surface) string) *Step {
	return &Step{Tool: name, Kind: KindAction, run: run}
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}
