package types

import (
	"encoding/json"
)

// ToolInvocation is a model-issued request to run one tool.
// Arguments stay opaque until dispatch validates them.
type ToolInvocation struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ArgumentsMap decodes the arguments into a map for display purposes.
// Undecodable arguments are returned under the "raw" key.
func (i ToolInvocation) ArgumentsMap() map[string]interface{} {
	out := make(map[string]interface{})
	if len(i.Arguments) == 0 {
		return out
	}
	if err := json.Unmarshal(i.Arguments, &out); err != nil {
		return map[string]interface{}{"raw": string(i.Arguments)}
	}
	return out
}

// ToolOutcome is the result text of one invocation. It is always produced;
// failures are encoded as descriptive text with IsError set.
type ToolOutcome struct {
	InvocationID string
	ToolName     string
	Text         string
	IsError      bool
}

// Decision is what the Reasoning Client returns for one call: free text,
// one or more tool invocations, or both.
type Decision struct {
	Text        string
	Invocations []ToolInvocation
	Usage       *TokenUsage
}

// HasInvocations returns true if the model requested at least one tool.
func (d *Decision) HasInvocations() bool {
	return d != nil && len(d.Invocations) > 0
}

// ToolDefinition describes a catalog tool to the Reasoning Client.
// Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
