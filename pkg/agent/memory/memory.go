// Package memory holds the conversation log the orchestrator feeds to the
// Reasoning Client.
package memory

import (
	"fmt"
	"sync"

	"github.com/entrhq/webpilot/pkg/types"
)

// Memory is an ordered, append-only message log.
type Memory interface {
	// Add appends a message.
	Add(msg *types.Message)
	// GetAll returns a copy of the log in order.
	GetAll() []*types.Message
	// Len returns the number of messages.
	Len() int
}

// ConversationMemory is the ConversationState of one session. The log is
// append-only; a reset replaces the whole memory instead of truncating it.
type ConversationMemory struct {
	mu       sync.RWMutex
	messages []*types.Message
}

// NewConversationMemory creates an empty log.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		messages: make([]*types.Message, 0, 16),
	}
}

// NewSeededMemory creates a log whose first entry is the given system instruction.
func NewSeededMemory(systemInstruction string) *ConversationMemory {
	m := NewConversationMemory()
	m.Add(types.NewSystemMessage(systemInstruction))
	return m
}

// Add appends a message. Nil messages are ignored.
func (m *ConversationMemory) Add(msg *types.Message) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// GetAll returns a copy of the log in order.
func (m *ConversationMemory) GetAll() []*types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Last returns the newest message, or nil for an empty log.
func (m *ConversationMemory) Last() *types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// AppendOutcomes appends the tool results answering the newest message, which
// must be a tool request. The outcomes must cover every requested invocation
// exactly once and are stored in invocation order regardless of input order.
func (m *ConversationMemory) AppendOutcomes(outcomes []types.ToolOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return fmt.Errorf("no tool request to answer")
	}
	req := m.messages[len(m.messages)-1]
	if !req.IsToolRequest() {
		return fmt.Errorf("last message is %s, not a tool request", req.Role)
	}
	if len(outcomes) != len(req.ToolCalls) {
		return fmt.Errorf("tool request has %d invocations, got %d outcomes", len(req.ToolCalls), len(outcomes))
	}

	byID := make(map[string]types.ToolOutcome, len(outcomes))
	for _, o := range outcomes {
		if _, dup := byID[o.InvocationID]; dup {
			return fmt.Errorf("duplicate outcome for invocation %q", o.InvocationID)
		}
		byID[o.InvocationID] = o
	}

	ordered := make([]*types.Message, 0, len(outcomes))
	for _, call := range req.ToolCalls {
		o, ok := byID[call.ID]
		if !ok {
			return fmt.Errorf("missing outcome for invocation %q", call.ID)
		}
		ordered = append(ordered, types.NewToolResultMessage(o))
	}
	m.messages = append(m.messages, ordered...)
	return nil
}

// PendingToolRequest reports whether the newest message is a tool request
// still waiting for its outcomes.
func (m *ConversationMemory) PendingToolRequest() bool {
	last := m.Last()
	return last != nil && last.IsToolRequest()
}

// Validate checks that every tool request is followed, before any other
// assistant or operator message, by exactly one result per invocation.
// A trailing request with no results yet is allowed only when allowPending is set.
func (m *ConversationMemory) Validate(allowPending bool) error {
	return ValidateLog(m.GetAll(), allowPending)
}

// ValidateLog is Validate over an arbitrary message slice.
func ValidateLog(messages []*types.Message, allowPending bool) error {
	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		if msg.IsToolResult() {
			return fmt.Errorf("message %d: tool result %q without a preceding request", i, msg.ToolCallID)
		}
		if !msg.IsToolRequest() {
			continue
		}

		want := make(map[string]bool, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			if want[call.ID] {
				return fmt.Errorf("message %d: duplicate invocation id %q", i, call.ID)
			}
			want[call.ID] = true
		}

		j := i + 1
		for ; j < len(messages) && messages[j].IsToolResult(); j++ {
			id := messages[j].ToolCallID
			if !want[id] {
				return fmt.Errorf("message %d: unexpected or duplicate result for %q", j, id)
			}
			delete(want, id)
		}

		if len(want) > 0 {
			if j == len(messages) && j == i+1 && allowPending {
				return nil
			}
			return fmt.Errorf("message %d: %d invocations without results", i, len(want))
		}
		i = j - 1
	}
	return nil
}
