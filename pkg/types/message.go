package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem is the fixed system instruction.
	RoleUser      MessageRole = "user"      // RoleUser is operator text.
	RoleAssistant MessageRole = "assistant" // RoleAssistant is model text or a tool request.
	RoleTool      MessageRole = "tool"      // RoleTool is the outcome of one tool invocation.
)

// Message is one entry of the conversation log.
//
// An assistant message with a non-empty ToolCalls slice is a tool request. Every
// tool request must be followed, before any further assistant message, by exactly
// one RoleTool message per invocation, correlated through ToolCallID.
type Message struct {
	Role    MessageRole
	Content string

	// ToolCalls is set on assistant tool requests.
	ToolCalls []ToolInvocation

	// ToolCallID and ToolName are set on tool results.
	ToolCallID string
	ToolName   string
}

// NewSystemMessage creates the system instruction message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates an operator message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a free-text assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// NewToolRequestMessage creates an assistant message requesting the given invocations.
// text is any free text the model produced alongside the request and may be empty.
func NewToolRequestMessage(text string, invocations []ToolInvocation) *Message {
	calls := make([]ToolInvocation, len(invocations))
	copy(calls, invocations)
	return &Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// NewToolResultMessage creates the tool result entry for an outcome.
func NewToolResultMessage(outcome ToolOutcome) *Message {
	return &Message{
		Role:       RoleTool,
		Content:    outcome.Text,
		ToolCallID: outcome.InvocationID,
		ToolName:   outcome.ToolName,
	}
}

// IsToolRequest returns true if the message is an assistant tool request.
func (m *Message) IsToolRequest() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// IsToolResult returns true if the message carries a tool outcome.
func (m *Message) IsToolResult() bool {
	return m.Role == RoleTool
}
