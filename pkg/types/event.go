package types

// AgentEventType defines the type of event emitted by the orchestrator.
type AgentEventType string

const (
	EventTypeReasoningStarted AgentEventType = "reasoning_started" // EventTypeReasoningStarted indicates a Reasoning Client call is about to be made.
	EventTypeReasoningEnded   AgentEventType = "reasoning_ended"   // EventTypeReasoningEnded indicates the Reasoning Client call returned.
	EventTypeOperatorMessage  AgentEventType = "operator_message"  // EventTypeOperatorMessage echoes operator text accepted into the conversation.
	EventTypeAssistantMessage AgentEventType = "assistant_message" // EventTypeAssistantMessage carries free text produced by the model.
	EventTypeToolCall         AgentEventType = "tool_call"         // EventTypeToolCall indicates a tool invocation is being dispatched.
	EventTypeToolResult       AgentEventType = "tool_result"       // EventTypeToolResult carries the outcome text of a tool invocation.
	EventTypeSystemNotice     AgentEventType = "system_notice"     // EventTypeSystemNotice carries informational notices such as "memory cleared".
	EventTypeSuccess          AgentEventType = "success"           // EventTypeSuccess indicates the run ended through task_complete.
	EventTypeError            AgentEventType = "error"             // EventTypeError indicates an error surfaced to the operator.
	EventTypeQuestion         AgentEventType = "question"          // EventTypeQuestion indicates the model asked the operator a question.
	EventTypeRunState         AgentEventType = "run_state"         // EventTypeRunState indicates a RunState transition.
	EventTypeTokenUsage       AgentEventType = "token_usage"       // EventTypeTokenUsage indicates token usage information from a reasoning call.
	EventTypeTurnEnd          AgentEventType = "turn_end"          // EventTypeTurnEnd indicates the orchestrator finished handling one operator input.
)

// AgentEvent represents an event emitted by the orchestrator during execution.
// Events are informational only and never feed back into the conversation.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the decoded argument object (for tool call events).
	ToolInput map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Content holds the text payload (message, tool result, summary, question, notice).
	Content string

	// ToolName is the name of the tool (for tool events).
	ToolName string

	// InvocationID correlates tool call and tool result events.
	InvocationID string

	// Type indicates the kind of event.
	Type AgentEventType

	// RunState is the new state (for run state events).
	RunState RunState

	// TokenUsage contains token usage information (for token usage and reasoning events).
	TokenUsage *TokenUsage
}

// TokenUsage contains token usage statistics from a reasoning call.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the input/prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens in the generated completion.
	CompletionTokens int

	// TotalTokens is the total number of tokens used (prompt + completion).
	TotalTokens int
}

func newEvent(t AgentEventType) *AgentEvent {
	return &AgentEvent{
		Type:     t,
		Metadata: make(map[string]interface{}),
	}
}

// NewReasoningStartedEvent creates a reasoning started event. contextTokens is the
// estimated size of the prompt about to be sent; zero when unknown.
func NewReasoningStartedEvent(model string, iteration, contextTokens int) *AgentEvent {
	e := newEvent(EventTypeReasoningStarted)
	e.Metadata["model"] = model
	e.Metadata["iteration"] = iteration
	if contextTokens > 0 {
		e.TokenUsage = &TokenUsage{PromptTokens: contextTokens, TotalTokens: contextTokens}
	}
	return e
}

// NewReasoningEndedEvent creates a reasoning ended event.
func NewReasoningEndedEvent() *AgentEvent {
	return newEvent(EventTypeReasoningEnded)
}

// NewOperatorMessageEvent creates an operator message event.
func NewOperatorMessageEvent(content string) *AgentEvent {
	e := newEvent(EventTypeOperatorMessage)
	e.Content = content
	return e
}

// NewAssistantMessageEvent creates an assistant message event.
func NewAssistantMessageEvent(content string) *AgentEvent {
	e := newEvent(EventTypeAssistantMessage)
	e.Content = content
	return e
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(invocationID, toolName string, toolInput map[string]interface{}) *AgentEvent {
	e := newEvent(EventTypeToolCall)
	e.InvocationID = invocationID
	e.ToolName = toolName
	e.ToolInput = toolInput
	return e
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(outcome ToolOutcome) *AgentEvent {
	e := newEvent(EventTypeToolResult)
	e.InvocationID = outcome.InvocationID
	e.ToolName = outcome.ToolName
	e.Content = outcome.Text
	e.Metadata["is_error"] = outcome.IsError
	return e
}

// NewSystemNoticeEvent creates a system notice event.
func NewSystemNoticeEvent(content string) *AgentEvent {
	e := newEvent(EventTypeSystemNotice)
	e.Content = content
	return e
}

// NewSuccessEvent creates a success event carrying the task_complete summary.
func NewSuccessEvent(summary string) *AgentEvent {
	e := newEvent(EventTypeSuccess)
	e.Content = summary
	return e
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	e := newEvent(EventTypeError)
	e.Error = err
	if err != nil {
		e.Content = err.Error()
	}
	return e
}

// NewQuestionEvent creates a question event for an ask_user invocation.
func NewQuestionEvent(invocationID, question string) *AgentEvent {
	e := newEvent(EventTypeQuestion)
	e.InvocationID = invocationID
	e.ToolName = "ask_user"
	e.Content = question
	return e
}

// NewRunStateEvent creates a run state transition event.
func NewRunStateEvent(state RunState) *AgentEvent {
	e := newEvent(EventTypeRunState)
	e.RunState = state
	return e
}

// NewTokenUsageEvent creates a token usage event.
func NewTokenUsageEvent(promptTokens, completionTokens, totalTokens int) *AgentEvent {
	e := newEvent(EventTypeTokenUsage)
	e.TokenUsage = &TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
	}
	return e
}

// NewTurnEndEvent creates a turn end event.
func NewTurnEndEvent() *AgentEvent {
	return newEvent(EventTypeTurnEnd)
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *AgentEvent) WithMetadata(key string, value interface{}) *AgentEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsReasoningEvent returns true if this is a reasoning started/ended event.
func (e *AgentEvent) IsReasoningEvent() bool {
	return e.Type == EventTypeReasoningStarted || e.Type == EventTypeReasoningEnded
}

// IsMessageEvent returns true if this event carries operator or assistant text.
func (e *AgentEvent) IsMessageEvent() bool {
	return e.Type == EventTypeOperatorMessage || e.Type == EventTypeAssistantMessage
}

// IsToolEvent returns true if this is a tool-related event.
func (e *AgentEvent) IsToolEvent() bool {
	return e.Type == EventTypeToolCall ||
		e.Type == EventTypeToolResult ||
		e.Type == EventTypeQuestion
}

// IsTerminalEvent returns true if this event ends a run.
func (e *AgentEvent) IsTerminalEvent() bool {
	return e.Type == EventTypeSuccess || e.Type == EventTypeError
}

// IsErrorEvent returns true if this is an error event.
func (e *AgentEvent) IsErrorEvent() bool {
	return e.Type == EventTypeError
}
