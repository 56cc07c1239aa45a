package tui

import (
	"fmt"

	"github.com/entrhq/webpilot/pkg/types"
)

// maxResultDisplay bounds how much of a tool result is shown in the log.
const maxResultDisplay = 400

// handleAgentEvent updates the UI from one orchestrator event.
func (m *model) handleAgentEvent(event *types.AgentEvent) {
	switch event.Type {
	case types.EventTypeReasoningStarted:
		m.reasoning = true
		if it, ok := event.Metadata["iteration"].(int); ok {
			m.iteration = it
		}
		if event.TokenUsage != nil {
			m.currentContextTokens = event.TokenUsage.PromptTokens
		}

	case types.EventTypeReasoningEnded:
		m.reasoning = false

	case types.EventTypeAssistantMessage:
		m.lastAnswer = event.Content
		m.appendBlock(formatEntry("🤖 ", event.Content, assistantStyle, m.width, true))

	case types.EventTypeToolCall:
		m.appendLine(toolStyle.Render("  🔧 "+event.ToolName) + " " + highlightArgs(event.ToolInput))

	case types.EventTypeToolResult:
		m.handleToolResult(event)

	case types.EventTypeQuestion:
		m.question = event.Content
		m.appendBlock(formatEntry("❓ ", event.Content, questionStyle, m.width, false))

	case types.EventTypeSuccess:
		m.lastAnswer = event.Content
		m.appendBlock(formatEntry("🏁 ", event.Content, toolStyle, m.width, true))

	case types.EventTypeSystemNotice:
		m.appendBlock(noticeStyle.Render("  ℹ️  " + event.Content))

	case types.EventTypeError:
		m.appendBlock(errorStyle.Render(fmt.Sprintf("  ❌ Error: %s", event.Content)))

	case types.EventTypeRunState:
		m.runState = event.RunState
		if event.RunState != types.RunStateAwaitingOperator {
			m.question = ""
		}

	case types.EventTypeTokenUsage:
		if u := event.TokenUsage; u != nil {
			m.totalPromptTokens += u.PromptTokens
			m.totalCompletionTokens += u.CompletionTokens
			m.totalTokens += u.TotalTokens
		}

	case types.EventTypeOperatorMessage, types.EventTypeTurnEnd:
		// input is echoed when it is sent
	}

	m.recalculateLayout()
}

func (m *model) handleToolResult(event *types.AgentEvent) {
	icon := "  ✅ "
	style := toolResultStyle
	if isErr, _ := event.Metadata["is_error"].(bool); isErr {
		icon = "  ❌ "
		style = errorStyle
	}
	m.appendLine(style.Render(icon + truncate(event.Content, maxResultDisplay)))
}
