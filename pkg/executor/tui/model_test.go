package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webpilot/pkg/llm/llmtest"
	"github.com/entrhq/webpilot/pkg/types"
)

func newTestModel(t *testing.T, models ...string) (*model, *types.AgentChannels) {
	t.Helper()
	ch := types.NewAgentChannels(4)
	m := newModel(ch, llmtest.New(), models)
	m.copy = func(string) error { return nil }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ch
}

func typeText(m *model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestEnterSendsTaskWithSelectedModel(t *testing.T) {
	m, ch := newTestModel(t, "gpt-5.1", "gpt-4o")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "gpt-4o", m.currentModel())

	typeText(m, "open example.com")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, ch.Input, 1)
	in := <-ch.Input
	assert.Equal(t, "open example.com", in.Content)
	assert.Equal(t, "gpt-4o", in.Model)
	assert.Empty(t, m.textarea.Value())
	assert.Contains(t, m.content.String(), "open example.com")
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	m, ch := newTestModel(t)
	typeText(m, "   ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, ch.Input, 0)
}

func TestCycleModelWraps(t *testing.T) {
	m, _ := newTestModel(t, "a", "b", "c")
	for range 3 {
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	}
	assert.Equal(t, "a", m.currentModel())

	single, _ := newTestModel(t)
	assert.Equal(t, "test-model", single.currentModel(), "falls back to the provider model")
	single.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "test-model", single.currentModel())
}

func TestAgentEventsRender(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(types.NewRunStateEvent(types.RunStateRunning))
	m.Update(types.NewReasoningStartedEvent("gpt-5.1", 1, 1200))
	assert.True(t, m.busy())
	assert.Contains(t, m.View(), "Thinking (step 1)")

	m.Update(types.NewReasoningEndedEvent())
	m.Update(types.NewToolCallEvent("c1", "navigate", map[string]interface{}{"url": "example.com"}))
	m.Update(types.NewToolResultEvent(types.ToolOutcome{InvocationID: "c1", ToolName: "navigate", Text: "Navigated to https://example.com"}))
	m.Update(types.NewToolResultEvent(types.ToolOutcome{InvocationID: "c2", ToolName: "click_element", Text: "Error clicking 9: timeout", IsError: true}))
	m.Update(types.NewTokenUsageEvent(1000, 50, 1050))
	m.Update(types.NewSuccessEvent("Opened the page"))
	m.Update(types.NewRunStateEvent(types.RunStateIdle))

	log := m.content.String()
	assert.Contains(t, log, "navigate")
	assert.Contains(t, log, "example.com")
	assert.Contains(t, log, "Navigated to https://example.com")
	assert.Contains(t, log, "Error clicking 9: timeout")
	assert.Contains(t, log, "Opened the page")

	assert.Equal(t, "Opened the page", m.lastAnswer)
	assert.Equal(t, 1050, m.totalTokens)
	assert.Equal(t, 1200, m.currentContextTokens)
	assert.False(t, m.busy())
	assert.Contains(t, m.View(), "idle")
}

func TestQuestionAnswerIsSentWithoutModel(t *testing.T) {
	m, ch := newTestModel(t, "gpt-5.1", "gpt-4o")

	m.Update(types.NewQuestionEvent("q1", "Pay 10 EUR?"))
	m.Update(types.NewRunStateEvent(types.RunStateAwaitingOperator))
	assert.Contains(t, m.View(), "Waiting for your answer")

	typeText(m, "yes")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	in := <-ch.Input
	assert.Equal(t, "yes", in.Content)
	assert.Empty(t, in.Model)
	assert.Empty(t, m.question)
	assert.Contains(t, m.content.String(), "You (answer): ")
}

func TestAnswerIsForwardedVerbatim(t *testing.T) {
	m, ch := newTestModel(t)
	m.Update(types.NewQuestionEvent("q1", "Which account?"))

	typeText(m, "  work  ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	in := <-ch.Input
	assert.Equal(t, "  work  ", in.Content)
}

func TestEnterDoesNotBlockOnFullQueue(t *testing.T) {
	ch := types.NewAgentChannels(1)
	m := newModel(ch, llmtest.New(), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	ch.Input <- types.NewUserInput("first task")

	typeText(m, "second task")
	done := make(chan struct{})
	go func() {
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Update blocked on a full input queue")
	}

	assert.Equal(t, "second task", m.textarea.Value(), "text is kept for a retry")
	assert.Contains(t, m.notice, "Input queue full")
	assert.NotContains(t, m.content.String(), "second task")

	<-ch.Input
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	in := <-ch.Input
	assert.Equal(t, "second task", in.Content)
	assert.Empty(t, m.notice)
}

func TestCopyLastAnswer(t *testing.T) {
	m, _ := newTestModel(t)
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Nothing to copy yet", m.notice)

	m.Update(types.NewAssistantMessageEvent("The weather is sunny"))
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "The weather is sunny", copied)
	assert.Equal(t, "Copied last answer to clipboard", m.notice)

	m.copy = func(string) error { return errors.New("no clipboard") }
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Copy failed: no clipboard", m.notice)
}

func TestKeyStatus(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "key …")

	m.Update(keyStatusMsg{})
	assert.Equal(t, keyValid, m.key)

	m.Update(keyStatusMsg{err: errors.New("authentication failed (HTTP 401)")})
	assert.Equal(t, keyInvalid, m.key)
	assert.Contains(t, m.content.String(), "authentication failed")
}

func TestCheckKeyUsesProvider(t *testing.T) {
	p := llmtest.New()
	p.KeyErr = errors.New("bad key")
	m := newModel(types.NewAgentChannels(1), p, nil)

	msg := m.checkKey()()
	assert.Equal(t, keyStatusMsg{err: p.KeyErr}, msg)

	m.provider = nil
	assert.Nil(t, m.checkKey())
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWordWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wordWrap("one two three", 8))
	assert.Equal(t, "abcd\nefgh\nij", wordWrap("abcdefghij", 4))
	assert.Equal(t, "first\nsecond", wordWrap("first\n\nsecond", 20))
	assert.Equal(t, "сброс\nпамяти", wordWrap("сброс памяти", 6))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "999", formatTokenCount(999))
	assert.Equal(t, "1.5K", formatTokenCount(1500))
	assert.Equal(t, "2.0M", formatTokenCount(2000000))

	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abc", 2))

	assert.Empty(t, highlightArgs(nil))
	hl := highlightArgs(map[string]interface{}{"url": "example.com"})
	assert.True(t, strings.Contains(hl, "url") && strings.Contains(hl, "example.com"))
}
