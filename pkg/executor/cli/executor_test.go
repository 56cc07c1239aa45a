package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/llm/llmtest"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/tools/browser/browsertest"
	"github.com/entrhq/webpilot/pkg/types"
)

func newOrchestrator(t *testing.T, p *llmtest.Provider) *agent.Orchestrator {
	t.Helper()
	o, err := agent.New(p, browsertest.New(), agent.WithLogger(logging.Nop()))
	require.NoError(t, err)
	return o
}

func TestRunRendersTurns(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().
		Tools(llmtest.Invocation("c1", "navigate", map[string]interface{}{"url": "example.com"})).
		Tools(llmtest.Invocation("c2", "task_complete", map[string]interface{}{"summary": "Opened the page"}))

	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p),
		WithReader(strings.NewReader("open example\n\nquit\n")),
		WithWriter(&out),
	)
	require.NoError(t, e.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "webpilot")
	assert.Contains(t, got, "[Thinking...]")
	assert.Contains(t, got, "🔧 navigate (url=example.com)")
	assert.Contains(t, got, "✅ Navigated to https://example.com")
	assert.Contains(t, got, "🏁 Opened the page")
	assert.Contains(t, got, "Shutting down...")
	assert.Equal(t, 0, p.Remaining())
}

func TestRunStopsAtEOF(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().Text("Hello there")
	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p),
		WithReader(strings.NewReader("hi")),
		WithWriter(&out),
		WithShowReasoning(false),
	)
	require.NoError(t, e.Run(context.Background()))

	assert.Contains(t, out.String(), "Assistant: Hello there")
	assert.NotContains(t, out.String(), "[Thinking...]")
}

func TestRunOnceAnswersQuestions(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().
		Tools(llmtest.Invocation("q1", "ask_user", map[string]interface{}{"question": "Pay 10 EUR?"})).
		Tools(llmtest.Invocation("c2", "task_complete", map[string]interface{}{"summary": "Paid"}))

	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p),
		WithReader(strings.NewReader("  yes, card 2 \r\n")),
		WithWriter(&out),
	)
	require.NoError(t, e.RunOnce(context.Background(), "buy the ticket"))

	assert.Contains(t, out.String(), "❓ Pay 10 EUR?")
	assert.Contains(t, out.String(), "🏁 Paid")

	calls := p.Calls()
	require.Len(t, calls, 2)
	last := calls[1].Messages[len(calls[1].Messages)-1]
	assert.Equal(t, types.RoleTool, last.Role)
	assert.Equal(t, "  yes, card 2 ", last.Content, "answers are forwarded verbatim")
}

func TestRunForwardsAnswersVerbatim(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().
		Tools(llmtest.Invocation("q1", "ask_user", map[string]interface{}{"question": "Which account?"})).
		Tools(llmtest.Invocation("c2", "task_complete", map[string]interface{}{"summary": "Logged in"}))

	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p),
		WithReader(strings.NewReader("log in\n work \nquit\n")),
		WithWriter(&out),
		WithModel("gpt-4o"),
	)
	require.NoError(t, e.Run(context.Background()))

	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "gpt-4o", calls[0].Model)
	assert.Equal(t, "gpt-4o", calls[1].Model, "the resumed run keeps its model")
	last := calls[1].Messages[len(calls[1].Messages)-1]
	assert.Equal(t, types.RoleTool, last.Role)
	assert.Equal(t, " work ", last.Content)
}

func TestRunOnceReportsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().Fail(errors.New("connection refused"))
	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p), WithWriter(&out), WithReader(strings.NewReader("")))

	err := e.RunOnce(context.Background(), "open mail")
	require.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, out.String(), "❌ Error:")
}

func TestRunOnceWithoutAnswer(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().
		Tools(llmtest.Invocation("q1", "ask_user", map[string]interface{}{"question": "Which account?"}))
	var out bytes.Buffer
	e := NewExecutor(newOrchestrator(t, p), WithWriter(&out), WithReader(strings.NewReader("")))

	err := e.RunOnce(context.Background(), "log in")
	require.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, err.Error(), "Which account?")
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "", formatArgs(nil))
	assert.Equal(t, "(element_id=3, text=hi)", formatArgs(map[string]interface{}{"text": "hi", "element_id": 3}))
}

func TestIsExit(t *testing.T) {
	assert.True(t, isExit("exit"))
	assert.True(t, isExit("QUIT"))
	assert.False(t, isExit("reset"))
}
