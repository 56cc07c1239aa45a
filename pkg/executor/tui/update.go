package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/webpilot/pkg/types"
)

const keyCheckTimeout = 15 * time.Second

// Init starts the cursor blink, the spinner and the API key check.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.checkKey())
}

// checkKey validates the API key in the background.
func (m *model) checkKey() tea.Cmd {
	if m.provider == nil {
		return nil
	}
	provider := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), keyCheckTimeout)
		defer cancel()
		return keyStatusMsg{err: provider.ValidateKey(ctx)}
	}
}

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var spinnerCmd tea.Cmd
	m.spinner, spinnerCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case keyStatusMsg:
		m.handleKeyStatus(msg)
		return m, spinnerCmd

	case *types.AgentEvent:
		m.log.Debugf("Agent event: %s", msg.Type)
		m.handleAgentEvent(msg)
		return m, spinnerCmd

	case tea.MouseMsg:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(vpCmd, spinnerCmd)

	case tea.KeyMsg:
		model, cmd := m.handleKeyPress(msg)
		return model, tea.Batch(cmd, spinnerCmd)
	}

	return m, spinnerCmd
}

func (m *model) handleKeyStatus(msg keyStatusMsg) {
	if msg.err != nil {
		m.key = keyInvalid
		m.keyErr = msg.err
		m.appendLine(errorStyle.Render(fmt.Sprintf("  ❌ API key check failed: %v", msg.err)))
		return
	}
	m.key = keyValid
	m.keyErr = nil
}

// calculateViewportHeight computes the viewport height from the fixed rows
// around it.
func (m *model) calculateViewportHeight() int {
	headerHeight := 3                      // title + tips + blank line
	inputHeight := m.textarea.Height() + 2 // textarea + border
	statusBarHeight := 1
	loadingHeight := 0
	if m.busy() || m.question != "" {
		loadingHeight = 1
	}

	h := m.height - headerHeight - inputHeight - statusBarHeight - loadingHeight
	if h < 5 {
		h = 5
	}
	return h
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.viewport.Width = m.width - 4
	m.textarea.SetWidth(m.width - 8)
	m.ready = true
	m.recalculateLayout()
	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlT:
		m.cycleModel()
		return m, nil

	case tea.KeyCtrlY:
		m.copyLastAnswer()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd

	case tea.KeyEnter:
		if msg.Alt {
			m.textarea.InsertString("\n")
			m.updateTextAreaHeight()
			return m, nil
		}
		return m.handleEnter()
	}

	var tiCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.updateTextAreaHeight()
	return m, tiCmd
}

// handleEnter sends the input to the orchestrator. While a run is in flight
// the input is queued by the channel and shown as such. Answers to a pending
// question are forwarded verbatim. The send never blocks: when the queue is
// full the text stays in the input box.
func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}

	label := "You: "
	in := types.NewUserInput(input).WithModel(m.currentModel())
	if m.question != "" {
		label = "You (answer): "
		in = types.NewUserInput(raw)
	} else if m.busy() {
		label = "You (queued): "
	}

	select {
	case m.channels.Input <- in:
	default:
		m.log.Warnf("Input queue full, keeping %d chars in the input box", len(raw))
		m.notice = "Input queue full, try again when the agent catches up"
		return m, nil
	}
	m.log.Debugf("Sent input to agent (model=%q)", in.Model)

	m.appendBlock(strings.TrimRight(formatEntry(label, input, userStyle, m.width, true), "\n"))
	m.textarea.Reset()
	m.updateTextAreaHeight()
	m.notice = ""
	m.question = ""

	m.recalculateLayout()
	return m, nil
}

// cycleModel selects the next configured model for subsequent tasks.
func (m *model) cycleModel() {
	if len(m.models) < 2 {
		return
	}
	m.modelIdx = (m.modelIdx + 1) % len(m.models)
	m.notice = "Model: " + m.currentModel()
}

func (m *model) copyLastAnswer() {
	if m.lastAnswer == "" {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.copy(m.lastAnswer); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Copied last answer to clipboard"
}

// recalculateLayout updates viewport content and scrolls to bottom
func (m *model) recalculateLayout() {
	m.viewport.Height = m.calculateViewportHeight()
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

// appendLine adds one rendered line to the log.
func (m *model) appendLine(s string) {
	m.content.WriteString(s)
	m.content.WriteString("\n")
}

// appendBlock adds a rendered entry followed by a blank line.
func (m *model) appendBlock(s string) {
	m.content.WriteString(s)
	m.content.WriteString("\n\n")
}
