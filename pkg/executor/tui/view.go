package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/webpilot/pkg/types"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rows := []string{
		m.buildHeader(),
		m.buildTips(),
		"",
		m.viewport.View(),
	}
	if indicator := m.buildActivityIndicator(); indicator != "" {
		rows = append(rows, indicator)
	}
	rows = append(rows, m.buildInputBox(), m.buildStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) buildHeader() string {
	return headerStyle.Render("  ◆ webpilot") + tipsStyle.Render("  browser automation agent")
}

func (m *model) buildTips() string {
	return tipsStyle.Render("  Enter to send • Alt+Enter for new line • Ctrl+T model • Ctrl+Y copy answer • 'reset' clears memory • Ctrl+C to exit")
}

// buildActivityIndicator shows the spinner while a run is active, or the
// pending question.
func (m *model) buildActivityIndicator() string {
	style := lipgloss.NewStyle().
		Foreground(salmonPink).
		Width(m.width-4).
		Padding(0, 2)

	switch {
	case m.question != "":
		return style.Render("❓ Waiting for your answer")
	case m.busy():
		label := "Working..."
		if m.reasoning {
			label = fmt.Sprintf("Thinking (step %d)...", m.iteration)
		}
		return style.Render(m.spinner.View() + " " + label)
	}
	return ""
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

// buildStatusBar renders run state, model, key status, notices and token use.
func (m *model) buildStatusBar() string {
	parts := []string{
		renderRunState(m.runState),
		"model: " + displayModel(m.currentModel()),
		m.renderKeyStatus(),
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	if tokens := m.buildTokenDisplay(); tokens != "" {
		parts = append(parts, tokens)
	}
	return statusBarStyle.Width(m.width).Render(strings.Join(parts, " │ "))
}

func renderRunState(s types.RunState) string {
	switch s {
	case types.RunStateRunning:
		return lipgloss.NewStyle().Foreground(salmonPink).Render("● running")
	case types.RunStateAwaitingOperator:
		return lipgloss.NewStyle().Foreground(coralPink).Render("● awaiting answer")
	case types.RunStateTerminated:
		return lipgloss.NewStyle().Foreground(alertRed).Render("● terminated")
	}
	return lipgloss.NewStyle().Foreground(mintGreen).Render("● idle")
}

func displayModel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

func (m *model) renderKeyStatus() string {
	switch m.key {
	case keyValid:
		return lipgloss.NewStyle().Foreground(mintGreen).Render("key ✓")
	case keyInvalid:
		return lipgloss.NewStyle().Foreground(alertRed).Render("key ✗")
	}
	return "key …"
}

func (m *model) buildTokenDisplay() string {
	if m.totalTokens == 0 {
		return ""
	}
	return fmt.Sprintf("◆ Context: %s | Input: %s | Output: %s | Total: %s",
		formatTokenCount(m.currentContextTokens),
		formatTokenCount(m.totalPromptTokens),
		formatTokenCount(m.totalCompletionTokens),
		formatTokenCount(m.totalTokens))
}
