package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/types"
)

// keyStatus is the result of validating the API key.
type keyStatus int

const (
	keyUnknown keyStatus = iota
	keyValid
	keyInvalid
)

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	channels *types.AgentChannels
	provider llm.Provider
	log      *logging.Logger

	content *strings.Builder

	models   []string
	modelIdx int

	runState  types.RunState
	reasoning bool
	iteration int
	question  string

	key    keyStatus
	keyErr error

	lastAnswer string
	copy       func(string) error
	notice     string

	totalPromptTokens     int
	totalCompletionTokens int
	totalTokens           int
	currentContextTokens  int

	width  int
	height int
	ready  bool
}

// keyStatusMsg carries the result of the API key check.
type keyStatusMsg struct{ err error }

func newModel(channels *types.AgentChannels, provider llm.Provider, models []string) *model {
	ta := textarea.New()
	ta.Placeholder = "Describe a task for the browser..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 6
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	if len(models) == 0 && provider != nil {
		models = []string{provider.GetModel()}
	}

	return &model{
		viewport: viewport.New(80, 20),
		textarea: ta,
		spinner:  sp,
		channels: channels,
		provider: provider,
		log:      logging.Nop(),
		content:  &strings.Builder{},
		models:   models,
		runState: types.RunStateIdle,
		copy:     clipboard.WriteAll,
	}
}

// currentModel returns the selected model, or "" to let the orchestrator
// use the provider default.
func (m *model) currentModel() string {
	if len(m.models) == 0 {
		return ""
	}
	return m.models[m.modelIdx]
}

func (m *model) busy() bool {
	return m.runState == types.RunStateRunning
}
