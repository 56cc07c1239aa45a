// Package tui provides a terminal user interface executor for the webpilot
// orchestrator.
//
// The TUI is split into several files:
// - executor.go: executor and program lifecycle
// - model.go: model state and construction
// - update.go: Bubble Tea Update and key handling
// - view.go: Bubble Tea View and rendering
// - events.go: orchestrator event processing
// - helpers.go: formatting helpers
// - styles.go: colors and styles
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/logging"
)

// Executor runs the orchestrator behind a full-screen terminal interface.
type Executor struct {
	agent    agent.Agent
	program  *tea.Program
	provider llm.Provider
	models   []string
	log      *logging.Logger
}

// NewExecutor creates a new TUI executor. models are the choices cycled with
// ctrl+t; the first one is selected initially. provider is used to check the
// API key and may be nil.
func NewExecutor(a agent.Agent, provider llm.Provider, models []string) *Executor {
	l, err := logging.NewLogger("tui")
	if err != nil {
		l = logging.Nop()
	}
	return &Executor{
		agent:    a,
		provider: provider,
		models:   models,
		log:      l,
	}
}

// Run starts the orchestrator and the TUI and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	e.log.Infof("TUI executor starting with %d model choices", len(e.models))

	channels := e.agent.GetChannels()
	m := newModel(channels, e.provider, e.models)
	m.log = e.log

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		for event := range channels.Event {
			e.program.Send(event)
		}
	}()

	_, runErr := e.program.Run()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.agent.Shutdown(shutdownCtx); err != nil {
		e.log.Warnf("Agent shutdown: %v", err)
	}

	if runErr != nil {
		return fmt.Errorf("failed to run TUI program: %w", runErr)
	}
	return nil
}
