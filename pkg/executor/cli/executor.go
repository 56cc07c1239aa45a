// Package cli provides a line-based executor for the webpilot orchestrator.
//
// Example usage:
//
//	orch, _ := agent.New(provider, driver)
//	executor := cli.NewExecutor(orch, cli.WithModel("gpt-4o"))
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/types"
)

// ErrRunFailed is returned by RunOnce when the task ended in failure.
var ErrRunFailed = errors.New("task failed")

// Executor is a CLI-based executor that relays terminal lines to the
// orchestrator and prints its events.
type Executor struct {
	agent  agent.Agent
	reader *bufio.Reader
	writer io.Writer
	model  string

	showReasoning bool
}

// turnResult summarizes the events of one handled input.
type turnResult struct {
	question string
	summary  string
	answer   string
	err      error
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowReasoning enables/disables printing reasoning start and end markers.
func WithShowReasoning(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showReasoning = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithModel sets the model selector sent with every task.
func WithModel(model string) ExecutorOption {
	return func(e *Executor) {
		e.model = model
	}
}

// NewExecutor creates a new CLI executor for the given orchestrator.
func NewExecutor(a agent.Agent, opts ...ExecutorOption) *Executor {
	e := &Executor{
		agent:         a,
		reader:        bufio.NewReader(os.Stdin),
		writer:        os.Stdout,
		showReasoning: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.writer = &syncWriter{w: e.writer}
	return e
}

// Run starts the orchestrator and reads tasks until exit, quit or EOF.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	channels := e.agent.GetChannels()
	eventsDone := make(chan struct{})
	turns := make(chan turnResult, 1)
	go e.handleEvents(channels.Event, eventsDone, turns)

	fmt.Fprintln(e.writer, "webpilot")
	fmt.Fprintln(e.writer, "Type a task and press Enter. Type 'reset' to clear memory, 'exit' or 'quit' to leave.")
	fmt.Fprintln(e.writer)

	var pending string
	for {
		select {
		case <-ctx.Done():
			e.shutdown(ctx)
			<-eventsDone
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "> ")
		line, err := e.readLine()
		if err != nil {
			e.shutdown(ctx)
			<-eventsDone
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		if isExit(input) {
			e.shutdown(ctx)
			<-eventsDone
			return nil
		}
		if input == "" {
			continue
		}

		in := types.NewUserInput(input).WithModel(e.model)
		if pending != "" {
			// answers go back verbatim and keep the run's model
			in = types.NewUserInput(line)
		}
		channels.Input <- in
		select {
		case res := <-turns:
			pending = res.question
		case <-eventsDone:
			return nil
		}
	}
}

// RunOnce runs a single task. Questions from the agent are answered with
// lines read from the reader. It returns ErrRunFailed (wrapped) if the run
// failed.
func (e *Executor) RunOnce(ctx context.Context, task string) error {
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	channels := e.agent.GetChannels()
	eventsDone := make(chan struct{})
	turns := make(chan turnResult, 1)
	go e.handleEvents(channels.Event, eventsDone, turns)

	finish := func(err error) error {
		e.shutdown(ctx)
		<-eventsDone
		return err
	}

	channels.Input <- types.NewUserInput(task).WithModel(e.model)
	for {
		var res turnResult
		select {
		case res = <-turns:
		case <-eventsDone:
			return fmt.Errorf("%w: agent stopped before the task finished", ErrRunFailed)
		case <-ctx.Done():
			return finish(ctx.Err())
		}

		if res.err != nil {
			return finish(fmt.Errorf("%w: %v", ErrRunFailed, res.err))
		}
		if res.question == "" {
			return finish(nil)
		}

		fmt.Fprint(e.writer, "answer> ")
		answer, err := e.readLine()
		if err != nil || strings.TrimSpace(answer) == "" {
			return finish(fmt.Errorf("%w: no answer to %q", ErrRunFailed, res.question))
		}
		channels.Input <- types.NewUserInput(answer)
	}
}

// readLine returns the next line without its line terminator.
func (e *Executor) readLine() (string, error) {
	line, err := e.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit":
		return true
	}
	return false
}

// handleEvents renders events and reports a turnResult at every turn end.
func (e *Executor) handleEvents(events <-chan *types.AgentEvent, done chan struct{}, turns chan turnResult) {
	defer close(done)

	var current turnResult
	for event := range events {
		e.handleEvent(event, &current)
		if event.Type == types.EventTypeTurnEnd {
			select {
			case turns <- current:
			default:
			}
			current = turnResult{}
		}
	}
}

// handleEvent processes a single event based on its type
func (e *Executor) handleEvent(event *types.AgentEvent, current *turnResult) {
	switch event.Type {
	case types.EventTypeReasoningStarted:
		if e.showReasoning {
			fmt.Fprintln(e.writer, "[Thinking...]")
		}
	case types.EventTypeReasoningEnded, types.EventTypeRunState, types.EventTypeTokenUsage,
		types.EventTypeOperatorMessage, types.EventTypeTurnEnd:
		// not rendered
	case types.EventTypeToolCall:
		fmt.Fprintf(e.writer, "🔧 %s %s\n", event.ToolName, formatArgs(event.ToolInput))
	case types.EventTypeToolResult:
		marker := "✅"
		if isErr, _ := event.Metadata["is_error"].(bool); isErr {
			marker = "❌"
		}
		fmt.Fprintf(e.writer, "%s %s\n", marker, event.Content)
	case types.EventTypeAssistantMessage:
		current.answer = event.Content
		fmt.Fprintf(e.writer, "Assistant: %s\n", event.Content)
	case types.EventTypeQuestion:
		current.question = event.Content
		fmt.Fprintf(e.writer, "❓ %s\n", event.Content)
	case types.EventTypeSuccess:
		current.summary = event.Content
		fmt.Fprintf(e.writer, "🏁 %s\n", event.Content)
	case types.EventTypeSystemNotice:
		fmt.Fprintf(e.writer, "ℹ️  %s\n", event.Content)
	case types.EventTypeError:
		current.err = event.Error
		fmt.Fprintf(e.writer, "❌ Error: %s\n", event.Content)
	}
}

func formatArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, k := range sortedKeys(args) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// shutdown gracefully shuts down the agent.
func (e *Executor) shutdown(ctx context.Context) {
	fmt.Fprintln(e.writer, "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := e.agent.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(e.writer, "Warning: shutdown error: %v\n", err)
	}
}
