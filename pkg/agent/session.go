package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/entrhq/webpilot/pkg/agent/memory"
	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/llm/tokenizer"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/metrics"
	"github.com/entrhq/webpilot/pkg/tools/browser"
	"github.com/entrhq/webpilot/pkg/types"
)

// DefaultMaxIterations is the default number of reasoning rounds per run.
const DefaultMaxIterations = 25

const resetNotice = "memory cleared"

// Status is the result of one Submit call.
type Status string

const (
	StatusCompleted        Status = "completed"         // StatusCompleted means task_complete ended the run.
	StatusAnswered         Status = "answered"          // StatusAnswered means the model replied in plain text and the run ended.
	StatusAwaitingOperator Status = "awaiting_operator" // StatusAwaitingOperator means the run is suspended on an ask_user question.
	StatusFailed           Status = "failed"            // StatusFailed means a transport error or the iteration ceiling ended the run.
	StatusReset            Status = "reset"             // StatusReset means the conversation was cleared.
	StatusRejected         Status = "rejected"          // StatusRejected means the input was blank and nothing happened.
)

// Outcome describes how a Submit call ended.
type Outcome struct {
	Status Status

	// Message is the completion summary, the plain-text answer, the pending
	// question or the error text, depending on Status.
	Message string

	// Iterations is the number of reasoning rounds the run consumed.
	Iterations int

	// Err is set for StatusFailed and StatusRejected.
	Err error
}

// Terminal reports whether the run that produced o has ended.
func (o Outcome) Terminal() bool {
	switch o.Status {
	case StatusCompleted, StatusAnswered, StatusFailed:
		return true
	}
	return false
}

// TaskRun is the envelope around one pass of the loop. It refers to the
// session's conversation but does not own it.
type TaskRun struct {
	Model      string
	Iterations int

	pending *pendingBatch
}

// pendingBatch is a tool request suspended on one or more ask_user questions.
type pendingBatch struct {
	invocations []types.ToolInvocation
	outcomes    []types.ToolOutcome
	questions   []pendingQuestion
}

type pendingQuestion struct {
	index int
	text  string
}

// SessionConfig wires a Session to its collaborators.
type SessionConfig struct {
	Provider llm.Provider
	Surface  browser.Surface

	// Catalog defaults to tools.NewCatalog().
	Catalog *tools.Catalog

	// Emit receives every event. Nil discards events.
	Emit func(*types.AgentEvent)

	Logger    *logging.Logger
	Metrics   *metrics.Recorder
	Tokenizer *tokenizer.Tokenizer

	// MaxIterations defaults to DefaultMaxIterations.
	MaxIterations int

	// PageGrounding sends the current page description with each reasoning call.
	PageGrounding bool

	// SystemPrompt defaults to SystemInstruction.
	SystemPrompt string
}

// Session owns one conversation and runs tasks against it. Submit must not be
// called concurrently; State may be called from any goroutine.
type Session struct {
	cfg    SessionConfig
	memory *memory.ConversationMemory
	run    *TaskRun

	mu    sync.RWMutex
	state types.RunState
}

// NewSession creates a session whose conversation holds only the system
// instruction.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("reasoning provider is required")
	}
	if cfg.Surface == nil {
		return nil, fmt.Errorf("automation surface is required")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = tools.NewCatalog()
	}
	if cfg.Emit == nil {
		cfg.Emit = func(*types.AgentEvent) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemInstruction
	}

	return &Session{
		cfg:    cfg,
		memory: memory.NewSeededMemory(cfg.SystemPrompt),
		state:  types.RunStateIdle,
	}, nil
}

// Submit handles one piece of operator text.
//
// Blank text is rejected. A reset keyword clears the conversation. While a run
// is suspended on ask_user, the text is the literal answer and the run
// resumes. Otherwise the text starts a new run on the existing conversation,
// using model (empty selects the provider default).
func (s *Session) Submit(ctx context.Context, text, model string) Outcome {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Outcome{Status: StatusRejected, Message: ErrEmptyTask.Error(), Err: ErrEmptyTask}
	}
	if IsResetCommand(trimmed) {
		s.Reset()
		return Outcome{Status: StatusReset, Message: resetNotice}
	}
	if s.run != nil && s.run.pending != nil {
		return s.resume(ctx, text)
	}

	s.memory.Add(types.NewUserMessage(trimmed))
	s.emit(types.NewOperatorMessageEvent(trimmed))
	s.run = &TaskRun{Model: model}
	s.setState(types.RunStateRunning)
	s.cfg.Logger.Infof("Run started (model=%s)", s.modelName())
	return s.loop(ctx)
}

// Reset discards the conversation and any suspended run. It is idempotent.
func (s *Session) Reset() {
	s.memory = memory.NewSeededMemory(s.cfg.SystemPrompt)
	s.run = nil
	s.setState(types.RunStateIdle)
	s.emit(types.NewSystemNoticeEvent(resetNotice))
	s.cfg.Logger.Infof("Conversation reset")
}

// State returns the current RunState.
func (s *Session) State() types.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Memory returns the conversation log.
func (s *Session) Memory() *memory.ConversationMemory {
	return s.memory
}

// Run returns the active or suspended run, or nil.
func (s *Session) Run() *TaskRun {
	return s.run
}

func (s *Session) loop(ctx context.Context) Outcome {
	for {
		if s.run.Iterations >= s.cfg.MaxIterations {
			return s.fail(&IterationCeilingError{Limit: s.cfg.MaxIterations})
		}
		s.run.Iterations++

		decision, err := s.reason(ctx)
		if err != nil {
			return s.fail(err)
		}

		if !decision.HasInvocations() {
			s.memory.Add(types.NewAssistantMessage(decision.Text))
			s.emit(types.NewAssistantMessageEvent(decision.Text))
			return s.finish(StatusAnswered, decision.Text, nil)
		}

		if out, done := s.dispatch(ctx, decision); done {
			return out
		}
	}
}

func (s *Session) fail(err error) Outcome {
	s.emit(types.NewErrorEvent(err))
	s.cfg.Logger.Errorf("Run failed: %v", err)
	return s.finish(StatusFailed, err.Error(), err)
}

func (s *Session) finish(status Status, message string, err error) Outcome {
	out := Outcome{Status: status, Message: message, Err: err}
	if s.run != nil {
		out.Iterations = s.run.Iterations
	}
	s.cfg.Metrics.RunFinished(string(status), out.Iterations)
	s.cfg.Logger.Infof("Run finished: status=%s iterations=%d", status, out.Iterations)
	s.run = nil
	s.setState(types.RunStateIdle)
	return out
}

func (s *Session) setState(state types.RunState) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()
	if changed {
		s.emit(types.NewRunStateEvent(state))
	}
}

func (s *Session) emit(event *types.AgentEvent) {
	s.cfg.Emit(event)
}

func (s *Session) modelName() string {
	if s.run != nil && s.run.Model != "" {
		return s.run.Model
	}
	return s.cfg.Provider.GetModel()
}
