package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/llm/tokenizer"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/metrics"
	"github.com/entrhq/webpilot/pkg/tools/browser"
	"github.com/entrhq/webpilot/pkg/types"
)

// Orchestrator owns the Session lifecycle and the event loop. The session is
// created on the first task and replaced wholesale on reset.
type Orchestrator struct {
	provider      llm.Provider
	surface       browser.Surface
	catalog       *tools.Catalog
	channels      *types.AgentChannels
	log           *logging.Logger
	metrics       *metrics.Recorder
	tokenizer     *tokenizer.Tokenizer
	systemPrompt  string
	maxIterations int
	bufferSize    int
	pageGrounding bool

	sessionMu sync.RWMutex
	session   *Session

	running    bool
	terminated bool
	runMu      sync.Mutex
}

// Option is a function that configures an Orchestrator
type Option func(*Orchestrator)

// WithMaxIterations sets the iteration ceiling per run
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		o.maxIterations = n
	}
}

// WithPageGrounding enables sending the page description with each reasoning call
func WithPageGrounding(enabled bool) Option {
	return func(o *Orchestrator) {
		o.pageGrounding = enabled
	}
}

// WithSystemPrompt replaces the default system instruction
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) {
		o.systemPrompt = prompt
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) Option {
	return func(o *Orchestrator) {
		o.bufferSize = size
	}
}

// WithMetrics attaches a metrics recorder
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = r
	}
}

// WithLogger replaces the component logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithTokenizer sets the tokenizer used to report context size. Without one,
// sizes are estimated.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(o *Orchestrator) {
		o.tokenizer = t
	}
}

// WithCatalog replaces the built-in Action Catalog
func WithCatalog(c *tools.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// New creates an Orchestrator over the given reasoning client and surface.
func New(provider llm.Provider, surface browser.Surface, opts ...Option) (*Orchestrator, error) {
	if provider == nil {
		return nil, fmt.Errorf("reasoning provider is required")
	}
	if surface == nil {
		return nil, fmt.Errorf("automation surface is required")
	}

	o := &Orchestrator{
		provider:      provider,
		surface:       surface,
		catalog:       tools.NewCatalog(),
		bufferSize:    10,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		l, err := logging.NewLogger("agent")
		if err != nil {
			l.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
		}
		o.log = l
	}

	o.channels = types.NewAgentChannels(o.bufferSize)
	return o, nil
}

// Start begins the event loop in a goroutine.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.running {
		return fmt.Errorf("orchestrator is already running")
	}
	if o.terminated {
		return fmt.Errorf("orchestrator has been shut down")
	}
	o.running = true

	go o.eventLoop(ctx)
	return nil
}

// Shutdown stops the event loop. An in-flight run finishes its current step
// first; there is no mid-call cancellation.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.runMu.Lock()
	if !o.terminated {
		o.terminated = true
		close(o.channels.Shutdown)
	}
	started := o.running
	o.runMu.Unlock()

	if !started {
		o.channels.Close()
		return nil
	}

	select {
	case <-o.channels.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetChannels returns the communication channels.
func (o *Orchestrator) GetChannels() *types.AgentChannels {
	return o.channels
}

// State returns the RunState of the current session.
func (o *Orchestrator) State() types.RunState {
	o.runMu.Lock()
	terminated := o.terminated
	o.runMu.Unlock()
	if terminated {
		return types.RunStateTerminated
	}

	o.sessionMu.RLock()
	defer o.sessionMu.RUnlock()
	if o.session == nil {
		return types.RunStateIdle
	}
	return o.session.State()
}

// ToolNames lists the catalog tools in order.
func (o *Orchestrator) ToolNames() []string {
	return o.catalog.Names()
}

// Session returns the current session, or nil before the first task and
// after a reset.
func (o *Orchestrator) Session() *Session {
	o.sessionMu.RLock()
	defer o.sessionMu.RUnlock()
	return o.session
}

// eventLoop handles inputs one at a time. Inputs arriving during a run wait
// in the channel.
func (o *Orchestrator) eventLoop(ctx context.Context) {
	defer o.channels.Close()
	defer func() {
		o.runMu.Lock()
		o.running = false
		o.terminated = true
		o.runMu.Unlock()
		o.tryEmit(types.NewRunStateEvent(types.RunStateTerminated))
	}()

	for {
		select {
		case <-ctx.Done():
			o.tryEmit(types.NewErrorEvent(ctx.Err()))
			return

		case <-o.channels.Shutdown:
			return

		case input := <-o.channels.Input:
			if input == nil || input.IsCancel() {
				return
			}
			if input.IsUserInput() {
				o.handleInput(ctx, input)
			}
		}
	}
}

func (o *Orchestrator) handleInput(ctx context.Context, input *types.Input) {
	defer o.emitEvent(types.NewTurnEndEvent())

	if IsResetCommand(input.Content) {
		o.reset()
		return
	}

	sess, err := o.currentSession()
	if err != nil {
		o.emitEvent(types.NewErrorEvent(err))
		return
	}

	out := sess.Submit(ctx, input.Content, input.Model)
	if out.Status == StatusRejected {
		o.emitEvent(types.NewSystemNoticeEvent("Empty input ignored"))
	}
	o.log.Debugf("Input handled: status=%s iterations=%d", out.Status, out.Iterations)
}

// currentSession returns the session, creating it on first use.
func (o *Orchestrator) currentSession() (*Session, error) {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	if o.session != nil {
		return o.session, nil
	}

	sess, err := NewSession(SessionConfig{
		Provider:      o.provider,
		Surface:       o.surface,
		Catalog:       o.catalog,
		Emit:          o.emitEvent,
		Logger:        o.log,
		Metrics:       o.metrics,
		Tokenizer:     o.tokenizer,
		MaxIterations: o.maxIterations,
		PageGrounding: o.pageGrounding,
		SystemPrompt:  o.systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	o.session = sess
	return sess, nil
}

// reset drops the session. The next task starts a fresh one.
func (o *Orchestrator) reset() {
	o.sessionMu.Lock()
	hadRun := o.session != nil && o.session.State() != types.RunStateIdle
	o.session = nil
	o.sessionMu.Unlock()

	if hadRun {
		o.emitEvent(types.NewRunStateEvent(types.RunStateIdle))
	}
	o.emitEvent(types.NewSystemNoticeEvent(resetNotice))
	o.log.Infof("Session reset")
}

// emitEvent delivers an event unless the orchestrator is shutting down.
func (o *Orchestrator) emitEvent(event *types.AgentEvent) {
	select {
	case o.channels.Event <- event:
	case <-o.channels.Shutdown:
	}
}

// tryEmit delivers an event only if the channel has room. Used on exit paths
// where nobody may be reading any more.
func (o *Orchestrator) tryEmit(event *types.AgentEvent) {
	select {
	case o.channels.Event <- event:
	default:
	}
}
