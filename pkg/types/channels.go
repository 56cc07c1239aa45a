package types

import "sync"

// AgentChannels is the queue between the presentation task and the orchestrator task.
// The presentation side writes Input and reads Event; the orchestrator does the reverse.
type AgentChannels struct {
	// Input carries operator input to the orchestrator.
	Input chan *Input

	// Event carries orchestrator events to the presentation side.
	Event chan *AgentEvent

	// Shutdown is closed to ask the orchestrator to stop.
	Shutdown chan struct{}

	// Done is closed by the orchestrator once its event loop has exited.
	Done chan struct{}

	closeOnce sync.Once
}

// NewAgentChannels creates channels with the given buffer size for Input and Event.
func NewAgentChannels(bufferSize int) *AgentChannels {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &AgentChannels{
		Input:    make(chan *Input, bufferSize),
		Event:    make(chan *AgentEvent, bufferSize),
		Shutdown: make(chan struct{}),
		Done:     make(chan struct{}),
	}
}

// Close closes the Event and Done channels. It is safe to call more than once.
// Input is owned by the writer and is left open.
func (c *AgentChannels) Close() {
	c.closeOnce.Do(func() {
		close(c.Event)
		close(c.Done)
	})
}
