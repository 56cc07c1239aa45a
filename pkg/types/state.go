package types

// RunState is the externally observable state of the orchestrator.
// Callers query it instead of tracking a busy flag of their own.
type RunState string

const (
	RunStateIdle             RunState = "idle"              // RunStateIdle means no run is active; new tasks start immediately.
	RunStateRunning          RunState = "running"           // RunStateRunning means a run is reasoning or dispatching tools.
	RunStateAwaitingOperator RunState = "awaiting_operator" // RunStateAwaitingOperator means the run is suspended on an ask_user question.
	RunStateTerminated       RunState = "terminated"        // RunStateTerminated means the orchestrator has shut down.
)

// Accepting reports whether an operator input submitted now would be handled
// without waiting for an in-flight run.
func (s RunState) Accepting() bool {
	return s == RunStateIdle || s == RunStateAwaitingOperator
}

// String implements fmt.Stringer.
func (s RunState) String() string {
	return string(s)
}
