package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/webpilot/pkg/agent/tools"
)

// ErrEmptyTask is returned for operator input that is blank after trimming.
var ErrEmptyTask = errors.New("task text is empty")

// ArgumentError reports a missing or malformed tool argument. It never ends a
// run; it is rendered into the tool outcome.
type ArgumentError = tools.ArgumentError

// UnknownToolError reports an invocation naming a tool outside the catalog.
type UnknownToolError = tools.UnknownToolError

// DispatchError classifies a failure string returned by the Automation
// Surface. Like ArgumentError it is data for the model, not a run failure.
type DispatchError struct {
	Tool string
	Text string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Tool, e.Text)
}

// classifyDispatch returns a *DispatchError when the surface result text
// reports a failure, and nil otherwise.
func classifyDispatch(tool, text string) *DispatchError {
	if strings.HasPrefix(text, "Error") {
		return &DispatchError{Tool: tool, Text: text}
	}
	return nil
}

// TransportError wraps a failed reasoning call. It ends the current run; the
// conversation is kept so the operator can retry.
type TransportError struct {
	Model string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("reasoning call failed: %v", e.Err)
	}
	return fmt.Sprintf("reasoning call to %s failed: %v", e.Model, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IterationCeilingError ends a run that used up its reasoning rounds without
// reaching a terminal decision.
type IterationCeilingError struct {
	Limit int
}

func (e *IterationCeilingError) Error() string {
	return fmt.Sprintf("iteration ceiling exceeded: no result after %d rounds", e.Limit)
}
