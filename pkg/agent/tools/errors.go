package tools

import (
	"fmt"
	"strings"
)

// UnknownToolError is returned when the model names a tool outside the catalog.
type UnknownToolError struct {
	Name      string
	Available []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Error: unknown tool %q. Available tools: %s", e.Name, strings.Join(e.Available, ", "))
}

// ArgumentError reports a missing or malformed tool argument. It is recovered
// locally as a tool outcome so the model can correct the call.
type ArgumentError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("Error: invalid arguments for %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("Error: invalid argument %q for %s: %s", e.Param, e.Tool, e.Reason)
}
