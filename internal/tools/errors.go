package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTool is returned by Register when a tool name is already
	// taken in the registry.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned when a requested tool name is not in the
	// registry. The agent requesting a tool we never advertised is a
	// protocol-level problem and must surface as a visible error, never be
	// silently dropped.
	ErrUnknownTool = errors.New("unknown tool")
)

// MissingArgumentError reports a required parameter the agent failed to
// supply.
type MissingArgumentError struct {
	Tool      string
	Parameter string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("tool %q: missing required argument %q", e.Tool, e.Parameter)
}

// ArgumentTypeError reports an argument value that cannot be coerced to the
// parameter's declared type.
type ArgumentTypeError struct {
	Tool      string
	Parameter string
	WantType  string
	Value     string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("tool %q: argument %q must be a %s, got %q", e.Tool, e.Parameter, e.WantType, e.Value)
}
