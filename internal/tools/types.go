// Package tools defines the tool registry and the external tool adapters the
// agent can call. These types provide a provider-agnostic representation of
// tools that is translated into the action-group function schema the remote
// agent service expects.
package tools

import "context"

// Parameter types accepted in a tool's parameter schema.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Parameter describes one argument of a tool function.
type Parameter struct {
	// Name is the argument name as the agent will produce it.
	Name string
	// Type is one of the Type* constants above. Argument values always
	// arrive as strings on the wire; the declared type is used to validate
	// that a value is coercible before the handler runs.
	Type string
	// Description explains the parameter to the agent. The model relies on
	// this text to fill arguments correctly, so it should be precise.
	Description string
	// Required marks the parameter as mandatory.
	Required bool
}

// Definition describes a single callable tool: its name (unique within a
// registry), the description the agent sees, and an ordered parameter schema.
// Definitions are immutable once registered.
type Definition struct {
	Name        string
	Description string
	// ActionGroup names the group this tool is published under in the
	// function schema sent to the agent service.
	ActionGroup string
	Parameters  []Parameter
}

// HandlerFunc is the executable behind a tool. Argument values arrive as
// strings keyed by parameter name, exactly as the agent produced them.
// A returned error becomes a textual error result for the agent; handlers
// never crash a turn.
type HandlerFunc func(ctx context.Context, args map[string]string) (string, error)

// Result is the outcome of one tool invocation. Exactly one of Payload or
// Error is meaningful: a successful call carries a payload, a failed call
// carries the error text the agent will see.
type Result struct {
	Tool    string
	Payload string
	Error   string
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool { return r.Error == "" }

// ActionGroup is one group in the function-schema document sent to the remote
// agent service. Function order is deterministic (registration order), since
// the document is serialized verbatim into every agent request.
type ActionGroup struct {
	Name        string
	Description string
	Functions   []FunctionDoc
}

// FunctionDoc is the machine-readable description of one tool function.
type FunctionDoc struct {
	Name        string
	Description string
	Parameters  map[string]ParameterDoc
}

// ParameterDoc describes one parameter in the function-schema document.
type ParameterDoc struct {
	Type        string
	Description string
	Required    bool
}
