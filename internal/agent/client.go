// Package agent owns the conversational session and the turn-execution loop
// that drives the remote agent service through multi-step tool use.
package agent

import (
	"context"
	"errors"

	"github.com/dileep-u-k/location-agent/internal/tools"
)

// ErrProtocolViolation reports an agent response whose shape is neither plain
// text nor a structured tool-call payload.
var ErrProtocolViolation = errors.New("unrecognized agent response shape")

// Request is one call to the remote agent service. It carries either fresh
// user text or a tool result correlated with the pending invocation id —
// never both, never neither, while a call is pending.
type Request struct {
	Instruction       string
	ModelID           string
	SessionID         string
	InputText         string
	SessionAttributes map[string]string
	EndSession        bool
	EnableTrace       bool
	// ActionGroups is the function-schema document regenerated from the
	// tool registry for every request.
	ActionGroups []tools.ActionGroup
	// InvocationID and ToolResult are set together when returning control
	// after a local tool execution.
	InvocationID string
	ToolResult   *ToolResult
}

// ToolResult wraps a local tool's payload for delivery back to the agent.
type ToolResult struct {
	ActionGroup string
	Function    string
	Body        string
}

// ToolCall is the agent's instruction to execute a local tool before it can
// continue. It is consumed exactly once by the turn-execution loop.
type ToolCall struct {
	InvocationID string
	ActionGroup  string
	Function     string
	Arguments    map[string]string
}

// ResponseKind classifies an agent response.
type ResponseKind int

const (
	// KindFinalText means the response is the final answer for this turn.
	KindFinalText ResponseKind = iota
	// KindToolCall means the agent returned control and wants a local tool
	// executed.
	KindToolCall
)

// Response is one agent response with its streamed chunks already
// concatenated. Trace entries are surfaced in arrival order.
type Response struct {
	Kind     ResponseKind
	Text     string
	ToolCall *ToolCall
	Traces   []string
}

// Client is the boundary to the remote agent service. Implementations make a
// single blocking network call per Invoke; there are no retries at this
// layer.
type Client interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
}
