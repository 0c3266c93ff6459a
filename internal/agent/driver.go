package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/dileep-u-k/location-agent/internal/placetag"
	"github.com/dileep-u-k/location-agent/internal/tools"
)

// maxToolRounds caps the number of tool round-trips in a single turn. The
// loop is explicit rather than recursive so a misbehaving tool chain cannot
// drive unbounded recursion.
const maxToolRounds = 5

// blankInputText is sent when a turn is driven purely by a tool result; the
// agent protocol requires some input text on every call.
const blankInputText = " "

// EventType classifies an intermediate event emitted during a turn.
type EventType string

const (
	// EventTrace is a diagnostic entry from the remote agent's own
	// reasoning stream.
	EventTrace EventType = "trace"
	// EventToolCall marks the start of a local tool execution.
	EventToolCall EventType = "tool_call"
	// EventToolResult marks a completed local tool execution.
	EventToolResult EventType = "tool_result"
)

// Event is one intermediate diagnostic produced while a turn is running.
// Events are delivered in order, synchronously, before the final answer.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

// FinalAnswer is the terminal outcome of a turn: the answer text with place
// tags resolved to links, plus the extracted place records for the map view.
type FinalAnswer struct {
	Text      string           `json:"text"`
	Locations []placetag.Place `json:"locations,omitempty"`
}

// Driver runs turns against the remote agent service, dispatching
// return-control tool calls to the registry until the agent produces a final
// answer.
type Driver struct {
	client      Client
	registry    *tools.Registry
	instruction string
	modelID     string
	enableTrace bool
}

// NewDriver wires a driver to its agent client and tool registry.
func NewDriver(client Client, registry *tools.Registry, instruction, modelID string) *Driver {
	return &Driver{
		client:      client,
		registry:    registry,
		instruction: instruction,
		modelID:     modelID,
		enableTrace: true,
	}
}

// EndSession tells the remote agent service to discard its half of the
// session state. Best effort: the caller removes local state regardless of
// the outcome.
func (d *Driver) EndSession(ctx context.Context, sess *Session) error {
	_, err := d.client.Invoke(ctx, &Request{
		Instruction:       d.instruction,
		ModelID:           d.modelID,
		SessionID:         sess.ID,
		InputText:         blankInputText,
		SessionAttributes: sess.Attributes,
		EndSession:        true,
	})
	return err
}

// RunTurn executes one user turn: send input, classify the response, run the
// requested tool when control returns, and loop until the agent produces
// final text. Exactly one FinalAnswer is produced per turn.
//
// Intermediate diagnostics are delivered through emit as they occur. Tool
// failures of any kind terminate the turn with an error FinalAnswer; only a
// failure of the agent service itself is returned as an error.
func (d *Driver) RunTurn(ctx context.Context, sess *Session, userText string, emit func(Event)) (*FinalAnswer, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	// The schema document is regenerated from the registry for every turn
	// so it always reflects exactly what is invokable.
	actionGroups := d.registry.ActionGroups()

	inputText := userText
	var queuedResult *ToolResult
	rounds := 0

	for {
		req := &Request{
			Instruction:       d.instruction,
			ModelID:           d.modelID,
			SessionID:         sess.ID,
			InputText:         inputText,
			SessionAttributes: sess.Attributes,
			EnableTrace:       d.enableTrace,
			ActionGroups:      actionGroups,
			InvocationID:      sess.pendingInvocationID,
			ToolResult:        queuedResult,
		}

		resp, err := d.client.Invoke(ctx, req)
		if err != nil {
			if queuedResult != nil {
				// The queued result dies with the failed turn; the next
				// turn must start from fresh user text, not a stale
				// invocation id.
				sess.pendingInvocationID = ""
			}
			return nil, err
		}
		if queuedResult != nil {
			// The pending invocation's result has been delivered.
			sess.pendingInvocationID = ""
			queuedResult = nil
		}

		for _, tr := range resp.Traces {
			emit(Event{Type: EventTrace, Message: tr})
		}

		if resp.Kind == KindFinalText {
			text, locations := placetag.Extract(resp.Text)
			return &FinalAnswer{Text: text, Locations: locations}, nil
		}

		if rounds >= maxToolRounds {
			return nil, fmt.Errorf("agent requested more than %d tool round-trips in one turn", maxToolRounds)
		}
		rounds++

		call := resp.ToolCall
		sess.pendingInvocationID = call.InvocationID
		emit(Event{Type: EventToolCall, Message: fmt.Sprintf("executing %s", call.Function)})
		log.Printf("🛠️ Executing tool: %s (invocation: %s) with args: %v", call.Function, call.InvocationID, call.Arguments)

		result, err := d.registry.Invoke(ctx, call.Function, call.Arguments)
		if err != nil {
			// Unknown tool or malformed arguments: surface as a visible
			// error answer, never silently drop the request. The invocation
			// is abandoned with the turn.
			sess.pendingInvocationID = ""
			return &FinalAnswer{Text: "Error: " + err.Error()}, nil
		}
		if !result.OK() {
			sess.pendingInvocationID = ""
			return &FinalAnswer{Text: "Error: " + result.Error}, nil
		}
		emit(Event{Type: EventToolResult, Message: fmt.Sprintf("%s returned %d bytes", call.Function, len(result.Payload))})

		queuedResult = &ToolResult{
			ActionGroup: call.ActionGroup,
			Function:    call.Function,
			Body:        result.Payload,
		}
		inputText = blankInputText
	}
}
