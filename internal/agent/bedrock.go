package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	bartypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/dileep-u-k/location-agent/internal/tools"
)

// BedrockClient implements Client over the Bedrock inline-agent runtime.
// Each Invoke makes one InvokeInlineAgent call and drains its event stream
// into a single Response.
type BedrockClient struct {
	runtime *bedrockagentruntime.Client
}

// Statically verify that BedrockClient implements the Client interface.
var _ Client = (*BedrockClient)(nil)

// NewBedrockClient creates a client using the default AWS credential chain.
func NewBedrockClient(ctx context.Context, region string) (*BedrockClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &BedrockClient{runtime: bedrockagentruntime.NewFromConfig(cfg)}, nil
}

// Invoke submits one agent request and classifies the streamed response as
// either final text or a return-control tool call.
func (bc *BedrockClient) Invoke(ctx context.Context, req *Request) (*Response, error) {
	state := &bartypes.InlineSessionState{
		PromptSessionAttributes: req.SessionAttributes,
	}
	if req.ToolResult != nil && req.InvocationID != "" {
		state.InvocationId = aws.String(req.InvocationID)
		state.ReturnControlInvocationResults = []bartypes.InvocationResultMember{
			&bartypes.InvocationResultMemberMemberFunctionResult{
				Value: bartypes.FunctionResult{
					ActionGroup: aws.String(req.ToolResult.ActionGroup),
					Function:    aws.String(req.ToolResult.Function),
					ResponseBody: map[string]bartypes.ContentBody{
						"TEXT": {Body: aws.String(req.ToolResult.Body)},
					},
				},
			},
		}
	}

	out, err := bc.runtime.InvokeInlineAgent(ctx, &bedrockagentruntime.InvokeInlineAgentInput{
		SessionId:          aws.String(req.SessionID),
		FoundationModel:    aws.String(req.ModelID),
		Instruction:        aws.String(req.Instruction),
		InputText:          aws.String(req.InputText),
		EnableTrace:        aws.Bool(req.EnableTrace),
		EndSession:         aws.Bool(req.EndSession),
		InlineSessionState: state,
		ActionGroups:       actionGroupsToSDK(req.ActionGroups),
	})
	if err != nil {
		return nil, fmt.Errorf("agent invocation failed: %w", err)
	}

	stream := out.GetStream()
	defer stream.Close()

	resp := &Response{Kind: KindFinalText}
	var text strings.Builder
	sawPayload := false

	for event := range stream.Events() {
		switch ev := event.(type) {
		case *bartypes.InlineAgentResponseStreamMemberChunk:
			text.Write(ev.Value.Bytes)
			sawPayload = true
		case *bartypes.InlineAgentResponseStreamMemberTrace:
			resp.Traces = append(resp.Traces, traceSummary(ev.Value))
		case *bartypes.InlineAgentResponseStreamMemberReturnControl:
			call, err := toolCallFromPayload(ev.Value)
			if err != nil {
				return nil, err
			}
			resp.Kind = KindToolCall
			resp.ToolCall = call
			sawPayload = true
		default:
			return nil, fmt.Errorf("%w: stream event %T", ErrProtocolViolation, event)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("agent response stream failed: %w", err)
	}
	if !sawPayload {
		return nil, fmt.Errorf("%w: stream carried neither text nor a tool call", ErrProtocolViolation)
	}

	resp.Text = text.String()
	return resp, nil
}

// toolCallFromPayload extracts the single requested function from a
// return-control payload.
func toolCallFromPayload(payload bartypes.InlineAgentReturnControlPayload) (*ToolCall, error) {
	call := &ToolCall{
		InvocationID: aws.ToString(payload.InvocationId),
		Arguments:    make(map[string]string),
	}
	for _, input := range payload.InvocationInputs {
		fn, ok := input.(*bartypes.InvocationInputMemberMemberFunctionInvocationInput)
		if !ok {
			return nil, fmt.Errorf("%w: invocation input %T", ErrProtocolViolation, input)
		}
		call.ActionGroup = aws.ToString(fn.Value.ActionGroup)
		call.Function = aws.ToString(fn.Value.Function)
		for _, p := range fn.Value.Parameters {
			call.Arguments[aws.ToString(p.Name)] = aws.ToString(p.Value)
		}
	}
	if call.Function == "" {
		return nil, fmt.Errorf("%w: return control without a function invocation", ErrProtocolViolation)
	}
	return call, nil
}

// traceSummary renders a trace part as one diagnostic line for the UI.
func traceSummary(part bartypes.InlineAgentTracePart) string {
	switch t := part.Trace.(type) {
	case *bartypes.TraceMemberOrchestrationTrace:
		switch ot := t.Value.(type) {
		case *bartypes.OrchestrationTraceMemberRationale:
			return "rationale: " + aws.ToString(ot.Value.Text)
		case *bartypes.OrchestrationTraceMemberInvocationInput:
			return "agent is invoking a tool"
		case *bartypes.OrchestrationTraceMemberObservation:
			return "agent received a tool observation"
		case *bartypes.OrchestrationTraceMemberModelInvocationInput:
			return "model invocation started"
		case *bartypes.OrchestrationTraceMemberModelInvocationOutput:
			return "model invocation completed"
		}
		return "orchestration trace received"
	}
	return "trace received"
}

// actionGroupsToSDK converts the registry's function-schema document into the
// Bedrock wire types. Every group executes via RETURN_CONTROL: the agent
// hands tool execution back to this process.
func actionGroupsToSDK(groups []tools.ActionGroup) []bartypes.AgentActionGroup {
	out := make([]bartypes.AgentActionGroup, 0, len(groups))
	for _, g := range groups {
		fns := make([]bartypes.FunctionDefinition, 0, len(g.Functions))
		for _, f := range g.Functions {
			params := make(map[string]bartypes.ParameterDetail, len(f.Parameters))
			for name, p := range f.Parameters {
				params[name] = bartypes.ParameterDetail{
					Type:        bartypes.ParameterType(p.Type),
					Description: aws.String(p.Description),
					Required:    aws.Bool(p.Required),
				}
			}
			fns = append(fns, bartypes.FunctionDefinition{
				Name:        aws.String(f.Name),
				Description: aws.String(f.Description),
				Parameters:  params,
			})
		}
		out = append(out, bartypes.AgentActionGroup{
			ActionGroupName: aws.String(g.Name),
			Description:     aws.String(g.Description),
			ActionGroupExecutor: &bartypes.ActionGroupExecutorMemberCustomControl{
				Value: bartypes.CustomControlMethodReturnControl,
			},
			FunctionSchema: &bartypes.FunctionSchemaMemberFunctions{Value: fns},
		})
	}
	return out
}
