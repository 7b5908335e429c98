package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mlbchat/internal/statsmcp"
	"github.com/petasbytes/mlbchat/internal/telemetry"
)

// ErrLLMRequest signals a transport or auth failure talking to the model.
var ErrLLMRequest = errors.New("llm request failed")

// ErrLLMParse signals a reply that could not be decoded into content blocks.
var ErrLLMParse = errors.New("llm reply unparseable")

// ToolInvoker executes a named tool on the remote stats server.
type ToolInvoker interface {
	CallTool(ctx context.Context, name string, args json.RawMessage) (text string, isError bool, err error)
}

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// TurnRequest is one conversation state to send to the model.
type TurnRequest struct {
	Model       anthropic.Model
	MaxTokens   int64
	Temperature float64
	System      string
	Messages    []anthropic.MessageParam
	Tools       []anthropic.ToolUnionParam
}

type Runner struct {
	Client  *anthropic.Client
	Invoker ToolInvoker
}

func New(client *anthropic.Client, invoker ToolInvoker) *Runner {
	return &Runner{Client: client, Invoker: invoker}
}

// RunTurn sends the conversation and returns the assistant's reply.
func (r *Runner) RunTurn(ctx context.Context, req TurnRequest) (*anthropic.Message, error) {
	params := anthropic.MessageNewParams{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages:  req.Messages,
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = req.Tools
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMRequest, err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("%w: reply carries no content blocks", ErrLLMParse)
	}

	sessionID, _ := telemetry.SessionIDFromContext(ctx)
	telemetry.Emit("llm_turn", map[string]any{
		"session_id":  sessionID,
		"model":       string(req.Model),
		"stop_reason": string(msg.StopReason),
		"blocks":      len(msg.Content),
	})
	return msg, nil
}

// Dispatch executes the calls in the order received and returns one
// tool_result block per call, in that same order.
func (r *Runner) Dispatch(ctx context.Context, catalog []statsmcp.ToolDescriptor, calls []ToolCall) []anthropic.ContentBlockParamUnion {
	results := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
	for _, call := range calls {
		results = append(results, r.dispatchOne(ctx, catalog, call))
	}
	return results
}

func (r *Runner) dispatchOne(ctx context.Context, catalog []statsmcp.ToolDescriptor, call ToolCall) anthropic.ContentBlockParamUnion {
	sessionID, _ := telemetry.SessionIDFromContext(ctx)

	emit := func(durationMs int64, errStr string) {
		fields := map[string]any{
			"session_id":  sessionID,
			"tool_name":   call.Name,
			"duration_ms": durationMs,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_dispatch", fields)
	}

	start := time.Now()

	// A name absent from the catalog is a dispatch error fed back to the
	// model, never a fault that ends the session.
	if !catalogHas(catalog, call.Name) {
		emit(time.Since(start).Milliseconds(), "tool not found")
		return anthropic.NewToolResultBlock(call.ID, fmt.Sprintf("tool %q is not available", call.Name), true)
	}

	text, isErr, err := r.Invoker.CallTool(ctx, call.Name, call.Input)
	if err != nil {
		emit(time.Since(start).Milliseconds(), "tool error")
		return anthropic.NewToolResultBlock(call.ID, err.Error(), true)
	}
	if isErr {
		emit(time.Since(start).Milliseconds(), "tool reported error")
	} else {
		emit(time.Since(start).Milliseconds(), "")
	}
	return anthropic.NewToolResultBlock(call.ID, text, isErr)
}

func catalogHas(catalog []statsmcp.ToolDescriptor, name string) bool {
	for i := range catalog {
		if catalog[i].Name == name {
			return true
		}
	}
	return false
}

// AnthropicTools converts catalog descriptors into the schema shape the
// Messages API expects for tool invocation.
func AnthropicTools(catalog []statsmcp.ToolDescriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(catalog))
	for _, d := range catalog {
		var schema struct {
			Properties json.RawMessage `json:"properties"`
			Required   []string        `json:"required"`
		}
		// Descriptors were validated at fetch; an undecodable schema here
		// degrades to an empty property set rather than dropping the tool.
		_ = json.Unmarshal(d.InputSchema, &schema)
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema.Properties,
				Required:   schema.Required,
			},
		}})
	}
	return out
}

// ToolCalls extracts tool_use blocks from an assistant message in emission order.
func ToolCalls(msg *anthropic.Message) []ToolCall {
	var calls []ToolCall
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			calls = append(calls, ToolCall{
				ID:    v.ID,
				Name:  v.Name,
				Input: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	return calls
}

// AssistantText joins the message's text blocks with newlines.
func AssistantText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok && v.Text != "" {
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}
