package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

// Eino runs one prompt -> tool-bound chat model pass as a compiled eino graph.
type Eino struct {
	runner compose.Runnable[contractx.EngineRequest, *schema.Message]
}

var _ contractx.Engine = (*Eino)(nil)

func NewEino(ctx context.Context, chatModel einomodel.ToolCallingChatModel, tools []*schema.ToolInfo) (*Eino, error) {
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind analysis tools: %v", contractx.ErrEngine, err)
	}

	runner, err := compileAnalysisGraph(ctx, toolModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrEngine, err)
	}
	return &Eino{runner: runner}, nil
}

func compileAnalysisGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
) (compose.Runnable[contractx.EngineRequest, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{prompt}"),
	)

	graph := compose.NewGraph[contractx.EngineRequest, *schema.Message]()
	if err := graph.AddLambdaNode("prepare",
		compose.InvokableLambda(func(ctx context.Context, req contractx.EngineRequest) (map[string]any, error) {
			if strings.TrimSpace(req.Prompt) == "" {
				return nil, fmt.Errorf("%w: analysis prompt is empty", contractx.ErrValidation)
			}
			return map[string]any{
				"system": req.System,
				"prompt": req.Prompt,
			}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add analysis prepare node: %w", err)
	}
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add analysis prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add analysis model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prepare"); err != nil {
		return nil, fmt.Errorf("add analysis edge start->prepare: %w", err)
	}
	if err := graph.AddEdge("prepare", "prompt"); err != nil {
		return nil, fmt.Errorf("add analysis edge prepare->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add analysis edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add analysis edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("engine.analysis_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile analysis graph: %w", err)
	}
	return runner, nil
}

func (e *Eino) Analyze(ctx context.Context, req contractx.EngineRequest) (calls []contractx.ToolCall, err error) {
	ctx, span := telemetryx.StartSpan(ctx, "engine.analyze", telemetryx.AttrEngineBackend.String("eino"))
	defer func() { telemetryx.EndSpan(span, err) }()

	msg, err := e.runner.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: analysis invoke: %v", contractx.ErrEngine, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty analysis response", contractx.ErrEngine)
	}

	calls, err = fromSchemaToolCalls(msg.ToolCalls)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		log.Debug().Str("content", msg.Content).Msg("engine returned no tool calls")
	}
	span.SetAttributes(telemetryx.AttrToolCount.Int(len(calls)))
	return calls, nil
}

func fromSchemaToolCalls(in []schema.ToolCall) ([]contractx.ToolCall, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]contractx.ToolCall, 0, len(in))
	for _, call := range in {
		tc, err := parseToolCall(call.ID, call.Function.Name, call.Function.Arguments)
		if err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, nil
}

// parseToolCall decodes the JSON argument object of one tool call block.
func parseToolCall(id, name, rawArgs string) (contractx.ToolCall, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return contractx.ToolCall{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrEngine)
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return contractx.ToolCall{}, fmt.Errorf("%w: invalid arguments for tool=%s: %v", contractx.ErrEngine, name, err)
		}
	}

	return contractx.ToolCall{
		ID:   id,
		Name: name,
		Args: args,
	}, nil
}
