package engine

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

// Completer is satisfied by the chat completions service of an openai-go client.
type Completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type OpenAIConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAI calls the chat completions API directly with the catalog as function tools.
type OpenAI struct {
	completer Completer
	cfg       OpenAIConfig
	tools     []openai.ChatCompletionToolParam
}

var _ contractx.Engine = (*OpenAI)(nil)

func NewOpenAI(completer Completer, cfg OpenAIConfig, defs []contractx.ToolDefinition) (*OpenAI, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: openai client is nil", contractx.ErrEngine)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrEngine)
	}

	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(JSONSchema(def)),
			},
		})
	}

	return &OpenAI{completer: completer, cfg: cfg, tools: tools}, nil
}

func (e *OpenAI) Analyze(ctx context.Context, req contractx.EngineRequest) (calls []contractx.ToolCall, err error) {
	ctx, span := telemetryx.StartSpan(ctx, "engine.analyze", telemetryx.AttrEngineBackend.String("openai"))
	defer func() { telemetryx.EndSpan(span, err) }()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Tools: e.tools,
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String("auto"),
		},
		Temperature: openai.Float(float64(e.cfg.Temperature)),
	}
	if e.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(e.cfg.MaxTokens))
	}

	resp, err := e.completer.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", contractx.ErrEngine, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: chat completion returned no choices", contractx.ErrEngine)
	}

	toolCalls := resp.Choices[0].Message.ToolCalls
	calls = make([]contractx.ToolCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		call, err := parseToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	span.SetAttributes(telemetryx.AttrToolCount.Int(len(calls)))
	return calls, nil
}

// JSONSchema renders a tool definition's parameters as a JSON schema object.
func JSONSchema(def contractx.ToolDefinition) map[string]any {
	properties := make(map[string]any, len(def.Params))
	required := make([]string, 0, len(def.Params))
	for _, p := range def.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == contractx.ParamArray {
			prop["items"] = map[string]any{"type": string(p.Items)}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
