package analyzer

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	nodex "github.com/tanpawarit/screening-decision/agent/nodes/analyzer"
)

const (
	nodeValidateRequest  = "validate_request"
	nodeAcquireLease     = "acquire_lease"
	nodeCheckIdempotency = "check_idempotency"
	nodeAssembleContext  = "assemble_context"
	nodeInvokeEngine     = "invoke_engine"
	nodeExecuteTools     = "execute_tools"
	nodeRecordStatus     = "record_status"
	nodeFinalize         = "finalize"
)

func (a *Analyzer) compileAnalysisGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, contractx.AnalysisResult], error) {
	graph := compose.NewGraph[nodex.GraphInput, contractx.AnalysisResult]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	steps := []struct {
		name string
		fn   func(context.Context, *nodex.GraphState) (*nodex.GraphState, error)
	}{
		{nodeAcquireLease, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AcquireLease(ctx, in, a.locker)
		}},
		{nodeCheckIdempotency, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CheckIdempotency(ctx, in, a.store)
		}},
		{nodeAssembleContext, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AssembleContext(ctx, in, a.assembler)
		}},
		{nodeInvokeEngine, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InvokeEngine(ctx, in, a.renderer, a.engine)
		}},
		{nodeExecuteTools, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTools(ctx, in, a.tools)
		}},
		{nodeRecordStatus, func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordStatus(ctx, in, a.store, a.now)
		}},
	}
	for _, step := range steps {
		if err := graph.AddLambdaNode(step.name, compose.InvokableLambda(step.fn)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", step.name, err)
		}
	}

	if err := graph.AddLambdaNode(nodeFinalize,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.AnalysisResult, error) {
			return nodex.Finalize(in, a.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalize, err)
	}

	// Each gated node either continues or jumps to finalize once an outcome is set.
	gates := [][2]string{
		{nodeValidateRequest, nodeAcquireLease},
		{nodeAcquireLease, nodeCheckIdempotency},
		{nodeCheckIdempotency, nodeAssembleContext},
		{nodeAssembleContext, nodeInvokeEngine},
		{nodeInvokeEngine, nodeExecuteTools},
	}
	for _, gate := range gates {
		if err := graph.AddBranch(gate[0], continueOrFinalize(gate[1])); err != nil {
			return nil, fmt.Errorf("add branch %s->%s: %w", gate[0], gate[1], err)
		}
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeExecuteTools, nodeRecordStatus},
		{nodeRecordStatus, nodeFinalize},
		{nodeFinalize, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("analyzer.post_conversation"))
	if err != nil {
		return nil, fmt.Errorf("compile analyzer graph: %w", err)
	}
	return runner, nil
}

func continueOrFinalize(next string) *compose.GraphBranch {
	return compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: analysis graph state is nil", contractx.ErrValidation)
			}
			if in.Finished() {
				return nodeFinalize, nil
			}
			return next, nil
		},
		map[string]bool{
			next:         true,
			nodeFinalize: true,
		},
	)
}
