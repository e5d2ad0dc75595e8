package tool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	notifyx "github.com/tanpawarit/screening-decision/agent/notify"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

const defaultDuplicateWindow = 24 * time.Hour

// Orchestrator validates engine tool calls and applies them to the store.
// Execute never returns an error; every outcome is reported in the ToolResult.
type Orchestrator struct {
	store    storex.Store
	notifier contractx.Notifier
	now      func() time.Time
}

var _ contractx.ToolExecutor = (*Orchestrator)(nil)

type Option func(*Orchestrator)

func WithNotifier(n contractx.Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func NewOrchestrator(store storex.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		notifier: notifyx.Noop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *Orchestrator) Execute(ctx context.Context, exec contractx.ExecutionScope, call contractx.ToolCall) (res contractx.ToolResult) {
	start := time.Now()
	ctx, span := telemetryx.StartSpan(ctx, "tool.execute",
		telemetryx.AttrToolName.String(call.Name),
		telemetryx.AttrToolCallID.String(call.ID),
		telemetryx.AttrConversationID.String(exec.ConversationID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool_name", call.Name).
				Str("stack", string(debug.Stack())).
				Msgf("tool handler panic: %v", r)
			res = failed(call, fmt.Errorf("tool handler panic: %v", r))
		}
		res.Duration = time.Since(start)

		telemetryx.RecordTool(MetricLabel(call.Name), res.Success, res.Duration)
		telemetryx.EndSpan(span, res.Err)

		evt := log.Info()
		if !res.Success {
			evt = log.Warn().Str("error", res.Error)
		}
		evt.Str("conversation_id", exec.ConversationID.String()).
			Str("tool_name", call.Name).
			Str("tool_id", call.ID).
			Bool("success", res.Success).
			Dur("elapsed", res.Duration).
			Msg("tool executed")
	}()

	out, err := o.dispatch(ctx, exec, call)
	if err != nil {
		return failed(call, err)
	}
	return contractx.ToolResult{
		ToolName: call.Name,
		CallID:   call.ID,
		Success:  true,
		Result:   out,
	}
}

func (o *Orchestrator) dispatch(ctx context.Context, exec contractx.ExecutionScope, call contractx.ToolCall) (any, error) {
	switch call.Name {
	case ToolCreateInterventionDecision:
		return o.createInterventionDecision(ctx, exec, call.Args)
	case ToolCheckDuplicateDecision:
		return o.checkDuplicateDecision(ctx, exec, call.Args)
	case ToolUpdateConversationStatus:
		return o.updateConversationStatus(ctx, exec, call.Args)
	case ToolNotifyRecruiters:
		return o.notifyRecruiters(ctx, exec, call.Args)
	default:
		log.Warn().
			Str("tool_name", call.Name).
			Str("catalog_version", CatalogVersion).
			Msg("engine called a tool outside the catalog")
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, call.Name)
	}
}

func failed(call contractx.ToolCall, err error) contractx.ToolResult {
	return contractx.ToolResult{
		ToolName: call.Name,
		CallID:   call.ID,
		Success:  false,
		Error:    err.Error(),
		Err:      err,
	}
}
