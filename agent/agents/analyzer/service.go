package analyzer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	nodex "github.com/tanpawarit/screening-decision/agent/nodes/analyzer"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

const releaseTimeout = 5 * time.Second

type Deps struct {
	Store     nodex.ConversationStore
	Assembler contractx.Assembler
	Renderer  nodex.PromptRenderer
	Engine    contractx.Engine
	Tools     contractx.ToolExecutor
	// Locker is optional. Without it runs on the same conversation are not serialized.
	Locker contractx.Locker
}

type Option func(*Analyzer)

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// Analyzer coordinates one post-conversation analysis run.
type Analyzer struct {
	store     nodex.ConversationStore
	assembler contractx.Assembler
	renderer  nodex.PromptRenderer
	engine    contractx.Engine
	tools     contractx.ToolExecutor
	locker    contractx.Locker

	graphRunner compose.Runnable[nodex.GraphInput, contractx.AnalysisResult]

	now func() time.Time
}

func New(deps Deps, opts ...Option) (*Analyzer, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("conversation store is required")
	case deps.Assembler == nil:
		return nil, errors.New("context assembler is required")
	case deps.Renderer == nil:
		return nil, errors.New("prompt renderer is required")
	case deps.Engine == nil:
		return nil, errors.New("reasoning engine is required")
	case deps.Tools == nil:
		return nil, errors.New("tool executor is required")
	}

	a := &Analyzer{
		store:     deps.Store,
		assembler: deps.Assembler,
		renderer:  deps.Renderer,
		engine:    deps.Engine,
		tools:     deps.Tools,
		locker:    deps.Locker,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	graphRunner, err := a.compileAnalysisGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner
	return a, nil
}

// Analyze never returns an error. Every failure, including a panic, becomes a non-completed result.
func (a *Analyzer) Analyze(ctx context.Context, req contractx.AnalysisRequest) (res contractx.AnalysisResult) {
	start := a.now()
	ctx, span := telemetryx.StartSpan(ctx, "analyzer.analyze",
		telemetryx.AttrConversationID.String(req.ConversationID.String()),
		telemetryx.AttrForce.Bool(req.ForceReanalysis),
	)
	logger := log.With().Str("conversation_id", req.ConversationID.String()).Logger()
	logger.Info().Bool("force_reanalysis", req.ForceReanalysis).Msg("post-conversation analysis started")

	lease := &nodex.Lease{}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("stack", string(debug.Stack())).
				Dur("elapsed", a.now().Sub(start)).
				Msgf("post-conversation analysis panic: %v", r)
			res = failure(req, fmt.Errorf("panic: %v", r), a.now().Sub(start))
		}

		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		if err := lease.Release(releaseCtx); err != nil {
			logger.Warn().Err(err).Msg("analysis lease release failed")
		}
		cancel()

		telemetryx.RecordAnalysis(string(res.Outcome), res.ProcessingTime)
		span.SetAttributes(
			telemetryx.AttrOutcome.String(string(res.Outcome)),
			telemetryx.AttrToolCount.Int(len(res.ToolResults)),
		)
		var spanErr error
		if !res.AnalysisCompleted {
			spanErr = errors.New(res.ErrorMessage)
		}
		telemetryx.EndSpan(span, spanErr)

		evt := logger.Info()
		if !res.AnalysisCompleted {
			evt = logger.Error().Str("error", res.ErrorMessage)
		}
		evt.Str("outcome", string(res.Outcome)).
			Int("decisions_created", res.DecisionsCreated).
			Dur("elapsed", res.ProcessingTime).
			Msg("post-conversation analysis finished")
	}()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req, Lease: lease})
	if err != nil {
		return failure(req, err, a.now().Sub(start))
	}
	return out
}

func failure(req contractx.AnalysisRequest, err error, elapsed time.Duration) contractx.AnalysisResult {
	return contractx.AnalysisResult{
		ConversationID: req.ConversationID,
		Outcome:        nodex.Classify(err),
		Decisions:      []contractx.DecisionSummary{},
		ProcessingTime: elapsed,
		ErrorMessage:   nodex.FailurePrefix + err.Error(),
	}
}
