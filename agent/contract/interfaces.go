package contract

import (
	"context"

	"github.com/google/uuid"
)

type Assembler interface {
	Assemble(ctx context.Context, conversationID uuid.UUID) (*AnalysisContext, error)
}

// Engine performs exactly one reasoning pass and returns the tool calls it asked for.
type Engine interface {
	Analyze(ctx context.Context, req EngineRequest) ([]ToolCall, error)
}

type ToolExecutor interface {
	Execute(ctx context.Context, exec ExecutionScope, call ToolCall) ToolResult
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Locker grants per-key mutual exclusion. Acquire fails with ErrLeaseHeld when the key is taken.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
