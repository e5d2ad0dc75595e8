// Package lease provides per-conversation mutual exclusion for analysis runs.
package lease

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

const defaultTTL = 5 * time.Minute

// Memory is a process-local Locker. Expired leases are reclaimed on the next Acquire.
type Memory struct {
	mu    sync.Mutex
	held  map[string]memoryLease
	ttl   time.Duration
	nowFn func() time.Time
}

type memoryLease struct {
	token     string
	expiresAt time.Time
}

var _ contractx.Locker = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Memory{
		held:  make(map[string]memoryLease),
		ttl:   ttl,
		nowFn: time.Now,
	}
}

func (m *Memory) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	if cur, ok := m.held[key]; ok && now.Before(cur.expiresAt) {
		return nil, fmt.Errorf("%w: %s", contractx.ErrLeaseHeld, key)
	}

	token := uuid.NewString()
	m.held[key] = memoryLease{token: token, expiresAt: now.Add(m.ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if cur, ok := m.held[key]; ok && cur.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
