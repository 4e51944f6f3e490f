package collection

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// MEMORY BACKEND - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps snapshots in a map. FailWrites can be set to make writes to
// specific collections fail, which tests use to exercise rollback paths.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	failing   map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		snapshots: make(map[string][]byte),
		failing:   make(map[string]error),
	}
}

func (m *Memory) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[name]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, data...), nil
}

func (m *Memory) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failing[name]; err != nil {
		return err
	}
	m.snapshots[name] = append([]byte{}, data...)
	return nil
}

func (m *Memory) Close() error { return nil }

// FailWrites makes every subsequent write to name return err.
// A nil err clears the failure.
func (m *Memory) FailWrites(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failing, name)
		return
	}
	m.failing[name] = err
}

// ErrInjected is a convenience error for FailWrites.
var ErrInjected = errors.New("injected write failure")
