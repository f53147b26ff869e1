package kv

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. Nothing survives the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	value, ok := m.values[key]
	m.mu.RUnlock()
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}
