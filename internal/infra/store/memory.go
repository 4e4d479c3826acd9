package store

import (
	"context"
	"sync"
)

// Memory хранилище в памяти (тесты, driver=memory).
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	saves map[string]int
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}, saves: map[string]int{}}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.saves[key]++
	return nil
}

// Saves сколько раз сохранялся ключ.
func (m *Memory) Saves(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[key]
}
