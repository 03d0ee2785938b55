// Package kv is the string key/value store preferences and templates are
// persisted in.
package kv

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store used when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
