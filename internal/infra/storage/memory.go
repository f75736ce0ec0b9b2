package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and local runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return nil
}

func (m *Memory) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "memory://" + key + "?ttl=" + ttl.String(), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

// Object returns a stored object and its content type.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, m.types[key], ok
}
