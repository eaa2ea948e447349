package kv

import (
	"context"
	"fmt"
	"sync"
)

// DefaultQuotaBytes mirrors the usual per-origin browser storage budget.
const DefaultQuotaBytes = 5 << 20

// Memory is an in-process Store with a byte quota. Usage is counted as
// len(key)+len(value) over all keys.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	used     int
	quota    int
	disabled bool
}

// NewMemory creates a memory store. quota <= 0 means DefaultQuotaBytes.
func NewMemory(quota int) *Memory {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &Memory{
		data:  make(map[string]string),
		quota: quota,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return unavailableError(key, nil)
	}

	used := m.used + len(value)
	if old, ok := m.data[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}
	if used > m.quota {
		return quotaError(key, fmt.Errorf("%d bytes needed, quota is %d", used, m.quota))
	}

	m.data[key] = value
	m.used = used
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return unavailableError(key, nil)
	}
	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

// Grow raises the quota to at least n bytes.
func (m *Memory) Grow(n int) {
	m.mu.Lock()
	m.quota = max(m.quota, n)
	m.mu.Unlock()
}

// Used returns the number of bytes currently counted against the quota.
func (m *Memory) Used() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// Disable makes every subsequent read and write fail as unavailable.
func (m *Memory) Disable() {
	m.mu.Lock()
	m.disabled = true
	m.mu.Unlock()
}

// Enable reverts Disable.
func (m *Memory) Enable() {
	m.mu.Lock()
	m.disabled = false
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }
