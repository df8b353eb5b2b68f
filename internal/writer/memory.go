// internal/writer/memory.go
package writer

import (
	"fmt"
	"sync"
)

// MemorySink keeps the published service in memory.
// It backs tests that need to observe what was published.
type MemorySink struct {
	mu       sync.Mutex
	items    map[string]Item
	values   map[string]any
	sets     map[string]int
	onChange ChangeFunc
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		items:  make(map[string]Item),
		values: make(map[string]any),
		sets:   make(map[string]int),
	}
}

func (m *MemorySink) Register(items []Item, onChange ChangeFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) > 0 {
		return fmt.Errorf("memory sink: already registered")
	}
	for _, it := range items {
		m.items[it.Path] = it
		m.values[it.Path] = it.Initial
	}
	m.onChange = onChange
	return nil
}

func (m *MemorySink) Set(path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[path]; !ok {
		return fmt.Errorf("memory sink: unknown path %s", path)
	}
	m.values[path] = value
	m.sets[path]++
	return nil
}

func (m *MemorySink) Close() error { return nil }

// Get returns the current value of path.
func (m *MemorySink) Get(path string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[path]
	return v, ok
}

// Text renders path with its formatter.
func (m *MemorySink) Text(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[path]
	if !ok {
		return ""
	}
	if it.Format == nil {
		return FormatText(m.values[path])
	}
	return it.Format(m.values[path])
}

// Sets returns how many times path was written after registration.
func (m *MemorySink) Sets(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[path]
}

// ExternalWrite simulates a consumer writing path.
func (m *MemorySink) ExternalWrite(path string, value any) bool {
	m.mu.Lock()
	it, ok := m.items[path]
	cb := m.onChange
	m.mu.Unlock()

	if !ok || !it.Writeable {
		return false
	}
	if cb != nil && !cb(path, value) {
		return false
	}

	m.mu.Lock()
	m.values[path] = value
	m.mu.Unlock()
	return true
}
