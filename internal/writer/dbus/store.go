// internal/writer/dbus/store.go
package dbus

import (
	"fmt"
	"sync"

	godbus "github.com/godbus/dbus/v5"

	"github.com/tamzrod/depth-bridge/internal/writer"
)

// entry is one published item. value is kept in bus form.
type entry struct {
	value     any
	format    writer.Formatter
	writeable bool
}

// store is the item table shared between the poll loop (Set) and bus
// method calls (GetValue/SetValue), which arrive on godbus goroutines.
type store struct {
	mu    sync.Mutex
	items map[string]*entry
	order []string
}

func newStore(items []writer.Item) *store {
	s := &store{items: make(map[string]*entry, len(items))}
	for _, it := range items {
		if _, dup := s.items[it.Path]; !dup {
			s.order = append(s.order, it.Path)
		}
		s.items[it.Path] = &entry{
			value:     busValue(it.Initial),
			format:    it.Format,
			writeable: it.Writeable,
		}
	}
	return s
}

// set stores v and reports whether the stored value changed.
func (s *store) set(path string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[path]
	if !ok {
		return false, fmt.Errorf("dbus: unknown path %s", path)
	}

	bv := busValue(v)
	if equalValue(e.value, bv) {
		return false, nil
	}
	e.value = bv
	return true, nil
}

func (s *store) get(path string) (godbus.Variant, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[path]
	if !ok {
		return godbus.Variant{}, "", false
	}
	return godbus.MakeVariant(e.value), e.text(), true
}

func (s *store) writeable(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[path]
	return ok && e.writeable
}

// values returns every item keyed by path without the leading slash,
// which is how the root object reports its subtree.
func (s *store) values() (map[string]godbus.Variant, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vals := make(map[string]godbus.Variant, len(s.items))
	texts := make(map[string]string, len(s.items))
	for _, p := range s.order {
		e := s.items[p]
		key := p[1:]
		vals[key] = godbus.MakeVariant(e.value)
		texts[key] = e.text()
	}
	return vals, texts
}

func (s *store) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (e *entry) text() string {
	if isInvalid(e.value) {
		return "---"
	}
	if e.format == nil {
		return writer.FormatText(e.value)
	}
	return e.format(e.value)
}

// ---- value mapping ----

// invalid is the bus encoding of "no value": an empty int32 array.
var invalid = []int32{}

// busValue maps Go values onto the signatures consumers expect
// (i for integers, d for reals, s for strings).
func busValue(v any) any {
	switch n := v.(type) {
	case nil:
		return invalid
	case int:
		return int32(n)
	case int64:
		return int32(n)
	case uint8:
		return int32(n)
	case uint16:
		return int32(n)
	case uint32:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

func isInvalid(v any) bool {
	a, ok := v.([]int32)
	return ok && len(a) == 0
}

func equalValue(a, b any) bool {
	if isInvalid(a) || isInvalid(b) {
		return isInvalid(a) && isInvalid(b)
	}
	switch a.(type) {
	case int32, int64, float64, string, bool:
		return a == b
	default:
		return false
	}
}
