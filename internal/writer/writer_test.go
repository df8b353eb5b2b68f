// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"
)

// ---- fake sink ----

type fakeSink struct {
	registered []Item
	onChange   ChangeFunc
	sets       []Change
	failSet    bool
	failReg    bool
	closed     bool
}

func (f *fakeSink) Register(items []Item, onChange ChangeFunc) error {
	if f.failReg {
		return errors.New("name taken")
	}
	f.registered = items
	f.onChange = onChange
	return nil
}

func (f *fakeSink) Set(path string, value any) error {
	if f.failSet {
		return errors.New("bus gone")
	}
	f.sets = append(f.sets, Change{Path: path, Value: value})
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

// ---- tests ----

func TestWriter_FanOut(t *testing.T) {
	a, b := &fakeSink{}, &fakeSink{}
	w := New(nil, a, b)

	if err := w.Open(BuildItems(Identity{})); err != nil {
		t.Fatalf("Open err=%v", err)
	}
	if err := w.Write(Change{Path: PathLevel, Value: 1.23}, Change{Path: PathUpdateIndex, Value: 1}); err != nil {
		t.Fatalf("Write err=%v", err)
	}

	for i, s := range []*fakeSink{a, b} {
		if len(s.sets) != 2 {
			t.Fatalf("sink %d: expected 2 sets, got %d", i, len(s.sets))
		}
		if s.sets[0].Path != PathLevel || s.sets[0].Value != 1.23 {
			t.Fatalf("sink %d: unexpected first set %+v", i, s.sets[0])
		}
	}
}

func TestWriter_FailingSinkDoesNotBlockOthers(t *testing.T) {
	bad, good := &fakeSink{failSet: true}, &fakeSink{}
	w := New(nil, bad, good)

	if err := w.Open(nil); err != nil {
		t.Fatalf("Open err=%v", err)
	}

	err := w.Write(Change{Path: PathLevel, Value: 2.0})
	if err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if len(good.sets) != 1 {
		t.Fatalf("healthy sink missed the write")
	}
}

func TestWriter_OpenRequiresSink(t *testing.T) {
	if err := New(nil).Open(nil); err == nil {
		t.Fatalf("expected error without sinks")
	}
}

func TestWriter_OpenFailure(t *testing.T) {
	w := New(nil, &fakeSink{failReg: true}, &fakeSink{})
	if err := w.Open(nil); err == nil {
		t.Fatalf("expected register error")
	}
}

func TestWriter_MirrorRegisterFailureNotFatal(t *testing.T) {
	primary, mirror := &fakeSink{}, &fakeSink{failReg: true}
	w := New(nil, primary, mirror)

	if err := w.Open(BuildItems(Identity{})); err != nil {
		t.Fatalf("Open err=%v", err)
	}
	if len(primary.registered) == 0 {
		t.Fatalf("primary sink not registered")
	}

	if err := w.Write(Change{Path: PathLevel, Value: 1.5}); err != nil {
		t.Fatalf("Write err=%v", err)
	}
	if len(mirror.sets) != 1 {
		t.Fatalf("mirror should keep receiving changes, got %d", len(mirror.sets))
	}
}

func TestWriter_ExternalChangeAccepted(t *testing.T) {
	s := &fakeSink{}
	w := New(nil, s)
	if err := w.Open(nil); err != nil {
		t.Fatalf("Open err=%v", err)
	}

	if !s.onChange(PathLevel, 3.0) {
		t.Fatalf("external change should be accepted")
	}
}

func TestWriter_CloseAll(t *testing.T) {
	a, b := &fakeSink{}, &fakeSink{}
	if err := New(nil, a, b).Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if !a.closed || !b.closed {
		t.Fatalf("all sinks must be closed")
	}
}

// ---- memory sink ----

func TestMemorySink_RegisterAndSet(t *testing.T) {
	m := NewMemorySink()
	items := BuildItems(Identity{PublishUnit: true})
	SetInitial(items, PathLevel, 1.5)

	if err := m.Register(items, func(string, any) bool { return true }); err != nil {
		t.Fatalf("Register err=%v", err)
	}
	if v, _ := m.Get(PathLevel); v != 1.5 {
		t.Fatalf("initial level: got=%v", v)
	}
	if err := m.Set("/Nope", 1); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if err := m.Set(PathUnit, "mH₂O"); err != nil {
		t.Fatalf("Set err=%v", err)
	}
	if m.Sets(PathUnit) != 1 {
		t.Fatalf("set count: got=%d", m.Sets(PathUnit))
	}
	if err := m.Register(items, nil); err == nil {
		t.Fatalf("second Register should fail")
	}
}

func TestMemorySink_ExternalWrite(t *testing.T) {
	m := NewMemorySink()
	if err := m.Register(BuildItems(Identity{}), func(string, any) bool { return true }); err != nil {
		t.Fatalf("Register err=%v", err)
	}

	if !m.ExternalWrite(PathLevel, 4.0) {
		t.Fatalf("writeable item rejected")
	}
	if m.ExternalWrite(PathProductName, "x") {
		t.Fatalf("read-only item accepted")
	}
}
