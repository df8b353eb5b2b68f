// internal/sensor/reader_test.go
package sensor

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ---- fakes ----

type fakeClient struct {
	regs     map[uint16]uint16
	fail     map[uint16]bool
	reads    []uint16
	closed   bool
	closeErr error
}

func newFakeClient(unit, scaling, level uint16) *fakeClient {
	return &fakeClient{
		regs: map[uint16]uint16{
			RegUnit:    unit,
			RegScaling: scaling,
			RegLevel:   level,
		},
		fail: map[uint16]bool{},
	}
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	f.reads = append(f.reads, addr)
	if f.fail[addr] {
		return nil, errors.New("timeout")
	}
	return []uint16{f.regs[addr]}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return f.closeErr
}

type fakeEnum struct {
	ports []Port
	err   error
}

func (f fakeEnum) Ports() ([]Port, error) { return f.ports, f.err }

func factoryFor(c Client) Factory {
	return func(string) (Client, error) { return c, nil }
}

func connectedReader(t *testing.T, c *fakeClient) *Reader {
	t.Helper()
	r := NewReader(Config{Port: "/dev/ttyUSB0"}, nil, factoryFor(c), nil)
	if err := r.Connect(); err != nil {
		t.Fatalf("Connect err=%v", err)
	}
	return r
}

// ---- discovery ----

func TestDiscover_SubstringMatch(t *testing.T) {
	enum := fakeEnum{ports: []Port{
		{Path: "/dev/ttyUSB0", Manufacturer: "Acme"},
		{Path: "/dev/ttyUSB1", Manufacturer: "FTDI-compatible"},
	}}

	got, err := Discover(enum, "FTDI")
	if err != nil {
		t.Fatalf("Discover err=%v", err)
	}
	if got != "/dev/ttyUSB1" {
		t.Fatalf("got=%s want=/dev/ttyUSB1", got)
	}
}

func TestDiscover_CaseSensitive(t *testing.T) {
	enum := fakeEnum{ports: []Port{{Path: "/dev/ttyUSB0", Manufacturer: "ftdi"}}}

	if _, err := Discover(enum, "FTDI"); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestDiscover_SkipsPortsWithoutDescriptor(t *testing.T) {
	enum := fakeEnum{ports: []Port{
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyUSB0", Manufacturer: "FTDI"},
	}}

	got, err := Discover(enum, "FTDI")
	if err != nil {
		t.Fatalf("Discover err=%v", err)
	}
	if got != "/dev/ttyUSB0" {
		t.Fatalf("got=%s want=/dev/ttyUSB0", got)
	}
}

func TestDiscover_FirstMatchWins(t *testing.T) {
	enum := fakeEnum{ports: []Port{
		{Path: "/dev/ttyUSB0", Manufacturer: "FTDI"},
		{Path: "/dev/ttyUSB1", Manufacturer: "FTDI"},
	}}

	got, _ := Discover(enum, "FTDI")
	if got != "/dev/ttyUSB0" {
		t.Fatalf("got=%s want=/dev/ttyUSB0", got)
	}
}

func TestDiscover_EnumeratorError(t *testing.T) {
	if _, err := Discover(fakeEnum{err: errors.New("boom")}, "FTDI"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

// ---- tables ----

func TestUnitName_Table(t *testing.T) {
	want := []string{"MPa", "kPa", "Pa", "bar", "mbar", "kg/cm²", "psi", "mH₂O", "mmH₂O", "°C", "cmH₂O"}
	for code, name := range want {
		if got := UnitName(uint16(code)); got != name {
			t.Fatalf("code %d: got=%q want=%q", code, got, name)
		}
	}
	for _, code := range []uint16{0x000B, 0x00FF, 0xFFFF} {
		if got := UnitName(code); got != UnknownUnit {
			t.Fatalf("code %d: got=%q want=%q", code, got, UnknownUnit)
		}
	}
}

func TestScalingFactor_Table(t *testing.T) {
	want := []float64{1, 0.1, 0.01, 0.001}
	for code, f := range want {
		if got := ScalingFactor(uint16(code)); got != f {
			t.Fatalf("code %d: got=%v want=%v", code, got, f)
		}
	}
	for _, code := range []uint16{4, 7, 0xFFFF} {
		if got := ScalingFactor(code); got != 1 {
			t.Fatalf("code %d: got=%v want=1", code, got)
		}
	}
}

// ---- connect / negotiation ----

func TestConnect_NegotiatesUnitAndScaling(t *testing.T) {
	c := newFakeClient(0x0007, 0x0003, 0)
	r := connectedReader(t, c)

	if r.Unit() != "mH₂O" {
		t.Fatalf("unit: got=%q", r.Unit())
	}
	if r.Scaling() != 0.001 {
		t.Fatalf("scaling: got=%v", r.Scaling())
	}
	if !r.Connected() {
		t.Fatalf("reader should be connected")
	}
}

func TestConnect_UnitReadFailureDropsSession(t *testing.T) {
	c := newFakeClient(0, 0, 0)
	c.fail[RegUnit] = true

	r := NewReader(Config{Port: "/dev/ttyUSB0"}, nil, factoryFor(c), nil)
	err := r.Connect()
	if !errors.Is(err, ErrNegotiation) {
		t.Fatalf("expected ErrNegotiation, got %v", err)
	}
	if r.Connected() {
		t.Fatalf("reader should not be connected")
	}
	if !c.closed {
		t.Fatalf("transport should be closed after failed negotiation")
	}
}

func TestConnect_ScalingReadFailureTolerated(t *testing.T) {
	c := newFakeClient(0x0001, 0x0002, 0)
	c.fail[RegScaling] = true

	r := connectedReader(t, c)
	if r.Scaling() != DefaultScaling {
		t.Fatalf("scaling: got=%v want=%v", r.Scaling(), DefaultScaling)
	}
	if r.Unit() != "kPa" {
		t.Fatalf("unit: got=%q", r.Unit())
	}
}

func TestConnect_CloseErrorLoggedAtDebug(t *testing.T) {
	old := newFakeClient(1, 2, 100)
	old.closeErr = errors.New("port busy")
	next := newFakeClient(1, 2, 100)

	core, logs := observer.New(zapcore.DebugLevel)
	clients := []Client{old, next}
	factory := func(string) (Client, error) {
		c := clients[0]
		clients = clients[1:]
		return c, nil
	}
	r := NewReader(Config{Port: "/dev/ttyUSB0"}, nil, factory, zap.New(core))

	if err := r.Connect(); err != nil {
		t.Fatalf("first Connect err=%v", err)
	}
	if err := r.Connect(); err != nil {
		t.Fatalf("second Connect err=%v", err)
	}

	if !old.closed {
		t.Fatalf("previous session not closed")
	}
	entries := logs.FilterMessage("closing previous session failed").All()
	if len(entries) != 1 || entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("expected one debug entry, got %d", len(entries))
	}
}

func TestConnect_NoDevice(t *testing.T) {
	r := NewReader(Config{Manufacturer: "FTDI"}, fakeEnum{}, factoryFor(newFakeClient(0, 0, 0)), nil)
	if err := r.Connect(); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	open := func(string) (Client, error) { return nil, errors.New("permission denied") }
	r := NewReader(Config{Port: "/dev/ttyUSB0"}, nil, open, nil)

	if err := r.Connect(); err == nil {
		t.Fatalf("expected open error, got nil")
	}
	if r.Connected() {
		t.Fatalf("reader should not be connected")
	}
}

func TestConnect_DiscoveredDevicePassedToFactory(t *testing.T) {
	var opened string
	open := func(dev string) (Client, error) {
		opened = dev
		return newFakeClient(0, 0, 0), nil
	}
	enum := fakeEnum{ports: []Port{{Path: "/dev/ttyUSB4", Manufacturer: "FTDI"}}}

	r := NewReader(Config{Manufacturer: "FTDI"}, enum, open, nil)
	if err := r.Connect(); err != nil {
		t.Fatalf("Connect err=%v", err)
	}
	if opened != "/dev/ttyUSB4" || r.Device() != "/dev/ttyUSB4" {
		t.Fatalf("opened=%s device=%s", opened, r.Device())
	}
}

// ---- level ----

func TestReadLevel_Scaled(t *testing.T) {
	r := connectedReader(t, newFakeClient(0x0007, 0x0003, 1234))

	res := r.ReadLevel()
	if !res.OK() {
		t.Fatalf("ReadLevel err=%v", res.Err)
	}
	if math.Abs(res.Level-1.234) > 1e-9 {
		t.Fatalf("level: got=%v want=1.234", res.Level)
	}
	if res.Raw != 1234 || res.Unit != "mH₂O" {
		t.Fatalf("unexpected reading: %+v", res)
	}
}

func TestReadLevel_RawTimesScaling(t *testing.T) {
	for code, s := range []float64{1, 0.1, 0.01, 0.001} {
		r := connectedReader(t, newFakeClient(0, uint16(code), 500))
		res := r.ReadLevel()
		if res.Err != nil {
			t.Fatalf("scaling code %d: err=%v", code, res.Err)
		}
		if math.Abs(res.Level-500*s) > 1e-9 {
			t.Fatalf("scaling code %d: got=%v want=%v", code, res.Level, 500*s)
		}
	}
}

func TestReadLevel_TransportError(t *testing.T) {
	c := newFakeClient(0, 0, 0)
	r := connectedReader(t, c)
	c.fail[RegLevel] = true

	res := r.ReadLevel()
	if res.OK() {
		t.Fatalf("expected error flag")
	}
	if !r.Connected() {
		t.Fatalf("a single read error must not drop the session")
	}
}

func TestReadLevel_InvalidSentinel(t *testing.T) {
	r := connectedReader(t, newFakeClient(0, 0, RawInvalid))

	if res := r.ReadLevel(); !errors.Is(res.Err, ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", res.Err)
	}
}

func TestReadLevel_NotConnected(t *testing.T) {
	r := NewReader(Config{}, nil, nil, nil)

	if res := r.ReadLevel(); !errors.Is(res.Err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", res.Err)
	}
}

func TestReadLevel_NoRetry(t *testing.T) {
	c := newFakeClient(0, 0, 0)
	r := connectedReader(t, c)
	c.fail[RegLevel] = true
	c.reads = nil

	r.ReadLevel()
	if len(c.reads) != 1 {
		t.Fatalf("expected exactly one transport read, got %d", len(c.reads))
	}
}
