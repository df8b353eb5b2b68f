// internal/sensor/types.go
package sensor

import (
	"errors"
	"time"
)

// Fixed register map of the depth sensor (FC 3, one register each).
const (
	RegUnit    uint16 = 0x0002
	RegScaling uint16 = 0x0003
	RegLevel   uint16 = 0x0004
)

// RawInvalid is reported in the level register when the probe has no valid measurement.
const RawInvalid uint16 = 0xFFFE

var (
	ErrNoDevice     = errors.New("sensor: no matching serial device")
	ErrNotConnected = errors.New("sensor: not connected")
	ErrNegotiation  = errors.New("sensor: unit negotiation failed")
	ErrInvalidLevel = errors.New("sensor: device reported invalid level")
)

// Client abstracts the Modbus transport the reader needs.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error)
	Close() error
}

// Factory opens one transport session on a device path. ONE attempt per call.
type Factory func(device string) (Client, error)

// Reading is one level measurement. Immutable once produced.
type Reading struct {
	Level float64 // scaled value
	Unit  string  // unit negotiated at connect time
	Raw   uint16
	At    time.Time

	Err error // non-nil means Level is undefined
}

// OK reports whether the reading carries a valid level.
func (r Reading) OK() bool { return r.Err == nil }
