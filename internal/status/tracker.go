// internal/status/tracker.go
package status

import (
	"errors"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/depth-bridge/internal/sensor"
)

// Tracker is runner-owned health state. Each call reports whether the
// published part (Connected, Status) changed.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts connected with status OK: the service is only
// registered once a first reading succeeded.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Connected: Connected, Status: StatusOK}}
}

func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Success records a good read.
func (t *Tracker) Success() bool {
	prev := t.snap
	t.snap.Connected = Connected
	t.snap.Status = StatusOK
	t.snap.LastErrorCode = ErrorCodeNone
	t.snap.FailStreak = 0
	return published(prev, t.snap)
}

// Failure records a failed read. Only the streak and error code move;
// Connected and Status change through Disconnect and Reconnect.
func (t *Tracker) Failure(err error) {
	if t.snap.FailStreak < 65535 {
		t.snap.FailStreak++
	}
	t.snap.LastErrorCode = ErrorCode(err)
}

// Disconnect records a dropped session.
func (t *Tracker) Disconnect() bool {
	prev := t.snap
	t.snap.Connected = Disconnected
	t.snap.Status = StatusDisconnected
	return published(prev, t.snap)
}

// Reconnect records a restored session. The fail streak is kept until the
// next good read.
func (t *Tracker) Reconnect() bool {
	prev := t.snap
	t.snap.Connected = Connected
	t.snap.Status = StatusUnknown
	return published(prev, t.snap)
}

func published(a, b Snapshot) bool {
	return a.Connected != b.Connected || a.Status != b.Status
}

// ErrorCode extracts the Modbus exception code from err.
// Errors without one map to ErrorCodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrorCodeNone
	}

	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return uint16(me.ExceptionCode)
	}

	if errors.Is(err, sensor.ErrInvalidLevel) {
		return uint16(sensor.RawInvalid)
	}

	return ErrorCodeGeneric
}
