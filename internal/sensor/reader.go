// internal/sensor/reader.go
package sensor

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config selects the device. Port, when set, bypasses discovery.
type Config struct {
	Port         string
	Manufacturer string
}

// Reader owns one Modbus session to the depth sensor.
// Unit and scaling are negotiated once per connection and cached.
// Not safe for concurrent use: the poll loop is its only caller.
type Reader struct {
	cfg     Config
	enum    Enumerator
	factory Factory
	log     *zap.Logger

	client  Client
	device  string
	unit    string
	scaling float64

	now func() time.Time
}

func NewReader(cfg Config, enum Enumerator, factory Factory, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		cfg:     cfg,
		enum:    enum,
		factory: factory,
		log:     log.With(zap.String("component", "sensor")),
		unit:    UnknownUnit,
		scaling: DefaultScaling,
		now:     time.Now,
	}
}

// Discover resolves the device path: the configured port, or the first
// enumerated port matching the manufacturer filter.
func (r *Reader) Discover() (string, error) {
	if r.cfg.Port != "" {
		return r.cfg.Port, nil
	}
	if r.enum == nil {
		return "", errors.New("sensor: no enumerator configured")
	}
	return Discover(r.enum, r.cfg.Manufacturer)
}

// Connect discovers the device, opens a session and negotiates unit/scaling.
// Any previous session is closed first. A device that does not answer the
// unit register is presumed to be the wrong device and the session is dropped.
func (r *Reader) Connect() error {
	r.closeQuietly()

	device, err := r.Discover()
	if err != nil {
		return err
	}

	client, err := r.factory(device)
	if err != nil {
		return fmt.Errorf("sensor: open %s: %w", device, err)
	}

	r.client = client
	r.device = device
	r.unit = UnknownUnit
	r.scaling = DefaultScaling

	if err := r.negotiateScaling(); err != nil {
		r.log.Warn("device did not answer unit negotiation, dropping session",
			zap.String("device", device),
			zap.Error(err),
		)
		r.closeQuietly()
		return err
	}

	r.log.Info("connected to modbus device",
		zap.String("device", device),
		zap.String("unit", r.unit),
		zap.Float64("scaling", r.scaling),
	)
	return nil
}

// negotiateScaling reads the unit and scaling registers.
// A failed unit read fails negotiation; a failed scaling read keeps the
// current scaling.
func (r *Reader) negotiateScaling() error {
	regs, err := r.client.ReadHoldingRegisters(RegUnit, 1)
	if err != nil {
		return fmt.Errorf("%w: unit register: %v", ErrNegotiation, err)
	}
	r.unit = UnitName(regs[0])

	regs, err = r.client.ReadHoldingRegisters(RegScaling, 1)
	if err != nil {
		r.log.Warn("scaling register read failed, keeping current scaling",
			zap.Float64("scaling", r.scaling),
			zap.Error(err),
		)
		return nil
	}
	r.scaling = ScalingFactor(regs[0])
	return nil
}

// ReadLevel performs one level read. No retries: the caller's cadence
// decides when to try again.
func (r *Reader) ReadLevel() Reading {
	res := Reading{
		Unit: r.unit,
		At:   r.now(),
	}

	if r.client == nil {
		res.Err = ErrNotConnected
		return res
	}

	regs, err := r.client.ReadHoldingRegisters(RegLevel, 1)
	if err != nil {
		r.log.Error("level read failed",
			zap.String("device", r.device),
			zap.Error(err),
		)
		res.Err = fmt.Errorf("sensor: read level: %w", err)
		return res
	}

	res.Raw = regs[0]
	if res.Raw == RawInvalid {
		r.log.Error("device reported invalid level", zap.String("device", r.device))
		res.Err = ErrInvalidLevel
		return res
	}

	res.Level = float64(res.Raw) * r.scaling
	return res
}

// Close drops the session. The cached unit/scaling stay until the next Connect.
func (r *Reader) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Reader) closeQuietly() {
	if err := r.Close(); err != nil {
		r.log.Debug("closing previous session failed", zap.String("device", r.device), zap.Error(err))
	}
}

func (r *Reader) Connected() bool { return r.client != nil }

func (r *Reader) Device() string { return r.device }

func (r *Reader) Unit() string { return r.unit }

func (r *Reader) Scaling() float64 { return r.scaling }
