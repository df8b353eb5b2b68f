// internal/sensor/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Serial framing of the depth sensor. Not configurable.
const (
	BaudRate = 9600
	DataBits = 8
	Parity   = "N"
	StopBits = 1
)

// Client is a single Modbus RTU session on one serial device.
// It implements sensor.Client and only exposes what the sensor needs.
type Client struct {
	mu      sync.Mutex
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

type Config struct {
	Device  string
	UnitID  uint8
	Timeout time.Duration
}

// New opens the serial device. The returned client owns the port until Close.
func New(cfg Config) (*Client, error) {
	if cfg.Device == "" {
		return nil, errors.New("sensor modbus: device required")
	}

	h := modbus.NewRTUClientHandler(cfg.Device)
	h.BaudRate = BaudRate
	h.DataBits = DataBits
	h.Parity = Parity
	h.StopBits = StopBits
	h.SlaveId = cfg.UnitID
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("sensor modbus: open %s: %w", cfg.Device, err)
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close releases the serial port.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ReadHoldingRegisters issues FC 3 and unpacks the big-endian payload.
func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	regs := unpackRegisters(raw)
	if len(regs) < int(qty) {
		return nil, fmt.Errorf("sensor modbus: short read: got=%d want=%d", len(regs), qty)
	}
	return regs, nil
}

// ---- helpers ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
