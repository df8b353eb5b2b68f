// internal/poller/builder.go
package poller

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/depth-bridge/internal/config"
	"github.com/tamzrod/depth-bridge/internal/sensor"
	smodbus "github.com/tamzrod/depth-bridge/internal/sensor/modbus"
	"github.com/tamzrod/depth-bridge/internal/writer"
)

// Build constructs a Poller and wires the sensor session lifecycle.
// No connection is made here: the first Run cycle connects, and a missing
// device is retried rather than failing startup.
func Build(c *cfg.Config, items []writer.Item, pub Publisher, log *zap.Logger) (*Poller, func() error, error) {
	timeout := time.Duration(c.Serial.TimeoutMs) * time.Millisecond

	// transport factory: ONE open attempt per call
	factory := func(device string) (sensor.Client, error) {
		cl, err := smodbus.New(smodbus.Config{
			Device:  device,
			UnitID:  c.Serial.UnitID,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return cl, nil
	}

	reader := sensor.NewReader(
		sensor.Config{
			Port:         c.Serial.Port,
			Manufacturer: c.Serial.Manufacturer,
		},
		sensor.SystemEnumerator{},
		factory,
		log,
	)

	reconnect := 0
	if c.Poll.ReconnectAfter != nil {
		reconnect = *c.Poll.ReconnectAfter
	}

	p, err := New(
		Config{
			StartupWait:    time.Duration(c.Poll.StartupWaitMs) * time.Millisecond,
			Interval:       time.Duration(c.Poll.IntervalMs) * time.Millisecond,
			ReconnectAfter: reconnect,
			Items:          items,
		},
		reader,
		pub,
		log,
	)
	if err != nil {
		return nil, nil, err
	}

	return p, reader.Close, nil
}
