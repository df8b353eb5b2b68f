// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/depth-bridge/internal/sensor"
	"github.com/tamzrod/depth-bridge/internal/writer"
)

// LevelReader is the sensor as driven by the loop.
type LevelReader interface {
	Connect() error
	ReadLevel() sensor.Reading
	Connected() bool
	Close() error
}

// Publisher delivers changes to the published service.
type Publisher interface {
	Open(items []writer.Item) error
	Write(changes ...writer.Change) error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	// StartupWait spaces connect+read attempts until the first reading.
	StartupWait time.Duration
	// Interval spaces steady-state ticks.
	Interval time.Duration
	// ReconnectAfter consecutive failed reads trigger rediscovery. 0 disables.
	ReconnectAfter int

	// Items is the service layout, registered after the first reading.
	Items []writer.Item
}

// State is the bridge state owned by the loop. Nothing else mutates it.
type State struct {
	// Primed is set once the first reading succeeded and the service is open.
	Primed bool
	// Attempts counts startup attempts.
	Attempts int

	// LastLevel is the last published level, rounded to LevelDecimals.
	LastLevel   float64
	UpdateIndex uint8
}
