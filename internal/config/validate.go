// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Timeout bounds for one Modbus round trip on the serial line.
const (
	MinTimeoutMs = 3000
	MaxTimeoutMs = 5000
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted where Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	// ------------------------------------------------------------
	// SERIAL SOURCE
	// ------------------------------------------------------------

	s := cfg.Serial
	if s.TimeoutMs != 0 && (s.TimeoutMs < MinTimeoutMs || s.TimeoutMs > MaxTimeoutMs) {
		return fmt.Errorf(
			"serial: timeout_ms %d out of range %d-%d",
			s.TimeoutMs,
			MinTimeoutMs,
			MaxTimeoutMs,
		)
	}
	if s.UnitID > 247 {
		return fmt.Errorf("serial: unit_id %d out of range 1-247", s.UnitID)
	}

	// ------------------------------------------------------------
	// POLL CADENCE
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must be >= 0, got %d", cfg.Poll.IntervalMs)
	}
	if cfg.Poll.StartupWaitMs < 0 {
		return fmt.Errorf("poll: startup_wait_ms must be >= 0, got %d", cfg.Poll.StartupWaitMs)
	}
	if n := cfg.Poll.ReconnectAfter; n != nil && *n < 0 {
		return fmt.Errorf("poll: reconnect_after must be >= 0, got %d", *n)
	}

	// ------------------------------------------------------------
	// PUBLISHED SERVICE
	// ------------------------------------------------------------

	if name := cfg.Service.Name; name != "" {
		if !strings.Contains(name, ".") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
			return fmt.Errorf("service: name %q is not a valid bus name", name)
		}
	}
	if cfg.Service.DeviceInstance < 0 {
		return fmt.Errorf("service: device_instance must be >= 0, got %d", cfg.Service.DeviceInstance)
	}
	if cfg.Service.Capacity < 0 {
		return fmt.Errorf("service: capacity must be >= 0, got %v", cfg.Service.Capacity)
	}

	// ------------------------------------------------------------
	// MQTT MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if cfg.MQTT.Enabled && cfg.MQTT.Server == "" {
		return fmt.Errorf("mqtt: enabled but no server configured")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", cfg.Log.Level)
	}

	return nil
}
