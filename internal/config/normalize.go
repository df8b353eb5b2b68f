// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultManufacturer   = "FTDI"
	DefaultUnitID         = 1
	DefaultTimeoutMs      = 3000
	DefaultIntervalMs     = 30000
	DefaultStartupWaitMs  = 5000
	DefaultReconnectAfter = 5

	DefaultServiceName = "com.victronenergy.tank.well_1"
	DefaultProductName = "DCP Well Level"
	DefaultCustomName  = "Well1"
	DefaultConnection  = "DCP Well Level service"
	DefaultFluidType   = 1
	DefaultCapacity    = 100
	DefaultVersionFile = "version"

	DefaultMQTTClientID    = "depth-bridge"
	DefaultMQTTTopicPrefix = "depthbridge"

	DefaultLogLevel = "info"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Serial
	if s.Port == "" && s.Manufacturer == "" {
		s.Manufacturer = DefaultManufacturer
	}
	if s.UnitID == 0 {
		s.UnitID = DefaultUnitID
	}
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}

	p := &cfg.Poll
	if p.IntervalMs == 0 {
		p.IntervalMs = DefaultIntervalMs
	}
	if p.StartupWaitMs == 0 {
		p.StartupWaitMs = DefaultStartupWaitMs
	}
	if p.ReconnectAfter == nil {
		n := DefaultReconnectAfter
		p.ReconnectAfter = &n
	}

	// Fluid type and standard are enums where 0 is meaningful, so only
	// an entirely unset service block receives the default fluid type.
	svc := &cfg.Service
	if svc.Name == "" {
		svc.Name = DefaultServiceName
		if svc.FluidType == 0 {
			svc.FluidType = DefaultFluidType
		}
	}
	if svc.ProductName == "" {
		svc.ProductName = DefaultProductName
	}
	if svc.CustomName == "" {
		svc.CustomName = DefaultCustomName
	}
	if svc.Connection == "" {
		svc.Connection = DefaultConnection
	}
	if svc.Capacity == 0 {
		svc.Capacity = DefaultCapacity
	}
	if svc.VersionFile == "" {
		svc.VersionFile = DefaultVersionFile
	}

	m := &cfg.MQTT
	if m.ClientID == "" {
		m.ClientID = DefaultMQTTClientID
	}
	if m.TopicPrefix == "" {
		m.TopicPrefix = DefaultMQTTTopicPrefix
	}
	m.TopicPrefix = strings.TrimSuffix(m.TopicPrefix, "/")

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
}
