// internal/config/config.go
package config

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Poll    PollConfig    `yaml:"poll"`
	Service ServiceConfig `yaml:"service"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SERIAL SOURCE ----

// SerialConfig selects the sensor. Framing (9600 8N1) is fixed by the device.
type SerialConfig struct {
	// Port skips discovery when set.
	Port         string `yaml:"port"`
	Manufacturer string `yaml:"manufacturer"`
	UnitID       uint8  `yaml:"unit_id"`
	TimeoutMs    int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs    int `yaml:"interval_ms"`
	StartupWaitMs int `yaml:"startup_wait_ms"`

	// ReconnectAfter is the number of consecutive failed reads before the
	// session is torn down and rediscovered. 0 disables reconnect.
	ReconnectAfter *int `yaml:"reconnect_after"`
}

// ---- PUBLISHED SERVICE ----

type ServiceConfig struct {
	Name           string  `yaml:"name"`
	DeviceInstance int     `yaml:"device_instance"`
	ProductName    string  `yaml:"product_name"`
	CustomName     string  `yaml:"custom_name"`
	Connection     string  `yaml:"connection"`
	FluidType      int     `yaml:"fluid_type"`
	Capacity       float64 `yaml:"capacity"`
	Standard       int     `yaml:"standard"`
	PublishUnit    bool    `yaml:"publish_unit"`
	VersionFile    string  `yaml:"version_file"`
}

// ---- MQTT MIRROR ----

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Server      string `yaml:"server"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// ---- METRICS ----

type MetricsConfig struct {
	// Listen is the /metrics address, e.g. ":2112". Empty disables the listener.
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}
