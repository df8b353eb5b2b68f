// internal/sensor/units.go
package sensor

// UnknownUnit is returned for unit codes outside the table.
const UnknownUnit = "Unknown Unit"

// DefaultScaling applies when the device reports no usable scaling code.
const DefaultScaling = 1.0

var unitNames = map[uint16]string{
	0x0000: "MPa",
	0x0001: "kPa",
	0x0002: "Pa",
	0x0003: "bar",
	0x0004: "mbar",
	0x0005: "kg/cm²",
	0x0006: "psi",
	0x0007: "mH₂O",
	0x0008: "mmH₂O",
	0x0009: "°C",
	0x000A: "cmH₂O",
}

var scalingFactors = map[uint16]float64{
	0x0000: 1,
	0x0001: 0.1,
	0x0002: 0.01,
	0x0003: 0.001,
}

// UnitName maps a unit register code to its display name.
func UnitName(code uint16) string {
	if name, ok := unitNames[code]; ok {
		return name
	}
	return UnknownUnit
}

// ScalingFactor maps a scaling register code to a multiplier.
// Unrecognized codes fall back to DefaultScaling.
func ScalingFactor(code uint16) float64 {
	if f, ok := scalingFactors[code]; ok {
		return f
	}
	return DefaultScaling
}
