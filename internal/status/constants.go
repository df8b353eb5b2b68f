// internal/status/constants.go
package status

// Tank sensor status codes published on /Status.
// These values are defined by the consumer and MUST NOT be configurable.

// StatusOK represents a sensor delivering readings.
const StatusOK uint16 = 0

// StatusDisconnected represents a lost or undiscovered sensor.
const StatusDisconnected uint16 = 1

// StatusShortCircuited and StatusReversePolarity are reserved for analog senders.
const StatusShortCircuited uint16 = 2
const StatusReversePolarity uint16 = 3

// StatusUnknown represents the boot state before any reading.
const StatusUnknown uint16 = 4

// StatusError represents a sensor that answers but fails to deliver a level.
const StatusError uint16 = 5

// ---- CONNECTED FLAG ----

const Disconnected = 0
const Connected = 1

// ---- ERROR CODES ----

// ErrorCodeNone means the last read succeeded.
const ErrorCodeNone uint16 = 0

// ErrorCodeGeneric is used for errors that carry no Modbus exception code.
const ErrorCodeGeneric uint16 = 1
