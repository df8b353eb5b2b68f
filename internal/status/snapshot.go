// internal/status/snapshot.go
package status

// Snapshot represents exactly what is published about sensor health.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Connected     int
	Status        uint16
	LastErrorCode uint16

	// FailStreak counts consecutive failed reads. Saturates, never wraps.
	FailStreak uint16
}
