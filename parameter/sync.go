package parameter

// Time Synchronization
const (
	// SyncSampleCapacity is the fixed size of the drift sample ring buffer
	SyncSampleCapacity = 100

	// SyncAccuracyThresholdMs classifies a sample as accurate when its
	// absolute offset from the reference clock is strictly below this
	SyncAccuracyThresholdMs = 5.0
)

// Compatibility Bridge
const (
	// MaxFallbackCount opens the circuit breaker after this many
	// consecutive pipeline failures; further calls route to the legacy path
	MaxFallbackCount = 3

	// BridgeErrorHistoryCap bounds the bridge's retained failure records
	BridgeErrorHistoryCap = 32
)

// Responsibility Validation
const (
	// ViolationHistoryCap bounds the validator's retained violation records
	ViolationHistoryCap = 256
)
