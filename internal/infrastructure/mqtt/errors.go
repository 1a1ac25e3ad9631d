package mqtt

import "errors"

// Domain-specific errors for MQTT operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidConfig is returned by New when required fields are missing
	// or the username/password pair is incomplete.
	ErrInvalidConfig = errors.New("mqtt: invalid configuration")

	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when a connect attempt fails.
	// The reconnect loop recovers from it; it is never returned by Start.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscribe operation fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrTerminalFailure is reported by Err once the reconnect loop has
	// exhausted MaxReconnectAttempts. The owning process should exit.
	ErrTerminalFailure = errors.New("mqtt: reconnect attempts exhausted")

	// ErrInvalidQoS is returned when an unsupported QoS level is specified.
	// Valid QoS levels are 0 and 1.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0 or 1)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrAlreadyStarted is returned by Start or SetLWT once the client is running.
	ErrAlreadyStarted = errors.New("mqtt: client already started")

	// ErrClosed is returned by Start and SetLWT after Stop.
	ErrClosed = errors.New("mqtt: client closed")
)
