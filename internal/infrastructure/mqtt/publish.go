package mqtt

import (
	"errors"
	"fmt"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "sentinel/dev1/status")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0 or 1)
//   - retained: Whether the broker should retain the message for new subscribers
//
// The connection check and the transport call happen under the connection
// lock, so concurrent publishers are serialised against each other and
// against state transitions. Nothing is queued while disconnected.
//
// Returns:
//   - error: nil on success, ErrNotConnected while disconnected, or a
//     wrapped ErrPublishFailed if the transport rejected the message
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	err := c.publishLocked(topic, payload, qos, retained)
	if errors.Is(err, ErrNotConnected) {
		return err
	}
	c.metrics.Published(err)
	return err
}

func (c *Client) publishLocked(topic string, payload []byte, qos byte, retained bool) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	if err := c.transport.Publish(topic, payload, qos, retained); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// PublishString is a convenience method that publishes a string payload.
//
// This is equivalent to calling Publish with []byte(payload).
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}
