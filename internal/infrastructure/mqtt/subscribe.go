package mqtt

import (
	"fmt"
)

// Subscribe registers interest in topic with the broker.
//
// Matching messages are delivered to the handler set with SetOnCommand.
// Subscriptions are not tracked across reconnects: the control topic is
// subscribed again as part of every session establishment.
//
// Parameters:
//   - topic: The topic pattern to subscribe to
//   - qos: Maximum QoS level for received messages (0 or 1)
//
// Returns:
//   - error: nil on success, ErrNotConnected while disconnected, or a
//     wrapped ErrSubscribeFailed
func (c *Client) Subscribe(topic string, qos byte) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Check connection state
	if !c.connected {
		return ErrNotConnected
	}

	if err := c.transport.Subscribe(topic, qos); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}
