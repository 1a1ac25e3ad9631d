package mqtt

import (
	"context"
	"fmt"
	"time"
)

// run is the reconnect state machine. It is the only goroutine that moves
// the client from Disconnected to Connected.
//
// While connected it blocks until the session drops or ctx is cancelled,
// so shutdown latency is bounded by the current backoff wait at most.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	policy := NewReconnectPolicy(c.cfg.ReconnectDelay, MaxReconnectDelay, c.cfg.MaxReconnectAttempts)

	for {
		if c.IsConnected() {
			select {
			case <-ctx.Done():
				return
			case <-c.lost:
			}
			continue
		}

		if policy.Exhausted() {
			c.fail(fmt.Errorf("%w: %d consecutive connect failures to %s",
				ErrTerminalFailure, policy.Failures(), c.cfg.BrokerAddress))
			return
		}

		c.setState(StateDisconnected)
		delay := policy.Delay()
		if !sleepContext(ctx, delay) {
			return
		}

		c.setState(StateConnecting)
		err := c.connect()
		c.metrics.ConnectAttempt(err)
		if err != nil {
			policy.Failure()
			c.setState(StateDisconnected)
			c.logger.Warn("mqtt connect failed",
				"broker", c.cfg.BrokerAddress,
				"attempt", policy.Failures(),
				"next_delay", policy.Delay(),
				"error", err,
			)
			continue
		}

		policy.Reset()
		c.establishSession()
	}
}

// connect opens a session and marks the client connected on success.
func (c *Client) connect() error {
	opts := c.cfg.connectOptions(c.will)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if err := c.transport.Connect(opts); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	c.connected = true

	return nil
}

// establishSession runs once per successful connect.
//
// The online announcement is published before the status callback fires so
// that subscribers never see the agent report itself connected ahead of
// its retained online state.
func (c *Client) establishSession() {
	if !c.markEstablished() {
		c.logger.Warn("mqtt session lost before establishment", "broker", c.cfg.BrokerAddress)
		return
	}
	c.logger.Info("mqtt connected",
		"broker", c.cfg.BrokerAddress,
		"client_id", c.cfg.ClientID,
	)

	if c.will != nil {
		if err := c.Publish(c.will.Topic, OnlinePayload(time.Now()), onlineQoS, true); err != nil {
			c.logger.Warn("publishing online status failed", "topic", c.will.Topic, "error", err)
		}
	}

	// A failed control subscription leaves the session usable for telemetry.
	controlTopic := Topics{}.Control(c.cfg.ClientID)
	if err := c.Subscribe(controlTopic, controlQoS); err != nil {
		c.logger.Error("subscribing to control topic failed", "topic", controlTopic, "error", err)
	}

	if !c.IsConnected() {
		return
	}
	c.notifyStatus(true)
}

// markEstablished flips state and gauge to connected, unless a loss has
// already been handled for this session.
func (c *Client) markEstablished() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if !c.connected {
		return false
	}
	c.setState(StateConnected)
	c.metrics.ConnectionUp(true)
	return true
}

// handleConnectionLost is invoked by the transport when the session drops.
// Loss events for a session that is already down are ignored.
func (c *Client) handleConnectionLost(cause error) {
	c.connMu.Lock()
	if !c.connected {
		c.connMu.Unlock()
		return
	}
	c.connected = false
	c.setState(StateDisconnected)
	c.metrics.ConnectionUp(false)
	c.connMu.Unlock()

	c.logger.Warn("mqtt connection lost", "error", cause)
	c.notifyStatus(false)

	select {
	case c.lost <- struct{}{}:
	default:
	}
}

// fail records the terminal error observed through Err.
func (c *Client) fail(err error) {
	c.logger.Error("mqtt giving up", "error", err)

	c.lifeMu.Lock()
	c.err = err
	c.lifeMu.Unlock()
}

// sleepContext waits for d or until ctx is cancelled.
// It returns false if ctx was cancelled first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return ctx.Err() == nil
	}
}
