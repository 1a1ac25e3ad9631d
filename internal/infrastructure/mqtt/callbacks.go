package mqtt

// SetOnCommand sets the handler for messages arriving on subscribed topics.
// A later call replaces the earlier handler.
func (c *Client) SetOnCommand(handler CommandHandler) {
	c.callbackMu.Lock()
	c.onCommand = handler
	c.callbackMu.Unlock()
}

// SetOnConnectionStatus sets the handler told about session establishment
// and loss. A later call replaces the earlier handler.
func (c *Client) SetOnConnectionStatus(handler StatusHandler) {
	c.callbackMu.Lock()
	c.onStatus = handler
	c.callbackMu.Unlock()
}

// notifyStatus invokes the status handler, if any, with panic recovery.
func (c *Client) notifyStatus(connected bool) {
	c.callbackMu.RLock()
	handler := c.onStatus
	c.callbackMu.RUnlock()
	if handler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("MQTT status handler panic recovered",
				"connected", connected,
				"panic", r,
			)
		}
	}()

	handler(connected)
}

// dispatchCommand copies an inbound message and hands it to the command
// handler synchronously.
func (c *Client) dispatchCommand(topic string, payload []byte) {
	c.metrics.CommandReceived()

	c.callbackMu.RLock()
	handler := c.onCommand
	c.callbackMu.RUnlock()
	if handler == nil {
		c.logger.Debug("MQTT message dropped, no command handler", "topic", topic)
		return
	}

	owned := make([]byte, len(payload))
	copy(owned, payload)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("MQTT command handler panic recovered",
				"topic", topic,
				"panic", r,
			)
		}
	}()

	handler(topic, owned)
}

// transportEvents adapts the Client to TransportEvents without exporting
// the event methods on Client itself.
type transportEvents struct {
	c *Client
}

func (e transportEvents) OnConnectionLost(cause error) {
	e.c.handleConnectionLost(cause)
}

func (e transportEvents) OnMessageArrived(topic string, payload []byte) {
	e.c.dispatchCommand(topic, payload)
}

func (e transportEvents) OnDeliveryComplete(messageID uint16) {
	e.c.metrics.DeliveryComplete()
	e.c.logger.Debug("mqtt delivery complete", "message_id", messageID)
}
