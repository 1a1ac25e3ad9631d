// Package mqtt provides the broker session manager for the Sentinel agent.
//
// This package manages:
//   - Connection lifecycle with its own reconnect loop and exponential backoff
//   - Last Will and Testament (LWT) plus the matching retained online announcement
//   - Publishing and subscribing, gated on the current connection state
//   - Delivery of inbound control commands and connection status changes
//
// # Architecture
//
// The Client owns connection state and drives a Transport, a narrow capability
// interface over the wire-level MQTT library. The production Transport wraps
// paho.mqtt.golang with its own auto-reconnect disabled; reconnect policy lives
// here so that attempt caps and backoff are under the agent's control.
//
//	telemetry workers → Client.Publish → Transport → broker
//	broker → Transport → TransportEvents → Client → user callbacks
//
// # Reconnect Policy
//
//   - The first attempt happens after the configured reconnect delay
//   - Every failed attempt doubles the delay, capped at MaxReconnectDelay (300s)
//   - A successful connect resets the delay and the failure counter
//   - With MaxReconnectAttempts > 0 the loop gives up after that many consecutive
//     failures and reports ErrTerminalFailure through Done/Err
//
// Publishes issued while disconnected fail with ErrNotConnected. Nothing is
// queued or retried; the caller owns retry policy.
//
// # Usage
//
//	client, err := mqtt.New(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	client.SetLWT(mqtt.Topics{}.Online(cfg.ClientID), mqtt.OfflinePayload(time.Now()), 1)
//	client.SetOnConnectionStatus(func(connected bool) { ... })
//	if err := client.Start(ctx); err != nil {
//	    return err
//	}
//	defer client.Stop()
//
//	select {
//	case <-ctx.Done():
//	case <-client.Done():
//	    return client.Err()
//	}
package mqtt
