// Package logging provides structured logging for the Sentinel agent.
//
// It wraps log/slog so every component logs with the same default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version, client_id) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version, cfg.MQTT.ClientID)
//	mqttClient.SetLogger(logger.Component("mqtt"))
//	logger.Error("publish failed", "error", err)
//
// Never log broker or InfluxDB credentials.
package logging
