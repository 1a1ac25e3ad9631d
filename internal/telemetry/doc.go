// Package telemetry runs the agent's periodic reporters.
//
// Each Reporter samples one source on a fixed interval, encodes the sample as
// JSON and publishes it on the client's telemetry topic:
//
//	sentinel/{clientID}/status  StatusReport from device.Monitor
//	sentinel/{clientID}/light   LightReport from device.LightSensor
//
// A cycle is skipped while the publisher reports no connection; nothing is
// queued for later. Sensor failures are published as -1 values and logged.
//
// An optional Recorder receives every published report, which is how the
// InfluxDB mirror is fed.
package telemetry
