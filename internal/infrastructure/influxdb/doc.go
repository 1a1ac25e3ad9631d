// Package influxdb mirrors agent telemetry into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health monitoring. The Client
// implements telemetry.Recorder, so reporters hand it every report they
// publish over MQTT.
//
// # Measurements
//
//	device_status  fields cpu_temp_c, cpu_load, mem_usage_percent; tag client_id
//	light          fields light_lux, infrared_cd, proximity; tags client_id, sensor_id
//
// Readings a sensor could not take are omitted from the point.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.MQTT.ClientID)
//	if err != nil {
//	    logger.Warn("influxdb mirror disabled", "error", err)
//	} else {
//	    defer client.Close()
//	    reporter.SetRecorder(client)
//	}
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned directly.
package influxdb
