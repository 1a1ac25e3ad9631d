package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/sentinel/internal/device"
	"github.com/nerrad567/sentinel/internal/telemetry"
)

// Measurement names written by the mirror.
const (
	MeasurementStatus = "device_status"
	MeasurementLight  = "light"
)

// tagClientID identifies the agent on every point.
const tagClientID = "client_id"

// RecordStatus queues a device status report. Unavailable readings are
// left out of the point rather than stored as -1.
//
// It implements telemetry.Recorder.
func (c *Client) RecordStatus(r telemetry.StatusReport) {
	c.writePoint(StatusPoint(c.clientID, r))
}

// RecordLight queues a light sensor report.
//
// It implements telemetry.Recorder.
func (c *Client) RecordLight(r telemetry.LightReport) {
	c.writePoint(LightPoint(c.clientID, r))
}

func (c *Client) writePoint(p *write.Point) {
	if p == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(p)
}

// StatusPoint builds the device_status point for r.
// It returns nil when no reading in r is available.
func StatusPoint(clientID string, r telemetry.StatusReport) *write.Point {
	fields := make(map[string]interface{}, 3)
	addFloat(fields, "cpu_temp_c", r.CPUTempC)
	addFloat(fields, "cpu_load", r.CPULoad)
	addFloat(fields, "mem_usage_percent", r.MemUsagePercent)
	if len(fields) == 0 {
		return nil
	}

	return write.NewPoint(
		MeasurementStatus,
		map[string]string{tagClientID: clientID},
		fields,
		time.UnixMilli(r.TimestampMS),
	)
}

// LightPoint builds the light point for r, tagged with the sensor id.
// It returns nil when no channel in r is available.
func LightPoint(clientID string, r telemetry.LightReport) *write.Point {
	fields := make(map[string]interface{}, 3)
	addInt(fields, "light_lux", r.LightLux)
	addInt(fields, "infrared_cd", r.InfraredCD)
	addInt(fields, "proximity", r.Proximity)
	if len(fields) == 0 {
		return nil
	}

	return write.NewPoint(
		MeasurementLight,
		map[string]string{
			tagClientID: clientID,
			"sensor_id": r.SensorID,
		},
		fields,
		time.UnixMilli(r.TimestampMS),
	)
}

func addFloat(fields map[string]interface{}, key string, v float64) {
	if v == device.Unavailable {
		return
	}
	fields[key] = v
}

func addInt(fields map[string]interface{}, key string, v int) {
	if v == device.Unavailable {
		return
	}
	fields[key] = int64(v)
}
