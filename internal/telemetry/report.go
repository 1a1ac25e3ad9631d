package telemetry

import (
	"time"

	"github.com/nerrad567/sentinel/internal/device"
)

// LightSensorID is the sensor_id carried by every LightReport.
const LightSensorID = "light_sensor"

// StatusReport is the payload published on sentinel/{clientID}/status.
type StatusReport struct {
	TimestampMS     int64   `json:"timestamp_ms"`
	CPUTempC        float64 `json:"cpu_temp_c"`
	CPULoad         float64 `json:"cpu_load"`
	MemUsagePercent float64 `json:"mem_usage_percent"`
}

// LightReport is the payload published on sentinel/{clientID}/light.
type LightReport struct {
	TimestampMS int64  `json:"timestamp_ms"`
	LightLux    int    `json:"light_lux"`
	InfraredCD  int    `json:"infrared_cd"`
	SensorID    string `json:"sensor_id"`
	Proximity   int    `json:"proximity"`
}

// NewStatusReport converts a device sample taken at now.
func NewStatusReport(now time.Time, s device.Status) StatusReport {
	return StatusReport{
		TimestampMS:     now.UnixMilli(),
		CPUTempC:        s.CPUTemperature,
		CPULoad:         s.CPULoad,
		MemUsagePercent: s.MemoryUsage,
	}
}

// NewLightReport converts a light sensor reading taken at now.
func NewLightReport(now time.Time, r device.LightReading) LightReport {
	return LightReport{
		TimestampMS: now.UnixMilli(),
		LightLux:    r.Ambient,
		InfraredCD:  r.Infrared,
		SensorID:    LightSensorID,
		Proximity:   r.Proximity,
	}
}
