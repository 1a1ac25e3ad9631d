// Package device samples the health of the board the agent runs on.
//
// Two sources are provided:
//
//   - Monitor reads CPU temperature from a sysfs thermal zone, CPU load from
//     the /proc/stat counters and memory usage from /proc/meminfo.
//   - LightSensor reads the AP3216C ambient light, proximity and infrared
//     channels exposed by its driver under /sys/class/misc/ap3216c.
//
// Both take their filesystem roots as parameters so tests can point them at
// fixture trees.
//
// # Failure values
//
// A reading that cannot be taken is reported as Unavailable (-1) alongside
// an error wrapping ErrSensorUnavailable or ErrMalformedReading. Downstream
// consumers publish the -1 so a missing sensor is visible on the wire.
//
// # Usage
//
//	mon, err := device.NewMonitor("/proc", "/sys", 0)
//	if err != nil {
//	    return err
//	}
//	status, err := mon.Sample()
//	if err != nil {
//	    logger.Warn("partial device sample", "error", err)
//	}
package device
