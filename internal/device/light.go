package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AP3216C attribute files under the driver's sysfs directory.
const (
	alsFile = "als"
	psFile  = "ps"
	irFile  = "ir"
)

// LightReading is one AP3216C sample.
type LightReading struct {
	// Ambient is the ambient light level in lux.
	Ambient int

	// Proximity is the raw proximity count.
	Proximity int

	// Infrared is the raw infrared intensity.
	Infrared int
}

// LightSensor reads an AP3216C through its misc-device attributes.
type LightSensor struct {
	dir string
}

// NewLightSensor returns a sensor reading from dir,
// normally /sys/class/misc/ap3216c.
func NewLightSensor(dir string) *LightSensor {
	return &LightSensor{dir: dir}
}

// Read takes all three channels. Failed channels are set to Unavailable and
// their errors joined into the returned error.
func (s *LightSensor) Read() (LightReading, error) {
	var errs []error
	read := func(name string) int {
		v, err := readIntAttribute(filepath.Join(s.dir, name))
		if err != nil {
			errs = append(errs, err)
			return Unavailable
		}
		return v
	}

	r := LightReading{
		Ambient:   read(alsFile),
		Proximity: read(psFile),
		Infrared:  read(irFile),
	}
	return r, errors.Join(errs...)
}

// readIntAttribute parses a sysfs attribute holding one decimal integer.
//
// procfs/sysfs has no reader for the ap3216c misc class, so the attribute is
// read directly.
func readIntAttribute(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Unavailable, fmt.Errorf("%w: %w", ErrSensorUnavailable, err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return Unavailable, fmt.Errorf("%w: %s: %w", ErrMalformedReading, path, err)
	}
	return v, nil
}
