package device

import "errors"

// Unavailable is reported in place of a reading that could not be taken.
const Unavailable = -1

// Sentinel errors for sensor reads.
var (
	// ErrSensorUnavailable indicates the backing file or filesystem is missing or unreadable.
	ErrSensorUnavailable = errors.New("device: sensor unavailable")

	// ErrMalformedReading indicates the source was readable but its content could not be parsed.
	ErrMalformedReading = errors.New("device: malformed reading")

	// ErrNoCPUProgress indicates no CPU time elapsed between two load samples.
	ErrNoCPUProgress = errors.New("device: no cpu time elapsed between samples")
)
