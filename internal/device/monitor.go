package device

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
)

// Status is one sample of board health.
type Status struct {
	// CPUTemperature is in degrees Celsius.
	CPUTemperature float64

	// CPULoad is the busy share of CPU time since the previous sample, in percent.
	CPULoad float64

	// MemoryUsage is (MemTotal - MemAvailable) / MemTotal, in percent.
	MemoryUsage float64
}

// cpuTimes holds the /proc/stat counters used for the load calculation.
type cpuTimes struct {
	total float64
	idle  float64
}

// Monitor samples CPU temperature, CPU load and memory usage.
//
// CPU load is computed from the counter delta between consecutive calls, so
// the first sample is primed in NewMonitor and no call ever sleeps.
//
// Thread Safety:
//   - Safe for concurrent use; load samples are serialised.
type Monitor struct {
	proc        procfs.FS
	sys         sysfs.FS
	thermalZone string

	mu     sync.Mutex
	prev   cpuTimes
	primed bool
}

// NewMonitor opens the proc and sys filesystems rooted at procRoot and
// sysRoot. thermalZone selects class/thermal/thermal_zone<N>.
func NewMonitor(procRoot, sysRoot string, thermalZone int) (*Monitor, error) {
	proc, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: opening procfs %s: %w", ErrSensorUnavailable, procRoot, err)
	}
	sys, err := sysfs.NewFS(sysRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sysfs %s: %w", ErrSensorUnavailable, sysRoot, err)
	}

	m := &Monitor{
		proc:        proc,
		sys:         sys,
		thermalZone: strconv.Itoa(thermalZone),
	}
	if t, err := m.readCPUTimes(); err == nil {
		m.prev = t
		m.primed = true
	}
	return m, nil
}

// Sample takes all three readings. Failed readings are set to Unavailable
// and their errors joined into the returned error.
func (m *Monitor) Sample() (Status, error) {
	var errs []error

	temp, err := m.CPUTemperature()
	if err != nil {
		errs = append(errs, err)
	}
	load, err := m.CPULoad()
	if err != nil {
		errs = append(errs, err)
	}
	mem, err := m.MemoryUsage()
	if err != nil {
		errs = append(errs, err)
	}

	return Status{
		CPUTemperature: temp,
		CPULoad:        load,
		MemoryUsage:    mem,
	}, errors.Join(errs...)
}

// CPUTemperature returns the selected thermal zone temperature in Celsius.
func (m *Monitor) CPUTemperature() (float64, error) {
	zones, err := m.sys.ClassThermalZoneStats()
	if err != nil {
		return Unavailable, fmt.Errorf("%w: thermal zones: %w", ErrSensorUnavailable, err)
	}
	for _, z := range zones {
		if z.Name == m.thermalZone {
			// The kernel reports millidegrees.
			return float64(z.Temp) / 1000, nil
		}
	}
	return Unavailable, fmt.Errorf("%w: thermal_zone%s not found", ErrSensorUnavailable, m.thermalZone)
}

// CPULoad returns the percentage of non-idle CPU time since the previous call.
func (m *Monitor) CPULoad() (float64, error) {
	cur, err := m.readCPUTimes()
	if err != nil {
		return Unavailable, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, primed := m.prev, m.primed
	m.prev, m.primed = cur, true
	if !primed {
		return Unavailable, fmt.Errorf("%w: first sample", ErrNoCPUProgress)
	}

	totalDelta := cur.total - prev.total
	if totalDelta <= 0 {
		return Unavailable, ErrNoCPUProgress
	}
	idleDelta := cur.idle - prev.idle

	return 100 * (totalDelta - idleDelta) / totalDelta, nil
}

// readCPUTimes reads the aggregate cpu line of /proc/stat.
// Guest time is already folded into user and nice by the kernel.
func (m *Monitor) readCPUTimes() (cpuTimes, error) {
	stat, err := m.proc.Stat()
	if err != nil {
		return cpuTimes{}, fmt.Errorf("%w: reading stat: %w", ErrSensorUnavailable, err)
	}

	c := stat.CPUTotal
	return cpuTimes{
		total: c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal,
		idle:  c.Idle,
	}, nil
}

// MemoryUsage returns the share of memory not available to new allocations, in percent.
func (m *Monitor) MemoryUsage() (float64, error) {
	info, err := m.proc.Meminfo()
	if err != nil {
		return Unavailable, fmt.Errorf("%w: reading meminfo: %w", ErrSensorUnavailable, err)
	}
	if info.MemTotal == nil || info.MemAvailable == nil {
		return Unavailable, fmt.Errorf("%w: meminfo lacks MemTotal or MemAvailable", ErrMalformedReading)
	}

	total, avail := *info.MemTotal, *info.MemAvailable
	if total == 0 || avail > total {
		return Unavailable, fmt.Errorf("%w: meminfo total %d available %d", ErrMalformedReading, total, avail)
	}

	return 100 * float64(total-avail) / float64(total), nil
}
