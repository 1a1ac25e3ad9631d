package device

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fixture is a fake proc/sys tree under t.TempDir.
type fixture struct {
	t    *testing.T
	proc string
	sys  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		t:    t,
		proc: filepath.Join(root, "proc"),
		sys:  filepath.Join(root, "sys"),
	}
	for _, dir := range []string{f.proc, f.sys} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	return f
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("write %s: %v", path, err)
	}
}

// setCPU writes /proc/stat with the given aggregate counters (USER_HZ ticks).
func (f *fixture) setCPU(user, nice, system, idle, iowait, irq, softirq, steal uint64) {
	line := fmt.Sprintf("cpu  %d %d %d %d %d %d %d %d 0 0\n", user, nice, system, idle, iowait, irq, softirq, steal)
	f.write(filepath.Join(f.proc, "stat"), line+
		"cpu0 0 0 0 0 0 0 0 0 0 0\n"+
		"intr 0\n"+
		"ctxt 0\n"+
		"btime 1700000000\n"+
		"processes 1\n"+
		"procs_running 1\n"+
		"procs_blocked 0\n")
}

// setMeminfo writes /proc/meminfo with the given kB values.
func (f *fixture) setMeminfo(total, available uint64) {
	f.write(filepath.Join(f.proc, "meminfo"), fmt.Sprintf(
		"MemTotal:       %d kB\nMemFree:        1024 kB\nMemAvailable:   %d kB\nBuffers:           0 kB\n",
		total, available))
}

// setThermal writes class/thermal/thermal_zone<zone> with temp in millidegrees.
func (f *fixture) setThermal(zone int, milli int64) {
	dir := filepath.Join(f.sys, "class", "thermal", fmt.Sprintf("thermal_zone%d", zone))
	f.write(filepath.Join(dir, "type"), "cpu-thermal\n")
	f.write(filepath.Join(dir, "policy"), "step_wise\n")
	f.write(filepath.Join(dir, "mode"), "enabled\n")
	f.write(filepath.Join(dir, "temp"), fmt.Sprintf("%d\n", milli))
}
