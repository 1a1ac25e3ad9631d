package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/sentinel/internal/device"
)

// DefaultInterval is the reporting period when Config.Interval is zero.
const DefaultInterval = time.Second

// ErrInvalidConfig is returned by the reporter constructors.
var ErrInvalidConfig = errors.New("telemetry: invalid config")

// Publisher is the subset of the MQTT client a Reporter needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// StatusSource yields device health samples.
type StatusSource interface {
	Sample() (device.Status, error)
}

// LightSource yields light sensor readings.
type LightSource interface {
	Read() (device.LightReading, error)
}

// Recorder receives every report that was published.
type Recorder interface {
	RecordStatus(StatusReport)
	RecordLight(LightReport)
}

// Metrics counts reporter outcomes.
type Metrics interface {
	ReportSkipped(report string)
	SampleFailed(report string)
}

// Logger interface for optional logging support.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) ReportSkipped(string) {}
func (noopMetrics) SampleFailed(string)  {}

type noopRecorder struct{}

func (noopRecorder) RecordStatus(StatusReport) {}
func (noopRecorder) RecordLight(LightReport)   {}

// Config holds the publishing settings of one Reporter.
type Config struct {
	// Topic the report is published on. Required.
	Topic string

	// Interval between reports. Zero selects DefaultInterval.
	Interval time.Duration

	QoS      byte
	Retained bool
}

// cycle is one encoded report awaiting publication.
type cycle struct {
	payload []byte

	// record hands the report to the Recorder once published.
	record func()

	// sampleErr is set when some readings were replaced by placeholders.
	sampleErr error
}

// Reporter samples a source and publishes the encoded result periodically.
//
// Thread Safety:
//   - Setters must be called before Run. Run must not be called concurrently.
type Reporter struct {
	name      string
	cfg       Config
	publisher Publisher

	// sample reads the source and encodes one report.
	sample func(now time.Time) (cycle, error)

	recorder Recorder
	metrics  Metrics
	logger   Logger
	now      func() time.Time
}

// NewStatusReporter creates the device status reporter.
func NewStatusReporter(pub Publisher, src StatusSource, cfg Config) (*Reporter, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: status source is required", ErrInvalidConfig)
	}
	r, err := newReporter("status", pub, cfg)
	if err != nil {
		return nil, err
	}
	r.sample = func(now time.Time) (cycle, error) {
		s, sampleErr := src.Sample()
		report := NewStatusReport(now, s)
		payload, err := json.Marshal(report)
		if err != nil {
			return cycle{}, err
		}
		return cycle{
			payload:   payload,
			record:    func() { r.recorder.RecordStatus(report) },
			sampleErr: sampleErr,
		}, nil
	}
	return r, nil
}

// NewLightReporter creates the AP3216C light reporter.
func NewLightReporter(pub Publisher, src LightSource, cfg Config) (*Reporter, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: light source is required", ErrInvalidConfig)
	}
	r, err := newReporter("light", pub, cfg)
	if err != nil {
		return nil, err
	}
	r.sample = func(now time.Time) (cycle, error) {
		reading, sampleErr := src.Read()
		report := NewLightReport(now, reading)
		payload, err := json.Marshal(report)
		if err != nil {
			return cycle{}, err
		}
		return cycle{
			payload:   payload,
			record:    func() { r.recorder.RecordLight(report) },
			sampleErr: sampleErr,
		}, nil
	}
	return r, nil
}

func newReporter(name string, pub Publisher, cfg Config) (*Reporter, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: publisher is required", ErrInvalidConfig)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must not be negative", ErrInvalidConfig)
	}
	if cfg.QoS > 1 {
		return nil, fmt.Errorf("%w: qos must be 0 or 1", ErrInvalidConfig)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}

	return &Reporter{
		name:      name,
		cfg:       cfg,
		publisher: pub,
		recorder:  noopRecorder{},
		metrics:   noopMetrics{},
		logger:    noopLogger{},
		now:       time.Now,
	}, nil
}

// Name returns the report kind, "status" or "light".
func (r *Reporter) Name() string {
	return r.name
}

// SetRecorder sets the sink for published reports.
func (r *Reporter) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = noopRecorder{}
	}
	r.recorder = rec
}

// SetMetrics sets the instrumentation sink.
func (r *Reporter) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	r.metrics = m
}

// SetLogger sets the logger.
func (r *Reporter) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Run reports once per interval until ctx is cancelled. The first report is
// sent one interval after Run starts. It always returns nil.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("reporter started",
		"report", r.name,
		"topic", r.cfg.Topic,
		"interval", r.cfg.Interval,
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reporter stopped", "report", r.name)
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick runs one reporting cycle.
func (r *Reporter) Tick() {
	if !r.publisher.IsConnected() {
		r.metrics.ReportSkipped(r.name)
		r.logger.Debug("report skipped, mqtt not connected", "report", r.name)
		return
	}

	c, err := r.sample(r.now())
	if err != nil {
		r.metrics.SampleFailed(r.name)
		r.logger.Error("encoding report failed", "report", r.name, "error", err)
		return
	}
	if c.sampleErr != nil {
		r.metrics.SampleFailed(r.name)
		r.logger.Warn("sensor read failed, publishing placeholder values",
			"report", r.name,
			"error", c.sampleErr,
		)
	}

	if err := r.publisher.Publish(r.cfg.Topic, c.payload, r.cfg.QoS, r.cfg.Retained); err != nil {
		r.logger.Warn("publishing report failed",
			"report", r.name,
			"topic", r.cfg.Topic,
			"error", err,
		)
		return
	}

	c.record()
}
