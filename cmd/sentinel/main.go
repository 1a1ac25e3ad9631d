// Sentinel - device telemetry agent
//
// Sentinel keeps one MQTT session to a broker alive for the lifetime of the
// process and periodically publishes device health and light sensor readings:
//   - sentinel/{client_id}/status  CPU temperature, CPU load, memory usage
//   - sentinel/{client_id}/light   AP3216C ambient light, proximity, infrared
//   - sentinel/{client_id}/online  retained presence, cleared by the broker via LWT
//
// Commands arrive on app/{client_id}/control.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/sentinel/internal/device"
	"github.com/nerrad567/sentinel/internal/infrastructure/config"
	"github.com/nerrad567/sentinel/internal/infrastructure/influxdb"
	"github.com/nerrad567/sentinel/internal/infrastructure/logging"
	"github.com/nerrad567/sentinel/internal/infrastructure/mqtt"
	"github.com/nerrad567/sentinel/internal/observability"
	"github.com/nerrad567/sentinel/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// envFilePath is the optional dotenv file holding secrets.
const envFilePath = ".env"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// It returns nil on a clean shutdown and an error if startup fails or the
// MQTT client exhausts its reconnect attempts.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Sentinel",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadEnvFile(envFilePath); err != nil {
		return err
	}

	configPath := config.Path()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version, cfg.MQTT.ClientID)
	log.Info("configuration loaded",
		"path", configPath,
		"broker", cfg.MQTT.BrokerAddress,
		"level", cfg.Logging.Level,
	)

	metrics := observability.NewMetrics()

	client, err := newMQTTClient(cfg, log, metrics)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("stopping MQTT client")
		client.Stop()
	}()

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("starting MQTT client: %w", err)
	}

	if cfg.Metrics.Listen != "" {
		srv := observability.NewServer(cfg.Metrics.Listen, metrics, client)
		srv.SetLogger(log.Component("observability"))
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		defer func() {
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error closing metrics server", "error", closeErr)
			}
		}()
	}

	recorder := connectInflux(ctx, cfg, log)
	if recorder != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := recorder.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	reporters, err := newReporters(cfg, client, log, metrics, recorder)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range reporters {
		r := r
		g.Go(func() error {
			return r.Run(gctx)
		})
	}
	g.Go(func() error {
		return watchClient(gctx, client)
	})
	g.Go(func() error {
		watchdog(gctx, log)
		return nil
	})

	sdNotify(log, daemon.SdNotifyReady)
	log.Info("initialisation complete", "reporters", len(reporters))

	err = g.Wait()
	sdNotify(log, daemon.SdNotifyStopping)

	if err != nil {
		return err
	}
	log.Info("Sentinel stopped")
	return nil
}

// newMQTTClient builds the broker client with its will, callbacks and hooks.
func newMQTTClient(cfg *config.Config, log *logging.Logger, metrics *observability.Metrics) (*mqtt.Client, error) {
	client, err := mqtt.New(mqtt.Config{
		BrokerAddress:        cfg.MQTT.BrokerAddress,
		ClientID:             cfg.MQTT.ClientID,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		KeepAlive:            cfg.KeepAlive(),
		ReconnectDelay:       cfg.ReconnectDelay(),
		MaxReconnectAttempts: cfg.MQTT.MaxReconnectAttempts,
		CleanSession:         cfg.MQTT.CleanSession,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating MQTT client: %w", err)
	}

	client.SetLogger(log.Component("mqtt"))
	client.SetMetrics(metrics)

	topics := mqtt.Topics{}
	if err := client.SetLWT(topics.Online(cfg.MQTT.ClientID), mqtt.OfflinePayload(time.Now()), 1); err != nil {
		return nil, fmt.Errorf("setting LWT: %w", err)
	}

	client.SetOnCommand(func(topic string, payload []byte) {
		log.Info("command received", "topic", topic, "payload", string(payload))
	})
	client.SetOnConnectionStatus(func(connected bool) {
		if connected {
			log.Info("MQTT session established")
			return
		}
		log.Warn("MQTT session lost")
	})

	return client, nil
}

// connectInflux opens the optional time-series mirror. A failed connect is
// logged and the agent runs without it.
func connectInflux(ctx context.Context, cfg *config.Config, log *logging.Logger) *influxdb.Client {
	if !cfg.InfluxDB.Enabled {
		log.Info("InfluxDB disabled")
		return nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB, cfg.MQTT.ClientID)
	if err != nil {
		log.Warn("InfluxDB unavailable, continuing without mirror", "error", err)
		return nil
	}

	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client
}

// newReporters builds the status reporter and, if enabled, the light reporter.
// recorder may be nil.
func newReporters(cfg *config.Config, client *mqtt.Client, log *logging.Logger, metrics *observability.Metrics, recorder *influxdb.Client) ([]*telemetry.Reporter, error) {
	topics := mqtt.Topics{}
	id := cfg.MQTT.ClientID
	qos := byte(cfg.Telemetry.QoS) // #nosec G115 -- validated to 0..1

	monitor, err := device.NewMonitor(cfg.Sensors.ProcRoot, cfg.Sensors.SysRoot, cfg.Sensors.ThermalZone)
	if err != nil {
		return nil, fmt.Errorf("creating device monitor: %w", err)
	}

	status, err := telemetry.NewStatusReporter(client, monitor, telemetry.Config{
		Topic:    topics.Status(id),
		Interval: cfg.StatusInterval(),
		QoS:      qos,
		Retained: cfg.Telemetry.Retained,
	})
	if err != nil {
		return nil, fmt.Errorf("creating status reporter: %w", err)
	}
	reporters := []*telemetry.Reporter{status}

	if cfg.Sensors.LightEnabled {
		light, err := telemetry.NewLightReporter(client, device.NewLightSensor(cfg.Sensors.LightSensorPath), telemetry.Config{
			Topic:    topics.Light(id),
			Interval: cfg.LightInterval(),
			QoS:      qos,
			Retained: cfg.Telemetry.Retained,
		})
		if err != nil {
			return nil, fmt.Errorf("creating light reporter: %w", err)
		}
		reporters = append(reporters, light)
	}

	for _, r := range reporters {
		r.SetLogger(log.Component("telemetry"))
		r.SetMetrics(metrics)
		if recorder != nil {
			r.SetRecorder(recorder)
		}
	}
	return reporters, nil
}

// watchClient returns the client's terminal error if its reconnect loop gives up.
func watchClient(ctx context.Context, client *mqtt.Client) error {
	select {
	case <-ctx.Done():
		return nil
	case <-client.Done():
		if err := client.Err(); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		return nil
	}
}

// watchdog pings systemd at half the configured WatchdogSec until ctx ends.
// It returns immediately when the watchdog is not enabled.
func watchdog(ctx context.Context, log *logging.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn("reading systemd watchdog settings", "error", err)
		return
	}
	if interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sdNotify(log, daemon.SdNotifyWatchdog)
		}
	}
}

func sdNotify(log *logging.Logger, state string) {
	if _, err := daemon.SdNotify(false, state); err != nil {
		log.Warn("sd_notify failed", "state", state, "error", err)
	}
}
