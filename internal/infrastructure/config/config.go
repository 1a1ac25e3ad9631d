package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that overrides the config file location.
const EnvConfigPath = "SENTINEL_CONFIG"

// DefaultPath is used when SENTINEL_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

// Config is the root configuration structure for the Sentinel agent.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	BrokerAddress string `yaml:"broker_address"`
	ClientID      string `yaml:"client_id"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`

	// KeepAliveInterval is in seconds.
	KeepAliveInterval int `yaml:"keep_alive_interval"`

	// ReconnectDelaySec is the initial backoff in seconds. It doubles after
	// each failure, capped at 300s.
	ReconnectDelaySec int `yaml:"reconnect_delay_sec"`

	// MaxReconnectAttempts limits consecutive failures. 0 means unlimited.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`

	CleanSession bool `yaml:"clean_session"`
}

// TelemetryConfig contains reporting worker settings.
type TelemetryConfig struct {
	// StatusInterval and LightInterval are in seconds.
	StatusInterval int  `yaml:"status_interval"`
	LightInterval  int  `yaml:"light_interval"`
	QoS            int  `yaml:"qos"`
	Retained       bool `yaml:"retained"`
}

// SensorsConfig locates the kernel interfaces the agent samples.
type SensorsConfig struct {
	// ProcRoot is the procfs mount point.
	ProcRoot string `yaml:"proc_root"`

	// SysRoot is the sysfs mount point.
	SysRoot string `yaml:"sys_root"`

	// ThermalZone selects /sys/class/thermal/thermal_zone<N> for the CPU temperature.
	ThermalZone int `yaml:"thermal_zone"`

	// LightSensorPath is the AP3216C sysfs directory holding als, ps and ir.
	LightSensorPath string `yaml:"light_sensor_path"`
	LightEnabled    bool   `yaml:"light_enabled"`
}

// InfluxDBConfig contains InfluxDB connection settings for the local mirror.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MetricsConfig contains the Prometheus endpoint settings.
type MetricsConfig struct {
	// Listen is the HTTP listen address, e.g. ":9100". Empty disables the server.
	Listen string `yaml:"listen"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Path returns the config file location from SENTINEL_CONFIG or DefaultPath.
func Path() string {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return DefaultPath
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process
// environment. Variables already set are left untouched, and a missing file
// is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENTINEL_SECTION_KEY
// For example: SENTINEL_MQTT_BROKER_ADDRESS, SENTINEL_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the agent's stock settings.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			BrokerAddress:        "tcp://localhost:1883",
			KeepAliveInterval:    60,
			ReconnectDelaySec:    5,
			MaxReconnectAttempts: 99,
			CleanSession:         true,
		},
		Telemetry: TelemetryConfig{
			StatusInterval: 1,
			LightInterval:  1,
			QoS:            0,
			Retained:       true,
		},
		Sensors: SensorsConfig{
			ProcRoot:        "/proc",
			SysRoot:         "/sys",
			ThermalZone:     0,
			LightSensorPath: "/sys/class/misc/ap3216c",
			LightEnabled:    true,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SENTINEL_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// MQTT
	if v := os.Getenv("SENTINEL_MQTT_BROKER_ADDRESS"); v != "" {
		cfg.MQTT.BrokerAddress = v
	}
	if v := os.Getenv("SENTINEL_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("SENTINEL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("SENTINEL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if err := envInt("SENTINEL_MQTT_MAX_RECONNECT_ATTEMPTS", &cfg.MQTT.MaxReconnectAttempts); err != nil {
		return err
	}

	// InfluxDB
	if v := os.Getenv("SENTINEL_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Metrics
	if v := os.Getenv("SENTINEL_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}

	// Logging
	if v := os.Getenv("SENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.BrokerAddress == "" {
		errs = append(errs, "mqtt.broker_address is required")
	}
	if c.MQTT.ClientID == "" {
		errs = append(errs, "mqtt.client_id is required")
	}
	if (c.MQTT.Username == "") != (c.MQTT.Password == "") {
		errs = append(errs, "mqtt.username and mqtt.password must be set together")
	}
	if c.MQTT.KeepAliveInterval < 1 {
		errs = append(errs, "mqtt.keep_alive_interval must be positive")
	}
	if c.MQTT.ReconnectDelaySec < 1 {
		errs = append(errs, "mqtt.reconnect_delay_sec must be positive")
	}
	if c.MQTT.MaxReconnectAttempts < 0 {
		errs = append(errs, "mqtt.max_reconnect_attempts must not be negative")
	}

	// Telemetry validation
	if c.Telemetry.StatusInterval < 1 {
		errs = append(errs, "telemetry.status_interval must be positive")
	}
	if c.Telemetry.LightInterval < 1 {
		errs = append(errs, "telemetry.light_interval must be positive")
	}
	if c.Telemetry.QoS < 0 || c.Telemetry.QoS > 1 {
		errs = append(errs, "telemetry.qos must be 0 or 1")
	}

	// Sensors validation
	if c.Sensors.ProcRoot == "" {
		errs = append(errs, "sensors.proc_root is required")
	}
	if c.Sensors.SysRoot == "" {
		errs = append(errs, "sensors.sys_root is required")
	}
	if c.Sensors.ThermalZone < 0 {
		errs = append(errs, "sensors.thermal_zone must not be negative")
	}
	if c.Sensors.LightEnabled && c.Sensors.LightSensorPath == "" {
		errs = append(errs, "sensors.light_sensor_path is required when light sensing is enabled")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when enabled")
		}
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// KeepAlive returns the MQTT keep-alive interval as a Duration.
func (c *Config) KeepAlive() time.Duration {
	return time.Duration(c.MQTT.KeepAliveInterval) * time.Second
}

// ReconnectDelay returns the initial MQTT reconnect delay as a Duration.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.MQTT.ReconnectDelaySec) * time.Second
}

// StatusInterval returns the device status reporting period as a Duration.
func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.Telemetry.StatusInterval) * time.Second
}

// LightInterval returns the light sensor reporting period as a Duration.
func (c *Config) LightInterval() time.Duration {
	return time.Duration(c.Telemetry.LightInterval) * time.Second
}
