package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to a temporary config.yaml and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
mqtt:
  broker_address: "tcp://10.0.0.5:1883"
  client_id: "dev1"
  username: "agent"
  password: "secret"
  keep_alive_interval: 30
  reconnect_delay_sec: 2
  max_reconnect_attempts: 0
  clean_session: false
telemetry:
  status_interval: 5
  qos: 1
sensors:
  light_enabled: false
metrics:
  listen: ":9100"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.BrokerAddress != "tcp://10.0.0.5:1883" {
		t.Errorf("MQTT.BrokerAddress = %q", cfg.MQTT.BrokerAddress)
	}
	if cfg.MQTT.ClientID != "dev1" {
		t.Errorf("MQTT.ClientID = %q, want %q", cfg.MQTT.ClientID, "dev1")
	}
	if cfg.MQTT.MaxReconnectAttempts != 0 {
		t.Errorf("MQTT.MaxReconnectAttempts = %d, want 0", cfg.MQTT.MaxReconnectAttempts)
	}
	if cfg.MQTT.CleanSession {
		t.Error("MQTT.CleanSession = true, want false")
	}
	if cfg.KeepAlive() != 30*time.Second {
		t.Errorf("KeepAlive() = %v, want 30s", cfg.KeepAlive())
	}
	if cfg.ReconnectDelay() != 2*time.Second {
		t.Errorf("ReconnectDelay() = %v, want 2s", cfg.ReconnectDelay())
	}
	if cfg.StatusInterval() != 5*time.Second {
		t.Errorf("StatusInterval() = %v, want 5s", cfg.StatusInterval())
	}
	if cfg.Metrics.Listen != ":9100" {
		t.Errorf("Metrics.Listen = %q", cfg.Metrics.Listen)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
mqtt:
  client_id: "dev1"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.BrokerAddress != "tcp://localhost:1883" {
		t.Errorf("MQTT.BrokerAddress = %q", cfg.MQTT.BrokerAddress)
	}
	if cfg.MQTT.KeepAliveInterval != 60 {
		t.Errorf("KeepAliveInterval = %d, want 60", cfg.MQTT.KeepAliveInterval)
	}
	if cfg.MQTT.ReconnectDelaySec != 5 {
		t.Errorf("ReconnectDelaySec = %d, want 5", cfg.MQTT.ReconnectDelaySec)
	}
	if cfg.MQTT.MaxReconnectAttempts != 99 {
		t.Errorf("MaxReconnectAttempts = %d, want 99", cfg.MQTT.MaxReconnectAttempts)
	}
	if !cfg.MQTT.CleanSession {
		t.Error("CleanSession = false, want true")
	}
	if cfg.LightInterval() != time.Second {
		t.Errorf("LightInterval() = %v, want 1s", cfg.LightInterval())
	}
	if cfg.Telemetry.QoS != 0 || !cfg.Telemetry.Retained {
		t.Errorf("Telemetry = %+v, want qos 0 retained", cfg.Telemetry)
	}
	if cfg.Sensors.LightSensorPath != "/sys/class/misc/ap3216c" {
		t.Errorf("LightSensorPath = %q", cfg.Sensors.LightSensorPath)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("Metrics.Listen = %q, want disabled", cfg.Metrics.Listen)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
mqtt:
  client_id: ""
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for empty client_id, got nil")
	}
	if !strings.Contains(err.Error(), "mqtt.client_id") {
		t.Errorf("error = %v, want mention of mqtt.client_id", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
mqtt:
  broker_address: "tcp://file:1883"
  client_id: "from-file"
`)

	t.Setenv("SENTINEL_MQTT_BROKER_ADDRESS", "tcp://env:1883")
	t.Setenv("SENTINEL_MQTT_CLIENT_ID", "from-env")
	t.Setenv("SENTINEL_MQTT_USERNAME", "agent")
	t.Setenv("SENTINEL_MQTT_PASSWORD", "secret")
	t.Setenv("SENTINEL_MQTT_MAX_RECONNECT_ATTEMPTS", "3")
	t.Setenv("SENTINEL_METRICS_LISTEN", "127.0.0.1:9100")
	t.Setenv("SENTINEL_LOG_LEVEL", "debug")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.BrokerAddress != "tcp://env:1883" {
		t.Errorf("BrokerAddress = %q, want env value", cfg.MQTT.BrokerAddress)
	}
	if cfg.MQTT.ClientID != "from-env" {
		t.Errorf("ClientID = %q, want env value", cfg.MQTT.ClientID)
	}
	if cfg.MQTT.Username != "agent" || cfg.MQTT.Password != "secret" {
		t.Errorf("credentials = %q/%q", cfg.MQTT.Username, cfg.MQTT.Password)
	}
	if cfg.MQTT.MaxReconnectAttempts != 3 {
		t.Errorf("MaxReconnectAttempts = %d, want 3", cfg.MQTT.MaxReconnectAttempts)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9100" {
		t.Errorf("Metrics.Listen = %q", cfg.Metrics.Listen)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrideNotANumber(t *testing.T) {
	configPath := writeConfig(t, `
mqtt:
  client_id: "dev1"
`)
	t.Setenv("SENTINEL_MQTT_MAX_RECONNECT_ATTEMPTS", "many")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for non-numeric override, got nil")
	}
}

func TestLoadEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("SENTINEL_TEST_ENVFILE_TOKEN=from-file\n"), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("SENTINEL_TEST_ENVFILE_TOKEN", "")
	os.Unsetenv("SENTINEL_TEST_ENVFILE_TOKEN")

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("SENTINEL_TEST_ENVFILE_TOKEN"); got != "from-file" {
		t.Errorf("env value = %q, want from-file", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnvFile() error = %v, want nil for missing file", err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}

	t.Setenv(EnvConfigPath, "/etc/sentinel/config.yaml")
	if got := Path(); got != "/etc/sentinel/config.yaml" {
		t.Errorf("Path() = %q, want env value", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.MQTT.ClientID = "dev1"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "missing broker", mutate: func(c *Config) { c.MQTT.BrokerAddress = "" }, wantErr: true},
		{name: "missing client id", mutate: func(c *Config) { c.MQTT.ClientID = "" }, wantErr: true},
		{name: "username only", mutate: func(c *Config) { c.MQTT.Username = "agent" }, wantErr: true},
		{name: "password only", mutate: func(c *Config) { c.MQTT.Password = "secret" }, wantErr: true},
		{name: "zero keep-alive", mutate: func(c *Config) { c.MQTT.KeepAliveInterval = 0 }, wantErr: true},
		{name: "zero reconnect delay", mutate: func(c *Config) { c.MQTT.ReconnectDelaySec = 0 }, wantErr: true},
		{name: "negative attempts", mutate: func(c *Config) { c.MQTT.MaxReconnectAttempts = -1 }, wantErr: true},
		{name: "unlimited attempts", mutate: func(c *Config) { c.MQTT.MaxReconnectAttempts = 0 }, wantErr: false},
		{name: "qos 2", mutate: func(c *Config) { c.Telemetry.QoS = 2 }, wantErr: true},
		{name: "zero status interval", mutate: func(c *Config) { c.Telemetry.StatusInterval = 0 }, wantErr: true},
		{name: "light path missing", mutate: func(c *Config) { c.Sensors.LightSensorPath = "" }, wantErr: true},
		{
			name: "light path ignored when disabled",
			mutate: func(c *Config) {
				c.Sensors.LightEnabled = false
				c.Sensors.LightSensorPath = ""
			},
			wantErr: false,
		},
		{name: "influx without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "b" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.MQTT.ClientID = ""
	cfg.Telemetry.QoS = 5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"mqtt.client_id", "telemetry.qos"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
