package mqtt

import (
	"fmt"
	"strings"
	"time"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for a connect acknowledgment.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish/subscribe acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 * time.Millisecond

	// defaultKeepAlive is used when Config.KeepAlive is zero.
	defaultKeepAlive = 60 * time.Second

	// defaultReconnectDelay is used when Config.ReconnectDelay is zero.
	defaultReconnectDelay = 5 * time.Second

	// MaxReconnectDelay caps the exponential backoff between connect attempts.
	MaxReconnectDelay = 300 * time.Second

	// maxQoS is the highest QoS level the agent uses. QoS 2 is not supported.
	maxQoS = 1

	// onlineQoS is the QoS of the retained online announcement.
	onlineQoS = 1

	// controlQoS is the QoS of the per-client control subscription.
	controlQoS = 1
)

// Config holds the broker session settings consumed by New.
// It is copied by New and never mutated afterwards.
type Config struct {
	// BrokerAddress is the broker URL, e.g. "tcp://10.0.0.5:1883". Required.
	BrokerAddress string

	// ClientID uniquely identifies this agent to the broker. Required.
	ClientID string

	// Username and Password must be both set or both empty.
	Username string
	Password string

	// KeepAlive is the MQTT keep-alive interval. Zero selects 60s.
	KeepAlive time.Duration

	// ReconnectDelay is the initial backoff delay. Zero selects 5s.
	ReconnectDelay time.Duration

	// MaxReconnectAttempts caps consecutive connect failures. 0 means unlimited.
	MaxReconnectAttempts int

	// CleanSession asks the broker to discard prior session state on connect.
	CleanSession bool
}

// validate checks required fields and applies defaults for zero durations.
func (cfg *Config) validate() error {
	var errs []string

	if strings.TrimSpace(cfg.BrokerAddress) == "" {
		errs = append(errs, "broker address is required")
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		errs = append(errs, "client id is required")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		errs = append(errs, "username and password must be set together")
	}
	if cfg.KeepAlive < 0 {
		errs = append(errs, "keep-alive must not be negative")
	}
	if cfg.ReconnectDelay < 0 {
		errs = append(errs, "reconnect delay must not be negative")
	}
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "max reconnect attempts must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = defaultKeepAlive
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}

	return nil
}

// connectOptions builds the per-connect options for the transport.
func (cfg *Config) connectOptions(will *Will) ConnectOptions {
	return ConnectOptions{
		CleanSession: cfg.CleanSession,
		KeepAlive:    cfg.KeepAlive,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Will:         will,
	}
}

// OnlinePayload creates the JSON payload announcing that the agent is online.
// It is published retained on the will topic after every successful connect.
func OnlinePayload(now time.Time) []byte {
	return []byte(fmt.Sprintf(`{"status":"online","timestamp_ms":%d}`, now.UnixMilli()))
}

// OfflinePayload creates the JSON payload registered as the Last Will.
func OfflinePayload(now time.Time) []byte {
	return []byte(fmt.Sprintf(`{"status":"offline","timestamp_ms":%d}`, now.UnixMilli()))
}
