package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// State is the position of the Client in its connection state machine.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the lowercase state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics receives connection and traffic events for instrumentation.
// ConnectionUp is called with the connection lock held and must not call
// back into the Client.
type Metrics interface {
	ConnectionUp(up bool)
	ConnectAttempt(err error)
	Published(err error)
	CommandReceived()
	DeliveryComplete()
}

type noopMetrics struct{}

func (noopMetrics) ConnectionUp(bool)    {}
func (noopMetrics) ConnectAttempt(error) {}
func (noopMetrics) Published(error)      {}
func (noopMetrics) CommandReceived()     {}
func (noopMetrics) DeliveryComplete()    {}

// CommandHandler receives payloads published on the control topic.
// The payload slice belongs to the handler only for the duration of the call.
type CommandHandler func(topic string, payload []byte)

// StatusHandler is told about session establishment (true) and loss (false).
type StatusHandler func(connected bool)

// Client manages one broker session for the agent.
//
// It owns the connection state machine, the Last Will, the reconnect goroutine
// and the registered callbacks.
//
// Thread Safety:
//   - Publish, Subscribe, IsConnected and HealthCheck are safe for concurrent use.
//   - SetLWT and the SetOn*/SetLogger/SetMetrics setters are meant to be called
//     before Start.
type Client struct {
	cfg       Config
	transport Transport

	// connected is the session flag. connMu also serialises every call into
	// transport so that state checks and transport calls are atomic together.
	connected bool
	connMu    sync.Mutex

	state atomic.Int32

	// will is configuration-time only; written before Start.
	will *Will

	// Lifecycle of the reconnect goroutine.
	lifeMu   sync.Mutex
	started  bool
	closed   bool
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	stopOnce sync.Once

	// lost wakes the reconnect loop when an established session drops.
	lost chan struct{}

	onCommand  CommandHandler
	onStatus   StatusHandler
	callbackMu sync.RWMutex

	logger  Logger
	metrics Metrics
}

// New validates cfg and creates the transport handle without connecting.
//
// A nil factory selects the paho.mqtt.golang transport.
//
// Returns:
//   - *Client: Client ready for SetLWT, callback registration and Start
//   - error: wraps ErrInvalidConfig if cfg is rejected, or the factory error
func New(cfg Config, factory TransportFactory) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		factory = NewPahoTransport
	}

	c := &Client{
		cfg:     cfg,
		done:    make(chan struct{}),
		lost:    make(chan struct{}, 1),
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}

	transport, err := factory(cfg.BrokerAddress, cfg.ClientID, transportEvents{c: c})
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}
	c.transport = transport

	return c, nil
}

// SetLWT stores the Last Will and Testament registered on every connect.
// The will is always retained. It must be called before Start.
func (c *Client) SetLWT(topic string, payload []byte, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}

	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	c.will = &Will{
		Topic:   topic,
		Payload: append([]byte(nil), payload...),
		QoS:     qos,
	}
	return nil
}

// Start spawns the reconnect goroutine and returns immediately.
//
// The goroutine runs until ctx is cancelled, Stop is called, or the attempt
// cap is exhausted. Callers must not assume the client is connected when
// Start returns.
func (c *Client) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(loopCtx)

	return nil
}

// Stop ends the session and releases the transport.
//
// It performs:
//  1. Cancels the reconnect goroutine and waits for it to exit
//  2. Disconnects from the broker if connected
//  3. Fires the status callback with false if it was connected
//  4. Destroys the transport handle
//
// Stop is idempotent. The Client cannot be restarted afterwards.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.lifeMu.Lock()
		c.closed = true
		started := c.started
		cancel := c.cancel
		c.lifeMu.Unlock()

		if started {
			cancel()
			<-c.done
		} else {
			close(c.done)
		}

		c.connMu.Lock()
		wasConnected := c.connected
		if wasConnected {
			c.transport.Disconnect(defaultDisconnectQuiesce)
			c.connected = false
		}
		c.connMu.Unlock()

		c.setState(StateDisconnected)
		if wasConnected {
			c.logger.Info("mqtt disconnected", "reason", "stop")
			c.metrics.ConnectionUp(false)
			c.notifyStatus(false)
		}

		c.transport.Destroy()
	})
}

// Done returns a channel closed when the reconnect goroutine has exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns ErrTerminalFailure (wrapped) if the reconnect goroutine gave up,
// or nil if it is still running or was stopped normally.
func (c *Client) Err() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	return c.err
}

// State returns the current position in the connection state machine.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}

// HealthCheck reports ErrNotConnected while no session is established.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// ClientID returns the configured client identifier.
func (c *Client) ClientID() string {
	return c.cfg.ClientID
}

// SetLogger sets the logger used for connection and handler events.
func (c *Client) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetMetrics sets the instrumentation sink.
func (c *Client) SetMetrics(metrics Metrics) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	c.metrics = metrics
}
