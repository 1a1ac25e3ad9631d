package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// pahoTransport implements Transport over paho.mqtt.golang.
//
// paho fixes will and credentials when the client is built, so a fresh paho
// client is created for every Connect. paho's own auto-reconnect is disabled;
// the Client's reconnect loop owns retry policy.
type pahoTransport struct {
	brokerAddress string
	clientID      string
	events        TransportEvents

	// connectWait bounds how long Connect waits for the CONNACK.
	connectWait time.Duration

	client pahomqtt.Client
}

// NewPahoTransport is the default TransportFactory.
func NewPahoTransport(brokerAddress, clientID string, events TransportEvents) (Transport, error) {
	if events == nil {
		return nil, fmt.Errorf("%w: transport events are required", ErrInvalidConfig)
	}
	return &pahoTransport{
		brokerAddress: brokerAddress,
		clientID:      clientID,
		events:        events,
		connectWait:   defaultConnectTimeout,
	}, nil
}

// buildClientOptions creates paho MQTT options for one connect attempt.
//
// This configures:
//   - Broker URL and client ID
//   - Authentication credentials (if provided)
//   - Last Will and Testament (if provided), always retained
//   - Clean session and keep-alive
//   - Inbound routing to TransportEvents
func (t *pahoTransport) buildClientOptions(opts ConnectOptions) *pahomqtt.ClientOptions {
	po := pahomqtt.NewClientOptions()

	po.AddBroker(t.brokerAddress)
	po.SetClientID(t.clientID)

	if opts.Username != "" {
		po.SetUsername(opts.Username)
		po.SetPassword(opts.Password)
	}

	if opts.Will != nil {
		po.SetBinaryWill(opts.Will.Topic, opts.Will.Payload, opts.Will.QoS, true)
	}

	po.SetCleanSession(opts.CleanSession)
	po.SetKeepAlive(opts.KeepAlive)
	po.SetConnectTimeout(defaultConnectTimeout)
	po.SetWriteTimeout(defaultPublishTimeout)

	// Reconnects are driven by Client.run.
	po.SetAutoReconnect(false)
	po.SetConnectRetry(false)

	// Handlers may publish; paho deadlocks if they block the router with OrderMatters.
	po.SetOrderMatters(false)

	po.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		t.events.OnConnectionLost(err)
	})
	po.SetDefaultPublishHandler(func(_ pahomqtt.Client, msg pahomqtt.Message) {
		t.events.OnMessageArrived(msg.Topic(), msg.Payload())
	})

	return po
}

func (t *pahoTransport) Connect(opts ConnectOptions) error {
	if t.client != nil && t.client.IsConnectionOpen() {
		t.client.Disconnect(0)
	}

	client := pahomqtt.NewClient(t.buildClientOptions(opts))
	token := client.Connect()
	if !token.WaitTimeout(t.connectWait) {
		// Abort the attempt so a late CONNACK cannot leave a session behind.
		client.Disconnect(0)
		return fmt.Errorf("connect timeout after %v", t.connectWait)
	}
	if err := token.Error(); err != nil {
		return err
	}

	t.client = client
	return nil
}

func (t *pahoTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if t.client == nil {
		return ErrNotConnected
	}

	token := t.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("timeout after %v", defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return err
	}

	if pt, ok := token.(*pahomqtt.PublishToken); ok && qos > 0 {
		t.events.OnDeliveryComplete(pt.MessageID())
	}
	return nil
}

func (t *pahoTransport) Subscribe(topic string, qos byte) error {
	if t.client == nil {
		return ErrNotConnected
	}

	// A nil handler routes matches to the default publish handler.
	token := t.client.Subscribe(topic, qos, nil)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("timeout after %v", defaultPublishTimeout)
	}
	return token.Error()
}

func (t *pahoTransport) Disconnect(quiesce time.Duration) {
	if t.client == nil {
		return
	}
	t.client.Disconnect(uint(quiesce.Milliseconds()))
}

func (t *pahoTransport) Destroy() {
	t.client = nil
}
