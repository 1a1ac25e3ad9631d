package mqtt

import "time"

// Transport is the wire-level MQTT capability the Client drives.
//
// Implementations are not required to be safe for concurrent use: the Client
// serialises every call under its connection lock. Blocking calls are expected
// to honour their own timeouts.
type Transport interface {
	// Connect opens a session with the broker using opts.
	Connect(opts ConnectOptions) error

	// Publish sends payload to topic and waits for the outcome.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers interest in topic. Matching messages are delivered
	// through TransportEvents.OnMessageArrived.
	Subscribe(topic string, qos byte) error

	// Disconnect closes the session, waiting up to quiesce for in-flight work.
	Disconnect(quiesce time.Duration)

	// Destroy releases the handle. The Transport is unusable afterwards.
	Destroy()
}

// TransportEvents receives asynchronous notifications from a Transport.
// Methods may be called from goroutines owned by the Transport.
type TransportEvents interface {
	// OnConnectionLost is called when an established session drops.
	OnConnectionLost(cause error)

	// OnMessageArrived is called for every inbound message. The payload is
	// only valid for the duration of the call.
	OnMessageArrived(topic string, payload []byte)

	// OnDeliveryComplete is called once an outbound message is acknowledged.
	OnDeliveryComplete(messageID uint16)
}

// TransportFactory creates an unconnected Transport bound to a broker and client ID.
type TransportFactory func(brokerAddress, clientID string, events TransportEvents) (Transport, error)

// ConnectOptions carries per-connect session parameters.
type ConnectOptions struct {
	CleanSession bool
	KeepAlive    time.Duration

	// Username and Password are either both set or both empty.
	Username string
	Password string

	// Will is nil when no Last Will and Testament is configured.
	Will *Will
}

// Will is a Last Will and Testament registered with the broker at connect time.
// The broker publishes it, retained, if the session ends uncleanly.
type Will struct {
	Topic   string
	Payload []byte
	QoS     byte
}
