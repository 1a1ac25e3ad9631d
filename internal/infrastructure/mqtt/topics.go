package mqtt

import "fmt"

// Topic prefixes shared with the broker ACL and downstream subscribers.
const (
	// TopicPrefixSentinel is the base for everything the agent publishes.
	TopicPrefixSentinel = "sentinel"

	// TopicPrefixApp is the base for topics the backend application publishes.
	TopicPrefixApp = "app"
)

// Topics provides builders for Sentinel MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	statusTopic := topics.Status("dev1")
//	// Returns: "sentinel/dev1/status"
type Topics struct{}

// Online returns the retained presence topic. It doubles as the LWT topic.
//
// Example: sentinel/dev1/online
func (Topics) Online(clientID string) string {
	return fmt.Sprintf("%s/%s/online", TopicPrefixSentinel, clientID)
}

// Status returns the device status telemetry topic.
//
// Example: sentinel/dev1/status
func (Topics) Status(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixSentinel, clientID)
}

// Light returns the light sensor telemetry topic.
//
// Example: sentinel/dev1/light
func (Topics) Light(clientID string) string {
	return fmt.Sprintf("%s/%s/light", TopicPrefixSentinel, clientID)
}

// Control returns the per-client command topic the agent subscribes to.
//
// Example: app/dev1/control
func (Topics) Control(clientID string) string {
	return fmt.Sprintf("%s/%s/control", TopicPrefixApp, clientID)
}

// AllTelemetry returns a wildcard matching everything one agent publishes.
//
// Example: sentinel/dev1/#
func (Topics) AllTelemetry(clientID string) string {
	return fmt.Sprintf("%s/%s/#", TopicPrefixSentinel, clientID)
}
