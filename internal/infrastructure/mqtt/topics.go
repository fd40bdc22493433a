package mqtt

import "fmt"

// Topic prefixes for the Voxhaus MQTT hierarchy.
//
// The request/response scheme carries backend calls: each request publishes
// to voxhaus/request/{kind}/{request_id} and the backend bridge answers on
// voxhaus/response/{kind}/{request_id}.
const (
	// TopicPrefix is the base for all Voxhaus topics.
	TopicPrefix = "voxhaus"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "voxhaus/system"
)

// Topics provides builders for Voxhaus MQTT topics. Using these helpers
// keeps topic naming consistent across the codebase.
type Topics struct{}

// Request returns the topic for an outgoing backend request.
//
// Example: voxhaus/request/invoke/req-abc123
func (Topics) Request(kind, requestID string) string {
	return fmt.Sprintf("%s/request/%s/%s", TopicPrefix, kind, requestID)
}

// Response returns the topic for the backend's answer to a request.
//
// Example: voxhaus/response/invoke/req-abc123
func (Topics) Response(kind, requestID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicPrefix, kind, requestID)
}

// AllResponses returns the wildcard pattern covering every response topic.
//
// Example: voxhaus/response/#
func (Topics) AllResponses() string {
	return TopicPrefix + "/response/#"
}

// SystemStatus returns the topic for this instance's online/offline status.
//
// Example: voxhaus/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Event returns the topic for a broadcast dispatch event.
//
// Example: voxhaus/event/dispatch.completed
func (Topics) Event(name string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, name)
}
