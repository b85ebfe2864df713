package mqtt

import "fmt"

// Topic prefixes for UserHub.
//
// Event topics use the scheme: userhub/events/{event_type}
const (
	// TopicPrefixEvents is the base for all domain event topics.
	TopicPrefixEvents = "userhub/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "userhub/system"
)

// Topics provides builders for UserHub MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Event("user-registered")
//	// Returns: "userhub/events/user-registered"
type Topics struct{}

// Event returns the topic for a domain event type.
//
// Example: userhub/events/user-registered
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, eventType)
}

// UserRegistered returns the topic for user registration events.
//
// Example: userhub/events/user-registered
func (Topics) UserRegistered() string {
	return fmt.Sprintf("%s/user-registered", TopicPrefixEvents)
}

// SystemStatus returns the system status topic.
//
// Example: userhub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllEvents returns a pattern matching all domain events.
//
// Pattern: userhub/events/+
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+", TopicPrefixEvents)
}

// AllTopics returns a pattern matching all UserHub topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: userhub/#
func (Topics) AllTopics() string {
	return "userhub/#"
}
