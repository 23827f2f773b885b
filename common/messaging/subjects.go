// Package messaging defines standard subject names for the relay message bus.
package messaging

// Subject constants for the relay message bus.
// Follow the pattern: {domain}.{resource}[.{qualifier}]
const (
	// SubjectEventsDomain is the root subject for raw domain events produced
	// by the event-sourcing write side. Producers append the event type,
	// e.g. events.domain.UserProfileWasChanged.
	SubjectEventsDomain = "events.domain"

	// SubjectEventsDomainAll matches every domain event subject.
	SubjectEventsDomainAll = "events.domain.>"

	// SubjectWebsocketDelivery carries filtered envelopes for the websocket
	// delivery tier. Each message holds the recipient set and the projected
	// payload for one admitted domain event.
	SubjectWebsocketDelivery = "websocket.delivery"
)

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueRelayWorkers = "relay-workers" // Pool of fan-out relay workers
)

// DomainEventSubject returns the subject for a specific event type.
// Example: events.domain.VideoWasCreated
func DomainEventSubject(eventType string) string {
	return SubjectEventsDomain + "." + eventType
}
