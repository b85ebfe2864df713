package api

import (
	"encoding/json"

	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/infrastructure/mqtt"
	"github.com/nvoloshin/userhub/internal/user"
)

// EventPublisher announces directory changes over MQTT. Delivery is
// best-effort, at most once: a broker outage is logged and otherwise
// invisible to API clients.
type EventPublisher struct {
	client *mqtt.Client
	topics mqtt.Topics
	qos    byte
	logger *logging.Logger
}

// NewEventPublisher creates an event publisher. A nil client yields a
// publisher that silently drops events, so callers never need to guard.
func NewEventPublisher(client *mqtt.Client, qos byte, logger *logging.Logger) *EventPublisher {
	return &EventPublisher{
		client: client,
		qos:    qos,
		logger: logger.With("component", "events"),
	}
}

// UserRegistered announces a newly created account. The payload is the
// user object as served by the API (password hash excluded).
func (p *EventPublisher) UserRegistered(u *user.User) {
	if p.client == nil {
		return
	}

	payload, err := json.Marshal(u)
	if err != nil {
		p.logger.Warn("marshalling user registered event failed", "user_id", u.ID, "error", err)
		return
	}

	// Publish off the request path; the HTTP response never waits on the
	// broker.
	go func() {
		if err := p.client.Publish(p.topics.UserRegistered(), payload, p.qos, false); err != nil {
			p.logger.Warn("publishing user registered event failed", "user_id", u.ID, "error", err)
		}
	}()
}
