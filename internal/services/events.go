package services

import (
	"time"

	"fitzty/pkg/logger"
	"fitzty/pkg/rabbitmq"
)

// EventPublisher emits domain events. It is satisfied by *rabbitmq.Client; a nil
// publisher disables events.
type EventPublisher interface {
	PublishEvent(routingKey string, v any) error
}

// ActivityEvent is emitted after XP was awarded.
type ActivityEvent struct {
	UserID     string    `json:"userId"`
	Action     string    `json:"action"`
	XPAwarded  int       `json:"xpAwarded"`
	XP         int       `json:"xp"`
	Level      int       `json:"level"`
	Streak     int       `json:"streak"`
	Unlocked   []string  `json:"unlocked,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// InteractionEvent is emitted after a like or save toggle.
type InteractionEvent struct {
	UserID     string    `json:"userId"`
	PostID     string    `json:"postId"`
	Kind       string    `json:"kind"`
	Active     bool      `json:"active"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RecommendationsEvent is emitted after a generation cycle.
type RecommendationsEvent struct {
	UserID     string    `json:"userId"`
	Count      int       `json:"count"`
	StyleDNA   string    `json:"styleDNA"`
	Fallback   bool      `json:"fallback"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publish never fails the caller; events are best effort.
func publish(pub EventPublisher, log *logger.Logger, routingKey string, v any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(routingKey, v); err != nil {
		log.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

var (
	_ EventPublisher = (*rabbitmq.Client)(nil)
)
