package broker

import (
	"context"

	"pos-agent/internal/models"
)

// Publisher is the set of POS events the agent emits.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishReceiptFailed(ctx context.Context, event *models.ReceiptFailedEvent) error
	PublishSessionExpired(ctx context.Context, event *models.SessionExpiredEvent) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.TransactionReference), event)
}

// PublishReceiptFailed publishes ReceiptFailed event
func (ep *EventPublisher) PublishReceiptFailed(ctx context.Context, event *models.ReceiptFailedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.TransactionReference), event)
}

// PublishSessionExpired publishes SessionExpired event
func (ep *EventPublisher) PublishSessionExpired(ctx context.Context, event *models.SessionExpiredEvent) error {
	return ep.producer.PublishEvent(ctx, "session", event)
}

func orderKey(reference string) string {
	return "order-" + reference
}

// NopPublisher drops every event; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error {
	return nil
}

func (NopPublisher) PublishReceiptFailed(context.Context, *models.ReceiptFailedEvent) error {
	return nil
}

func (NopPublisher) PublishSessionExpired(context.Context, *models.SessionExpiredEvent) error {
	return nil
}
