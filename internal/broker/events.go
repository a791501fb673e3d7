package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"member-lookup/internal/models"
	"member-lookup/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishMemberSearched publishes a MemberSearched event. Lookups of the same
// member share a key so they land on one partition in order.
func (ep *EventPublisher) PublishMemberSearched(ctx context.Context, event *models.MemberSearchedEvent) error {
	key := "member-" + event.CustomerRef
	if event.CustomerRef == "" {
		key = "search-" + event.EventID
	}
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onMemberSearched func(context.Context, *models.MemberSearchedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnMemberSearched registers a handler for MemberSearched events
func (eh *EventHandler) OnMemberSearched(handler func(context.Context, *models.MemberSearchedEvent) error) {
	eh.onMemberSearched = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	logger := util.GetLogger()
	logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeMemberSearched:
		if eh.onMemberSearched != nil {
			var event models.MemberSearchedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal MemberSearched event: %w", err)
			}
			return eh.onMemberSearched(ctx, &event)
		}

	default:
		logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
