package mongodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/events"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/kafka"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/outbox"
)

// toOutboxEvents converts an aggregate's pending domain events into outbox
// entries, each routed to its Kafka topic by event type. Entries are written
// in the same transaction as the aggregate so publication is never lost.
func toOutboxEvents(
	ctx context.Context,
	factory *events.EventFactory,
	tenantID, aggregateID, aggregateType string,
	domainEvents []domain.DomainEvent,
) ([]*outbox.OutboxEvent, error) {
	if len(domainEvents) == 0 {
		return nil, nil
	}

	correlationID := ""
	if v := ctx.Value(logging.CorrelationIDKey); v != nil {
		if id, ok := v.(string); ok {
			correlationID = id
		}
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(domainEvents))
	for _, event := range domainEvents {
		subject := strings.ToLower(aggregateType) + "/" + event.AggregateID()
		cloudEvent := factory.CreateTenantEvent(ctx, event.EventType(), subject, event, tenantID, correlationID)

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			aggregateID,
			aggregateType,
			kafka.TopicForEventType(event.EventType()),
			cloudEvent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}

		outboxEvents = append(outboxEvents, outboxEvent)
	}

	return outboxEvents, nil
}
