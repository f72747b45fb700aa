package streaming

import (
	"context"

	"phonetracer/internal/domain/models"
)

// EventBusPublisher implements services.EventPublisher using the EventBus
type EventBusPublisher struct {
	eventBus *EventBus
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus) *EventBusPublisher {
	return &EventBusPublisher{eventBus: eventBus}
}

// PublishTraced publishes an event for a completed trace
func (p *EventBusPublisher) PublishTraced(ctx context.Context, trace *models.TraceData) error {
	return p.publish(ctx, NewTracedEvent(trace))
}

// PublishReported publishes an event for a submitted report
func (p *EventBusPublisher) PublishReported(ctx context.Context, report *models.Report, total int) error {
	return p.publish(ctx, NewReportedEvent(report, total))
}

// PublishAnalyzed publishes an event for a completed risk analysis
func (p *EventBusPublisher) PublishAnalyzed(ctx context.Context, number string, result *models.AnalysisResult) error {
	return p.publish(ctx, NewAnalyzedEvent(number, result))
}

// publish sends to NATS and local subscribers, WebSocket clients included
func (p *EventBusPublisher) publish(ctx context.Context, event *PhoneEvent) error {
	if p.eventBus == nil {
		return nil
	}
	return p.eventBus.Publish(ctx, event)
}
