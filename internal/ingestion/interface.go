package ingestion

import (
	"context"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

// RouterInterface defines the interface for an event router
type RouterInterface interface {
	// Register registers a handler for an event type
	Register(eventType model.EventType, handler EventHandler)

	// RegisterDefault registers a default handler for unknown event types
	RegisterDefault(handler EventHandler)

	// Route routes an event to the appropriate handler
	Route(ctx context.Context, metadata *model.MessageMetadata, rawEvent []byte) error
}

// ConsumerInterface defines the basic methods for a NATS consumer
type ConsumerInterface interface {
	// Setup ensures the stream and durable consumer exist
	Setup() error

	// Start subscribes and begins delivering messages to the router
	Start() error

	// Stop drains the subscription
	Stop()
}

// IntakeService is the business layer the intake events are applied to.
type IntakeService interface {
	ProcessCallReport(ctx context.Context, payload model.CallReportPayload) error
	ProcessDocumentExtracted(ctx context.Context, payload model.DocumentExtractedPayload) (*usecase.BatchResult, error)
}

var _ RouterInterface = (*Router)(nil)

var _ ConsumerInterface = (*IntakeConsumer)(nil)
