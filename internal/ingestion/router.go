package ingestion

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// EventHandler defines a function that processes events
type EventHandler func(ctx context.Context, eventType model.EventType, metadata *model.MessageMetadata, rawEvent []byte) error

// Router routes events to the appropriate handler based on event type
type Router struct {
	handlers       map[model.EventType]EventHandler
	defaultHandler EventHandler
}

// NewRouter creates a new event router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[model.EventType]EventHandler),
	}
}

// Register registers a handler for an exact event type, version included.
func (r *Router) Register(eventType model.EventType, handler EventHandler) {
	r.handlers[eventType] = handler
}

// RegisterDefault registers a default handler for unknown event types
func (r *Router) RegisterDefault(handler EventHandler) {
	r.defaultHandler = handler
}

// Route routes an event to the appropriate handler
func (r *Router) Route(ctx context.Context, metadata *model.MessageMetadata, rawEvent []byte) error {
	log := logger.FromContext(ctx).With(
		zap.String("event_type", metadata.MessageSubject),
		zap.String("event_id", metadata.MessageID),
	)
	ctx = logger.WithLogger(ctx, log)

	eventType, found := model.MapToBaseEventType(metadata.MessageSubject)
	if !found {
		log.Warn("Could not map subject to a known event type", zap.String("subject", metadata.MessageSubject))
	}

	log.Info("Event received",
		zap.String("payload_size", utils.ByteCountSI(int64(len(rawEvent)))),
		zap.String("version", eventType.GetVersion()),
		zap.String("base_type", string(eventType.GetBaseType())),
	)

	handler, ok := r.handlers[eventType]
	switch {
	case ok:
		return handler(ctx, eventType, metadata, rawEvent)
	case r.defaultHandler != nil:
		log.Warn("No specific handler for event type, using default")
		return r.defaultHandler(ctx, eventType, metadata, rawEvent)
	default:
		log.Error("No handler registered for event type")
		return nil
	}
}
