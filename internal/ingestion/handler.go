package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// IntakeHandler decodes intake events and applies them through the service.
type IntakeHandler struct {
	service IntakeService
}

// NewIntakeHandler creates a new intake event handler
func NewIntakeHandler(service IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// Register wires the handler into router for every intake event type.
func (h *IntakeHandler) Register(router RouterInterface) {
	router.Register(model.V1CallReport, h.HandleEvent)
	router.Register(model.V1DocumentExtracted, h.HandleEvent)
	router.RegisterDefault(h.HandleEvent)
}

// HandleEvent processes a single intake event.
func (h *IntakeHandler) HandleEvent(ctx context.Context, eventType model.EventType, metadata *model.MessageMetadata, rawEvent []byte) error {
	ctx = tenant.WithRequestID(ctx, uuid.NewString())
	log := logger.FromContext(ctx)
	log.Info("Processing intake event", zap.String("type", string(eventType)))

	switch eventType {
	case model.V1CallReport:
		return h.handleCallReport(ctx, rawEvent)
	case model.V1DocumentExtracted:
		return h.handleDocumentExtracted(ctx, rawEvent)
	default:
		log.Error("Unsupported intake event type", zap.String("subject", metadata.MessageSubject))
		return apperrors.NewFatal(fmt.Errorf("unsupported intake event type: %q", metadata.MessageSubject), "unsupported intake event")
	}
}

func (h *IntakeHandler) handleCallReport(ctx context.Context, rawEvent []byte) error {
	var payload model.CallReportPayload
	if err := json.Unmarshal(rawEvent, &payload); err != nil {
		logger.FromContext(ctx).Error("Failed to unmarshal call report payload", zap.Error(err))
		return apperrors.NewFatal(err, "failed to unmarshal call report payload")
	}
	return h.service.ProcessCallReport(ctx, payload)
}

func (h *IntakeHandler) handleDocumentExtracted(ctx context.Context, rawEvent []byte) error {
	log := logger.FromContext(ctx)

	var payload model.DocumentExtractedPayload
	if err := json.Unmarshal(rawEvent, &payload); err != nil {
		log.Error("Failed to unmarshal document extracted payload", zap.Error(err))
		return apperrors.NewFatal(err, "failed to unmarshal document extracted payload")
	}

	result, err := h.service.ProcessDocumentExtracted(ctx, payload)
	if err != nil {
		return err
	}
	log.Info("Applied extracted values",
		zap.Int64("business_id", payload.BusinessID),
		zap.Int("updated", len(result.Updated)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", len(result.Errors)),
	)
	return nil
}
