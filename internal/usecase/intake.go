package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/validator"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// Webhook outcome statuses.
const (
	WebhookSuccess = "success"
	WebhookError   = "error"
)

// WebhookResult is the response to a voice provider event.
type WebhookResult struct {
	Status     string       `json:"status"`
	Message    string       `json:"message"`
	Rejected   []FieldError `json:"rejected,omitempty"`
	HTTPStatus int          `json:"-"`
}

// UploadResult is a processed upload with the values extracted from it.
type UploadResult struct {
	Document *model.UploadedBusinessDocument `json:"document"`
	Values   BatchResult                     `json:"values"`
}

// ProcessVoiceWebhook applies the structured data of an end-of-call report
// to every business of the called customer. Other event types are
// acknowledged without effect. It never returns an error: failures are
// reported in the result.
func (s *Service) ProcessVoiceWebhook(ctx context.Context, payload model.VoiceWebhookPayload) (result WebhookResult) {
	log := logger.FromContext(ctx).With(zap.String("message_type", payload.Message.Type), zap.String("call_id", payload.Message.Call.ID))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Panic while processing voice webhook", zap.Any("panic", rec), zap.Stack("stack"))
			result = webhookFailure(fmt.Errorf("%v", rec))
		}
	}()

	if payload.Message.Type != model.EndOfCallReport {
		return WebhookResult{Status: WebhookSuccess, Message: "Event processed", HTTPStatus: http.StatusOK}
	}

	phone, err := utils.NormalizePhone(payload.Message.Call.Customer.Number)
	if err != nil {
		log.Warn("Call report with unusable customer number", zap.Error(err))
		return WebhookResult{Status: WebhookError, Message: "Customer not found", HTTPStatus: http.StatusNotFound}
	}
	customer, err := s.repo.FindCustomerByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Info("Call report for unknown customer")
			return WebhookResult{Status: WebhookError, Message: "Customer not found", HTTPStatus: http.StatusNotFound}
		}
		return webhookFailure(err)
	}

	data := payload.Message.Analysis.StructuredData
	if len(data) == 0 {
		return WebhookResult{Status: WebhookSuccess, Message: "No structured data found", HTTPStatus: http.StatusOK}
	}

	sourceID, err := s.recordCallReport(ctx, customer.ID, payload.Message.Call.ID, data)
	if err != nil {
		return webhookFailure(err)
	}

	businesses, err := s.repo.ListBusinessesByCustomer(ctx, customer.ID)
	if err != nil {
		return webhookFailure(err)
	}
	var updated, skipped int
	var rejected []FieldError
	for _, business := range businesses {
		batch, err := s.UpsertBatch(ctx, business.ID, data, model.SourcePhone, sourceID)
		if err != nil {
			return webhookFailure(err)
		}
		updated += len(batch.Updated)
		skipped += len(batch.Skipped)
		rejected = append(rejected, batch.Errors...)
	}
	log.Info("Call report applied",
		zap.Int64("customer_id", customer.ID),
		zap.Int("businesses", len(businesses)),
		zap.Int("updated", updated),
		zap.Int("skipped", skipped),
		zap.Int("rejected", len(rejected)),
	)
	return WebhookResult{
		Status:     WebhookSuccess,
		Message:    "Field values updated successfully",
		Rejected:   rejected,
		HTTPStatus: http.StatusOK,
	}
}

func webhookFailure(err error) WebhookResult {
	return WebhookResult{
		Status:     WebhookError,
		Message:    fmt.Sprintf("Error processing webhook: %v", err),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// recordCallReport stores the structured data on the call record and returns
// its id. Calls not placed by this service get a record on first report.
func (s *Service) recordCallReport(ctx context.Context, customerID int64, providerCallID string, data map[string]interface{}) (*int64, error) {
	if providerCallID == "" {
		return nil, nil
	}
	call, err := s.repo.FindCallRecordByProviderID(ctx, providerCallID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		call = &model.CallRecord{
			ProviderCallID: providerCallID,
			CustomerID:     customerID,
			Status:         "ended",
			StructuredData: utils.MustMarshalJSON(data),
		}
		if err := s.repo.CreateCallRecord(ctx, call); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		call.Status = "ended"
		call.StructuredData = utils.MustMarshalJSON(data)
		if err := s.repo.UpdateCallRecord(ctx, call); err != nil {
			return nil, err
		}
	}
	id := call.ID
	return &id, nil
}

// ProcessUploadedDocument stores a PDF for a business, extracts field values
// from it and writes them with source document. When storing or extraction
// fails, the upload is removed again.
func (s *Service) ProcessUploadedDocument(ctx context.Context, businessID int64, up Upload) (*UploadResult, error) {
	if _, _, err := s.businessForWrite(ctx, businessID); err != nil {
		return nil, err
	}
	if up.Body == nil || up.Name == "" {
		return nil, fmt.Errorf("%w: both file and name are required", apperrors.ErrBadRequest)
	}

	doc, err := s.storeUpload(ctx, businessID, up)
	if err != nil {
		return nil, err
	}

	values, err := s.extractUpload(ctx, doc)
	if err != nil {
		logger.FromContext(ctx).Warn("Uploaded document could not be processed",
			zap.Int64("uploaded_document_id", doc.ID), zap.Error(err))
		s.discardUpload(ctx, doc)
		if apperrors.IsBadRequestError(err) {
			return nil, fmt.Errorf("error processing file: %w", err)
		}
		return nil, fmt.Errorf("%w: error processing file: %w", apperrors.ErrBadRequest, err)
	}

	sourceID := doc.ID
	batch, err := s.upsertBatch(ctx, businessID, values, model.SourceDocument, &sourceID, true)
	if err != nil {
		s.discardUpload(ctx, doc)
		return nil, err
	}
	return &UploadResult{Document: doc, Values: batch}, nil
}

func (s *Service) extractUpload(ctx context.Context, doc *model.UploadedBusinessDocument) (map[string]interface{}, error) {
	data, err := s.files.Read(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, doc.FilePath, doc.ContentType, data)
}

// ProcessDocumentExtracted writes values an external extractor produced for
// an upload. Errors are classified for the queue consumer: bad payloads are
// fatal, storage failures retryable.
func (s *Service) ProcessDocumentExtracted(ctx context.Context, payload model.DocumentExtractedPayload) (*BatchResult, error) {
	if err := validator.Validate(payload); err != nil {
		return nil, apperrors.NewFatal(err, "invalid document-extracted payload")
	}

	doc, err := s.repo.FindUploadedDocumentByID(ctx, payload.UploadedDocumentID)
	if err != nil {
		return nil, classifyIntakeError(err, "uploaded document %d", payload.UploadedDocumentID)
	}
	if doc.BusinessID != payload.BusinessID {
		return nil, apperrors.NewFatal(apperrors.ErrNotFound, "uploaded document %d does not belong to business %d",
			payload.UploadedDocumentID, payload.BusinessID)
	}

	sourceID := doc.ID
	result, err := s.upsertBatch(ctx, doc.BusinessID, payload.Values, model.SourceDocument, &sourceID, true)
	if err != nil {
		return nil, classifyIntakeError(err, "values of uploaded document %d", payload.UploadedDocumentID)
	}
	return &result, nil
}

// ProcessCallReport is the queue entry point of ProcessVoiceWebhook.
func (s *Service) ProcessCallReport(ctx context.Context, payload model.CallReportPayload) error {
	if err := validator.Validate(payload); err != nil {
		return apperrors.NewFatal(err, "invalid call-report payload")
	}
	result := s.ProcessVoiceWebhook(ctx, payload.ToWebhook())
	if len(result.Rejected) > 0 {
		logger.FromContext(ctx).Warn("Call report values rejected",
			zap.String("call_id", payload.Message.Call.ID), zap.Any("rejected", result.Rejected))
	}
	switch {
	case result.HTTPStatus >= http.StatusInternalServerError:
		return apperrors.NewRetryable(errors.New(result.Message), "call report failed")
	case result.HTTPStatus >= http.StatusBadRequest:
		return apperrors.NewFatal(apperrors.ErrNotFound, "%s", result.Message)
	}
	return nil
}

func classifyIntakeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrBadRequest) {
		return apperrors.NewFatal(err, format, args...)
	}
	return apperrors.NewRetryable(err, format, args...)
}
