package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/voice"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// CallDetails describes a placed call.
type CallDetails struct {
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	BusinessName  string        `json:"business_name"`
	CallID        string        `json:"call_id"`
	CallStatus    string        `json:"call_status"`
	MissingFields []model.Field `json:"missing_fields"`
}

// CallResult is the outcome of CallCustomer.
type CallResult struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Details *CallDetails `json:"details,omitempty"`
}

// CallCustomer phones the customer behind an assignment to collect the
// required fields that have no value yet.
func (s *Service) CallCustomer(ctx context.Context, businessDocumentID int64) (*CallResult, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	bd, err := s.repo.FindBusinessDocument(ctx, access.BusinessDocumentScope(p), businessDocumentID)
	if err != nil {
		return nil, err
	}
	if bd.Business == nil || bd.Business.Customer == nil {
		return nil, fmt.Errorf("%w: assignment %d has no customer", apperrors.ErrNotFound, businessDocumentID)
	}
	if s.caller == nil {
		return nil, fmt.Errorf("%w: voice provider is not configured", apperrors.ErrExternalService)
	}

	business := bd.Business
	customer := business.Customer
	customerName := utils.FullName(customer.FirstName, customer.LastName)
	log := logger.FromContext(ctx).With(
		zap.Int64("business_document_id", bd.ID),
		zap.Int64("customer_id", customer.ID),
	)

	phone, err := utils.NormalizePhone(customer.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid phone number: %w", apperrors.ErrValidation, err)
	}

	missing, err := s.MissingRequired(ctx, bd.DocumentID, bd.BusinessID)
	if err != nil {
		return nil, err
	}

	resp, err := s.caller.InitiateCall(ctx, voice.CallRequest{
		CustomerName:  customerName,
		CustomerPhone: phone,
		BusinessName:  business.Name,
		MissingFields: voice.MissingFieldsText(missing),
		Schema:        voice.BuildSchema(missing),
	})
	if err != nil {
		log.Warn("Failed to initiate call", zap.Error(err))
		if errors.Is(err, apperrors.ErrExternalService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to initiate call: %w", apperrors.ErrExternalService, err)
	}

	bdID := bd.ID
	record := &model.CallRecord{
		ProviderCallID:     resp.CallID,
		CustomerID:         customer.ID,
		BusinessDocumentID: &bdID,
		Status:             resp.Status,
	}
	if err := s.repo.CreateCallRecord(ctx, record); err != nil {
		// the call is already queued with the provider
		log.Error("Failed to record placed call", zap.String("call_id", resp.CallID), zap.Error(err))
	}

	log.Info("Call initiated", zap.String("call_id", resp.CallID), zap.Int("missing_fields", len(missing)))
	return &CallResult{
		Status:  WebhookSuccess,
		Message: fmt.Sprintf("Initiated call to %s for %s", customerName, business.Name),
		Details: &CallDetails{
			CustomerName:  customerName,
			CustomerPhone: phone,
			BusinessName:  business.Name,
			CallID:        resp.CallID,
			CallStatus:    resp.Status,
			MissingFields: missing,
		},
	}, nil
}
