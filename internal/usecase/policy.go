package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// PolicyInput is the writable part of a policy. Dates are YYYY-MM-DD.
type PolicyInput struct {
	BusinessID     int64               `json:"business"`
	PolicyNumber   string              `json:"policy_number"`
	Carrier        string              `json:"carrier"`
	AnnualPremium  decimal.NullDecimal `json:"annual_premium"`
	EffectiveDate  *string             `json:"effective_date"`
	ExpirationDate *string             `json:"expiration_date"`
	PolicyType     model.PolicyType    `json:"policy_type"`
}

func optionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*s)
	if err != nil {
		return nil, apperrors.NewValidation(field, "date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	return &t, nil
}

func (in PolicyInput) apply(p model.Policy) (model.Policy, error) {
	effective, err := optionalDate("effective_date", in.EffectiveDate)
	if err != nil {
		return p, err
	}
	expiration, err := optionalDate("expiration_date", in.ExpirationDate)
	if err != nil {
		return p, err
	}
	p.PolicyNumber = in.PolicyNumber
	p.Carrier = in.Carrier
	p.AnnualPremium = in.AnnualPremium
	p.EffectiveDate = effective
	p.ExpirationDate = expiration
	p.PolicyType = in.PolicyType
	return model.ValidatePolicy(p)
}

// ListPolicies lists visible policies, optionally of one business.
func (s *Service) ListPolicies(ctx context.Context, businessID *int64) ([]model.Policy, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPolicies(ctx, access.PolicyScope(p), storage.PolicyFilter{BusinessID: businessID})
}

// GetPolicy returns a visible policy with its documents.
func (s *Service) GetPolicy(ctx context.Context, id int64) (*model.Policy, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindPolicy(ctx, access.PolicyScope(p), id)
}

// CreatePolicy creates a policy for a visible business.
func (s *Service) CreatePolicy(ctx context.Context, in PolicyInput) (*model.Policy, error) {
	if in.BusinessID == 0 {
		return nil, apperrors.NewValidation("business", "required", "This field is required.")
	}
	if _, _, err := s.businessForWrite(ctx, in.BusinessID); err != nil {
		return nil, err
	}
	policy, err := in.apply(model.Policy{BusinessID: in.BusinessID})
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreatePolicy(ctx, &policy); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Policy created",
		zap.Int64("policy_id", policy.ID),
		zap.Int64("business_id", policy.BusinessID),
		zap.String("policy_type", string(policy.PolicyType)),
	)
	return &policy, nil
}

// policyForWrite loads a visible policy and checks the principal may change it.
func (s *Service) policyForWrite(ctx context.Context, id int64) (*model.Policy, tenant.Principal, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, p, err
	}
	policy, err := s.repo.FindPolicy(ctx, access.PolicyScope(p), id)
	if err != nil {
		return nil, p, err
	}
	if _, _, err := s.businessForWrite(ctx, policy.BusinessID); err != nil {
		return nil, p, err
	}
	return policy, p, nil
}

// UpdatePolicy overwrites the terms of a policy. The business cannot change.
func (s *Service) UpdatePolicy(ctx context.Context, id int64, in PolicyInput) (*model.Policy, error) {
	existing, _, err := s.policyForWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := in.apply(*existing)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePolicy(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePolicy removes a policy and its document associations. Uploaded documents stay.
func (s *Service) DeletePolicy(ctx context.Context, id int64) error {
	if _, _, err := s.policyForWrite(ctx, id); err != nil {
		return err
	}
	return s.repo.DeletePolicy(ctx, id)
}

// AddPolicyDocument associates an upload of the policy's business with the
// policy. Associating twice is a no-op.
func (s *Service) AddPolicyDocument(ctx context.Context, policyID, uploadID int64) error {
	if uploadID == 0 {
		return fmt.Errorf("%w: document_id is required", apperrors.ErrBadRequest)
	}
	policy, p, err := s.policyForWrite(ctx, policyID)
	if err != nil {
		return err
	}
	if _, err := s.uploadOfBusiness(ctx, p, policy.BusinessID, uploadID); err != nil {
		return err
	}
	return s.repo.AttachPolicyDocument(ctx, policyID, uploadID)
}

// UploadPolicyDocument stores a file for the policy's business and associates it with the policy.
func (s *Service) UploadPolicyDocument(ctx context.Context, policyID int64, up Upload) (*model.UploadedBusinessDocument, error) {
	policy, _, err := s.policyForWrite(ctx, policyID)
	if err != nil {
		return nil, err
	}
	doc, err := s.storeUpload(ctx, policy.BusinessID, up)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AttachPolicyDocument(ctx, policyID, doc.ID); err != nil {
		s.discardUpload(ctx, doc)
		return nil, err
	}
	return doc, nil
}

// RemovePolicyDocument disassociates a document from a policy without deleting it.
func (s *Service) RemovePolicyDocument(ctx context.Context, policyID, uploadID int64) error {
	if uploadID == 0 {
		return fmt.Errorf("%w: document_id is required", apperrors.ErrBadRequest)
	}
	if _, _, err := s.policyForWrite(ctx, policyID); err != nil {
		return err
	}
	removed, err := s.repo.DetachPolicyDocument(ctx, policyID, uploadID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: document %d is not attached to policy %d", apperrors.ErrNotFound, uploadID, policyID)
	}
	return nil
}
