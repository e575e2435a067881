package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// BusinessInput is the writable part of a business.
type BusinessInput struct {
	CustomerID  int64  `json:"customer_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// ListBusinesses lists visible businesses, newest first, optionally narrowed
// to one agency or one customer.
func (s *Service) ListBusinesses(ctx context.Context, agencyID, customerID *int64) ([]model.Business, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBusinesses(ctx, access.BusinessScope(p, agencyID), customerID)
}

// GetBusiness returns a visible business.
func (s *Service) GetBusiness(ctx context.Context, id int64) (*model.Business, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), id)
}

// CreateBusiness creates a business for a customer visible to the principal.
func (s *Service) CreateBusiness(ctx context.Context, in BusinessInput) (*model.Business, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}
	if in.CustomerID == 0 {
		return nil, apperrors.NewValidation("customer_id", "required", "This field is required.")
	}
	customer, err := s.repo.FindCustomer(ctx, access.CustomerLookupScope(p), in.CustomerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMembership(ctx, p, customer.AgencyID); err != nil {
		return nil, err
	}

	business, err := model.ValidateBusiness(model.Business{
		CustomerID:  customer.ID,
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateBusiness(ctx, &business); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Business created",
		zap.Int64("business_id", business.ID),
		zap.Int64("customer_id", business.CustomerID),
	)
	return &business, nil
}

// businessForWrite loads a visible business and checks the principal may change it.
func (s *Service) businessForWrite(ctx context.Context, id int64) (*model.Business, tenant.Principal, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, p, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, p, err
	}
	business, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), id)
	if err != nil {
		return nil, p, err
	}
	if business.Customer != nil {
		if _, err := s.authz.RequireMembership(ctx, p, business.Customer.AgencyID); err != nil {
			return nil, p, err
		}
	}
	return business, p, nil
}

// UpdateBusiness overwrites the descriptive fields of a business.
func (s *Service) UpdateBusiness(ctx context.Context, id int64, in BusinessInput) (*model.Business, error) {
	existing, _, err := s.businessForWrite(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = in.Name
	updated.Description = in.Description
	updated.Address = in.Address
	updated.PhoneNumber = in.PhoneNumber
	updated.Email = in.Email
	updated, err = model.ValidateBusiness(updated)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBusiness(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBusiness removes a business with its policies, values, uploads and assignments.
func (s *Service) DeleteBusiness(ctx context.Context, id int64) error {
	if _, _, err := s.businessForWrite(ctx, id); err != nil {
		return err
	}
	paths, err := s.repo.DeleteBusiness(ctx, id)
	if err != nil {
		return err
	}
	s.deleteFiles(ctx, paths)
	logger.FromContext(ctx).Info("Business deleted", zap.Int64("business_id", id), zap.Int("files", len(paths)))
	return nil
}

// ListBusinessDocuments lists the templates assigned to a business.
func (s *Service) ListBusinessDocuments(ctx context.Context, businessID int64) ([]model.BusinessDocument, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), businessID); err != nil {
		return nil, err
	}
	return s.repo.ListBusinessDocuments(ctx, access.BusinessDocumentScope(p), storage.BusinessDocumentFilter{BusinessID: &businessID})
}

// AssignDocument assigns a visible template to a business, reusing an existing
// assignment. It reports whether a new one was created.
func (s *Service) AssignDocument(ctx context.Context, businessID, documentID int64) (*model.BusinessDocument, bool, error) {
	if documentID == 0 {
		return nil, false, fmt.Errorf("%w: document_id is required", apperrors.ErrBadRequest)
	}
	_, p, err := s.businessForWrite(ctx, businessID)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.repo.FindDocument(ctx, access.DocumentScope(p), documentID); err != nil {
		return nil, false, err
	}

	existing := func() (*model.BusinessDocument, error) {
		found, err := s.repo.ListBusinessDocuments(ctx, access.BusinessDocumentScope(p), storage.BusinessDocumentFilter{
			BusinessID: &businessID,
			DocumentID: &documentID,
		})
		if err != nil || len(found) == 0 {
			return nil, err
		}
		return &found[0], nil
	}

	if bd, err := existing(); err != nil || bd != nil {
		return bd, false, err
	}

	bd, err := model.ValidateBusinessDocument(model.BusinessDocument{BusinessID: businessID, DocumentID: documentID})
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateBusinessDocument(ctx, &bd); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			found, findErr := existing()
			if findErr == nil && found != nil {
				return found, false, nil
			}
		}
		return nil, false, err
	}
	return &bd, true, nil
}

// ListUploadedDocuments lists the uploads of a business, newest first.
func (s *Service) ListUploadedDocuments(ctx context.Context, businessID int64) ([]model.UploadedBusinessDocument, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), businessID); err != nil {
		return nil, err
	}
	return s.repo.ListUploadedDocuments(ctx, access.UploadedDocumentScope(p), &businessID)
}

// uploadOfBusiness loads a visible upload and checks it belongs to businessID.
func (s *Service) uploadOfBusiness(ctx context.Context, p tenant.Principal, businessID, uploadID int64) (*model.UploadedBusinessDocument, error) {
	doc, err := s.repo.FindUploadedDocument(ctx, access.UploadedDocumentScope(p), uploadID)
	if err != nil {
		return nil, err
	}
	if doc.BusinessID != businessID {
		return nil, fmt.Errorf("%w: uploaded document %d of business %d", apperrors.ErrNotFound, uploadID, businessID)
	}
	return doc, nil
}

// DeleteUploadedDocument removes an upload and its stored file. Values
// extracted from it are kept.
func (s *Service) DeleteUploadedDocument(ctx context.Context, businessID, uploadID int64) error {
	_, p, err := s.businessForWrite(ctx, businessID)
	if err != nil {
		return err
	}
	if _, err := s.uploadOfBusiness(ctx, p, businessID, uploadID); err != nil {
		return err
	}
	path, err := s.repo.DeleteUploadedDocument(ctx, uploadID)
	if err != nil {
		return err
	}
	s.deleteFiles(ctx, []string{path})
	return nil
}

// ListUploadedDocumentFieldValues lists the values extracted from one upload.
func (s *Service) ListUploadedDocumentFieldValues(ctx context.Context, businessID, uploadID int64) ([]model.FieldValue, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.uploadOfBusiness(ctx, p, businessID, uploadID); err != nil {
		return nil, err
	}
	return s.repo.ListFieldValues(ctx, access.FieldValueScope(p), storage.FieldValueFilter{
		BusinessID: &businessID,
		Source:     model.SourceDocument,
		SourceID:   &uploadID,
	})
}

// extractedValue loads a value that was extracted from the given upload.
func (s *Service) extractedValue(ctx context.Context, businessID, uploadID, valueID int64) (*model.FieldValue, error) {
	_, p, err := s.businessForWrite(ctx, businessID)
	if err != nil {
		return nil, err
	}
	fv, err := s.repo.FindFieldValue(ctx, access.FieldValueScope(p), valueID)
	if err != nil {
		return nil, err
	}
	if fv.BusinessID != businessID || fv.Source != model.SourceDocument || fv.SourceID == nil || *fv.SourceID != uploadID {
		return nil, fmt.Errorf("%w: field value %d of uploaded document %d", apperrors.ErrNotFound, valueID, uploadID)
	}
	return fv, nil
}

// UpdateUploadedDocumentFieldValue corrects a value extracted from an upload.
// A nil value leaves it unchanged. The source stays document.
func (s *Service) UpdateUploadedDocumentFieldValue(ctx context.Context, businessID, uploadID, valueID int64, value *string) (*model.FieldValue, error) {
	fv, err := s.extractedValue(ctx, businessID, uploadID, valueID)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return fv, nil
	}
	stored := *value
	if fv.Field != nil {
		if stored, err = model.ValidateFieldValue(*fv.Field, *value); err != nil {
			return nil, err
		}
	}
	fv.Value = stored
	if err := s.repo.UpdateFieldValue(ctx, fv); err != nil {
		return nil, err
	}
	return fv, nil
}

// DeleteUploadedDocumentFieldValue removes a value extracted from an upload.
func (s *Service) DeleteUploadedDocumentFieldValue(ctx context.Context, businessID, uploadID, valueID int64) error {
	if _, err := s.extractedValue(ctx, businessID, uploadID, valueID); err != nil {
		return err
	}
	return s.repo.DeleteFieldValue(ctx, valueID)
}
