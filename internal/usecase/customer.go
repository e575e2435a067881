package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/filestore"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// CustomerInput is the writable part of a customer.
type CustomerInput struct {
	AgencyID    *int64 `json:"agency_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// requireListedAgency checks that the principal belongs to an explicitly named agency.
func (s *Service) requireListedAgency(ctx context.Context, p tenant.Principal, agencyID int64) error {
	memberships, err := s.repo.ListMemberships(ctx, p.UserID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.AgencyID == agencyID {
			return nil
		}
	}
	return fmt.Errorf("%w: list or create customers for agency %d", apperrors.ErrForbiddenCrossTenant, agencyID)
}

// ListCustomers lists the customers of one agency of the principal.
func (s *Service) ListCustomers(ctx context.Context, agencyID *int64) ([]model.Customer, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := access.CustomerScope(p, agencyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireListedAgency(ctx, p, *agencyID); err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx, scope)
}

// CreateCustomer creates a customer in an agency of the principal.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}
	if in.AgencyID == nil {
		return nil, fmt.Errorf("%w: agency_id is required", apperrors.ErrMissingScopeParameter)
	}
	if err := s.requireListedAgency(ctx, p, *in.AgencyID); err != nil {
		return nil, err
	}

	createdBy := p.UserID
	customer, err := model.ValidateCustomer(model.Customer{
		AgencyID:    *in.AgencyID,
		CreatedByID: &createdBy,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCustomer(ctx, &customer); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Customer created",
		zap.Int64("customer_id", customer.ID),
		zap.Int64("agency_id", customer.AgencyID),
	)
	return &customer, nil
}

// GetCustomer returns a customer of any agency of the principal.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindCustomer(ctx, access.CustomerLookupScope(p), id)
}

// customerForWrite loads a visible customer and checks the principal may change it.
func (s *Service) customerForWrite(ctx context.Context, id int64) (*model.Customer, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAnyMembership(ctx, p); err != nil {
		return nil, err
	}
	customer, err := s.repo.FindCustomer(ctx, access.CustomerLookupScope(p), id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMembership(ctx, p, customer.AgencyID); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer overwrites names, email and phone of a customer. The agency cannot change.
func (s *Service) UpdateCustomer(ctx context.Context, id int64, in CustomerInput) (*model.Customer, error) {
	existing, err := s.customerForWrite(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Email = in.Email
	updated.PhoneNumber = in.PhoneNumber
	updated, err = model.ValidateCustomer(updated)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCustomer(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCustomer removes a customer with everything it owns, stored files included.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if _, err := s.customerForWrite(ctx, id); err != nil {
		return err
	}
	paths, err := s.repo.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	s.deleteFiles(ctx, paths)
	logger.FromContext(ctx).Info("Customer deleted", zap.Int64("customer_id", id), zap.Int("files", len(paths)))
	return nil
}

// ListCustomerBusinesses lists the businesses of a visible customer.
func (s *Service) ListCustomerBusinesses(ctx context.Context, customerID int64) ([]model.Business, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCustomer(ctx, access.CustomerLookupScope(p), customerID); err != nil {
		return nil, err
	}
	return s.repo.ListBusinesses(ctx, access.BusinessScope(p, nil), &customerID)
}

// AddCustomerBusiness creates a business for a customer.
func (s *Service) AddCustomerBusiness(ctx context.Context, customerID int64, in BusinessInput) (*model.Business, error) {
	in.CustomerID = customerID
	return s.CreateBusiness(ctx, in)
}

// AssignCustomerDocument assigns a template to one of the customer's
// businesses. It reports whether a new assignment was created.
func (s *Service) AssignCustomerDocument(ctx context.Context, customerID, businessID, documentID int64) (*model.BusinessDocument, bool, error) {
	if businessID == 0 || documentID == 0 {
		return nil, false, fmt.Errorf("%w: both business_id and document_id are required", apperrors.ErrBadRequest)
	}
	p, err := principal(ctx)
	if err != nil {
		return nil, false, err
	}
	business, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), businessID)
	if err != nil {
		return nil, false, err
	}
	if business.CustomerID != customerID {
		return nil, false, fmt.Errorf("%w: business %d of customer %d", apperrors.ErrNotFound, businessID, customerID)
	}
	return s.AssignDocument(ctx, businessID, documentID)
}

func (s *Service) deleteFiles(ctx context.Context, paths []string) {
	if s.files == nil || len(paths) == 0 {
		return
	}
	filestore.DeleteAll(ctx, s.files, paths)
}
