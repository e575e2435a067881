package usecase

import (
	"context"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

// MissingRequired returns the required fields of a template that have no value
// for the business, ordered by name. A value row counts even when empty.
func (s *Service) MissingRequired(ctx context.Context, documentID, businessID int64) ([]model.Field, error) {
	fields, err := s.repo.MissingRequiredFields(ctx, documentID, businessID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []model.Field{}
	}
	return fields, nil
}

// MissingFields is MissingRequired for a business and template visible to the principal.
func (s *Service) MissingFields(ctx context.Context, businessID, documentID int64) ([]model.Field, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBusiness(ctx, access.BusinessScope(p, nil), businessID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindDocument(ctx, access.DocumentScope(p), documentID); err != nil {
		return nil, err
	}
	return s.MissingRequired(ctx, documentID, businessID)
}
