package usecase

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// MembershipInput sets the role of a user inside an agency.
type MembershipInput struct {
	UserID    int64            `json:"user_id" binding:"required,gt=0"`
	Role      model.AgencyRole `json:"role"`
	IsPrimary bool             `json:"is_primary"`
}

// ListAgencies lists the active agencies the principal belongs to, by name.
func (s *Service) ListAgencies(ctx context.Context) ([]model.Agency, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAgencies(ctx, access.AgencyScope(p))
}

// GetAgency returns one agency of the principal.
func (s *Service) GetAgency(ctx context.Context, id int64) (*model.Agency, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAgency(ctx, access.AgencyScope(p), id)
}

// SetMembership adds a user to an agency or changes their role. Only owners
// and admins of the agency may do so. Making a member primary demotes the
// previous primary.
func (s *Service) SetMembership(ctx context.Context, agencyID int64, in MembershipInput) (*model.AgencyUser, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindAgency(ctx, access.AgencyScope(p), agencyID); err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireRole(ctx, p, agencyID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindUserByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	membership, err := model.ValidateMembership(model.AgencyUser{
		UserID:    in.UserID,
		AgencyID:  agencyID,
		Role:      in.Role,
		IsPrimary: in.IsPrimary,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.UpsertMembership(ctx, membership)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Agency membership updated",
		zap.Int64("agency_id", agencyID),
		zap.Int64("member_id", in.UserID),
		zap.String("role", string(saved.Role)),
		zap.Bool("is_primary", saved.IsPrimary),
	)
	return saved, nil
}
