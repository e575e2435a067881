package access

import (
	"context"
	"fmt"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

// MembershipReader is the storage view the authorizer needs.
type MembershipReader interface {
	ListMemberships(ctx context.Context, userID int64) ([]model.AgencyUser, error)
}

// Authorizer checks mutation rights against agency memberships.
type Authorizer struct {
	members MembershipReader
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(members MembershipReader) *Authorizer {
	return &Authorizer{members: members}
}

// RequireAnyMembership fails with ErrNoAgencyAssociation when the principal belongs to no agency.
func (a *Authorizer) RequireAnyMembership(ctx context.Context, p tenant.Principal) ([]model.AgencyUser, error) {
	memberships, err := a.members.ListMemberships(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, apperrors.ErrNoAgencyAssociation
	}
	return memberships, nil
}

// RequireMembership fails with ErrForbiddenCrossTenant unless the principal belongs to agencyID.
func (a *Authorizer) RequireMembership(ctx context.Context, p tenant.Principal, agencyID int64) (*model.AgencyUser, error) {
	memberships, err := a.RequireAnyMembership(ctx, p)
	if err != nil {
		return nil, err
	}
	for i := range memberships {
		if memberships[i].AgencyID == agencyID {
			return &memberships[i], nil
		}
	}
	return nil, fmt.Errorf("%w: agency %d", apperrors.ErrForbiddenCrossTenant, agencyID)
}

// RequireRole is RequireMembership plus a check that the role may manage members.
func (a *Authorizer) RequireRole(ctx context.Context, p tenant.Principal, agencyID int64) (*model.AgencyUser, error) {
	m, err := a.RequireMembership(ctx, p, agencyID)
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManageMembers() {
		return nil, fmt.Errorf("%w: role %s cannot manage agency %d", apperrors.ErrForbiddenCrossTenant, m.Role, agencyID)
	}
	return m, nil
}

// RequireDocumentOwner fails with ErrForbiddenCrossTenant unless the principal owns doc.
func RequireDocumentOwner(p tenant.Principal, doc model.Document) error {
	if !doc.OwnedBy(p.UserID) {
		return fmt.Errorf("%w: document %d is not owned by user %d", apperrors.ErrForbiddenCrossTenant, doc.ID, p.UserID)
	}
	return nil
}
