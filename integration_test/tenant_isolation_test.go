//go:build integration

package integration_test

import (
	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

func (s *IntegrationSuite) TestTenantIsolation_Customers() {
	a := s.createTenant()
	b := s.createTenant()

	found, err := s.Repo.FindCustomer(s.Ctx, access.CustomerLookupScope(a.Principal), a.Customer.ID)
	s.Require().NoError(err)
	s.Equal(a.Customer.ID, found.ID)

	_, err = s.Repo.FindCustomer(s.Ctx, access.CustomerLookupScope(b.Principal), a.Customer.ID)
	s.True(apperrors.IsNotFoundError(err), "expected not found, got %v", err)

	scope, err := access.CustomerScope(b.Principal, &b.Agency.ID)
	s.Require().NoError(err)
	customers, err := s.Repo.ListCustomers(s.Ctx, scope)
	s.Require().NoError(err)
	for _, c := range customers {
		s.Equal(b.Agency.ID, c.AgencyID)
	}
}

func (s *IntegrationSuite) TestTenantIsolation_Businesses() {
	a := s.createTenant()
	b := s.createTenant()

	_, err := s.Repo.FindBusiness(s.Ctx, access.BusinessScope(b.Principal, nil), a.Business.ID)
	s.True(apperrors.IsNotFoundError(err), "expected not found, got %v", err)

	businesses, err := s.Repo.ListBusinesses(s.Ctx, access.BusinessScope(a.Principal, nil), nil)
	s.Require().NoError(err)
	s.Require().Len(businesses, 1)
	s.Equal(a.Business.ID, businesses[0].ID)
}

func (s *IntegrationSuite) TestPing() {
	s.NoError(s.Repo.Ping(s.Ctx))
}
