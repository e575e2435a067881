//go:build integration

package integration_test

import (
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
)

// tenantFixture is one user who owns one agency with one customer and business.
type tenantFixture struct {
	User      *model.User
	Agency    *model.Agency
	Customer  *model.Customer
	Business  *model.Business
	Principal tenant.Principal
}

func (s *IntegrationSuite) createTenant() *tenantFixture {
	f := &tenantFixture{}

	f.User = model.NewUser(&model.User{PasswordHash: "x"})
	s.Require().NoError(s.Repo.CreateUser(s.Ctx, f.User))

	f.Agency = model.NewAgency()
	s.Require().NoError(s.Repo.CreateAgency(s.Ctx, f.Agency))
	_, err := s.Repo.UpsertMembership(s.Ctx, model.AgencyUser{
		UserID:    f.User.ID,
		AgencyID:  f.Agency.ID,
		Role:      model.RoleOwner,
		IsPrimary: true,
	})
	s.Require().NoError(err)

	customer, err := model.ValidateCustomer(*model.NewCustomer(&model.Customer{AgencyID: f.Agency.ID, CreatedByID: &f.User.ID}))
	s.Require().NoError(err)
	s.Require().NoError(s.Repo.CreateCustomer(s.Ctx, &customer))
	f.Customer = &customer

	f.Business = model.NewBusiness(&model.Business{CustomerID: customer.ID})
	s.Require().NoError(s.Repo.CreateBusiness(s.Ctx, f.Business))

	f.Principal = tenant.Principal{UserID: f.User.ID, Username: f.User.Username}
	return f
}
