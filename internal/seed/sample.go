package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

const (
	DefaultSampleUsername = "testuser"
	DefaultSampleEmail    = "agent@insuranceagency.com"
	DefaultSamplePassword = "testpass123"
)

// SampleOptions configures the sample data set.
type SampleOptions struct {
	Username  string
	Email     string
	Password  string
	Customers int
}

// SampleResult reports what a sample seed run created.
type SampleResult struct {
	User       *model.User
	Agency     *model.Agency
	Created    bool
	Customers  int
	Businesses int
}

// Sample creates a user who owns a new agency with fake customers, one
// business each. Nothing is created when the user already exists.
func Sample(ctx context.Context, repo storage.Repository, opts SampleOptions) (*SampleResult, error) {
	if opts.Username == "" {
		opts.Username = DefaultSampleUsername
	}
	if opts.Email == "" {
		opts.Email = DefaultSampleEmail
	}
	if opts.Password == "" {
		opts.Password = DefaultSamplePassword
	}
	log := logger.FromContext(ctx).With(zap.String("username", opts.Username))

	existing, err := repo.FindUserByUsername(ctx, opts.Username)
	if err == nil {
		log.Info("Sample user already exists, skipping")
		return &SampleResult{User: existing}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := usecase.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}
	user := model.NewUser(&model.User{Username: opts.Username, Email: opts.Email, PasswordHash: hash})
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	agency := model.NewAgency()
	if err := repo.CreateAgency(ctx, agency); err != nil {
		return nil, err
	}
	if _, err := repo.UpsertMembership(ctx, model.AgencyUser{
		UserID:    user.ID,
		AgencyID:  agency.ID,
		Role:      model.RoleOwner,
		IsPrimary: true,
	}); err != nil {
		return nil, err
	}

	res := &SampleResult{User: user, Agency: agency, Created: true}
	for i := 0; i < opts.Customers; i++ {
		customer, err := model.ValidateCustomer(*model.NewCustomer(&model.Customer{AgencyID: agency.ID, CreatedByID: &user.ID}))
		if err != nil {
			return nil, err
		}
		if err := repo.CreateCustomer(ctx, &customer); err != nil {
			return nil, err
		}
		res.Customers++

		business := model.NewBusiness(&model.Business{CustomerID: customer.ID})
		if err := repo.CreateBusiness(ctx, business); err != nil {
			return nil, err
		}
		res.Businesses++
	}

	log.Info("Sample data created",
		zap.Int64("agency_id", agency.ID),
		zap.Int("customers", res.Customers),
		zap.Int("businesses", res.Businesses))
	return res, nil
}
