//go:build integration

package integration_test

import (
	"fmt"
	"sync"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/storage"
)

const concurrentWriters = 8

func (s *IntegrationSuite) TestUpsertMembership_ConcurrentPrimaries() {
	owner := s.createTenant()

	users := make([]*model.User, concurrentWriters)
	for i := range users {
		users[i] = model.NewUser(&model.User{PasswordHash: "x"})
		s.Require().NoError(s.Repo.CreateUser(s.Ctx, users[i]))
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(users))
	for _, u := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := s.Repo.UpsertMembership(s.Ctx, model.AgencyUser{
				UserID:    userID,
				AgencyID:  owner.Agency.ID,
				Role:      model.RoleAgent,
				IsPrimary: true,
			})
			errs <- err
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	members, err := s.Repo.ListAgencyMembers(s.Ctx, owner.Agency.ID)
	s.Require().NoError(err)
	s.Len(members, concurrentWriters+1)

	primaries := 0
	for _, m := range members {
		if m.IsPrimary {
			primaries++
		}
	}
	s.Equal(1, primaries)
}

func (s *IntegrationSuite) TestUpsertFieldValue_ConcurrentWritersKeepOneRow() {
	f := s.createTenant()

	doc := model.NewDocument(&model.Document{AgencyOwnerID: &f.User.ID})
	s.Require().NoError(s.Repo.CreateDocument(s.Ctx, doc))
	field := model.NewField(&model.Field{DocumentID: doc.ID})
	s.Require().NoError(s.Repo.CreateField(s.Ctx, field))

	var wg sync.WaitGroup
	errs := make(chan error, concurrentWriters)
	for i := 0; i < concurrentWriters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Repo.UpsertFieldValue(s.Ctx, model.FieldValue{
				FieldID:    field.ID,
				BusinessID: f.Business.ID,
				Value:      fmt.Sprintf("value-%d", n),
				Source:     model.SourceManual,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	values, err := s.Repo.ListFieldValues(s.Ctx, access.FieldValueScope(f.Principal), storage.FieldValueFilter{BusinessID: &f.Business.ID})
	s.Require().NoError(err)
	s.Require().Len(values, 1)
	s.Contains(values[0].Value, "value-")
}
