//go:build integration

package integration_test

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"gitlab.com/timkado/api/agency-core/internal/access"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/ingestion"
	"gitlab.com/timkado/api/agency-core/internal/jetstream"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/seed"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
)

func (s *IntegrationSuite) TestIntake_CallReportEndToEnd() {
	spec, err := seed.ACORD125()
	s.Require().NoError(err)
	_, err = seed.Template(s.Ctx, s.Repo, spec)
	s.Require().NoError(err)

	fx := s.createTenant()

	client, err := jetstream.NewClient(s.NATSURL)
	s.Require().NoError(err)
	defer client.Close()

	router := ingestion.NewRouter()
	ingestion.NewIntakeHandler(usecase.NewService(usecase.Dependencies{Repo: s.Repo})).Register(router)

	cfg := config.ConsumerNatsConfig{
		Stream:       "intake_events_it",
		Consumer:     "agency-core-intake-it",
		QueueGroup:   "agency-core-it",
		SubjectList:  []string{"v1.intake.>"},
		MaxAge:       1,
		MaxDeliver:   3,
		NakBaseDelay: 100 * time.Millisecond,
		NakMaxDelay:  time.Second,
	}
	consumer := ingestion.NewIntakeConsumer(client, router, cfg, "v1.dlq")
	s.Require().NoError(consumer.Setup())
	s.Require().NoError(consumer.Start())
	defer consumer.Stop()

	report := model.NewCallReportPayload(fx.Customer.PhoneNumber)
	report.Message.Analysis.StructuredData = map[string]interface{}{
		"applicant_name":    "Harbor Bakery LLC",
		"years_in_business": 12,
	}
	data, err := json.Marshal(report)
	s.Require().NoError(err)
	s.Require().NoError(client.Publish(string(model.V1CallReport), data, map[string]string{nats.MsgIdHdr: report.Message.Call.ID}))

	businessID := fx.Business.ID
	s.Eventually(func() bool {
		values, err := s.Repo.ListFieldValues(s.Ctx, access.FieldValueScope(fx.Principal), storage.FieldValueFilter{BusinessID: &businessID})
		if err != nil || len(values) != 2 {
			return false
		}
		for _, v := range values {
			if v.Source != model.SourcePhone {
				return false
			}
		}
		return true
	}, 20*time.Second, 200*time.Millisecond)
}
