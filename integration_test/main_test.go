//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
	pgtc "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// IntegrationSuite runs against real PostgreSQL and NATS containers.
type IntegrationSuite struct {
	suite.Suite
	Postgres    testcontainers.Container
	PostgresDSN string
	NATS        testcontainers.Container
	NATSURL     string
	Repo        *storage.PostgresRepo
	Ctx         context.Context
	cancel      context.CancelFunc
}

func TestIntegration(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupSuite() {
	s.Ctx, s.cancel = context.WithCancel(context.Background())
	logger.Log = zaptest.NewLogger(s.T()).Named("integration")

	var err error
	s.Postgres, s.PostgresDSN, err = startPostgres(s.Ctx)
	s.Require().NoError(err, "failed to start postgres")

	s.NATS, s.NATSURL, err = startNATS(s.Ctx)
	s.Require().NoError(err, "failed to start NATS")

	s.Repo, err = storage.NewPostgresRepo(s.Ctx, s.PostgresDSN, true)
	s.Require().NoError(err, "failed to create repository")
}

func (s *IntegrationSuite) TearDownSuite() {
	if s.Repo != nil {
		_ = s.Repo.Close(context.Background())
	}
	if s.NATS != nil {
		if err := s.NATS.Terminate(context.Background()); err != nil {
			s.T().Logf("Error terminating NATS container: %v", err)
		}
	}
	if s.Postgres != nil {
		if err := s.Postgres.Terminate(context.Background()); err != nil {
			s.T().Logf("Error terminating PostgreSQL container: %v", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := pgtc.Run(ctx,
		"postgres:17-bookworm",
		pgtc.WithDatabase("agency_core"),
		pgtc.WithUsername("postgres"),
		pgtc.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return pgContainer, "", fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
	}
	return pgContainer, dsn, nil
}

func startNATS(ctx context.Context) (testcontainers.Container, string, error) {
	natsContainer, err := tcnats.Run(ctx,
		"nats:2.11-alpine",
		tcnats.WithArgument("name", "agency-core-test"),
		tcnats.WithArgument("store_dir", "/data"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start NATS container: %w", err)
	}

	url, err := natsContainer.ConnectionString(ctx)
	if err != nil {
		return natsContainer, "", fmt.Errorf("failed to get NATS connection string: %w", err)
	}
	return natsContainer, url, nil
}
