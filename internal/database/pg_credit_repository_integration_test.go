package database_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"daggergm/internal/database"
	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type CreditRepoIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	repo        interfaces.CreditRepository
}

func (s *CreditRepoIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("daggergm_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	require.NoError(s.T(), database.RunMigrations(connStr, "../../migrations", zap.NewNop()))

	s.repo = database.NewPgCreditRepository(s.pool, zap.NewNop())
}

func (s *CreditRepoIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *CreditRepoIntegrationSuite) TestConsumeWithoutBalance() {
	userID := uuid.New()

	_, err := s.repo.Consume(s.ctx, userID, nil, "adventure generation")
	s.Require().ErrorIs(err, models.ErrInsufficientCredits)

	// A rejected consume leaves no audit entry behind.
	var count int
	err = s.pool.QueryRow(s.ctx, `SELECT count(*) FROM credit_transactions WHERE user_id = $1`, userID).Scan(&count)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *CreditRepoIntegrationSuite) TestGrantThenConsume() {
	userID := uuid.New()
	adventureID := uuid.New()

	balance, err := s.repo.Grant(s.ctx, userID, 3, "credit purchase")
	s.Require().NoError(err)
	s.Equal(3, balance)

	balance, err = s.repo.Consume(s.ctx, userID, &adventureID, "adventure generation")
	s.Require().NoError(err)
	s.Equal(2, balance)

	balance, err = s.repo.GetBalance(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(2, balance)

	// Both operations left matching audit entries.
	var types []string
	rows, err := s.pool.Query(s.ctx, `SELECT type FROM credit_transactions WHERE user_id = $1 ORDER BY created_at`, userID)
	s.Require().NoError(err)
	defer rows.Close()
	for rows.Next() {
		var txType string
		s.Require().NoError(rows.Scan(&txType))
		types = append(types, txType)
	}
	s.Equal([]string{"purchase", "consume"}, types)
}

func (s *CreditRepoIntegrationSuite) TestRefundRestoresBalance() {
	userID := uuid.New()
	adventureID := uuid.New()

	_, err := s.repo.Grant(s.ctx, userID, 1, "credit purchase")
	s.Require().NoError(err)

	_, err = s.repo.Consume(s.ctx, userID, &adventureID, "adventure generation")
	s.Require().NoError(err)

	balance, err := s.repo.Refund(s.ctx, userID, &adventureID, "adventure generation")
	s.Require().NoError(err)
	s.Equal(1, balance)
}

func (s *CreditRepoIntegrationSuite) TestConcurrentConsumesNeverOverspend() {
	userID := uuid.New()
	const credits = 5
	const attempts = 20

	_, err := s.repo.Grant(s.ctx, userID, credits, "credit purchase")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adventureID := uuid.New()
			_, err := s.repo.Consume(s.ctx, userID, &adventureID, "adventure generation")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, models.ErrInsufficientCredits)
		}
	}
	s.Equal(credits, succeeded)

	balance, err := s.repo.GetBalance(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(0, balance)
}

func TestCreditRepoIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(CreditRepoIntegrationSuite))
}
