package service

import (
	"context"
	"fmt"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditService exposes the credit ledger to the HTTP boundary. Consumption
// and refunds for adventure creation go through AdventureService instead.
type CreditService interface {
	// GetBalance returns the requester's current balance (zero if unknown).
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)

	// Grant adds purchased credits. Amount must be positive.
	Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error)
}

type creditServiceImpl struct {
	creditRepo interfaces.CreditRepository
	logger     *zap.Logger
}

// NewCreditService creates the credit ledger service.
func NewCreditService(creditRepo interfaces.CreditRepository, logger *zap.Logger) CreditService {
	return &creditServiceImpl{
		creditRepo: creditRepo,
		logger:     logger.Named("CreditService"),
	}
}

func (s *creditServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	balance, err := s.creditRepo.GetBalance(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get credit balance", zap.String("userID", userID.String()), zap.Error(err))
		return 0, err
	}
	return balance, nil
}

func (s *creditServiceImpl) Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: grant amount must be positive", models.ErrInvalidInput)
	}
	newBalance, err := s.creditRepo.Grant(ctx, userID, amount, reason)
	if err != nil {
		s.logger.Error("Failed to grant credits",
			zap.String("userID", userID.String()),
			zap.Int("amount", amount),
			zap.Error(err))
		return 0, err
	}
	s.logger.Info("Credits granted",
		zap.String("userID", userID.String()),
		zap.Int("amount", amount),
		zap.Int("newBalance", newBalance))
	return newBalance, nil
}
