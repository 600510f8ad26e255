package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.CreditRepository = (*pgCreditRepository)(nil)

type pgCreditRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgCreditRepository creates the PostgreSQL credit ledger repository.
func NewPgCreditRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CreditRepository {
	return &pgCreditRepository{
		db:     db,
		logger: logger.Named("PgCreditRepo"),
	}
}

// appendTransaction writes one audit entry inside the caller's transaction.
func appendTransaction(ctx context.Context, tx pgx.Tx, entry models.CreditTransaction) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO credit_transactions
            (id, user_id, type, amount, balance_after, adventure_id, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, entry.ID, entry.UserID, entry.Type, entry.Amount, entry.BalanceAfter, entry.AdventureID, entry.Reason, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append credit transaction: %w", err)
	}
	return nil
}

func (r *pgCreditRepository) Consume(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error) {
	logFields := []zap.Field{zap.String("userID", userID.String()), zap.String("reason", reason)}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Conditional single-statement decrement: no row qualifies when the
	// balance is zero or missing, so the balance can never go negative and
	// concurrent consumes cannot double-spend.
	var newBalance int
	err = tx.QueryRow(ctx, `
        UPDATE credit_balances
        SET credits = credits - 1, updated_at = $2
        WHERE user_id = $1 AND credits >= 1
        RETURNING credits
    `, userID, time.Now().UTC()).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Credit consumption rejected", logFields...)
			return 0, models.ErrInsufficientCredits
		}
		r.logger.Error("Failed to consume credit", append(logFields, zap.Error(err))...)
		return 0, fmt.Errorf("failed to consume credit for user %s: %w", userID, err)
	}

	entry := models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         models.TransactionConsume,
		Amount:       -1,
		BalanceAfter: newBalance,
		AdventureID:  adventureID,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}
	if err := appendTransaction(ctx, tx, entry); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit credit consumption: %w", err)
	}

	r.logger.Info("Credit consumed", append(logFields, zap.Int("newBalance", newBalance))...)
	return newBalance, nil
}

// adjust increments the balance by amount (creating the row if needed) and
// appends the matching audit entry, all in one transaction.
func (r *pgCreditRepository) adjust(ctx context.Context, userID uuid.UUID, amount int, txType models.TransactionType, adventureID *uuid.UUID, reason string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var newBalance int
	err = tx.QueryRow(ctx, `
        INSERT INTO credit_balances (user_id, credits, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id)
        DO UPDATE SET credits = credit_balances.credits + $2, updated_at = $3
        RETURNING credits
    `, userID, amount, time.Now().UTC()).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust credits for user %s: %w", userID, err)
	}

	entry := models.CreditTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		AdventureID:  adventureID,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}
	if err := appendTransaction(ctx, tx, entry); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit credit adjustment: %w", err)
	}
	return newBalance, nil
}

func (r *pgCreditRepository) Refund(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error) {
	newBalance, err := r.adjust(ctx, userID, 1, models.TransactionRefund, adventureID, reason)
	if err != nil {
		r.logger.Error("Failed to refund credit", zap.String("userID", userID.String()), zap.Error(err))
		return 0, err
	}
	r.logger.Info("Credit refunded", zap.String("userID", userID.String()), zap.Int("newBalance", newBalance))
	return newBalance, nil
}

func (r *pgCreditRepository) Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error) {
	newBalance, err := r.adjust(ctx, userID, amount, models.TransactionPurchase, nil, reason)
	if err != nil {
		r.logger.Error("Failed to grant credits", zap.String("userID", userID.String()), zap.Int("amount", amount), zap.Error(err))
		return 0, err
	}
	r.logger.Info("Credits granted", zap.String("userID", userID.String()), zap.Int("amount", amount), zap.Int("newBalance", newBalance))
	return newBalance, nil
}

func (r *pgCreditRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var balance int
	err := r.db.QueryRow(ctx, `SELECT credits FROM credit_balances WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read credit balance for user %s: %w", userID, err)
	}
	return balance, nil
}
