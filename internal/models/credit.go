package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the business reason for a credit balance change.
type TransactionType string

const (
	TransactionConsume  TransactionType = "consume"
	TransactionRefund   TransactionType = "refund"
	TransactionPurchase TransactionType = "purchase"
)

// CreditBalance is a user's spendable credit balance. The balance is only
// ever mutated through conditional single-statement SQL updates, so it can
// never be observed negative.
type CreditBalance struct {
	UserID    uuid.UUID `json:"user_id"`
	Credits   int       `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditTransaction is one entry in the append-only audit log. Amount is
// signed; BalanceAfter records the balance the change produced, written in
// the same transaction as the balance update itself.
type CreditTransaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int             `json:"amount"`
	BalanceAfter int             `json:"balance_after"`
	AdventureID  *uuid.UUID      `json:"adventure_id,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
