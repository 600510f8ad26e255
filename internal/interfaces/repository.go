package interfaces

import (
	"context"
	"errors"

	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidCursor is returned by list methods when a pagination cursor
// cannot be decoded.
var ErrInvalidCursor = errors.New("invalid pagination cursor")

// DBTX abstracts over *pgxpool.Pool and pgx.Tx so repositories can run
// against either a pool or an enclosing transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AdventureRepository persists the adventure aggregate. All counter and flag
// mutations happen inside single statements or short row-locked transactions;
// no method performs a read-modify-write across calls.
type AdventureRepository interface {
	// Create inserts a new adventure row.
	Create(ctx context.Context, adventure *models.Adventure) error

	// GetByID loads the full aggregate. Returns models.ErrNotFound if the
	// row does not exist. Ownership is checked by the caller so that
	// "missing" and "not yours" stay distinguishable.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Adventure, error)

	// ListByOwner returns a page of the owner's adventures ordered by
	// creation time descending, with a base64 cursor over (created_at, id).
	ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error)

	// ReplaceMovement writes a regenerated movement and increments the stage
	// counter in the same transaction, under a row lock. The movement's id
	// and order are taken from the stored movement, never from the update.
	// Fails with models.ErrRegenerationLimitExceeded if the stage counter is
	// at its cap, models.ErrSceneConfirmed if requireUnconfirmed is set and
	// the movement was confirmed in the interim, and models.ErrMovementNotFound
	// if the movement id is unknown. Returns the new counter value.
	ReplaceMovement(ctx context.Context, adventureID uuid.UUID, updated models.Movement, stage models.RegenerationStage, requireUnconfirmed bool) (int, error)

	// SetMovementConfirmed toggles the confirmation flag of one movement.
	SetMovementConfirmed(ctx context.Context, adventureID, movementID uuid.UUID, confirmed bool) error

	// SetMovementLocked toggles the scaffold-regeneration lock flag.
	SetMovementLocked(ctx context.Context, adventureID, movementID uuid.UUID, locked bool) error

	// TransitionToReady flips status to ready iff the adventure is
	// scaffolded, has at least one movement, and every movement is
	// confirmed, all evaluated inside the update statement. Returns
	// models.ErrNotAllScenesConfirmed when the guard rejects the write.
	TransitionToReady(ctx context.Context, adventureID uuid.UUID) error

	// UpdateStatus sets the lifecycle status unconditionally (archival).
	UpdateStatus(ctx context.Context, adventureID uuid.UUID, status models.AdventureStatus) error

	// GetRegenerationCounts reads both stage counters.
	GetRegenerationCounts(ctx context.Context, adventureID uuid.UUID) (scaffold int, expansion int, err error)
}

// CreditRepository owns the credit balance row and its append-only audit
// log. Balance changes and their audit entries commit atomically.
type CreditRepository interface {
	// Consume decrements the balance by one iff it is positive, appends a
	// consume transaction, and returns the new balance. Fails with
	// models.ErrInsufficientCredits without side effects otherwise.
	Consume(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error)

	// Refund unconditionally increments the balance by one and appends a
	// refund transaction. Used only to undo a prior successful Consume.
	Refund(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error)

	// Grant adds purchased credits and appends a purchase transaction.
	Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error)

	// GetBalance returns the current balance; zero for unknown users.
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
}
