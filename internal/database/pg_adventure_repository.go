package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.AdventureRepository = (*pgAdventureRepository)(nil)

type pgAdventureRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgAdventureRepository creates the PostgreSQL adventure repository.
func NewPgAdventureRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.AdventureRepository {
	return &pgAdventureRepository{
		db:     db,
		logger: logger.Named("PgAdventureRepo"),
	}
}

func counterColumn(stage models.RegenerationStage) string {
	if stage == models.StageScaffold {
		return "scaffold_regens_used"
	}
	return "expansion_regens_used"
}

func (r *pgAdventureRepository) Create(ctx context.Context, adventure *models.Adventure) error {
	configJSON, err := json.Marshal(adventure.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal adventure config: %w", err)
	}
	movementsJSON, err := json.Marshal(adventure.Movements)
	if err != nil {
		return fmt.Errorf("failed to marshal adventure movements: %w", err)
	}

	query := `
        INSERT INTO adventures
            (id, owner_id, title, status, config, movements,
             scaffold_regens_used, expansion_regens_used, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	logFields := []zap.Field{zap.String("adventureID", adventure.ID.String()), zap.String("ownerID", adventure.OwnerID.String())}
	r.logger.Debug("Creating adventure", logFields...)

	_, err = r.db.Exec(ctx, query,
		adventure.ID,
		adventure.OwnerID,
		adventure.Title,
		adventure.Status,
		configJSON,
		movementsJSON,
		adventure.ScaffoldRegensUsed,
		adventure.ExpansionRegensUsed,
		adventure.CreatedAt,
		adventure.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create adventure", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create adventure: %w", err)
	}
	r.logger.Info("Adventure created", logFields...)
	return nil
}

func (r *pgAdventureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Adventure, error) {
	query := `
        SELECT id, owner_id, title, status, config, movements,
               scaffold_regens_used, expansion_regens_used, created_at, updated_at
        FROM adventures
        WHERE id = $1
    `
	adventure := &models.Adventure{}
	var configJSON, movementsJSON []byte
	logFields := []zap.Field{zap.String("adventureID", id.String())}

	err := r.db.QueryRow(ctx, query, id).Scan(
		&adventure.ID, &adventure.OwnerID, &adventure.Title, &adventure.Status,
		&configJSON, &movementsJSON,
		&adventure.ScaffoldRegensUsed, &adventure.ExpansionRegensUsed,
		&adventure.CreatedAt, &adventure.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Adventure not found", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get adventure", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get adventure %s: %w", id, err)
	}

	if err := json.Unmarshal(configJSON, &adventure.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config for adventure %s: %w", id, err)
	}
	if err := json.Unmarshal(movementsJSON, &adventure.Movements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movements for adventure %s: %w", id, err)
	}
	return adventure, nil
}

// adventureRow mirrors the adventures table for scany list scans.
type adventureRow struct {
	ID                  uuid.UUID `db:"id"`
	OwnerID             uuid.UUID `db:"owner_id"`
	Title               string    `db:"title"`
	Status              string    `db:"status"`
	Config              []byte    `db:"config"`
	Movements           []byte    `db:"movements"`
	ScaffoldRegensUsed  int       `db:"scaffold_regens_used"`
	ExpansionRegensUsed int       `db:"expansion_regens_used"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (r *pgAdventureRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error) {
	if limit <= 0 {
		limit = 10
	}
	fetchLimit := limit + 1 // one extra to detect the next page

	cursorTime, cursorID, err := decodeCursor(cursor)
	if err != nil {
		r.logger.Warn("Failed to decode cursor", zap.String("ownerID", ownerID.String()), zap.String("cursor", cursor), zap.Error(err))
		return nil, "", interfaces.ErrInvalidCursor
	}

	var queryBuilder strings.Builder
	args := []any{ownerID}
	paramIndex := 2

	queryBuilder.WriteString(`
        SELECT id, owner_id, title, status, config, movements,
               scaffold_regens_used, expansion_regens_used, created_at, updated_at
        FROM adventures
        WHERE owner_id = $1
    `)
	if !cursorTime.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", paramIndex, paramIndex+1))
		args = append(args, cursorTime, cursorID)
		paramIndex += 2
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", paramIndex))
	args = append(args, fetchLimit)

	var rows []adventureRow
	if err := pgxscan.Select(ctx, r.db, &rows, queryBuilder.String(), args...); err != nil {
		r.logger.Error("Failed to list adventures", zap.String("ownerID", ownerID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("failed to list adventures: %w", err)
	}

	adventures := make([]models.Adventure, 0, limit)
	for i := range rows {
		if i >= limit {
			break
		}
		adv := models.Adventure{
			ID:                  rows[i].ID,
			OwnerID:             rows[i].OwnerID,
			Title:               rows[i].Title,
			Status:              models.AdventureStatus(rows[i].Status),
			ScaffoldRegensUsed:  rows[i].ScaffoldRegensUsed,
			ExpansionRegensUsed: rows[i].ExpansionRegensUsed,
			CreatedAt:           rows[i].CreatedAt,
			UpdatedAt:           rows[i].UpdatedAt,
		}
		if err := json.Unmarshal(rows[i].Config, &adv.Config); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal config for adventure %s: %w", adv.ID, err)
		}
		if err := json.Unmarshal(rows[i].Movements, &adv.Movements); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal movements for adventure %s: %w", adv.ID, err)
		}
		adventures = append(adventures, adv)
	}

	var nextCursor string
	if len(rows) > limit {
		last := adventures[len(adventures)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return adventures, nextCursor, nil
}

// lockMovements loads the movements array and both counters under FOR UPDATE.
func lockMovements(ctx context.Context, tx pgx.Tx, adventureID uuid.UUID) ([]models.Movement, int, int, error) {
	var movementsJSON []byte
	var scaffoldUsed, expansionUsed int
	err := tx.QueryRow(ctx, `
        SELECT movements, scaffold_regens_used, expansion_regens_used
        FROM adventures
        WHERE id = $1
        FOR UPDATE
    `, adventureID).Scan(&movementsJSON, &scaffoldUsed, &expansionUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, 0, models.ErrNotFound
		}
		return nil, 0, 0, fmt.Errorf("failed to lock adventure %s: %w", adventureID, err)
	}

	var movements []models.Movement
	if err := json.Unmarshal(movementsJSON, &movements); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to unmarshal movements for adventure %s: %w", adventureID, err)
	}
	return movements, scaffoldUsed, expansionUsed, nil
}

func (r *pgAdventureRepository) ReplaceMovement(ctx context.Context, adventureID uuid.UUID, updated models.Movement, stage models.RegenerationStage, requireUnconfirmed bool) (int, error) {
	logFields := []zap.Field{
		zap.String("adventureID", adventureID.String()),
		zap.String("movementID", updated.ID.String()),
		zap.String("stage", string(stage)),
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	movements, scaffoldUsed, expansionUsed, err := lockMovements(ctx, tx, adventureID)
	if err != nil {
		return 0, err
	}

	used := scaffoldUsed
	if stage == models.StageExpansion {
		used = expansionUsed
	}
	if used >= stage.Limit() {
		r.logger.Warn("Regeneration counter at cap", append(logFields, zap.Int("used", used))...)
		return 0, models.ErrRegenerationLimitExceeded
	}

	idx := -1
	for i := range movements {
		if movements[i].ID == updated.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, models.ErrMovementNotFound
	}

	// Write-time re-check: a concurrent confirm wins over this regeneration.
	if requireUnconfirmed && movements[idx].Confirmed {
		r.logger.Warn("Movement confirmed since read, discarding regeneration", logFields...)
		return 0, models.ErrSceneConfirmed
	}

	// Identity and ordering are never taken from the update.
	updated.ID = movements[idx].ID
	updated.Order = movements[idx].Order
	movements[idx] = updated

	movementsJSON, err := json.Marshal(movements)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal movements: %w", err)
	}

	// Content and counter change in one statement; the cap guard repeats in
	// SQL so the CHECK constraint is never the line of defense.
	col := counterColumn(stage)
	var newCount int
	err = tx.QueryRow(ctx, fmt.Sprintf(`
        UPDATE adventures
        SET movements = $2, %s = %s + 1, updated_at = $3
        WHERE id = $1 AND %s < $4
        RETURNING %s
    `, col, col, col, col), adventureID, movementsJSON, time.Now().UTC(), stage.Limit()).Scan(&newCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrRegenerationLimitExceeded
		}
		r.logger.Error("Failed to persist regenerated movement", append(logFields, zap.Error(err))...)
		return 0, fmt.Errorf("failed to persist regenerated movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit movement replacement: %w", err)
	}
	r.logger.Info("Movement replaced", append(logFields, zap.Int("newCount", newCount))...)
	return newCount, nil
}

// updateMovementFlag mutates a single movement under a row lock.
func (r *pgAdventureRepository) updateMovementFlag(ctx context.Context, adventureID, movementID uuid.UUID, apply func(*models.Movement)) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	movements, _, _, err := lockMovements(ctx, tx, adventureID)
	if err != nil {
		return err
	}

	idx := -1
	for i := range movements {
		if movements[i].ID == movementID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.ErrMovementNotFound
	}
	apply(&movements[idx])

	movementsJSON, err := json.Marshal(movements)
	if err != nil {
		return fmt.Errorf("failed to marshal movements: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE adventures SET movements = $2, updated_at = $3 WHERE id = $1`,
		adventureID, movementsJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update movement flags: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *pgAdventureRepository) SetMovementConfirmed(ctx context.Context, adventureID, movementID uuid.UUID, confirmed bool) error {
	return r.updateMovementFlag(ctx, adventureID, movementID, func(m *models.Movement) {
		m.Confirmed = confirmed
	})
}

func (r *pgAdventureRepository) SetMovementLocked(ctx context.Context, adventureID, movementID uuid.UUID, locked bool) error {
	return r.updateMovementFlag(ctx, adventureID, movementID, func(m *models.Movement) {
		m.Locked = locked
	})
}

func (r *pgAdventureRepository) TransitionToReady(ctx context.Context, adventureID uuid.UUID) error {
	// The readiness predicate is evaluated inside the update so a racing
	// unconfirm cannot slip an unconfirmed scene into a ready adventure.
	query := `
        UPDATE adventures
        SET status = $2, updated_at = $3
        WHERE id = $1
          AND status = $4
          AND jsonb_array_length(movements) > 0
          AND NOT EXISTS (
              SELECT 1 FROM jsonb_array_elements(movements) AS m
              WHERE COALESCE((m->>'confirmed')::boolean, false) = false
          )
    `
	logFields := []zap.Field{zap.String("adventureID", adventureID.String())}

	tag, err := r.db.Exec(ctx, query, adventureID, models.StatusReady, time.Now().UTC(), models.StatusScaffolded)
	if err != nil {
		r.logger.Error("Failed to transition adventure to ready", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to transition adventure %s to ready: %w", adventureID, err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Info("Adventure transitioned to ready", logFields...)
		return nil
	}

	// The guard rejected the write; figure out which precondition failed.
	var status models.AdventureStatus
	err = r.db.QueryRow(ctx, `SELECT status FROM adventures WHERE id = $1`, adventureID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to inspect adventure %s: %w", adventureID, err)
	}
	if status != models.StatusScaffolded {
		return models.ErrInvalidStatus
	}
	return models.ErrNotAllScenesConfirmed
}

func (r *pgAdventureRepository) UpdateStatus(ctx context.Context, adventureID uuid.UUID, status models.AdventureStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE adventures SET status = $2, updated_at = $3 WHERE id = $1`,
		adventureID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update status of adventure %s: %w", adventureID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgAdventureRepository) GetRegenerationCounts(ctx context.Context, adventureID uuid.UUID) (int, int, error) {
	var scaffold, expansion int
	err := r.db.QueryRow(ctx, `
        SELECT scaffold_regens_used, expansion_regens_used FROM adventures WHERE id = $1
    `, adventureID).Scan(&scaffold, &expansion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, models.ErrNotFound
		}
		return 0, 0, fmt.Errorf("failed to read regeneration counts for %s: %w", adventureID, err)
	}
	return scaffold, expansion, nil
}
