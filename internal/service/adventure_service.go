package service

import (
	"context"
	"time"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const creditReasonAdventure = "adventure generation"

// AdventureService orchestrates the adventure lifecycle: credit consumption,
// generation, regeneration accounting, confirmation, and status transitions.
type AdventureService interface {
	// CreateAdventure consumes one credit, generates the scaffold, and
	// persists the new adventure in status scaffolded. The credit is
	// refunded exactly once if generation or persistence fails.
	CreateAdventure(ctx context.Context, ownerID uuid.UUID, config models.AdventureConfig) (*models.Adventure, error)

	// GetAdventure loads the aggregate, enforcing ownership.
	GetAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.Adventure, error)

	// ListAdventures returns a cursor page of the owner's adventures.
	ListAdventures(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error)

	// RegenerateScaffoldMovement rewrites one movement stub against the
	// scaffold pool. Locked movements are passed to the generator as
	// read-only context; the target keeps its id and order. Returns the
	// updated movement and the remaining scaffold regenerations.
	RegenerateScaffoldMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error)

	// ExpandMovement generates the detail payload for one movement against
	// the expansion pool. Rejected on confirmed movements.
	ExpandMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error)

	// RegenerateExpansion replaces an existing expansion. Same pool and
	// confirmation rules as ExpandMovement.
	RegenerateExpansion(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error)

	// RefineMovementContent rewrites the movement's content per the
	// instruction, against the expansion pool. Rejected on confirmed
	// movements.
	RefineMovementContent(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, instruction string) (*models.Movement, int, error)

	// ConfirmMovement marks a movement as confirmed.
	ConfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error

	// UnconfirmMovement clears the confirmed flag, reopening the movement
	// for expansion-pool operations.
	UnconfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error

	// SetMovementLock toggles the scaffold-regeneration lock flag.
	SetMovementLock(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, locked bool) error

	// TransitionToReady moves a scaffolded adventure with at least one
	// movement, all confirmed, to status ready.
	TransitionToReady(ctx context.Context, ownerID, adventureID uuid.UUID) error

	// ArchiveAdventure sets status archived.
	ArchiveAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) error

	// GetRegenerationCounts reports usage against both caps.
	GetRegenerationCounts(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.RegenerationCounts, error)
}

type adventureServiceImpl struct {
	adventureRepo interfaces.AdventureRepository
	creditRepo    interfaces.CreditRepository
	generator     interfaces.Generator
	publisher     interfaces.EventPublisher
	logger        *zap.Logger
}

// NewAdventureService creates the adventure lifecycle service.
func NewAdventureService(
	adventureRepo interfaces.AdventureRepository,
	creditRepo interfaces.CreditRepository,
	generator interfaces.Generator,
	publisher interfaces.EventPublisher,
	logger *zap.Logger,
) AdventureService {
	return &adventureServiceImpl{
		adventureRepo: adventureRepo,
		creditRepo:    creditRepo,
		generator:     generator,
		publisher:     publisher,
		logger:        logger.Named("AdventureService"),
	}
}

// publishUpdate sends a best-effort lifecycle event. Failures are logged and
// never surfaced to the caller.
func (s *adventureServiceImpl) publishUpdate(ctx context.Context, adventureID, ownerID uuid.UUID, event string, movementID *uuid.UUID) {
	update := models.AdventureUpdate{
		AdventureID: adventureID,
		OwnerID:     ownerID,
		Event:       event,
		MovementID:  movementID,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.publisher.PublishAdventureUpdate(ctx, update); err != nil {
		s.logger.Warn("Failed to publish adventure update",
			zap.String("adventureID", adventureID.String()),
			zap.String("event", event),
			zap.Error(err))
	}
}

// loadOwned loads the aggregate and enforces ownership. A foreign adventure
// returns models.ErrForbidden, keeping it distinguishable from a missing one.
func (s *adventureServiceImpl) loadOwned(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.Adventure, error) {
	adventure, err := s.adventureRepo.GetByID(ctx, adventureID)
	if err != nil {
		return nil, err
	}
	if adventure.OwnerID != ownerID {
		return nil, models.ErrForbidden
	}
	return adventure, nil
}

func (s *adventureServiceImpl) CreateAdventure(ctx context.Context, ownerID uuid.UUID, config models.AdventureConfig) (*models.Adventure, error) {
	config.ApplyDefaults()

	// The adventure id is allocated before the credit is consumed so that a
	// refund on any later failure correlates to exactly this attempt.
	adventureID := uuid.New()
	logFields := []zap.Field{
		zap.String("ownerID", ownerID.String()),
		zap.String("adventureID", adventureID.String()),
	}

	if _, err := s.creditRepo.Consume(ctx, ownerID, &adventureID, creditReasonAdventure); err != nil {
		return nil, err
	}

	scaffold, err := s.generator.GenerateScaffold(ctx, config)
	if err != nil {
		s.logger.Warn("Scaffold generation failed, refunding credit", append(logFields, zap.Error(err))...)
		s.refundCreate(ownerID, adventureID)
		return nil, err
	}

	now := time.Now().UTC()
	adventure := &models.Adventure{
		ID:        adventureID,
		OwnerID:   ownerID,
		Title:     scaffold.Title,
		Status:    models.StatusScaffolded,
		Config:    config,
		Movements: make([]models.Movement, 0, len(scaffold.Movements)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, draft := range scaffold.Movements {
		adventure.Movements = append(adventure.Movements, models.Movement{
			ID:            uuid.New(),
			Order:         i + 1,
			Title:         draft.Title,
			Type:          draft.Type,
			Description:   draft.Description,
			EstimatedTime: draft.EstimatedTime,
		})
	}

	if err := s.adventureRepo.Create(ctx, adventure); err != nil {
		s.logger.Error("Failed to persist adventure, refunding credit", append(logFields, zap.Error(err))...)
		s.refundCreate(ownerID, adventureID)
		return nil, err
	}

	s.logger.Info("Adventure created", append(logFields, zap.Int("movements", len(adventure.Movements)))...)
	s.publishUpdate(ctx, adventureID, ownerID, models.EventAdventureCreated, nil)
	return adventure, nil
}

// refundCreate undoes the single consume of a failed creation. It runs on a
// background context so a cancelled request cannot strand the credit.
func (s *adventureServiceImpl) refundCreate(ownerID, adventureID uuid.UUID) {
	refundCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.creditRepo.Refund(refundCtx, ownerID, &adventureID, creditReasonAdventure); err != nil {
		s.logger.Error("Failed to refund credit for failed creation",
			zap.String("ownerID", ownerID.String()),
			zap.String("adventureID", adventureID.String()),
			zap.Error(err))
	}
}

func (s *adventureServiceImpl) GetAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.Adventure, error) {
	return s.loadOwned(ctx, ownerID, adventureID)
}

func (s *adventureServiceImpl) ListAdventures(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error) {
	return s.adventureRepo.ListByOwner(ctx, ownerID, cursor, limit)
}

// loadMovement loads the aggregate, checks ownership and lifecycle status,
// and locates the movement. All regeneration-family operations start here.
func (s *adventureServiceImpl) loadMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Adventure, *models.Movement, error) {
	adventure, err := s.loadOwned(ctx, ownerID, adventureID)
	if err != nil {
		return nil, nil, err
	}
	if adventure.Status != models.StatusScaffolded {
		return nil, nil, models.ErrInvalidStatus
	}
	movement := adventure.FindMovement(movementID)
	if movement == nil {
		return nil, nil, models.ErrMovementNotFound
	}
	return adventure, movement, nil
}

func (s *adventureServiceImpl) RegenerateScaffoldMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	adventure, movement, err := s.loadMovement(ctx, ownerID, adventureID, movementID)
	if err != nil {
		return nil, 0, err
	}
	// Pre-check before the LLM call; the repository re-enforces the cap
	// under a row lock at write time.
	if adventure.ScaffoldRegensUsed >= models.ScaffoldRegenerationLimit {
		return nil, 0, models.ErrRegenerationLimitExceeded
	}

	locked := adventure.LockedMovements(movementID)
	draft, err := s.generator.RegenerateMovement(ctx, *movement, adventure.Config, locked)
	if err != nil {
		return nil, 0, err
	}

	// A regenerated stub starts over: unconfirmed, no content, no
	// expansion. Identity, order, and the lock flag survive.
	updated := models.Movement{
		ID:            movement.ID,
		Order:         movement.Order,
		Title:         draft.Title,
		Type:          draft.Type,
		Description:   draft.Description,
		EstimatedTime: draft.EstimatedTime,
		Locked:        movement.Locked,
	}

	newCount, err := s.adventureRepo.ReplaceMovement(ctx, adventureID, updated, models.StageScaffold, false)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("Movement regenerated",
		zap.String("adventureID", adventureID.String()),
		zap.String("movementID", movementID.String()),
		zap.Int("scaffoldRegensUsed", newCount))
	s.publishUpdate(ctx, adventureID, ownerID, models.EventMovementRegenerated, &movementID)
	return &updated, models.ScaffoldRegenerationLimit - newCount, nil
}

// expansionWrite applies an expansion-pool mutation produced by mutate. The
// confirmed flag is checked here before the LLM call and re-checked by the
// repository under a row lock.
func (s *adventureServiceImpl) expansionWrite(
	ctx context.Context,
	ownerID, adventureID, movementID uuid.UUID,
	event string,
	mutate func(adventure *models.Adventure, movement models.Movement) (models.Movement, error),
) (*models.Movement, int, error) {
	adventure, movement, err := s.loadMovement(ctx, ownerID, adventureID, movementID)
	if err != nil {
		return nil, 0, err
	}
	if movement.Confirmed {
		return nil, 0, models.ErrSceneConfirmed
	}
	if adventure.ExpansionRegensUsed >= models.ExpansionRegenerationLimit {
		return nil, 0, models.ErrRegenerationLimitExceeded
	}

	updated, err := mutate(adventure, *movement)
	if err != nil {
		return nil, 0, err
	}

	newCount, err := s.adventureRepo.ReplaceMovement(ctx, adventureID, updated, models.StageExpansion, true)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("Movement updated",
		zap.String("adventureID", adventureID.String()),
		zap.String("movementID", movementID.String()),
		zap.String("event", event),
		zap.Int("expansionRegensUsed", newCount))
	s.publishUpdate(ctx, adventureID, ownerID, event, &movementID)
	return &updated, models.ExpansionRegenerationLimit - newCount, nil
}

func (s *adventureServiceImpl) ExpandMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	return s.expansionWrite(ctx, ownerID, adventureID, movementID, models.EventMovementExpanded,
		func(adventure *models.Adventure, movement models.Movement) (models.Movement, error) {
			expansion, err := s.generator.ExpandMovement(ctx, movement, adventure.Config)
			if err != nil {
				return models.Movement{}, err
			}
			movement.Expansion = expansion
			return movement, nil
		})
}

func (s *adventureServiceImpl) RegenerateExpansion(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	return s.expansionWrite(ctx, ownerID, adventureID, movementID, models.EventMovementExpanded,
		func(adventure *models.Adventure, movement models.Movement) (models.Movement, error) {
			expansion, err := s.generator.ExpandMovement(ctx, movement, adventure.Config)
			if err != nil {
				return models.Movement{}, err
			}
			movement.Expansion = expansion
			return movement, nil
		})
}

func (s *adventureServiceImpl) RefineMovementContent(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, instruction string) (*models.Movement, int, error) {
	if instruction == "" {
		return nil, 0, models.ErrInvalidInput
	}
	return s.expansionWrite(ctx, ownerID, adventureID, movementID, models.EventMovementRefined,
		func(adventure *models.Adventure, movement models.Movement) (models.Movement, error) {
			refinement, err := s.generator.RefineContent(ctx, movement, adventure.Config, instruction)
			if err != nil {
				return models.Movement{}, err
			}
			movement.Content = refinement.Content
			return movement, nil
		})
}

func (s *adventureServiceImpl) ConfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error {
	return s.setConfirmed(ctx, ownerID, adventureID, movementID, true)
}

func (s *adventureServiceImpl) UnconfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error {
	return s.setConfirmed(ctx, ownerID, adventureID, movementID, false)
}

func (s *adventureServiceImpl) setConfirmed(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, confirmed bool) error {
	if _, _, err := s.loadMovement(ctx, ownerID, adventureID, movementID); err != nil {
		return err
	}
	if err := s.adventureRepo.SetMovementConfirmed(ctx, adventureID, movementID, confirmed); err != nil {
		return err
	}
	event := models.EventMovementConfirmed
	if !confirmed {
		event = models.EventMovementUnconfirmed
	}
	s.publishUpdate(ctx, adventureID, ownerID, event, &movementID)
	return nil
}

func (s *adventureServiceImpl) SetMovementLock(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, locked bool) error {
	if _, _, err := s.loadMovement(ctx, ownerID, adventureID, movementID); err != nil {
		return err
	}
	return s.adventureRepo.SetMovementLocked(ctx, adventureID, movementID, locked)
}

func (s *adventureServiceImpl) TransitionToReady(ctx context.Context, ownerID, adventureID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, adventureID); err != nil {
		return err
	}
	// The guard (scaffolded, at least one movement, all confirmed) runs
	// inside the update statement so a racing unconfirm cannot slip past.
	if err := s.adventureRepo.TransitionToReady(ctx, adventureID); err != nil {
		return err
	}
	s.logger.Info("Adventure ready", zap.String("adventureID", adventureID.String()))
	s.publishUpdate(ctx, adventureID, ownerID, models.EventAdventureReady, nil)
	return nil
}

func (s *adventureServiceImpl) ArchiveAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) error {
	adventure, err := s.loadOwned(ctx, ownerID, adventureID)
	if err != nil {
		return err
	}
	if adventure.Status == models.StatusArchived {
		return nil
	}
	if err := s.adventureRepo.UpdateStatus(ctx, adventureID, models.StatusArchived); err != nil {
		return err
	}
	s.logger.Info("Adventure archived", zap.String("adventureID", adventureID.String()))
	s.publishUpdate(ctx, adventureID, ownerID, models.EventAdventureArchived, nil)
	return nil
}

func (s *adventureServiceImpl) GetRegenerationCounts(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.RegenerationCounts, error) {
	if _, err := s.loadOwned(ctx, ownerID, adventureID); err != nil {
		return nil, err
	}
	scaffold, expansion, err := s.adventureRepo.GetRegenerationCounts(ctx, adventureID)
	if err != nil {
		return nil, err
	}
	return &models.RegenerationCounts{
		ScaffoldUsed:   scaffold,
		ScaffoldLimit:  models.ScaffoldRegenerationLimit,
		ExpansionUsed:  expansion,
		ExpansionLimit: models.ExpansionRegenerationLimit,
	}, nil
}
