package service

import (
	"context"
	"errors"
	"testing"

	"daggergm/internal/interfaces/mocks"
	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type adventureServiceMocks struct {
	adventureRepo *mocks.MockAdventureRepository
	creditRepo    *mocks.MockCreditRepository
	generator     *mocks.MockGenerator
	publisher     *mocks.MockEventPublisher
}

func newTestAdventureService() (AdventureService, *adventureServiceMocks) {
	m := &adventureServiceMocks{
		adventureRepo: new(mocks.MockAdventureRepository),
		creditRepo:    new(mocks.MockCreditRepository),
		generator:     new(mocks.MockGenerator),
		publisher:     new(mocks.MockEventPublisher),
	}
	m.publisher.On("PublishAdventureUpdate", mock.Anything, mock.Anything).Return(nil).Maybe()
	svc := NewAdventureService(m.adventureRepo, m.creditRepo, m.generator, m.publisher, zap.NewNop())
	return svc, m
}

func testScaffold() *models.Scaffold {
	return &models.Scaffold{
		Title: "The Sunken Vault",
		Movements: []models.MovementDraft{
			{Title: "Arrival", Type: "exploration", Description: "The party reaches the ruin.", EstimatedTime: "30m"},
			{Title: "The Warden", Type: "combat", Description: "A construct guards the door."},
		},
	}
}

func testAdventure(ownerID uuid.UUID) *models.Adventure {
	return &models.Adventure{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   "The Sunken Vault",
		Status:  models.StatusScaffolded,
		Config:  models.AdventureConfig{Frame: "high fantasy", PartySize: 4, PartyLevel: 1, Difficulty: "standard"},
		Movements: []models.Movement{
			{ID: uuid.New(), Order: 1, Title: "Arrival", Type: "exploration", Description: "The party reaches the ruin."},
			{ID: uuid.New(), Order: 2, Title: "The Warden", Type: "combat", Description: "A construct guards the door."},
		},
	}
}

func TestCreateAdventure(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, m := newTestAdventureService()

		m.creditRepo.On("Consume", ctx, ownerID, mock.AnythingOfType("*uuid.UUID"), "adventure generation").Return(4, nil).Once()
		m.generator.On("GenerateScaffold", ctx, mock.AnythingOfType("models.AdventureConfig")).Return(testScaffold(), nil).Once()
		m.adventureRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Adventure) bool {
			return a.Status == models.StatusScaffolded &&
				a.OwnerID == ownerID &&
				a.Title == "The Sunken Vault" &&
				len(a.Movements) == 2 &&
				a.Movements[0].Order == 1 &&
				a.Movements[1].Order == 2 &&
				a.Movements[0].ID != uuid.Nil
		})).Return(nil).Once()

		adventure, err := svc.CreateAdventure(ctx, ownerID, models.AdventureConfig{})
		require.NoError(t, err)
		require.NotNil(t, adventure)
		// Unset options get their defaults before generation.
		assert.Equal(t, "high fantasy", adventure.Config.Frame)
		assert.Equal(t, 4, adventure.Config.PartySize)
		assert.False(t, adventure.Movements[0].Confirmed)

		m.creditRepo.AssertExpectations(t)
		m.generator.AssertExpectations(t)
		m.adventureRepo.AssertExpectations(t)
		m.creditRepo.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		svc, m := newTestAdventureService()

		m.creditRepo.On("Consume", ctx, ownerID, mock.AnythingOfType("*uuid.UUID"), "adventure generation").
			Return(0, models.ErrInsufficientCredits).Once()

		_, err := svc.CreateAdventure(ctx, ownerID, models.AdventureConfig{})
		assert.ErrorIs(t, err, models.ErrInsufficientCredits)

		m.generator.AssertNotCalled(t, "GenerateScaffold", mock.Anything, mock.Anything)
		m.creditRepo.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("generation failure refunds exactly once", func(t *testing.T) {
		svc, m := newTestAdventureService()

		var consumedID *uuid.UUID
		m.creditRepo.On("Consume", ctx, ownerID, mock.MatchedBy(func(id *uuid.UUID) bool {
			consumedID = id
			return id != nil && *id != uuid.Nil
		}), "adventure generation").Return(4, nil).Once()
		m.generator.On("GenerateScaffold", ctx, mock.Anything).Return(nil, models.ErrGenerationFailed).Once()
		m.creditRepo.On("Refund", mock.Anything, ownerID, mock.MatchedBy(func(id *uuid.UUID) bool {
			return consumedID != nil && id != nil && *id == *consumedID
		}), "adventure generation").Return(5, nil).Once()

		_, err := svc.CreateAdventure(ctx, ownerID, models.AdventureConfig{})
		assert.ErrorIs(t, err, models.ErrGenerationFailed)

		m.creditRepo.AssertExpectations(t)
		m.adventureRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("persist failure refunds exactly once", func(t *testing.T) {
		svc, m := newTestAdventureService()

		m.creditRepo.On("Consume", ctx, ownerID, mock.Anything, "adventure generation").Return(4, nil).Once()
		m.generator.On("GenerateScaffold", ctx, mock.Anything).Return(testScaffold(), nil).Once()
		m.adventureRepo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed")).Once()
		m.creditRepo.On("Refund", mock.Anything, ownerID, mock.Anything, "adventure generation").Return(5, nil).Once()

		_, err := svc.CreateAdventure(ctx, ownerID, models.AdventureConfig{})
		assert.Error(t, err)
		m.creditRepo.AssertExpectations(t)
	})
}

func TestRegenerateScaffoldMovement(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success preserves id and order", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.Movements[1].Locked = true
		target := adventure.Movements[0]

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.generator.On("RegenerateMovement", ctx, mock.Anything, adventure.Config, mock.MatchedBy(func(locked []models.Movement) bool {
			return len(locked) == 1 && locked[0].ID == adventure.Movements[1].ID
		})).Return(&models.MovementDraft{Title: "Fresh Arrival", Type: "social", Description: "A new opening."}, nil).Once()
		m.adventureRepo.On("ReplaceMovement", ctx, adventure.ID, mock.MatchedBy(func(updated models.Movement) bool {
			return updated.ID == target.ID &&
				updated.Order == target.Order &&
				updated.Title == "Fresh Arrival" &&
				!updated.Confirmed &&
				updated.Content == "" &&
				updated.Expansion == nil
		}), models.StageScaffold, false).Return(3, nil).Once()

		movement, remaining, err := svc.RegenerateScaffoldMovement(ctx, ownerID, adventure.ID, target.ID)
		require.NoError(t, err)
		assert.Equal(t, target.ID, movement.ID)
		assert.Equal(t, 7, remaining)
		m.adventureRepo.AssertExpectations(t)
	})

	t.Run("at cap rejects before generation", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.ScaffoldRegensUsed = models.ScaffoldRegenerationLimit

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.RegenerateScaffoldMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrRegenerationLimitExceeded)
		m.generator.AssertNotCalled(t, "RegenerateMovement", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign adventure is forbidden", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(uuid.New())

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.RegenerateScaffoldMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("unknown movement", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.RegenerateScaffoldMovement(ctx, ownerID, adventure.ID, uuid.New())
		assert.ErrorIs(t, err, models.ErrMovementNotFound)
	})

	t.Run("non-scaffolded adventure rejected", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.Status = models.StatusReady

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.RegenerateScaffoldMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrInvalidStatus)
	})
}

func TestExpandMovement(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		target := adventure.Movements[0]
		expansion := &models.MovementExpansion{Environment: "A flooded antechamber."}

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.generator.On("ExpandMovement", ctx, mock.Anything, adventure.Config).Return(expansion, nil).Once()
		m.adventureRepo.On("ReplaceMovement", ctx, adventure.ID, mock.MatchedBy(func(updated models.Movement) bool {
			return updated.ID == target.ID && updated.Expansion == expansion
		}), models.StageExpansion, true).Return(5, nil).Once()

		movement, remaining, err := svc.ExpandMovement(ctx, ownerID, adventure.ID, target.ID)
		require.NoError(t, err)
		assert.Equal(t, expansion, movement.Expansion)
		assert.Equal(t, 15, remaining)
	})

	t.Run("confirmed movement rejected before generation", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.Movements[0].Confirmed = true

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.ExpandMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrSceneConfirmed)
		m.generator.AssertNotCalled(t, "ExpandMovement", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expansion pool at cap", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.ExpansionRegensUsed = models.ExpansionRegenerationLimit

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		_, _, err := svc.ExpandMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrRegenerationLimitExceeded)
		m.generator.AssertNotCalled(t, "ExpandMovement", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("write-time confirm race surfaces repository error", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		expansion := &models.MovementExpansion{Environment: "A flooded antechamber."}

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.generator.On("ExpandMovement", ctx, mock.Anything, adventure.Config).Return(expansion, nil).Once()
		m.adventureRepo.On("ReplaceMovement", ctx, adventure.ID, mock.Anything, models.StageExpansion, true).
			Return(0, models.ErrSceneConfirmed).Once()

		_, _, err := svc.ExpandMovement(ctx, ownerID, adventure.ID, adventure.Movements[0].ID)
		assert.ErrorIs(t, err, models.ErrSceneConfirmed)
	})
}

func TestRefineMovementContent(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success sets content", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		target := adventure.Movements[1]

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.generator.On("RefineContent", ctx, mock.Anything, adventure.Config, "make it tenser").
			Return(&models.Refinement{Content: "Revised scene text.", Changes: []string{"tension"}}, nil).Once()
		m.adventureRepo.On("ReplaceMovement", ctx, adventure.ID, mock.MatchedBy(func(updated models.Movement) bool {
			return updated.ID == target.ID && updated.Content == "Revised scene text."
		}), models.StageExpansion, true).Return(6, nil).Once()

		movement, remaining, err := svc.RefineMovementContent(ctx, ownerID, adventure.ID, target.ID, "make it tenser")
		require.NoError(t, err)
		assert.Equal(t, "Revised scene text.", movement.Content)
		assert.Equal(t, 14, remaining)
	})

	t.Run("empty instruction rejected", func(t *testing.T) {
		svc, m := newTestAdventureService()
		_, _, err := svc.RefineMovementContent(ctx, ownerID, uuid.New(), uuid.New(), "")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
		m.adventureRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestConfirmAndLock(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("confirm", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		target := adventure.Movements[0]

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("SetMovementConfirmed", ctx, adventure.ID, target.ID, true).Return(nil).Once()

		require.NoError(t, svc.ConfirmMovement(ctx, ownerID, adventure.ID, target.ID))
		m.adventureRepo.AssertExpectations(t)
	})

	t.Run("unconfirm", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.Movements[0].Confirmed = true
		target := adventure.Movements[0]

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("SetMovementConfirmed", ctx, adventure.ID, target.ID, false).Return(nil).Once()

		require.NoError(t, svc.UnconfirmMovement(ctx, ownerID, adventure.ID, target.ID))
	})

	t.Run("lock toggle", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		target := adventure.Movements[1]

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("SetMovementLocked", ctx, adventure.ID, target.ID, true).Return(nil).Once()

		require.NoError(t, svc.SetMovementLock(ctx, ownerID, adventure.ID, target.ID, true))
	})
}

func TestTransitionToReady(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		for i := range adventure.Movements {
			adventure.Movements[i].Confirmed = true
		}

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("TransitionToReady", ctx, adventure.ID).Return(nil).Once()

		require.NoError(t, svc.TransitionToReady(ctx, ownerID, adventure.ID))
	})

	t.Run("unconfirmed scenes rejected", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("TransitionToReady", ctx, adventure.ID).Return(models.ErrNotAllScenesConfirmed).Once()

		err := svc.TransitionToReady(ctx, ownerID, adventure.ID)
		assert.ErrorIs(t, err, models.ErrNotAllScenesConfirmed)
	})

	t.Run("foreign adventure", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(uuid.New())

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		err := svc.TransitionToReady(ctx, ownerID, adventure.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
		m.adventureRepo.AssertNotCalled(t, "TransitionToReady", mock.Anything, mock.Anything)
	})
}

func TestArchiveAdventure(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("archives once", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
		m.adventureRepo.On("UpdateStatus", ctx, adventure.ID, models.StatusArchived).Return(nil).Once()

		require.NoError(t, svc.ArchiveAdventure(ctx, ownerID, adventure.ID))
		m.adventureRepo.AssertExpectations(t)
	})

	t.Run("already archived is a no-op", func(t *testing.T) {
		svc, m := newTestAdventureService()
		adventure := testAdventure(ownerID)
		adventure.Status = models.StatusArchived

		m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()

		require.NoError(t, svc.ArchiveAdventure(ctx, ownerID, adventure.ID))
		m.adventureRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetRegenerationCounts(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	svc, m := newTestAdventureService()
	adventure := testAdventure(ownerID)
	adventure.ScaffoldRegensUsed = 2
	adventure.ExpansionRegensUsed = 11

	m.adventureRepo.On("GetByID", ctx, adventure.ID).Return(adventure, nil).Once()
	m.adventureRepo.On("GetRegenerationCounts", ctx, adventure.ID).Return(2, 11, nil).Once()

	counts, err := svc.GetRegenerationCounts(ctx, ownerID, adventure.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.RegenerationCounts{
		ScaffoldUsed:   2,
		ScaffoldLimit:  models.ScaffoldRegenerationLimit,
		ExpansionUsed:  11,
		ExpansionLimit: models.ExpansionRegenerationLimit,
	}, counts)
}
