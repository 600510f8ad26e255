package mocks

import (
	"context"

	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAdventureRepository is a testify mock for interfaces.AdventureRepository.
type MockAdventureRepository struct {
	mock.Mock
}

func (m *MockAdventureRepository) Create(ctx context.Context, adventure *models.Adventure) error {
	args := m.Called(ctx, adventure)
	return args.Error(0)
}

func (m *MockAdventureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Adventure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adventure), args.Error(1)
}

func (m *MockAdventureRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error) {
	args := m.Called(ctx, ownerID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Adventure), args.String(1), args.Error(2)
}

func (m *MockAdventureRepository) ReplaceMovement(ctx context.Context, adventureID uuid.UUID, updated models.Movement, stage models.RegenerationStage, requireUnconfirmed bool) (int, error) {
	args := m.Called(ctx, adventureID, updated, stage, requireUnconfirmed)
	return args.Int(0), args.Error(1)
}

func (m *MockAdventureRepository) SetMovementConfirmed(ctx context.Context, adventureID, movementID uuid.UUID, confirmed bool) error {
	args := m.Called(ctx, adventureID, movementID, confirmed)
	return args.Error(0)
}

func (m *MockAdventureRepository) SetMovementLocked(ctx context.Context, adventureID, movementID uuid.UUID, locked bool) error {
	args := m.Called(ctx, adventureID, movementID, locked)
	return args.Error(0)
}

func (m *MockAdventureRepository) TransitionToReady(ctx context.Context, adventureID uuid.UUID) error {
	args := m.Called(ctx, adventureID)
	return args.Error(0)
}

func (m *MockAdventureRepository) UpdateStatus(ctx context.Context, adventureID uuid.UUID, status models.AdventureStatus) error {
	args := m.Called(ctx, adventureID, status)
	return args.Error(0)
}

func (m *MockAdventureRepository) GetRegenerationCounts(ctx context.Context, adventureID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, adventureID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockCreditRepository is a testify mock for interfaces.CreditRepository.
type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) Consume(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error) {
	args := m.Called(ctx, userID, adventureID, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditRepository) Refund(ctx context.Context, userID uuid.UUID, adventureID *uuid.UUID, reason string) (int, error) {
	args := m.Called(ctx, userID, adventureID, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditRepository) Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error) {
	args := m.Called(ctx, userID, amount, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockGenerator is a testify mock for interfaces.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateScaffold(ctx context.Context, config models.AdventureConfig) (*models.Scaffold, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Scaffold), args.Error(1)
}

func (m *MockGenerator) RegenerateMovement(ctx context.Context, target models.Movement, config models.AdventureConfig, locked []models.Movement) (*models.MovementDraft, error) {
	args := m.Called(ctx, target, config, locked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementDraft), args.Error(1)
}

func (m *MockGenerator) ExpandMovement(ctx context.Context, movement models.Movement, config models.AdventureConfig) (*models.MovementExpansion, error) {
	args := m.Called(ctx, movement, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MovementExpansion), args.Error(1)
}

func (m *MockGenerator) RefineContent(ctx context.Context, movement models.Movement, config models.AdventureConfig, instruction string) (*models.Refinement, error) {
	args := m.Called(ctx, movement, config, instruction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refinement), args.Error(1)
}

// MockEventPublisher is a testify mock for interfaces.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishAdventureUpdate(ctx context.Context, update models.AdventureUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}
