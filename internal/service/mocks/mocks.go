package mocks

import (
	"context"

	"daggergm/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAdventureService is a testify mock for service.AdventureService.
type MockAdventureService struct {
	mock.Mock
}

func (m *MockAdventureService) CreateAdventure(ctx context.Context, ownerID uuid.UUID, config models.AdventureConfig) (*models.Adventure, error) {
	args := m.Called(ctx, ownerID, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adventure), args.Error(1)
}

func (m *MockAdventureService) GetAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.Adventure, error) {
	args := m.Called(ctx, ownerID, adventureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Adventure), args.Error(1)
}

func (m *MockAdventureService) ListAdventures(ctx context.Context, ownerID uuid.UUID, cursor string, limit int) ([]models.Adventure, string, error) {
	args := m.Called(ctx, ownerID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Adventure), args.String(1), args.Error(2)
}

func (m *MockAdventureService) RegenerateScaffoldMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	args := m.Called(ctx, ownerID, adventureID, movementID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Movement), args.Int(1), args.Error(2)
}

func (m *MockAdventureService) ExpandMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	args := m.Called(ctx, ownerID, adventureID, movementID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Movement), args.Int(1), args.Error(2)
}

func (m *MockAdventureService) RegenerateExpansion(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) (*models.Movement, int, error) {
	args := m.Called(ctx, ownerID, adventureID, movementID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Movement), args.Int(1), args.Error(2)
}

func (m *MockAdventureService) RefineMovementContent(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, instruction string) (*models.Movement, int, error) {
	args := m.Called(ctx, ownerID, adventureID, movementID, instruction)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(*models.Movement), args.Int(1), args.Error(2)
}

func (m *MockAdventureService) ConfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error {
	args := m.Called(ctx, ownerID, adventureID, movementID)
	return args.Error(0)
}

func (m *MockAdventureService) UnconfirmMovement(ctx context.Context, ownerID, adventureID, movementID uuid.UUID) error {
	args := m.Called(ctx, ownerID, adventureID, movementID)
	return args.Error(0)
}

func (m *MockAdventureService) SetMovementLock(ctx context.Context, ownerID, adventureID, movementID uuid.UUID, locked bool) error {
	args := m.Called(ctx, ownerID, adventureID, movementID, locked)
	return args.Error(0)
}

func (m *MockAdventureService) TransitionToReady(ctx context.Context, ownerID, adventureID uuid.UUID) error {
	args := m.Called(ctx, ownerID, adventureID)
	return args.Error(0)
}

func (m *MockAdventureService) ArchiveAdventure(ctx context.Context, ownerID, adventureID uuid.UUID) error {
	args := m.Called(ctx, ownerID, adventureID)
	return args.Error(0)
}

func (m *MockAdventureService) GetRegenerationCounts(ctx context.Context, ownerID, adventureID uuid.UUID) (*models.RegenerationCounts, error) {
	args := m.Called(ctx, ownerID, adventureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegenerationCounts), args.Error(1)
}

// MockCreditService is a testify mock for service.CreditService.
type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCreditService) Grant(ctx context.Context, userID uuid.UUID, amount int, reason string) (int, error) {
	args := m.Called(ctx, userID, amount, reason)
	return args.Int(0), args.Error(1)
}
