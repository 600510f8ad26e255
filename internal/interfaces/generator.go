package interfaces

import (
	"context"

	"daggergm/internal/models"
)

// Generator is the typed gateway to the LLM provider. Every call is
// synchronous from the caller's perspective and either returns a fully
// parsed result or an error wrapping models.ErrGenerationFailed; the
// lifecycle treats all failure reasons uniformly.
type Generator interface {
	// GenerateScaffold produces the initial adventure skeleton.
	GenerateScaffold(ctx context.Context, config models.AdventureConfig) (*models.Scaffold, error)

	// RegenerateMovement rewrites one movement stub. Locked movements are
	// passed as read-only context to keep the narrative consistent; they
	// are never mutated by this call.
	RegenerateMovement(ctx context.Context, target models.Movement, config models.AdventureConfig, locked []models.Movement) (*models.MovementDraft, error)

	// ExpandMovement produces the detail payload for one movement.
	ExpandMovement(ctx context.Context, movement models.Movement, config models.AdventureConfig) (*models.MovementExpansion, error)

	// RefineContent rewrites a movement's content per the instruction.
	RefineContent(ctx context.Context, movement models.Movement, config models.AdventureConfig, instruction string) (*models.Refinement, error)
}
