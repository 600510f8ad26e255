package generation

import (
	"context"
	"fmt"

	"daggergm/internal/interfaces"
	"daggergm/internal/models"

	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.Generator = (*llmGenerator)(nil)

type llmGenerator struct {
	client AIClient
	logger *zap.Logger
}

// NewGenerator wraps an AI client into the typed Generator used by the
// adventure lifecycle.
func NewGenerator(client AIClient, logger *zap.Logger) interfaces.Generator {
	return &llmGenerator{
		client: client,
		logger: logger.Named("Generator"),
	}
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// generate runs one completion and funnels every failure into
// models.ErrGenerationFailed so callers treat reasons uniformly.
func (g *llmGenerator) generate(ctx context.Context, kind, systemPrompt, userInput string, params GenerationParams) (string, error) {
	raw, usage, err := g.client.GenerateText(ctx, systemPrompt, userInput, params)
	if err != nil {
		g.logger.Warn("Generation failed", zap.String("kind", kind), zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	g.logger.Debug("Generation succeeded",
		zap.String("kind", kind),
		zap.Int("totalTokens", usage.TotalTokens))
	return raw, nil
}

func (g *llmGenerator) GenerateScaffold(ctx context.Context, config models.AdventureConfig) (*models.Scaffold, error) {
	raw, err := g.generate(ctx, "scaffold", scaffoldSystemPrompt, buildScaffoldInput(config), GenerationParams{
		Temperature: floatPtr(0.9),
		MaxTokens:   intPtr(2048),
	})
	if err != nil {
		return nil, err
	}
	scaffold, err := parseScaffold(raw)
	if err != nil {
		g.logger.Warn("Unparseable scaffold response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	return scaffold, nil
}

func (g *llmGenerator) RegenerateMovement(ctx context.Context, target models.Movement, config models.AdventureConfig, locked []models.Movement) (*models.MovementDraft, error) {
	raw, err := g.generate(ctx, "movement", movementSystemPrompt, buildMovementInput(target, config, locked), GenerationParams{
		Temperature: floatPtr(0.9),
		MaxTokens:   intPtr(1024),
	})
	if err != nil {
		return nil, err
	}
	draft, err := parseMovementDraft(raw)
	if err != nil {
		g.logger.Warn("Unparseable movement response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	return draft, nil
}

func (g *llmGenerator) ExpandMovement(ctx context.Context, movement models.Movement, config models.AdventureConfig) (*models.MovementExpansion, error) {
	raw, err := g.generate(ctx, "expansion", expansionSystemPrompt, buildExpansionInput(movement, config), GenerationParams{
		Temperature: floatPtr(0.8),
		MaxTokens:   intPtr(2048),
	})
	if err != nil {
		return nil, err
	}
	expansion, err := parseExpansion(raw)
	if err != nil {
		g.logger.Warn("Unparseable expansion response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	return expansion, nil
}

func (g *llmGenerator) RefineContent(ctx context.Context, movement models.Movement, config models.AdventureConfig, instruction string) (*models.Refinement, error) {
	raw, err := g.generate(ctx, "refinement", refinementSystemPrompt, buildRefinementInput(movement, config, instruction), GenerationParams{
		Temperature: floatPtr(0.7),
		MaxTokens:   intPtr(2048),
	})
	if err != nil {
		return nil, err
	}
	refinement, err := parseRefinement(raw)
	if err != nil {
		g.logger.Warn("Unparseable refinement response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	return refinement, nil
}
