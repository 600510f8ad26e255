package generation

import (
	"fmt"
	"strings"

	"daggergm/internal/models"
)

const scaffoldSystemPrompt = `You are an experienced game master designing a one-shot tabletop adventure.
Produce a skeletal adventure outline as strict JSON with this shape:
{"title": "...", "movements": [{"title": "...", "type": "...", "description": "...", "estimated_time": "..."}]}
Movement "type" is one of: combat, exploration, social, puzzle, rest.
Produce between 4 and 6 movements that form a coherent narrative arc.
Respond with JSON only, no prose and no markdown fences.`

const movementSystemPrompt = `You are an experienced game master revising a single movement of a tabletop adventure.
Produce a replacement movement stub as strict JSON with this shape:
{"title": "...", "type": "...", "description": "...", "estimated_time": "..."}
Movement "type" is one of: combat, exploration, social, puzzle, rest.
The replacement must stay consistent with any locked movements given as context.
Respond with JSON only, no prose and no markdown fences.`

const expansionSystemPrompt = `You are an experienced game master expanding one movement of a tabletop adventure into a playable scene.
Produce the expansion as strict JSON with this shape:
{"npcs": [{"name": "...", "role": "...", "description": "..."}],
 "adversaries": [{"name": "...", "count": 1, "description": "..."}],
 "environment": "...", "loot": ["..."], "mechanics": "...", "gm_notes": "..."}
Every field is optional except "environment".
Respond with JSON only, no prose and no markdown fences.`

const refinementSystemPrompt = `You are an experienced game master revising scene content per the user's instruction.
Produce the result as strict JSON with this shape:
{"content": "...", "changes": ["..."]}
"content" is the full revised scene text, "changes" briefly lists what changed.
Respond with JSON only, no prose and no markdown fences.`

func describeConfig(config models.AdventureConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame: %s\n", config.Frame)
	if config.Focus != "" {
		fmt.Fprintf(&b, "Focus: %s\n", config.Focus)
	}
	fmt.Fprintf(&b, "Party: %d characters at level %d\n", config.PartySize, config.PartyLevel)
	fmt.Fprintf(&b, "Difficulty: %s\n", config.Difficulty)
	if config.Stakes != "" {
		fmt.Fprintf(&b, "Stakes: %s\n", config.Stakes)
	}
	return b.String()
}

func buildScaffoldInput(config models.AdventureConfig) string {
	return "Design an adventure with these parameters:\n" + describeConfig(config)
}

func buildMovementInput(target models.Movement, config models.AdventureConfig, locked []models.Movement) string {
	var b strings.Builder
	b.WriteString("Adventure parameters:\n")
	b.WriteString(describeConfig(config))
	fmt.Fprintf(&b, "\nReplace movement %d (%q, type %s):\n%s\n", target.Order, target.Title, target.Type, target.Description)
	if len(locked) > 0 {
		b.WriteString("\nLocked movements that must remain consistent:\n")
		for _, m := range locked {
			fmt.Fprintf(&b, "- movement %d (%q, type %s): %s\n", m.Order, m.Title, m.Type, m.Description)
		}
	}
	return b.String()
}

func buildExpansionInput(movement models.Movement, config models.AdventureConfig) string {
	var b strings.Builder
	b.WriteString("Adventure parameters:\n")
	b.WriteString(describeConfig(config))
	fmt.Fprintf(&b, "\nExpand movement %d (%q, type %s):\n%s\n", movement.Order, movement.Title, movement.Type, movement.Description)
	return b.String()
}

func buildRefinementInput(movement models.Movement, config models.AdventureConfig, instruction string) string {
	var b strings.Builder
	b.WriteString("Adventure parameters:\n")
	b.WriteString(describeConfig(config))
	fmt.Fprintf(&b, "\nCurrent content of movement %d (%q):\n%s\n", movement.Order, movement.Title, movement.Content)
	if movement.Content == "" {
		fmt.Fprintf(&b, "%s\n", movement.Description)
	}
	fmt.Fprintf(&b, "\nInstruction: %s\n", instruction)
	return b.String()
}
