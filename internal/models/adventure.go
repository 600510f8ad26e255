package models

import (
	"time"

	"github.com/google/uuid"
)

// AdventureStatus describes where an adventure sits in its lifecycle.
type AdventureStatus string

const (
	StatusDraft      AdventureStatus = "draft"
	StatusScaffolded AdventureStatus = "scaffolded"
	StatusReady      AdventureStatus = "ready"
	StatusArchived   AdventureStatus = "archived"
)

// RegenerationStage identifies which regeneration pool an operation draws from.
type RegenerationStage string

const (
	StageScaffold  RegenerationStage = "scaffold"
	StageExpansion RegenerationStage = "expansion"
)

// Per-adventure regeneration caps. Scaffold regenerations rewrite movement
// stubs; every scene-level operation (expand, regenerate, refine) draws from
// the shared expansion pool.
const (
	ScaffoldRegenerationLimit  = 10
	ExpansionRegenerationLimit = 20
)

// Limit returns the fixed cap for the stage.
func (s RegenerationStage) Limit() int {
	if s == StageScaffold {
		return ScaffoldRegenerationLimit
	}
	return ExpansionRegenerationLimit
}

// AdventureConfig enumerates every recognized generation option. Defaults are
// applied once at construction (see ApplyDefaults), not at call sites.
type AdventureConfig struct {
	Frame      string `json:"frame"`
	Focus      string `json:"focus"`
	PartySize  int    `json:"party_size"`
	PartyLevel int    `json:"party_level"`
	Difficulty string `json:"difficulty"`
	Stakes     string `json:"stakes"`
}

// ApplyDefaults fills unset options with their defaults.
func (c *AdventureConfig) ApplyDefaults() {
	if c.Frame == "" {
		c.Frame = "high fantasy"
	}
	if c.PartySize <= 0 {
		c.PartySize = 4
	}
	if c.PartyLevel <= 0 {
		c.PartyLevel = 1
	}
	if c.Difficulty == "" {
		c.Difficulty = "standard"
	}
}

// NPC is a non-player character produced by scene expansion.
type NPC struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
}

// Adversary is an opposing creature or faction in an expanded scene.
type Adversary struct {
	Name        string `json:"name"`
	Count       int    `json:"count,omitempty"`
	Description string `json:"description,omitempty"`
}

// MovementExpansion is the optional detail payload attached to a movement
// after a successful expansion.
type MovementExpansion struct {
	NPCs        []NPC       `json:"npcs,omitempty"`
	Adversaries []Adversary `json:"adversaries,omitempty"`
	Environment string      `json:"environment,omitempty"`
	Loot        []string    `json:"loot,omitempty"`
	Mechanics   string      `json:"mechanics,omitempty"`
	GMNotes     string      `json:"gm_notes,omitempty"`
}

// Movement is one narrative unit of an adventure. Movements live inside the
// adventure aggregate (a jsonb array column), not as separately addressable
// rows. Order is assigned at scaffold creation and never reassigned.
type Movement struct {
	ID            uuid.UUID          `json:"id"`
	Order         int                `json:"order"`
	Title         string             `json:"title"`
	Type          string             `json:"type"`
	Description   string             `json:"description"`
	EstimatedTime string             `json:"estimated_time,omitempty"`
	Content       string             `json:"content,omitempty"`
	Confirmed     bool               `json:"confirmed"`
	Locked        bool               `json:"locked"`
	Expansion     *MovementExpansion `json:"expansion,omitempty"`
}

// Adventure is the aggregate root for the generation workflow.
type Adventure struct {
	ID                  uuid.UUID       `json:"id"`
	OwnerID             uuid.UUID       `json:"owner_id"`
	Title               string          `json:"title"`
	Status              AdventureStatus `json:"status"`
	Config              AdventureConfig `json:"config"`
	Movements           []Movement      `json:"movements"`
	ScaffoldRegensUsed  int             `json:"scaffold_regenerations_used"`
	ExpansionRegensUsed int             `json:"expansion_regenerations_used"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// FindMovement returns the movement with the given id, or nil.
func (a *Adventure) FindMovement(id uuid.UUID) *Movement {
	for i := range a.Movements {
		if a.Movements[i].ID == id {
			return &a.Movements[i]
		}
	}
	return nil
}

// AllConfirmed reports whether every movement is confirmed. An adventure with
// no movements is never considered confirmed.
func (a *Adventure) AllConfirmed() bool {
	if len(a.Movements) == 0 {
		return false
	}
	for i := range a.Movements {
		if !a.Movements[i].Confirmed {
			return false
		}
	}
	return true
}

// RegenerationsUsed returns the counter for the stage.
func (a *Adventure) RegenerationsUsed(stage RegenerationStage) int {
	if stage == StageScaffold {
		return a.ScaffoldRegensUsed
	}
	return a.ExpansionRegensUsed
}

// LockedMovements returns movements flagged as locked, excluding the one with
// the given id. They are passed to the generator as read-only narrative
// context during scaffold regeneration.
func (a *Adventure) LockedMovements(exclude uuid.UUID) []Movement {
	var locked []Movement
	for i := range a.Movements {
		if a.Movements[i].Locked && a.Movements[i].ID != exclude {
			locked = append(locked, a.Movements[i])
		}
	}
	return locked
}

// Scaffold is the initial skeletal structure returned by the generator.
type Scaffold struct {
	Title     string          `json:"title"`
	Movements []MovementDraft `json:"movements"`
}

// MovementDraft is the generator's shape for a single movement stub. It
// carries no identity or order; those are assigned by the lifecycle.
type MovementDraft struct {
	Title         string `json:"title"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// Refinement is the result of an instruction-driven content rewrite.
type Refinement struct {
	Content string   `json:"content"`
	Changes []string `json:"changes,omitempty"`
}

// RegenerationCounts reports usage against the fixed caps.
type RegenerationCounts struct {
	ScaffoldUsed   int `json:"scaffold_used"`
	ScaffoldLimit  int `json:"scaffold_limit"`
	ExpansionUsed  int `json:"expansion_used"`
	ExpansionLimit int `json:"expansion_limit"`
}

// AdventureUpdate is the payload published to the updates queue after a
// successful mutation. Delivery is best effort.
type AdventureUpdate struct {
	AdventureID uuid.UUID  `json:"adventure_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Event       string     `json:"event"`
	MovementID  *uuid.UUID `json:"movement_id,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Event names used in AdventureUpdate payloads.
const (
	EventAdventureCreated    = "adventure.created"
	EventAdventureReady      = "adventure.ready"
	EventAdventureArchived   = "adventure.archived"
	EventMovementRegenerated = "movement.regenerated"
	EventMovementExpanded    = "movement.expanded"
	EventMovementRefined     = "movement.refined"
	EventMovementConfirmed   = "movement.confirmed"
	EventMovementUnconfirmed = "movement.unconfirmed"
)
