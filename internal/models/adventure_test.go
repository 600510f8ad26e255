package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAllConfirmed(t *testing.T) {
	t.Run("no movements is never confirmed", func(t *testing.T) {
		a := &Adventure{}
		assert.False(t, a.AllConfirmed())
	})

	t.Run("one unconfirmed movement", func(t *testing.T) {
		a := &Adventure{Movements: []Movement{
			{ID: uuid.New(), Confirmed: true},
			{ID: uuid.New(), Confirmed: false},
		}}
		assert.False(t, a.AllConfirmed())
	})

	t.Run("all confirmed", func(t *testing.T) {
		a := &Adventure{Movements: []Movement{
			{ID: uuid.New(), Confirmed: true},
			{ID: uuid.New(), Confirmed: true},
		}}
		assert.True(t, a.AllConfirmed())
	})
}

func TestLockedMovements(t *testing.T) {
	target := uuid.New()
	other := uuid.New()
	a := &Adventure{Movements: []Movement{
		{ID: target, Locked: true},
		{ID: other, Locked: true},
		{ID: uuid.New(), Locked: false},
	}}

	locked := a.LockedMovements(target)
	assert.Len(t, locked, 1)
	assert.Equal(t, other, locked[0].ID)
}

func TestApplyDefaults(t *testing.T) {
	cfg := AdventureConfig{Focus: "heist"}
	cfg.ApplyDefaults()
	assert.Equal(t, "high fantasy", cfg.Frame)
	assert.Equal(t, 4, cfg.PartySize)
	assert.Equal(t, 1, cfg.PartyLevel)
	assert.Equal(t, "standard", cfg.Difficulty)
	assert.Equal(t, "heist", cfg.Focus)

	// Explicit values are left alone.
	cfg = AdventureConfig{Frame: "noir", PartySize: 6, PartyLevel: 5, Difficulty: "deadly"}
	cfg.ApplyDefaults()
	assert.Equal(t, "noir", cfg.Frame)
	assert.Equal(t, 6, cfg.PartySize)
}

func TestStageLimits(t *testing.T) {
	assert.Equal(t, 10, StageScaffold.Limit())
	assert.Equal(t, 20, StageExpansion.Limit())
}
