package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScaffold(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		raw := `{"title": "The Sunken Vault", "movements": [
			{"title": "Arrival", "type": "exploration", "description": "The party reaches the flooded ruin.", "estimated_time": "30m"},
			{"title": "The Warden", "type": "combat", "description": "A construct guards the vault door."}
		]}`
		scaffold, err := parseScaffold(raw)
		require.NoError(t, err)
		assert.Equal(t, "The Sunken Vault", scaffold.Title)
		require.Len(t, scaffold.Movements, 2)
		assert.Equal(t, "exploration", scaffold.Movements[0].Type)
		assert.Equal(t, "30m", scaffold.Movements[0].EstimatedTime)
	})

	t.Run("markdown fences with prose", func(t *testing.T) {
		raw := "Here is your adventure:\n```json\n{\"title\": \"T\", \"movements\": [{\"title\": \"A\", \"type\": \"social\", \"description\": \"d\"}]}\n```"
		scaffold, err := parseScaffold(raw)
		require.NoError(t, err)
		assert.Equal(t, "T", scaffold.Title)
	})

	t.Run("truncated response recovered", func(t *testing.T) {
		raw := `{"title": "T", "movements": [{"title": "A", "type": "combat", "description": "fight`
		scaffold, err := parseScaffold(raw)
		require.NoError(t, err)
		require.Len(t, scaffold.Movements, 1)
		assert.Equal(t, "fight", scaffold.Movements[0].Description)
	})

	t.Run("no movements rejected", func(t *testing.T) {
		_, err := parseScaffold(`{"title": "T", "movements": []}`)
		assert.Error(t, err)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		_, err := parseScaffold(`{"movements": [{"title": "A", "type": "combat", "description": "d"}]}`)
		assert.Error(t, err)
	})

	t.Run("not JSON rejected", func(t *testing.T) {
		_, err := parseScaffold("I cannot help with that.")
		assert.Error(t, err)
	})
}

func TestParseMovementDraft(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		draft, err := parseMovementDraft(`{"title": "Ambush", "type": "combat", "description": "Bandits strike.", "estimated_time": "45m"}`)
		require.NoError(t, err)
		assert.Equal(t, "Ambush", draft.Title)
	})

	t.Run("empty description rejected", func(t *testing.T) {
		_, err := parseMovementDraft(`{"title": "Ambush", "type": "combat"}`)
		assert.Error(t, err)
	})
}

func TestParseExpansion(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		raw := `{"environment": "A collapsed shrine.", "npcs": [{"name": "Vessa", "role": "guide"}], "loot": ["silvered dagger"]}`
		expansion, err := parseExpansion(raw)
		require.NoError(t, err)
		assert.Equal(t, "A collapsed shrine.", expansion.Environment)
		require.Len(t, expansion.NPCs, 1)
		assert.Equal(t, "Vessa", expansion.NPCs[0].Name)
	})

	t.Run("empty expansion rejected", func(t *testing.T) {
		_, err := parseExpansion(`{}`)
		assert.Error(t, err)
	})
}

func TestParseRefinement(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		refinement, err := parseRefinement(`{"content": "Revised scene text.", "changes": ["tightened pacing"]}`)
		require.NoError(t, err)
		assert.Equal(t, "Revised scene text.", refinement.Content)
		assert.Equal(t, []string{"tightened pacing"}, refinement.Changes)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := parseRefinement(`{"changes": ["x"]}`)
		assert.Error(t, err)
	})
}

func TestBalanceJSON(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2]}`, balanceJSON(`{"a": [1, 2]}`))
	assert.Equal(t, `{"a": [1, 2]}`, balanceJSON(`{"a": [1, 2`))
	assert.Equal(t, `{"a": "b"}`, balanceJSON(`{"a": "b`))
	assert.Equal(t, `{"a": "b}"}`, balanceJSON(`{"a": "b}`))
}
