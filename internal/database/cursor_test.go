package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

	cursor := encodeCursor(ts, id)
	decodedTime, decodedID, err := decodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, ts.Equal(decodedTime))
	assert.Equal(t, id, decodedID)
}

func TestDecodeCursor(t *testing.T) {
	t.Run("empty cursor yields zero values", func(t *testing.T) {
		decodedTime, decodedID, err := decodeCursor("")
		require.NoError(t, err)
		assert.True(t, decodedTime.IsZero())
		assert.Equal(t, uuid.Nil, decodedID)
	})

	t.Run("not base64", func(t *testing.T) {
		_, _, err := decodeCursor("%%%not-base64%%%")
		assert.Error(t, err)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, _, err := decodeCursor("MTIzNDU2Nzg5")
		assert.Error(t, err)
	})

	t.Run("bad uuid", func(t *testing.T) {
		_, _, err := decodeCursor("MTIzNDU2Nzg5X25vdC1hLXV1aWQ=")
		assert.Error(t, err)
	})
}
