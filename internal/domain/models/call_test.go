package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomMeet/internal/domain/input"
)

func TestNewCall(t *testing.T) {
	startsAt := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	creator := uuid.New()

	call, err := NewCall(&input.GetOrCreateCallInput{
		Type:      "default",
		ID:        "abc",
		CreatorID: creator,
		StartsAt:  &startsAt,
		Custom:    map[string]any{"description": "Weekly sync"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc", call.ID)
	assert.Equal(t, creator, call.CreatorID)
	assert.Equal(t, "Weekly sync", call.Description)
	assert.JSONEq(t, `{"description":"Weekly sync"}`, call.Custom.String())
	assert.False(t, call.Ended())
}

func TestNewCall_NoCustom(t *testing.T) {
	call, err := NewCall(&input.GetOrCreateCallInput{Type: "default", ID: "abc"})
	require.NoError(t, err)

	assert.Empty(t, call.Description)
	assert.JSONEq(t, `{}`, call.Custom.String())
}
