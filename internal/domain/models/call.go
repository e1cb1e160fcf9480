package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/qrave1/RoomMeet/internal/domain/input"
)

// Call - запись о звонке. Ключ звонка - пара (Type, ID).
type Call struct {
	ID          string         `json:"id" db:"id"`
	Type        string         `json:"type" db:"type"`
	CreatorID   uuid.UUID      `json:"created_by" db:"creator_id"`
	StartsAt    *time.Time     `json:"starts_at" db:"starts_at"`
	Description string         `json:"description" db:"description"`
	Custom      types.JSONText `json:"custom" db:"custom"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	EndedAt     *time.Time     `json:"ended_at" db:"ended_at"`
}

func NewCall(in *input.GetOrCreateCallInput) (*Call, error) {
	custom := in.Custom
	if custom == nil {
		custom = map[string]any{}
	}

	raw, err := json.Marshal(custom)
	if err != nil {
		return nil, fmt.Errorf("marshal custom: %w", err)
	}

	description, _ := custom["description"].(string)

	now := time.Now()

	return &Call{
		ID:          in.ID,
		Type:        in.Type,
		CreatorID:   in.CreatorID,
		StartsAt:    in.StartsAt,
		Description: description,
		Custom:      types.JSONText(raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (c *Call) Ended() bool {
	return c.EndedAt != nil
}

// CallMember - участник звонка вместе с данными пользователя.
type CallMember struct {
	CallType  string    `db:"call_type"`
	CallID    string    `db:"call_id"`
	UserID    uuid.UUID `db:"user_id"`
	Username  string    `db:"username"`
	Image     string    `db:"image"`
	CreatedAt time.Time `db:"created_at"`
}
