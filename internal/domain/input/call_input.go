package input

import (
	"time"

	"github.com/google/uuid"
)

type GetOrCreateCallInput struct {
	Type      string
	ID        string
	CreatorID uuid.UUID
	StartsAt  *time.Time
	Custom    map[string]any
}

type UpdateCallMembersInput struct {
	Type     string
	ID       string
	CallerID uuid.UUID
	UserIDs  []uuid.UUID
}
