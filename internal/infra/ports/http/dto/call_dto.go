package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/domain/models"
)

type GetOrCreateCallRequest struct {
	Data CallDataRequest `json:"data"`
}

type CallDataRequest struct {
	StartsAt *time.Time     `json:"starts_at,omitempty"`
	Custom   map[string]any `json:"custom,omitempty"`
}

type CallResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	StartsAt    *time.Time      `json:"starts_at,omitempty"`
	Description string          `json:"description"`
	Custom      json.RawMessage `json:"custom,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

func NewCallResponseFromModel(call *models.Call) CallResponse {
	resp := CallResponse{
		ID:          call.ID,
		Type:        call.Type,
		CreatedBy:   call.CreatorID,
		StartsAt:    call.StartsAt,
		Description: call.Description,
		CreatedAt:   call.CreatedAt,
		EndedAt:     call.EndedAt,
	}

	if len(call.Custom) > 0 {
		resp.Custom = json.RawMessage(call.Custom)
	}

	return resp
}

type ListCallsResponse struct {
	Calls []CallResponse `json:"calls"`
}

type UpdateCallMembersRequest struct {
	UpdateMembers []MemberRequest `json:"update_members"`
}

type MemberRequest struct {
	UserID string `json:"user_id"`
}

type MemberResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Image    string    `json:"image"`
}

type QueryMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

func NewQueryMembersResponse(members []models.CallMember) QueryMembersResponse {
	resp := QueryMembersResponse{Members: make([]MemberResponse, 0, len(members))}

	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			UserID:   m.UserID,
			Username: m.Username,
			Image:    m.Image,
		})
	}

	return resp
}
