package callapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/qrave1/RoomMeet/internal/conference"
	"github.com/qrave1/RoomMeet/internal/infra/ports/http/dto"
)

type callHandle struct {
	client   *Client
	callType string
	id       string

	mu   sync.RWMutex
	info conference.CallInfo
}

func (h *callHandle) ID() string   { return h.id }
func (h *callHandle) Type() string { return h.callType }

func (h *callHandle) Info() conference.CallInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.info
}

func (h *callHandle) GetOrCreate(ctx context.Context, data conference.CallData) (conference.CallInfo, error) {
	req := dto.GetOrCreateCallRequest{Data: dto.CallDataRequest{Custom: data.Custom}}
	if !data.StartsAt.IsZero() {
		startsAt := data.StartsAt.UTC()
		req.Data.StartsAt = &startsAt
	}

	var resp dto.CallResponse
	if err := h.client.do(ctx, http.MethodPost, h.path(""), req, &resp); err != nil {
		return conference.CallInfo{}, fmt.Errorf("get or create call: %w", err)
	}

	return h.store(resp)
}

func (h *callHandle) UpdateCallMembers(ctx context.Context, userIDs []string) error {
	req := dto.UpdateCallMembersRequest{UpdateMembers: make([]dto.MemberRequest, 0, len(userIDs))}
	for _, id := range userIDs {
		req.UpdateMembers = append(req.UpdateMembers, dto.MemberRequest{UserID: id})
	}

	if err := h.client.do(ctx, http.MethodPost, h.path("/members"), req, nil); err != nil {
		return fmt.Errorf("update call members: %w", err)
	}

	return nil
}

func (h *callHandle) QueryMembers(ctx context.Context) ([]conference.CallMember, error) {
	var resp dto.QueryMembersResponse
	if err := h.client.do(ctx, http.MethodGet, h.path("/members"), nil, &resp); err != nil {
		return nil, fmt.Errorf("query call members: %w", err)
	}

	members := make([]conference.CallMember, 0, len(resp.Members))
	for _, m := range resp.Members {
		members = append(members, conference.CallMember{UserID: m.UserID.String(), Image: m.Image})
	}

	return members, nil
}

// Join loads the call record and then asks the backend to attach the user to
// the live session. The resulting state arrives as a pushed event.
func (h *callHandle) Join(ctx context.Context) error {
	var resp dto.CallResponse
	if err := h.client.do(ctx, http.MethodGet, h.path(""), nil, &resp); err != nil {
		return fmt.Errorf("load call: %w", err)
	}

	info, err := h.store(resp)
	if err != nil {
		return err
	}

	if info.EndedAt != nil {
		return ErrCallEnded
	}

	if err = h.client.join(ctx, liveCall{callType: h.callType, callID: h.id}); err != nil {
		return fmt.Errorf("join live session: %w", err)
	}

	return nil
}

func (h *callHandle) Leave(ctx context.Context) error {
	if err := h.client.do(ctx, http.MethodPost, h.path("/leave"), nil, nil); err != nil {
		return fmt.Errorf("leave call: %w", err)
	}

	h.client.forget(h.id)

	return nil
}

func (h *callHandle) EndCall(ctx context.Context) error {
	if err := h.client.do(ctx, http.MethodPost, h.path("/end"), nil, nil); err != nil {
		return fmt.Errorf("end call: %w", err)
	}

	h.client.forget(h.id)

	return nil
}

func (h *callHandle) Subscribe() (<-chan conference.CallEvent, func()) {
	return h.client.subscribe(h.id)
}

func (h *callHandle) path(suffix string) string {
	return "/api/v1/calls/" + url.PathEscape(h.callType) + "/" + url.PathEscape(h.id) + suffix
}

func (h *callHandle) store(resp dto.CallResponse) (conference.CallInfo, error) {
	info, err := callInfoFromResponse(resp)
	if err != nil {
		return conference.CallInfo{}, err
	}

	h.mu.Lock()
	h.info = info
	h.mu.Unlock()

	return info, nil
}

func callInfoFromResponse(resp dto.CallResponse) (conference.CallInfo, error) {
	info := conference.CallInfo{
		ID:          resp.ID,
		Type:        resp.Type,
		CreatedBy:   resp.CreatedBy.String(),
		StartsAt:    resp.StartsAt,
		Description: resp.Description,
		EndedAt:     resp.EndedAt,
	}

	if len(resp.Custom) > 0 {
		if err := json.Unmarshal(resp.Custom, &info.Custom); err != nil {
			return conference.CallInfo{}, fmt.Errorf("decode call custom data: %w", err)
		}
	}

	return info, nil
}
