package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/domain/input"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomMeet/internal/infra/appctx"
	"github.com/qrave1/RoomMeet/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomMeet/internal/usecase"
)

const filterUpcoming = "upcoming"

type CallHandler struct {
	callUsecase usecase.CallUsecase
}

func NewCallHandler(callUsecase usecase.CallUsecase) *CallHandler {
	return &CallHandler{callUsecase: callUsecase}
}

func (h *CallHandler) GetOrCreateCall(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.GetOrCreateCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	call, err := h.callUsecase.GetOrCreate(c.Request().Context(), &input.GetOrCreateCallInput{
		Type:      c.Param("type"),
		ID:        c.Param("id"),
		CreatorID: userID,
		StartsAt:  req.Data.StartsAt,
		Custom:    req.Data.Custom,
	})
	if err != nil {
		return callError(c, "get or create call", err)
	}

	return c.JSON(http.StatusOK, dto.NewCallResponseFromModel(call))
}

func (h *CallHandler) GetCall(c echo.Context) error {
	call, err := h.callUsecase.GetCall(c.Request().Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		return callError(c, "get call", err)
	}

	return c.JSON(http.StatusOK, dto.NewCallResponseFromModel(call))
}

func (h *CallHandler) UpdateCallMembers(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.UpdateCallMembersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	userIDs := make([]uuid.UUID, 0, len(req.UpdateMembers))
	for _, m := range req.UpdateMembers {
		id, err := uuid.Parse(m.UserID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user_id " + m.UserID})
		}

		userIDs = append(userIDs, id)
	}

	err := h.callUsecase.UpdateMembers(c.Request().Context(), &input.UpdateCallMembersInput{
		Type:     c.Param("type"),
		ID:       c.Param("id"),
		CallerID: userID,
		UserIDs:  userIDs,
	})
	if err != nil {
		return callError(c, "update call members", err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CallHandler) QueryCallMembers(c echo.Context) error {
	members, err := h.callUsecase.ListMembers(c.Request().Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		return callError(c, "query call members", err)
	}

	return c.JSON(http.StatusOK, dto.NewQueryMembersResponse(members))
}

func (h *CallHandler) EndCall(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	if err := h.callUsecase.EndCall(c.Request().Context(), c.Param("type"), c.Param("id"), userID); err != nil {
		return callError(c, "end call", err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CallHandler) LeaveCall(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	if err := h.callUsecase.LeaveCall(c.Request().Context(), c.Param("type"), c.Param("id"), userID); err != nil {
		return callError(c, "leave call", err)
	}

	return c.NoContent(http.StatusOK)
}

func (h *CallHandler) ListCalls(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	if filter := c.QueryParam("filter"); filter != filterUpcoming {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported filter " + filter})
	}

	calls, err := h.callUsecase.ListUpcoming(c.Request().Context(), userID)
	if err != nil {
		return callError(c, "list upcoming calls", err)
	}

	resp := dto.ListCallsResponse{Calls: make([]dto.CallResponse, 0, len(calls))}
	for _, call := range calls {
		resp.Calls = append(resp.Calls, dto.NewCallResponseFromModel(call))
	}

	return c.JSON(http.StatusOK, resp)
}

// callError переводит ошибки usecase в HTTP-ответ
func callError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrCallNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "call not found"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, usecase.ErrCallEnded):
		return c.JSON(http.StatusConflict, map[string]string{"error": "call has ended"})
	}

	slog.Error(
		op,
		slog.Any(constant.Error, err),
		slog.String(constant.CallType, c.Param("type")),
		slog.String(constant.CallID, c.Param("id")),
	)

	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to " + op})
}
