package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomMeet/internal/application/config"
	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/application/metric"
	"github.com/qrave1/RoomMeet/internal/domain/events"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/memory"
	"github.com/qrave1/RoomMeet/internal/infra/appctx"
	"github.com/qrave1/RoomMeet/internal/usecase"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var errUnknownMessage = errors.New("unknown message type")

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	wsRepo         memory.WebsocketConnectionRepository
	sessionUsecase usecase.SessionUsecase
}

func NewWebSocketHandler(
	cfg *config.Config,
	wsRepo memory.WebsocketConnectionRepository,
	sessionUsecase usecase.SessionUsecase,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				origin := r.Header.Get("Origin")

				// Консольный клиент не отправляет Origin
				return origin == "" || origin == cfg.Domain
			},
		},
		wsRepo:         wsRepo,
		sessionUsecase: sessionUsecase,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("WebSocket upgrade error", slog.Any(constant.Error, err))
		return nil
	}
	defer ws.Close()

	// Новое соединение вытесняет старое
	if prev := h.wsRepo.Add(userID, ws); prev != nil {
		prev.Close()
	}

	metric.IncrementWSActiveConnections()

	ctx, cancel := context.WithCancel(c.Request().Context())

	defer func() {
		cancel()

		if h.wsRepo.Remove(userID, ws) {
			h.sessionUsecase.HandleDisconnect(context.WithoutCancel(ctx), userID)
		}

		metric.DecrementWSActiveConnections()
	}()

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go keepAlive(ctx, ws)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("webSocket read error", slog.Any(constant.Error, err), slog.Any(constant.UserID, userID))
			}

			return nil
		}

		var msg events.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("unmarshal websocket message", slog.Any(constant.Error, err))
			h.writeError(userID, "malformed message")

			continue
		}

		if err = h.handleMessage(ctx, userID, &msg); err != nil {
			slog.Error("handle message", slog.Any(constant.Error, err), slog.String("type", msg.Type))
			h.writeError(userID, err.Error())
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, userID uuid.UUID, msg *events.Message) error {
	switch msg.Type {
	case events.TypeJoin:
		var joinEvent events.JoinEvent

		if err := json.Unmarshal(msg.Data, &joinEvent); err != nil {
			return fmt.Errorf("unmarshal join event: %w", err)
		}

		if err := h.sessionUsecase.HandleJoin(ctx, userID, joinEvent); err != nil {
			return fmt.Errorf("handle join: %w", err)
		}

	case events.TypeLeave:
		if err := h.sessionUsecase.HandleLeave(ctx, userID); err != nil {
			return fmt.Errorf("handle leave: %w", err)
		}

	case events.TypePing:
		h.sessionUsecase.HandlePing(ctx, userID)

	default:
		return fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}

	return nil
}

func (h *WebSocketHandler) writeError(userID uuid.UUID, message string) {
	msg, err := events.NewMessage(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		return
	}

	if err = h.wsRepo.Write(userID, msg); err != nil {
		slog.Warn("write error event", slog.Any(constant.Error, err))
	}
}

// keepAlive шлёт ping, пока соединение живо. WriteControl безопасен при параллельной записи.
func keepAlive(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
