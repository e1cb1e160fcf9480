package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/application/metric"
	"github.com/qrave1/RoomMeet/internal/domain/events"
	"github.com/qrave1/RoomMeet/internal/domain/runtime"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/memory"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
)

// DefaultCallType используется, если клиент не указал тип звонка
const DefaultCallType = "default"

var ErrNotInCall = errors.New("user is not in a call")

// SessionUsecase управляет живыми сессиями звонков поверх WebSocket
type SessionUsecase interface {
	HandleJoin(ctx context.Context, userID uuid.UUID, event events.JoinEvent) error
	HandleLeave(ctx context.Context, userID uuid.UUID) error
	HandlePing(ctx context.Context, userID uuid.UUID)
	// HandleDisconnect вызывается при закрытии сокета и считается выходом из звонка
	HandleDisconnect(ctx context.Context, userID uuid.UUID)

	// Leave выводит пользователя из живой сессии конкретного звонка
	Leave(ctx context.Context, userID uuid.UUID, callType, callID string)
	BroadcastMembersUpdated(ctx context.Context, callType, callID string)
	// EndSession завершает живую сессию для всех участников
	EndSession(ctx context.Context, callType, callID string)
}

type sessionUsecase struct {
	callRepo repository.CallRepository

	wsRepo     memory.WebsocketConnectionRepository
	activeRepo memory.ActiveMemberRepository
}

func NewSessionUsecase(
	callRepo repository.CallRepository,
	wsRepo memory.WebsocketConnectionRepository,
	activeRepo memory.ActiveMemberRepository,
) SessionUsecase {
	return &sessionUsecase{
		callRepo:   callRepo,
		wsRepo:     wsRepo,
		activeRepo: activeRepo,
	}
}

func (s *sessionUsecase) HandleJoin(ctx context.Context, userID uuid.UUID, event events.JoinEvent) error {
	if event.CallID == "" {
		s.sendError(userID, "call_id is required")
		return nil
	}

	callType := event.CallType
	if callType == "" {
		callType = DefaultCallType
	}

	// Проверяем, что звонок существует в базе данных
	call, err := s.callRepo.GetByID(ctx, callType, event.CallID)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			s.sendError(userID, "call not found")
			s.sendState(userID, event.CallID, events.StateIdle)

			return nil
		}

		return fmt.Errorf("get call: %w", err)
	}

	if call.Ended() {
		s.sendError(userID, "call has ended")
		s.sendState(userID, event.CallID, events.StateEnded)

		return nil
	}

	prev, moved := s.activeRepo.Add(ctx, runtime.ActiveMember{
		UserID:   userID,
		CallType: callType,
		CallID:   event.CallID,
	})
	if moved {
		s.sendState(userID, prev.CallID, events.StateLeft)
	}

	s.sendState(userID, event.CallID, events.StateJoined)

	metric.SetLiveParticipants(s.activeRepo.Count(ctx))

	slog.Info(
		"user joined call",
		slog.Any(constant.UserID, userID),
		slog.String(constant.CallType, callType),
		slog.String(constant.CallID, event.CallID),
	)

	return nil
}

func (s *sessionUsecase) HandleLeave(ctx context.Context, userID uuid.UUID) error {
	member, ok := s.activeRepo.Remove(ctx, userID)
	if !ok {
		return ErrNotInCall
	}

	s.sendState(userID, member.CallID, events.StateLeft)

	metric.SetLiveParticipants(s.activeRepo.Count(ctx))

	return nil
}

func (s *sessionUsecase) HandlePing(ctx context.Context, userID uuid.UUID) {
	s.write(userID, events.Message{Type: events.TypePong})
}

func (s *sessionUsecase) HandleDisconnect(ctx context.Context, userID uuid.UUID) {
	member, ok := s.activeRepo.Remove(ctx, userID)
	if !ok {
		return
	}

	metric.SetLiveParticipants(s.activeRepo.Count(ctx))

	slog.Info(
		"user disconnected from call",
		slog.Any(constant.UserID, userID),
		slog.String(constant.CallID, member.CallID),
	)
}

func (s *sessionUsecase) Leave(ctx context.Context, userID uuid.UUID, callType, callID string) {
	if member, ok := s.activeRepo.GetByID(ctx, userID); ok && member.CallType == callType && member.CallID == callID {
		s.activeRepo.Remove(ctx, userID)
		metric.SetLiveParticipants(s.activeRepo.Count(ctx))
	}

	s.sendState(userID, callID, events.StateLeft)
}

func (s *sessionUsecase) BroadcastMembersUpdated(ctx context.Context, callType, callID string) {
	msg, err := events.NewMessage(events.TypeMembersUpdated, events.MembersUpdatedEvent{CallID: callID})
	if err != nil {
		slog.Error("build members updated event", slog.Any(constant.Error, err))
		return
	}

	for _, member := range s.activeRepo.GetInCall(ctx, callType, callID) {
		s.write(member.UserID, msg)
	}
}

func (s *sessionUsecase) EndSession(ctx context.Context, callType, callID string) {
	for _, member := range s.activeRepo.RemoveCall(ctx, callType, callID) {
		s.sendState(member.UserID, callID, events.StateEnded)
	}

	metric.SetLiveParticipants(s.activeRepo.Count(ctx))
}

func (s *sessionUsecase) sendState(userID uuid.UUID, callID, state string) {
	msg, err := events.NewMessage(events.TypeCallingState, events.CallingStateEvent{CallID: callID, State: state})
	if err != nil {
		slog.Error("build calling state event", slog.Any(constant.Error, err))
		return
	}

	s.write(userID, msg)
}

func (s *sessionUsecase) sendError(userID uuid.UUID, message string) {
	msg, err := events.NewMessage(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		slog.Error("build error event", slog.Any(constant.Error, err))
		return
	}

	s.write(userID, msg)
}

// write не считает ошибкой отсутствие сокета: пользователь может работать только через HTTP
func (s *sessionUsecase) write(userID uuid.UUID, msg events.Message) {
	err := s.wsRepo.Write(userID, msg)
	if err == nil || errors.Is(err, memory.ErrConnectionNotFound) {
		return
	}

	slog.Warn("write to websocket", slog.Any(constant.Error, err), slog.Any(constant.UserID, userID))
}
