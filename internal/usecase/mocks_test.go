package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"

	"github.com/qrave1/RoomMeet/internal/domain/events"
	"github.com/qrave1/RoomMeet/internal/domain/models"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockCallRepo struct {
	mock.Mock
}

func (m *mockCallRepo) GetOrCreate(ctx context.Context, call *models.Call) (*models.Call, bool, error) {
	args := m.Called(ctx, call)
	stored, _ := args.Get(0).(*models.Call)
	return stored, args.Bool(1), args.Error(2)
}

func (m *mockCallRepo) GetByID(ctx context.Context, callType, id string) (*models.Call, error) {
	args := m.Called(ctx, callType, id)
	call, _ := args.Get(0).(*models.Call)
	return call, args.Error(1)
}

func (m *mockCallRepo) MarkEnded(ctx context.Context, callType, id string, at time.Time) error {
	return m.Called(ctx, callType, id, at).Error(0)
}

func (m *mockCallRepo) UpsertMembers(ctx context.Context, callType, id string, userIDs []uuid.UUID) error {
	return m.Called(ctx, callType, id, userIDs).Error(0)
}

func (m *mockCallRepo) ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error) {
	args := m.Called(ctx, callType, id)
	members, _ := args.Get(0).([]models.CallMember)
	return members, args.Error(1)
}

func (m *mockCallRepo) ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Call, error) {
	args := m.Called(ctx, userID, now)
	calls, _ := args.Get(0).([]*models.Call)
	return calls, args.Error(1)
}

type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) HandleJoin(ctx context.Context, userID uuid.UUID, event events.JoinEvent) error {
	return m.Called(ctx, userID, event).Error(0)
}

func (m *mockSessionUsecase) HandleLeave(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSessionUsecase) HandlePing(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

func (m *mockSessionUsecase) HandleDisconnect(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

func (m *mockSessionUsecase) Leave(ctx context.Context, userID uuid.UUID, callType, callID string) {
	m.Called(ctx, userID, callType, callID)
}

func (m *mockSessionUsecase) BroadcastMembersUpdated(ctx context.Context, callType, callID string) {
	m.Called(ctx, callType, callID)
}

func (m *mockSessionUsecase) EndSession(ctx context.Context, callType, callID string) {
	m.Called(ctx, callType, callID)
}

// wsRecorder - WebsocketConnectionRepository, запоминающий отправленные сообщения
type wsRecorder struct {
	mock.Mock
}

func (w *wsRecorder) Add(userID uuid.UUID, conn *websocket.Conn) *websocket.Conn {
	return nil
}

func (w *wsRecorder) Remove(userID uuid.UUID, conn *websocket.Conn) bool {
	return true
}

func (w *wsRecorder) Write(userID uuid.UUID, payload any) error {
	return w.Called(userID, payload).Error(0)
}

func (w *wsRecorder) Connected(userID uuid.UUID) bool {
	return true
}

func stateMessage(callID, state string) events.Message {
	msg, _ := events.NewMessage(events.TypeCallingState, events.CallingStateEvent{CallID: callID, State: state})
	return msg
}
