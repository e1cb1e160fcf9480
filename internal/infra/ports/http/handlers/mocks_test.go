package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/qrave1/RoomMeet/internal/domain/input"
	"github.com/qrave1/RoomMeet/internal/domain/models"
)

type mockCallUsecase struct {
	mock.Mock
}

func (m *mockCallUsecase) GetOrCreate(ctx context.Context, in *input.GetOrCreateCallInput) (*models.Call, error) {
	args := m.Called(ctx, in)
	call, _ := args.Get(0).(*models.Call)
	return call, args.Error(1)
}

func (m *mockCallUsecase) GetCall(ctx context.Context, callType, id string) (*models.Call, error) {
	args := m.Called(ctx, callType, id)
	call, _ := args.Get(0).(*models.Call)
	return call, args.Error(1)
}

func (m *mockCallUsecase) UpdateMembers(ctx context.Context, in *input.UpdateCallMembersInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockCallUsecase) ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error) {
	args := m.Called(ctx, callType, id)
	members, _ := args.Get(0).([]models.CallMember)
	return members, args.Error(1)
}

func (m *mockCallUsecase) EndCall(ctx context.Context, callType, id string, userID uuid.UUID) error {
	return m.Called(ctx, callType, id, userID).Error(0)
}

func (m *mockCallUsecase) LeaveCall(ctx context.Context, callType, id string, userID uuid.UUID) error {
	return m.Called(ctx, callType, id, userID).Error(0)
}

func (m *mockCallUsecase) ListUpcoming(ctx context.Context, userID uuid.UUID) ([]*models.Call, error) {
	args := m.Called(ctx, userID)
	calls, _ := args.Get(0).([]*models.Call)
	return calls, args.Error(1)
}

type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserUsecase) ValidateCredentials(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserUsecase) GenerateJWT(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}
