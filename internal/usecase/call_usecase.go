package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/application/metric"
	"github.com/qrave1/RoomMeet/internal/domain/input"
	"github.com/qrave1/RoomMeet/internal/domain/models"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrCallEnded = errors.New("call has ended")
)

type CallUsecase interface {
	GetOrCreate(ctx context.Context, in *input.GetOrCreateCallInput) (*models.Call, error)
	GetCall(ctx context.Context, callType, id string) (*models.Call, error)

	// UpdateMembers добавляет участников. Менять состав может создатель или уже добавленный участник.
	UpdateMembers(ctx context.Context, in *input.UpdateCallMembersInput) error
	ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error)

	// EndCall завершает звонок для всех. Доступно только создателю.
	EndCall(ctx context.Context, callType, id string, userID uuid.UUID) error
	LeaveCall(ctx context.Context, callType, id string, userID uuid.UUID) error

	ListUpcoming(ctx context.Context, userID uuid.UUID) ([]*models.Call, error)
}

type callUsecase struct {
	callRepo       repository.CallRepository
	sessionUsecase SessionUsecase

	now func() time.Time
}

func NewCallUsecase(callRepo repository.CallRepository, sessionUsecase SessionUsecase) CallUsecase {
	return &callUsecase{
		callRepo:       callRepo,
		sessionUsecase: sessionUsecase,
		now:            time.Now,
	}
}

func (uc *callUsecase) GetOrCreate(ctx context.Context, in *input.GetOrCreateCallInput) (*models.Call, error) {
	call, err := models.NewCall(in)
	if err != nil {
		return nil, fmt.Errorf("new call: %w", err)
	}

	stored, created, err := uc.callRepo.GetOrCreate(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("get or create call: %w", err)
	}

	if created {
		metric.CallCreated(stored.Type)

		slog.Info(
			"call created",
			slog.String(constant.CallType, stored.Type),
			slog.String(constant.CallID, stored.ID),
			slog.Any(constant.UserID, stored.CreatorID),
		)
	}

	return stored, nil
}

func (uc *callUsecase) GetCall(ctx context.Context, callType, id string) (*models.Call, error) {
	return uc.callRepo.GetByID(ctx, callType, id)
}

func (uc *callUsecase) UpdateMembers(ctx context.Context, in *input.UpdateCallMembersInput) error {
	call, err := uc.callRepo.GetByID(ctx, in.Type, in.ID)
	if err != nil {
		return fmt.Errorf("get call: %w", err)
	}

	if call.Ended() {
		return ErrCallEnded
	}

	if call.CreatorID != in.CallerID {
		members, err := uc.callRepo.ListMembers(ctx, in.Type, in.ID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}

		isMember := slices.ContainsFunc(members, func(m models.CallMember) bool {
			return m.UserID == in.CallerID
		})
		if !isMember {
			return ErrForbidden
		}
	}

	if len(in.UserIDs) == 0 {
		return nil
	}

	if err = uc.callRepo.UpsertMembers(ctx, in.Type, in.ID, in.UserIDs); err != nil {
		return fmt.Errorf("upsert members: %w", err)
	}

	uc.sessionUsecase.BroadcastMembersUpdated(ctx, in.Type, in.ID)

	return nil
}

func (uc *callUsecase) ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error) {
	if _, err := uc.callRepo.GetByID(ctx, callType, id); err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}

	return uc.callRepo.ListMembers(ctx, callType, id)
}

func (uc *callUsecase) EndCall(ctx context.Context, callType, id string, userID uuid.UUID) error {
	call, err := uc.callRepo.GetByID(ctx, callType, id)
	if err != nil {
		return fmt.Errorf("get call: %w", err)
	}

	if call.CreatorID != userID {
		return ErrForbidden
	}

	if call.Ended() {
		return ErrCallEnded
	}

	if err = uc.callRepo.MarkEnded(ctx, callType, id, uc.now()); err != nil {
		return fmt.Errorf("mark ended: %w", err)
	}

	metric.CallEnded(callType)

	uc.sessionUsecase.EndSession(ctx, callType, id)

	slog.Info("call ended", slog.String(constant.CallType, callType), slog.String(constant.CallID, id))

	return nil
}

func (uc *callUsecase) LeaveCall(ctx context.Context, callType, id string, userID uuid.UUID) error {
	if _, err := uc.callRepo.GetByID(ctx, callType, id); err != nil {
		return fmt.Errorf("get call: %w", err)
	}

	uc.sessionUsecase.Leave(ctx, userID, callType, id)

	return nil
}

func (uc *callUsecase) ListUpcoming(ctx context.Context, userID uuid.UUID) ([]*models.Call, error) {
	calls, err := uc.callRepo.ListUpcoming(ctx, userID, uc.now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming: %w", err)
	}

	return calls, nil
}
