package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/domain/runtime"
)

// ActiveMemberRepository хранит участников живых сессий звонков
type ActiveMemberRepository interface {
	// Add переносит пользователя в живую сессию звонка. Возвращает прежнюю сессию, если она была.
	Add(ctx context.Context, member runtime.ActiveMember) (prev runtime.ActiveMember, moved bool)
	Remove(ctx context.Context, userID uuid.UUID) (runtime.ActiveMember, bool)
	GetByID(ctx context.Context, userID uuid.UUID) (runtime.ActiveMember, bool)
	GetInCall(ctx context.Context, callType, callID string) []runtime.ActiveMember

	// RemoveCall очищает живую сессию звонка и возвращает тех, кто в ней был
	RemoveCall(ctx context.Context, callType, callID string) []runtime.ActiveMember

	Count(ctx context.Context) int
}

type activeMemberRepository struct {
	members map[uuid.UUID]runtime.ActiveMember
	mu      sync.RWMutex
}

func NewActiveMemberRepository() ActiveMemberRepository {
	return &activeMemberRepository{
		members: make(map[uuid.UUID]runtime.ActiveMember),
	}
}

func (r *activeMemberRepository) Add(ctx context.Context, member runtime.ActiveMember) (runtime.ActiveMember, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.members[member.UserID]
	r.members[member.UserID] = member

	moved := ok && (prev.CallType != member.CallType || prev.CallID != member.CallID)

	return prev, moved
}

func (r *activeMemberRepository) Remove(ctx context.Context, userID uuid.UUID) (runtime.ActiveMember, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[userID]
	delete(r.members, userID)

	return member, ok
}

func (r *activeMemberRepository) GetByID(ctx context.Context, userID uuid.UUID) (runtime.ActiveMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[userID]

	return member, ok
}

func (r *activeMemberRepository) GetInCall(ctx context.Context, callType, callID string) []runtime.ActiveMember {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []runtime.ActiveMember

	for _, member := range r.members {
		if member.CallType == callType && member.CallID == callID {
			members = append(members, member)
		}
	}

	return members
}

func (r *activeMemberRepository) RemoveCall(ctx context.Context, callType, callID string) []runtime.ActiveMember {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []runtime.ActiveMember

	for userID, member := range r.members {
		if member.CallType == callType && member.CallID == callID {
			removed = append(removed, member)
			delete(r.members, userID)
		}
	}

	return removed
}

func (r *activeMemberRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}
