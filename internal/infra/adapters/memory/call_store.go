package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/domain/models"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
)

type callKey struct {
	callType string
	id       string
}

type memberEntry struct {
	userID  uuid.UUID
	addedAt time.Time
}

// callStore - хранилище звонков в памяти с той же семантикой, что и postgres-репозиторий
type callStore struct {
	users repository.UserRepository

	calls   map[callKey]models.Call
	members map[callKey][]memberEntry
	mu      sync.RWMutex
}

func NewCallStore(users repository.UserRepository) repository.CallRepository {
	return &callStore{
		users:   users,
		calls:   make(map[callKey]models.Call),
		members: make(map[callKey][]memberEntry),
	}
}

func (s *callStore) GetOrCreate(ctx context.Context, call *models.Call) (*models.Call, bool, error) {
	if _, err := s.users.GetUserByID(ctx, call.CreatorID); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := callKey{call.Type, call.ID}

	if stored, ok := s.calls[key]; ok {
		return &stored, false, nil
	}

	s.calls[key] = *call
	stored := *call

	return &stored, true, nil
}

func (s *callStore) GetByID(ctx context.Context, callType, id string) (*models.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	call, ok := s.calls[callKey{callType, id}]
	if !ok {
		return nil, repository.ErrCallNotFound
	}

	return &call, nil
}

func (s *callStore) MarkEnded(ctx context.Context, callType, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := callKey{callType, id}

	call, ok := s.calls[key]
	if !ok || call.EndedAt != nil {
		return nil
	}

	call.EndedAt = &at
	call.UpdatedAt = at
	s.calls[key] = call

	return nil
}

func (s *callStore) UpsertMembers(ctx context.Context, callType, id string, userIDs []uuid.UUID) error {
	for _, userID := range userIDs {
		if _, err := s.users.GetUserByID(ctx, userID); err != nil {
			return fmt.Errorf("add member %s: %w", userID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := callKey{callType, id}
	if _, ok := s.calls[key]; !ok {
		return repository.ErrCallNotFound
	}

	now := time.Now()

	for _, userID := range userIDs {
		exists := slices.ContainsFunc(s.members[key], func(m memberEntry) bool { return m.userID == userID })
		if !exists {
			s.members[key] = append(s.members[key], memberEntry{userID: userID, addedAt: now})
		}
	}

	return nil
}

func (s *callStore) ListMembers(ctx context.Context, callType, id string) ([]models.CallMember, error) {
	s.mu.RLock()
	entries := slices.Clone(s.members[callKey{callType, id}])
	s.mu.RUnlock()

	members := make([]models.CallMember, 0, len(entries))

	for _, entry := range entries {
		user, err := s.users.GetUserByID(ctx, entry.userID)
		if err != nil {
			return nil, fmt.Errorf("get member %s: %w", entry.userID, err)
		}

		members = append(members, models.CallMember{
			CallType:  callType,
			CallID:    id,
			UserID:    user.ID,
			Username:  user.Username,
			Image:     user.Image,
			CreatedAt: entry.addedAt,
		})
	}

	return members, nil
}

func (s *callStore) ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make([]*models.Call, 0)

	for key, entries := range s.members {
		if !slices.ContainsFunc(entries, func(m memberEntry) bool { return m.userID == userID }) {
			continue
		}

		call := s.calls[key]
		if call.EndedAt != nil || call.StartsAt == nil || !call.StartsAt.After(now) {
			continue
		}

		calls = append(calls, &call)
	}

	sort.Slice(calls, func(i, j int) bool {
		return calls[i].StartsAt.Before(*calls[j].StartsAt)
	})

	return calls, nil
}
