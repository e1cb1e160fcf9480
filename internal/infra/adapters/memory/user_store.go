package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/domain/models"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/repository"
)

// userStore - хранилище пользователей в памяти для запуска без postgres
type userStore struct {
	users map[uuid.UUID]models.User
	mu    sync.RWMutex
}

func NewUserStore() repository.UserRepository {
	return &userStore{users: make(map[uuid.UUID]models.User)}
}

func (s *userStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrUsernameTaken
		}
	}

	s.users[user.ID] = *user

	return nil
}

func (s *userStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (s *userStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}
