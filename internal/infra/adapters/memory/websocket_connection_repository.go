package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrConnectionNotFound = errors.New("websocket connection not found")

// WebsocketConnectionRepository интерфейс для работы с активными сессиями в памяти.
// На пользователя хранится одно соединение.
type WebsocketConnectionRepository interface {
	// Add сохраняет соединение и возвращает предыдущее соединение пользователя, если оно было
	Add(userID uuid.UUID, conn *websocket.Conn) (prev *websocket.Conn)
	// Remove удаляет соединение, только если оно всё ещё текущее для пользователя
	Remove(userID uuid.UUID, conn *websocket.Conn) bool

	Write(userID uuid.UUID, payload any) error
	Connected(userID uuid.UUID) bool
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type wsConnectionRepository struct {
	// wsConns хранит map[user_id]*ws.conn
	wsConns map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]*safeWS, 10),
	}
}

func (w *wsConnectionRepository) Add(userID uuid.UUID, conn *websocket.Conn) *websocket.Conn {
	w.mu.Lock()
	defer w.mu.Unlock()

	var prev *websocket.Conn
	if old, ok := w.wsConns[userID]; ok {
		prev = old.conn
	}

	w.wsConns[userID] = &safeWS{conn: conn}

	return prev
}

func (w *wsConnectionRepository) Remove(userID uuid.UUID, conn *websocket.Conn) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	current, ok := w.wsConns[userID]
	if !ok || current.conn != conn {
		return false
	}

	delete(w.wsConns, userID)

	return true
}

func (w *wsConnectionRepository) Write(userID uuid.UUID, payload any) error {
	safews, ok := w.getSafeWS(userID)
	if !ok {
		return fmt.Errorf("write to %s: %w", userID, ErrConnectionNotFound)
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	if err := safews.conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("write to %s: %w", userID, err)
	}

	return nil
}

func (w *wsConnectionRepository) Connected(userID uuid.UUID) bool {
	_, ok := w.getSafeWS(userID)
	return ok
}

func (w *wsConnectionRepository) getSafeWS(userID uuid.UUID) (*safeWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[userID]
	return conn, ok
}
