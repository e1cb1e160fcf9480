package events

import (
	"encoding/json"
	"fmt"
)

// Типы сообщений WebSocket
const (
	TypeJoin  = "join"
	TypeLeave = "leave"
	TypePing  = "ping"

	TypePong           = "pong"
	TypeCallingState   = "calling_state"
	TypeMembersUpdated = "members_updated"
	TypeError          = "error"
)

// Состояния звонка, которые сервер отправляет клиенту
const (
	StateIdle   = "idle"
	StateJoined = "joined"
	StateLeft   = "left"
	StateEnded  = "ended"
)

// Message - общее событие
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewMessage(typ string, data any) (Message, error) {
	if data == nil {
		return Message{Type: typ}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s event: %w", typ, err)
	}

	return Message{Type: typ, Data: raw}, nil
}

// JoinEvent - подключение к живой сессии звонка
type JoinEvent struct {
	CallType string `json:"call_type,omitempty"`
	CallID   string `json:"call_id"`
}

// CallingStateEvent - смена состояния звонка у получателя
type CallingStateEvent struct {
	CallID string `json:"call_id"`
	State  string `json:"state"`
}

// MembersUpdatedEvent - изменился список участников
type MembersUpdatedEvent struct {
	CallID string `json:"call_id"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
