package runtime

import "github.com/google/uuid"

// ActiveMember - пользователь, подключённый к живой сессии звонка.
// У пользователя одновременно не больше одной живой сессии.
type ActiveMember struct {
	UserID   uuid.UUID `json:"user_id"`
	CallType string    `json:"call_type"`
	CallID   string    `json:"call_id"`
}
