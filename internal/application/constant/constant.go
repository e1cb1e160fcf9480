package constant

// Ключи атрибутов slog
const (
	Error    = "error"
	UserID   = "user_id"
	UserName = "username"
	CallID   = "call_id"
	CallType = "call_type"
	Intent   = "intent"
	State    = "state"
	Path     = "path"
)
