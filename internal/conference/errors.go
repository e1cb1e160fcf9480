package conference

import "errors"

var (
	ErrMissingDateTime = errors.New("meeting date and time are required")
	ErrCreationPending = errors.New("meeting creation already in progress")
	ErrEmptyLink       = errors.New("meeting link is empty")
	ErrNotReady        = errors.New("user or call backend not ready")
	ErrNotCallOwner    = errors.New("only the call creator can end the call")
	ErrUnknownLayout   = errors.New("unknown layout")
)
