package conference

import (
	"context"
	"fmt"
	"strings"
)

type JoinResolver struct {
	sess *Session
}

func NewJoinResolver(sess *Session) *JoinResolver {
	return &JoinResolver{sess: sess}
}

// JoinByLink navigates to a pasted meeting link. The link is not validated:
// whatever the user typed is handed to the router as is.
func (r *JoinResolver) JoinByLink(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrEmptyLink
	}

	r.sess.navigate(link)

	return link, nil
}

// JoinByRoute attaches the current user to the live session of callID.
// A nonexistent call surfaces as the backend's error.
func (r *JoinResolver) JoinByRoute(ctx context.Context, callID string) (CallHandle, error) {
	if !r.sess.ready() {
		return nil, ErrNotReady
	}

	call := r.sess.Backend.Call(DefaultCallType, callID)
	if call == nil {
		return nil, fmt.Errorf("join call %s: no call handle", callID)
	}

	if err := call.Join(ctx); err != nil {
		return nil, fmt.Errorf("join call %s: %w", callID, err)
	}

	return call, nil
}
