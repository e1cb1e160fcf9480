package conference

import (
	"context"
	"strings"
)

// CallBackend is the real-time call service. It hands out handles; creating a
// handle performs no network call.
type CallBackend interface {
	Call(callType, id string) CallHandle
}

// CallHandle is the shared reference to one call. Components read it
// concurrently and mutate it only through these operations.
type CallHandle interface {
	ID() string
	Type() string

	// Info returns the last call record loaded by GetOrCreate or Join.
	Info() CallInfo

	GetOrCreate(ctx context.Context, data CallData) (CallInfo, error)
	UpdateCallMembers(ctx context.Context, userIDs []string) error
	QueryMembers(ctx context.Context) ([]CallMember, error)

	// Join attaches the current user to the call's live session.
	Join(ctx context.Context) error
	Leave(ctx context.Context) error
	EndCall(ctx context.Context) error

	// Subscribe delivers pushed events in arrival order until cancel is called.
	Subscribe() (events <-chan CallEvent, cancel func())
}

type Router interface {
	Push(path string)
}

type Notifier interface {
	Notify(n Notification)
}

type Clipboard interface {
	WriteText(text string) error
}

// Session is the ambient context shared by every component for the lifetime of
// a signed-in client. A nil User or Backend means "not ready yet".
type Session struct {
	User     *User
	Backend  CallBackend
	Router   Router
	Notifier Notifier

	// BaseURL is prefixed to route paths when building invite links.
	BaseURL string
}

func (s *Session) ready() bool {
	return s != nil && s.User != nil && s.Backend != nil
}

func (s *Session) navigate(path string) {
	if s != nil && s.Router != nil {
		s.Router.Push(path)
	}
}

func (s *Session) notify(n Notification) {
	if s != nil && s.Notifier != nil {
		s.Notifier.Notify(n)
	}
}

const (
	RouteRoot       = "/"
	RouteLogin      = "/login"
	RouteUpcoming   = "/upcoming"
	RouteRecordings = "/recordings"

	meetingRoutePrefix = "/meeting/"
)

func MeetingRoute(callID string) string {
	return meetingRoutePrefix + callID
}

// MeetingIDFromPath extracts the call id from a room route or a full link
// ending in one. It returns false when no id is present.
func MeetingIDFromPath(path string) (string, bool) {
	i := strings.LastIndex(path, meetingRoutePrefix)
	if i < 0 {
		return "", false
	}

	id := path[i+len(meetingRoutePrefix):]
	if j := strings.IndexAny(id, "/?#"); j >= 0 {
		id = id[:j]
	}

	return id, id != ""
}
