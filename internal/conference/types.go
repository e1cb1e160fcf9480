// Package conference holds the client-side meeting lifecycle: creating and
// joining calls against a call backend and the in-call session state machine.
// Rendering is expressed as view models so the package has no UI dependency.
package conference

import (
	"fmt"
	"time"
)

// DefaultCallType is the backend call type every meeting is created with.
const DefaultCallType = "default"

const (
	DefaultDescription = "No description"
	DefaultAvatar      = "/assets/avatar.png"
)

// User is the authenticated user as seen by the client.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type CallingState int

const (
	CallingStateUnknown CallingState = iota
	CallingStateIdle
	CallingStateConnecting
	CallingStateJoined
	CallingStateReconnecting
	CallingStateLeft
	CallingStateEnded
)

var callingStateNames = map[CallingState]string{
	CallingStateUnknown:      "unknown",
	CallingStateIdle:         "idle",
	CallingStateConnecting:   "connecting",
	CallingStateJoined:       "joined",
	CallingStateReconnecting: "reconnecting",
	CallingStateLeft:         "left",
	CallingStateEnded:        "ended",
}

func (s CallingState) String() string {
	if name, ok := callingStateNames[s]; ok {
		return name
	}

	return "unknown"
}

// ParseCallingState maps a wire name to a CallingState. Unrecognised names map
// to CallingStateUnknown, which never renders live controls.
func ParseCallingState(name string) CallingState {
	for state, n := range callingStateNames {
		if n == name {
			return state
		}
	}

	return CallingStateUnknown
}

type LayoutMode string

const (
	LayoutGrid         LayoutMode = "grid"
	LayoutSpeakerLeft  LayoutMode = "speaker-left"
	LayoutSpeakerRight LayoutMode = "speaker-right"
)

// Layouts is the fixed set offered by the layout menu, in menu order.
var Layouts = []LayoutMode{LayoutGrid, LayoutSpeakerLeft, LayoutSpeakerRight}

func (l LayoutMode) Valid() bool {
	switch l {
	case LayoutGrid, LayoutSpeakerLeft, LayoutSpeakerRight:
		return true
	default:
		return false
	}
}

type MeetingIntent int

const (
	IntentInstant MeetingIntent = iota + 1
	IntentSchedule
	IntentJoin
	IntentViewRecordings
)

func (i MeetingIntent) String() string {
	switch i {
	case IntentInstant:
		return "instant"
	case IntentSchedule:
		return "schedule"
	case IntentJoin:
		return "join"
	case IntentViewRecordings:
		return "recordings"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// requiresDateTime reports whether the intent creates a call and so needs a start time.
func (i MeetingIntent) requiresDateTime() bool {
	return i == IntentInstant || i == IntentSchedule
}

// MeetingDraft is the transient input of the creation dialog.
// A zero DateTime means the user cleared the picker.
type MeetingDraft struct {
	DateTime    time.Time
	Description string
	Link        string
}

func NewMeetingDraft(now time.Time) MeetingDraft {
	return MeetingDraft{DateTime: now}
}

type CallData struct {
	StartsAt time.Time
	Custom   map[string]any
}

// CallInfo is the backend's record of a call.
type CallInfo struct {
	ID          string
	Type        string
	CreatedBy   string
	StartsAt    *time.Time
	Description string
	Custom      map[string]any
	EndedAt     *time.Time
}

type CallMember struct {
	UserID string `json:"user_id"`
	Image  string `json:"image,omitempty"`
}

type EventKind int

const (
	EventCallingState EventKind = iota + 1
	EventMembersUpdated
)

// CallEvent is a notification pushed by the backend for one call.
type CallEvent struct {
	Kind   EventKind
	CallID string
	State  CallingState
}

// Notification is a transient toast.
type Notification struct {
	Message  string
	Duration time.Duration
	Class    string
}

const toastClass = "!bg-gray-300 !rounded-3xl !py-8 !px-5 !justify-center"

func newToast(msg string, d time.Duration) Notification {
	return Notification{Message: msg, Duration: d, Class: toastClass}
}
