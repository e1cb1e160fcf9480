package conference

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/qrave1/RoomMeet/internal/application/constant"
)

type ViewMode int

const (
	// ViewHidden renders nothing: there is no signed-in user.
	ViewHidden ViewMode = iota
	ViewLoading
	ViewLive
)

type BarPosition string

const (
	BarNone  BarPosition = ""
	BarLeft  BarPosition = "left"
	BarRight BarPosition = "right"
)

type Control string

const (
	ControlMute         Control = "mute"
	ControlCamera       Control = "camera"
	ControlScreenShare  Control = "screen-share"
	ControlLeave        Control = "leave"
	ControlLayoutMenu   Control = "layout-menu"
	ControlStats        Control = "stats"
	ControlParticipants Control = "participants"
	ControlInvite       Control = "invite"
	ControlEndCall      Control = "end-call"
)

var liveControls = []Control{
	ControlMute,
	ControlCamera,
	ControlScreenShare,
	ControlLeave,
	ControlLayoutMenu,
	ControlStats,
	ControlParticipants,
	ControlInvite,
}

// RoomView is what the call room renders for the current state.
type RoomView struct {
	Mode  ViewMode
	State CallingState

	Layout          LayoutMode
	Grid            bool
	ParticipantsBar BarPosition

	ShowParticipants bool
	ShowEndCall      bool
	Controls         []Control
}

func (v RoomView) Has(c Control) bool {
	for _, control := range v.Controls {
		if control == c {
			return true
		}
	}

	return false
}

// Controller is the in-call session state machine. The calling state is only
// ever changed by events from the backend; layout and the participants panel
// are local to this client.
type Controller struct {
	sess      *Session
	call      CallHandle
	clipboard Clipboard

	mu               sync.Mutex
	state            CallingState
	layout           LayoutMode
	showParticipants bool

	pubMu sync.Mutex
	views chan RoomView
}

// NewController mounts a call room. It panics when call is nil: a room
// without a call is a caller bug.
func NewController(sess *Session, call CallHandle, clipboard Clipboard) *Controller {
	if call == nil {
		panic("conference: controller requires a call handle")
	}

	return &Controller{
		sess:      sess,
		call:      call,
		clipboard: clipboard,
		state:     CallingStateConnecting,
		layout:    LayoutSpeakerLeft,
		views:     make(chan RoomView, 1),
	}
}

// Run applies calling-state events until ctx is done or the stream closes.
// The subscription is released on return.
func (c *Controller) Run(ctx context.Context) error {
	events, cancel := c.call.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if ev.Kind == EventCallingState {
				c.Apply(ev.State)
			}
		}
	}
}

// Apply moves the machine to state.
func (c *Controller) Apply(state CallingState) {
	c.mu.Lock()
	prev := c.state
	c.state = state
	c.mu.Unlock()

	if prev != state {
		slog.Debug(
			"calling state changed",
			slog.String(constant.CallID, c.call.ID()),
			slog.String("from", prev.String()),
			slog.String(constant.State, state.String()),
		)
	}

	c.publish()
}

func (c *Controller) State() CallingState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Controller) View() RoomView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.viewLocked()
}

// Views delivers the latest view after every change. Views nobody read are
// replaced by newer ones.
func (c *Controller) Views() <-chan RoomView {
	return c.views
}

func (c *Controller) viewLocked() RoomView {
	if c.sess == nil || c.sess.User == nil {
		return RoomView{Mode: ViewHidden, State: c.state}
	}

	if c.state != CallingStateJoined {
		return RoomView{Mode: ViewLoading, State: c.state}
	}

	v := RoomView{
		Mode:             ViewLive,
		State:            c.state,
		Layout:           c.layout,
		ShowParticipants: c.showParticipants,
		ShowEndCall:      c.isOwner(),
		Controls:         append([]Control(nil), liveControls...),
	}

	switch c.layout {
	case LayoutGrid:
		v.Grid = true
	case LayoutSpeakerRight:
		v.ParticipantsBar = BarLeft
	default:
		v.ParticipantsBar = BarRight
	}

	if v.ShowEndCall {
		v.Controls = append(v.Controls, ControlEndCall)
	}

	return v
}

func (c *Controller) isOwner() bool {
	if c.sess == nil || c.sess.User == nil || c.sess.User.ID == "" {
		return false
	}

	return c.sess.User.ID == c.call.Info().CreatedBy
}

// CanEndCall reports whether the end-call-for-everyone control is offered.
func (c *Controller) CanEndCall() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.isOwner()
}

func (c *Controller) SetLayout(layout LayoutMode) error {
	if !layout.Valid() {
		return ErrUnknownLayout
	}

	c.mu.Lock()
	c.layout = layout
	c.mu.Unlock()

	c.publish()

	return nil
}

func (c *Controller) ToggleParticipants() {
	c.mu.Lock()
	c.showParticipants = !c.showParticipants
	c.mu.Unlock()

	c.publish()
}

func (c *Controller) CloseParticipants() {
	c.mu.Lock()
	c.showParticipants = false
	c.mu.Unlock()

	c.publish()
}

// EndCall terminates the call for every participant. Only the creator may.
func (c *Controller) EndCall(ctx context.Context) error {
	if !c.CanEndCall() {
		return ErrNotCallOwner
	}

	if err := c.call.EndCall(ctx); err != nil {
		c.fail("end call", err)
		return err
	}

	c.sess.navigate(RouteRoot)

	return nil
}

// Leave drops only the current user from the call.
func (c *Controller) Leave(ctx context.Context) error {
	if err := c.call.Leave(ctx); err != nil {
		c.fail("leave call", err)
		return err
	}

	c.sess.navigate(RouteRoot)

	return nil
}

// CopyInviteLink puts the room's URL on the clipboard.
func (c *Controller) CopyInviteLink() error {
	path := MeetingRoute(c.call.ID())

	var base string
	if c.sess != nil {
		base = strings.TrimSuffix(c.sess.BaseURL, "/")
	}

	if c.clipboard != nil {
		if err := c.clipboard.WriteText(base + path); err != nil {
			return err
		}
	}

	c.sess.notify(newToast("Meeting Link Copied", 3*time.Second))

	return nil
}

func (c *Controller) fail(op string, err error) {
	slog.Error(op, slog.Any(constant.Error, err), slog.String(constant.CallID, c.call.ID()))

	c.sess.notify(newToast(err.Error(), 3*time.Second))
}

func (c *Controller) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	v := c.View()

	for {
		select {
		case c.views <- v:
			return
		default:
		}

		select {
		case <-c.views:
		default:
		}
	}
}
