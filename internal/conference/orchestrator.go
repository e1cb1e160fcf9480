package conference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomMeet/internal/application/constant"
)

// Orchestrator creates instant and scheduled meetings and dispatches the main
// menu intents.
type Orchestrator struct {
	sess *Session
	join *JoinResolver

	now   func() time.Time
	newID func() string

	pending atomic.Bool
}

type OrchestratorOption func(*Orchestrator)

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = newID }
}

func NewOrchestrator(sess *Session, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		sess:  sess,
		join:  NewJoinResolver(sess),
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Select handles a main menu choice.
func (o *Orchestrator) Select(ctx context.Context, intent MeetingIntent, draft MeetingDraft) (string, error) {
	switch intent {
	case IntentInstant, IntentSchedule:
		return o.CreateMeeting(ctx, intent, draft)
	case IntentJoin:
		return o.join.JoinByLink(draft.Link)
	case IntentViewRecordings:
		o.sess.navigate(RouteRecordings)
		return RouteRecordings, nil
	default:
		return "", fmt.Errorf("select %s: unsupported intent", intent)
	}
}

// CreateMeeting creates a call for intent and navigates to its destination.
// A missing user or backend is not an error: the user is redirected instead.
// On failure the draft is left to the caller untouched so the dialog can retry.
func (o *Orchestrator) CreateMeeting(ctx context.Context, intent MeetingIntent, draft MeetingDraft) (string, error) {
	if o.sess == nil || o.sess.User == nil {
		o.sess.navigate(RouteLogin)
		return RouteLogin, nil
	}

	if o.sess.Backend == nil {
		o.sess.navigate(RouteRoot)
		return RouteRoot, nil
	}

	if !intent.requiresDateTime() {
		return "", fmt.Errorf("create meeting: %s does not create a call", intent)
	}

	if !o.pending.CompareAndSwap(false, true) {
		return "", ErrCreationPending
	}
	defer o.pending.Store(false)

	if draft.DateTime.IsZero() {
		o.sess.notify(newToast("Please select a date and time", 3*time.Second))
		return "", ErrMissingDateTime
	}

	call, err := o.createCall(ctx, draft)
	if err != nil {
		slog.Error(
			"create meeting",
			slog.Any(constant.Error, err),
			slog.String(constant.Intent, intent.String()),
			slog.String(constant.UserID, o.sess.User.ID),
		)

		o.sess.notify(newToast("Failed to create Meeting "+err.Error(), 3*time.Second))

		return "", err
	}

	switch intent {
	case IntentInstant:
		target := MeetingRoute(call.ID())
		o.sess.navigate(target)
		o.sess.notify(newToast("Setting up your meeting", 3*time.Second))

		return target, nil
	default:
		o.sess.navigate(RouteUpcoming)
		o.sess.notify(newToast(
			fmt.Sprintf("Your meeting is scheduled at %s", draft.DateTime.Format(time.RFC1123)),
			5*time.Second,
		))

		return RouteUpcoming, nil
	}
}

func (o *Orchestrator) createCall(ctx context.Context, draft MeetingDraft) (CallHandle, error) {
	call := o.sess.Backend.Call(DefaultCallType, o.newID())
	if call == nil {
		return nil, fmt.Errorf("failed to create meeting")
	}

	startsAt := draft.DateTime
	if startsAt.IsZero() {
		startsAt = o.now()
	}

	description := strings.TrimSpace(draft.Description)
	if description == "" {
		description = DefaultDescription
	}

	_, err := call.GetOrCreate(ctx, CallData{
		StartsAt: startsAt.UTC(),
		Custom:   map[string]any{"description": description},
	})
	if err != nil {
		return nil, fmt.Errorf("get or create call: %w", err)
	}

	// Creation does not make the creator a member.
	if err = call.UpdateCallMembers(ctx, []string{o.sess.User.ID}); err != nil {
		return nil, fmt.Errorf("update call members: %w", err)
	}

	return call, nil
}
