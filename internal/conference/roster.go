package conference

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qrave1/RoomMeet/internal/application/constant"
)

// AvatarOffset is the horizontal shift between stacked avatars, in pixels.
const AvatarOffset = 28

type Avatar struct {
	UserID string
	Image  string
	Offset int
}

// RosterView is the stacked avatar strip with a member count badge.
type RosterView struct {
	Visible bool
	Avatars []Avatar
	Count   int
}

// Roster tracks the members of one call. Every Refresh replaces the roster
// wholesale; a query that completes after a later query was already applied is
// dropped. Failed queries leave the roster as it was.
type Roster struct {
	call CallHandle

	mu sync.RWMutex
	// seq numbers issued queries; applied is the seq of the roster shown.
	seq     uint64
	applied uint64
	members []CallMember
}

func NewRoster(call CallHandle) *Roster {
	return &Roster{call: call}
}

func (r *Roster) Refresh(ctx context.Context) error {
	if r.call == nil {
		return nil
	}

	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	members, err := r.call.QueryMembers(ctx)
	if err != nil {
		return fmt.Errorf("query members: %w", err)
	}

	members = dedupeMembers(members)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < r.applied {
		slog.Debug("drop superseded members query", slog.String(constant.CallID, r.call.ID()))
		return nil
	}

	r.applied = seq
	r.members = members

	return nil
}

// Run refreshes once on start and again on every membership change pushed by
// the backend, until ctx is done or the stream closes.
func (r *Roster) Run(ctx context.Context) error {
	if r.call == nil {
		return nil
	}

	events, cancel := r.call.Subscribe()
	defer cancel()

	r.refreshLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if ev.Kind == EventMembersUpdated {
				r.refreshLogged(ctx)
			}
		}
	}
}

func (r *Roster) refreshLogged(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		slog.Error("refresh roster", slog.Any(constant.Error, err), slog.String(constant.CallID, r.call.ID()))
	}
}

func (r *Roster) Members() []CallMember {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]CallMember(nil), r.members...)
}

func (r *Roster) Render() RosterView {
	members := r.Members()
	if len(members) == 0 {
		return RosterView{}
	}

	view := RosterView{
		Visible: true,
		Avatars: make([]Avatar, 0, len(members)),
		Count:   len(members),
	}

	for i, m := range members {
		image := m.Image
		if image == "" {
			image = DefaultAvatar
		}

		view.Avatars = append(view.Avatars, Avatar{
			UserID: m.UserID,
			Image:  image,
			Offset: i * AvatarOffset,
		})
	}

	return view
}

func dedupeMembers(members []CallMember) []CallMember {
	seen := make(map[string]struct{}, len(members))
	out := make([]CallMember, 0, len(members))

	for _, m := range members {
		if _, ok := seen[m.UserID]; ok {
			continue
		}

		seen[m.UserID] = struct{}{}
		out = append(out, m)
	}

	return out
}
