package conference_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomMeet/internal/conference"
)

func TestRoster_Empty(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")
	r := conference.NewRoster(call)

	require.NoError(t, r.Refresh(context.Background()))

	v := r.Render()
	assert.False(t, v.Visible)
	assert.Empty(t, v.Avatars)
	assert.Zero(t, v.Count)
}

func TestRoster_Render(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")
	call.queryFn = func(context.Context) ([]conference.CallMember, error) {
		return []conference.CallMember{
			{UserID: "A", Image: "/a.png"},
			{UserID: "B"},
			{UserID: "A", Image: "/other.png"},
			{UserID: "C", Image: "/c.png"},
		}, nil
	}

	r := conference.NewRoster(call)
	require.NoError(t, r.Refresh(context.Background()))

	v := r.Render()
	require.True(t, v.Visible)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, []conference.Avatar{
		{UserID: "A", Image: "/a.png", Offset: 0},
		{UserID: "B", Image: conference.DefaultAvatar, Offset: conference.AvatarOffset},
		{UserID: "C", Image: "/c.png", Offset: 2 * conference.AvatarOffset},
	}, v.Avatars)
}

func TestRoster_QueryError(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")
	call.queryFn = func(context.Context) ([]conference.CallMember, error) {
		return nil, errors.New("timeout")
	}

	r := conference.NewRoster(call)

	assert.ErrorContains(t, r.Refresh(context.Background()), "timeout")
	assert.Empty(t, r.Members())
}

func TestRoster_DropsSupersededQuery(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")

	var n atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	call.queryFn = func(context.Context) ([]conference.CallMember, error) {
		if n.Add(1) == 1 {
			close(started)
			<-release
			return []conference.CallMember{{UserID: "A"}}, nil
		}

		return []conference.CallMember{{UserID: "B"}}, nil
	}

	r := conference.NewRoster(call)

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	<-started
	require.NoError(t, r.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []conference.CallMember{{UserID: "B"}}, r.Members())
}

func TestRoster_KeepsEarlierResultWhenLaterQueryFails(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")

	var n atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	call.queryFn = func(context.Context) ([]conference.CallMember, error) {
		if n.Add(1) == 1 {
			close(started)
			<-release
			return []conference.CallMember{{UserID: "A"}}, nil
		}

		return nil, errors.New("transient")
	}

	r := conference.NewRoster(call)

	done := make(chan error, 1)
	go func() { done <- r.Refresh(context.Background()) }()

	<-started
	require.Error(t, r.Refresh(context.Background()))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []conference.CallMember{{UserID: "A"}}, r.Members())
}

func TestRoster_RunRefreshesOnMembershipChange(t *testing.T) {
	call := newFakeCall(conference.DefaultCallType, "c1")

	var members atomic.Value
	members.Store([]conference.CallMember{{UserID: "A"}})

	call.queryFn = func(context.Context) ([]conference.CallMember, error) {
		return members.Load().([]conference.CallMember), nil
	}

	r := conference.NewRoster(call)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return r.Render().Count == 1 }, time.Second, 5*time.Millisecond)

	members.Store([]conference.CallMember{{UserID: "A"}, {UserID: "B"}})
	call.push(conference.CallEvent{Kind: conference.EventMembersUpdated, CallID: "c1"})

	require.Eventually(t, func() bool { return r.Render().Count == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
