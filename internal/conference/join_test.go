package conference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomMeet/internal/conference"
)

func TestJoinByLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
		err  error
	}{
		{name: "room path", link: "/meeting/abc", want: "/meeting/abc"},
		{name: "full url", link: "https://meet.example.com/meeting/abc", want: "https://meet.example.com/meeting/abc"},
		{name: "not a meeting link", link: "hello world", want: "hello world"},
		{name: "surrounding spaces", link: "  /meeting/x  ", want: "/meeting/x"},
		{name: "empty", link: "", err: conference.ErrEmptyLink},
		{name: "blank", link: "   ", err: conference.ErrEmptyLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r := conference.NewJoinResolver(newSession("U1", newFakeBackend(), rec))

			got, err := r.JoinByLink(tt.link)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, rec.navigated())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{tt.want}, rec.navigated())
		})
	}
}

func TestJoinByRoute(t *testing.T) {
	t.Run("joins the live session", func(t *testing.T) {
		backend := newFakeBackend()
		r := conference.NewJoinResolver(newSession("U1", backend, &recorder{}))

		call, err := r.JoinByRoute(context.Background(), "abc")
		require.NoError(t, err)

		assert.Equal(t, "abc", call.ID())
		assert.Equal(t, conference.DefaultCallType, call.Type())

		_, _, joins, _, _ := backend.call(conference.DefaultCallType, "abc").counts()
		assert.Equal(t, 1, joins)
	})

	t.Run("backend error", func(t *testing.T) {
		backend := newFakeBackend()
		backend.call(conference.DefaultCallType, "missing").joinErr = errors.New("call not found")

		r := conference.NewJoinResolver(newSession("U1", backend, &recorder{}))

		call, err := r.JoinByRoute(context.Background(), "missing")

		assert.Nil(t, call)
		assert.ErrorContains(t, err, "call not found")
		assert.ErrorContains(t, err, "missing")
	})

	t.Run("not ready", func(t *testing.T) {
		r := conference.NewJoinResolver(newSession("", newFakeBackend(), &recorder{}))

		_, err := r.JoinByRoute(context.Background(), "abc")
		assert.ErrorIs(t, err, conference.ErrNotReady)

		r = conference.NewJoinResolver(newSession("U1", nil, &recorder{}))

		_, err = r.JoinByRoute(context.Background(), "abc")
		assert.ErrorIs(t, err, conference.ErrNotReady)
	})
}

func TestMeetingIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{path: "/meeting/abc", id: "abc", ok: true},
		{path: "https://meet.example.com/meeting/abc", id: "abc", ok: true},
		{path: "/meeting/abc?tab=chat", id: "abc", ok: true},
		{path: "/meeting/abc/", id: "abc", ok: true},
		{path: "/meeting/", ok: false},
		{path: "/upcoming", ok: false},
		{path: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id, ok := conference.MeetingIDFromPath(tt.path)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}
