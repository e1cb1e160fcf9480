package memory

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsPair поднимает эхо-сервер и возвращает серверную и клиентскую стороны соединения
func wsPair(t *testing.T) (server *websocket.Conn, client *websocket.Conn) {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-conns:
	case <-time.After(time.Second):
		t.Fatal("server side was not accepted")
	}
	t.Cleanup(func() { server.Close() })

	return server, client
}

func TestWSConnectionRepository_Write(t *testing.T) {
	repo := NewWSConnectionRepository()
	userID := uuid.New()

	assert.ErrorIs(t, repo.Write(userID, "x"), ErrConnectionNotFound)

	server, client := wsPair(t)
	assert.Nil(t, repo.Add(userID, server))
	assert.True(t, repo.Connected(userID))

	require.NoError(t, repo.Write(userID, map[string]string{"type": "pong"}))

	var got map[string]string
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, "pong", got["type"])
}

func TestWSConnectionRepository_ReplaceAndRemove(t *testing.T) {
	repo := NewWSConnectionRepository()
	userID := uuid.New()

	first, _ := wsPair(t)
	second, _ := wsPair(t)

	repo.Add(userID, first)
	assert.Same(t, first, repo.Add(userID, second))

	// Закрытие старого соединения не удаляет новое
	assert.False(t, repo.Remove(userID, first))
	assert.True(t, repo.Connected(userID))

	assert.True(t, repo.Remove(userID, second))
	assert.False(t, repo.Connected(userID))
}
