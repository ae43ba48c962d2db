package wsclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/thirdparty/wsclient"
	ctxutil "github.com/akhdanrgya/teluhub-client/utils/context"
	cerr "github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

type pushServer struct {
	*httptest.Server
	accepted atomic.Int32
	authSeen atomic.Value
	// onConn runs per accepted connection with its 1-based sequence number
	onConn func(n int32, conn *websocket.Conn)
}

func newPushServer(t *testing.T, onConn func(n int32, conn *websocket.Conn)) *pushServer {
	t.Helper()
	ps := &pushServer{onConn: onConn}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		ps.authSeen.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.onConn(ps.accepted.Add(1), conn)
	}))
	t.Cleanup(ps.Close)
	return ps
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func authed() context.Context {
	return ctxutil.WithToken(context.Background(), "jwt-abc")
}

type inbox struct {
	mu  sync.Mutex
	got []string
}

func (i *inbox) add(b []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.got = append(i.got, string(b))
}

func (i *inbox) snapshot() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.got...)
}

func TestClient_DialReceivesAndSends(t *testing.T) {
	echoed := make(chan string, 1)
	srv := newPushServer(t, func(_ int32, conn *websocket.Conn) {
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":1}`))
		_, msg, err := conn.ReadMessage()
		if err == nil {
			echoed <- string(msg)
		}
		_, _, _ = conn.ReadMessage()
	})

	box := &inbox{}
	client := wsclient.NewClient(wsURL(srv.Server), wsclient.Options{ReconnectInterval: 10 * time.Millisecond})
	conn, err := client.Dial(authed(), "/ws/chat/7", box.add)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "Bearer jwt-abc", srv.authSeen.Load())
	require.Eventually(t, func() bool { return len(box.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{`{"id":1}`}, box.snapshot())
	assert.True(t, conn.Connected())

	require.NoError(t, conn.Send(map[string]string{"content": "halo"}))
	select {
	case msg := <-echoed:
		assert.JSONEq(t, `{"content":"halo"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive message")
	}
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	srv := newPushServer(t, func(n int32, conn *websocket.Conn) {
		defer conn.Close()
		if n == 1 {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"id":2}`))
		_, _, _ = conn.ReadMessage()
	})

	box := &inbox{}
	client := wsclient.NewClient(wsURL(srv.Server), wsclient.Options{ReconnectAttempts: 3, ReconnectInterval: 10 * time.Millisecond})
	conn, err := client.Dial(authed(), "/ws/notifications?user_id=3", box.add)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return len(box.snapshot()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), srv.accepted.Load())
}

func TestClient_WithoutReconnectStopsOnDrop(t *testing.T) {
	srv := newPushServer(t, func(_ int32, conn *websocket.Conn) {
		_ = conn.Close()
	})
	client := wsclient.NewClient(wsURL(srv.Server), wsclient.Options{ReconnectAttempts: 5, ReconnectInterval: 10 * time.Millisecond})

	conn, err := client.Dial(authed(), "/ws/chat/1", func([]byte) {}, wsclient.WithoutReconnect())
	require.NoError(t, err)

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("channel kept running")
	}
	assert.Error(t, conn.Err())
	assert.False(t, conn.Connected())
	assert.Equal(t, int32(1), srv.accepted.Load())
	assert.Error(t, conn.Send("late"))
}

func TestClient_UnauthorizedIsPermanent(t *testing.T) {
	srv := newPushServer(t, func(_ int32, conn *websocket.Conn) { _ = conn.Close() })
	client := wsclient.NewClient(wsURL(srv.Server), wsclient.Options{ReconnectAttempts: 10, ReconnectInterval: time.Second})

	started := time.Now()
	_, err := client.Dial(context.Background(), "/ws/notifications?user_id=3", func([]byte) {})
	require.Error(t, err)
	assert.Less(t, time.Since(started), time.Second)

	var ce cerr.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, constant.ErrorTypeCode[constant.ErrUnauthorize], ce.ErrorCode())
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	srv := newPushServer(t, func(_ int32, conn *websocket.Conn) {
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})
	client := wsclient.NewClient(wsURL(srv.Server), wsclient.Options{ReconnectAttempts: 3, ReconnectInterval: 10 * time.Millisecond})

	conn, err := client.Dial(authed(), "/ws/chat/1", func([]byte) {})
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Err())
	assert.Equal(t, int32(1), srv.accepted.Load())
	assert.ErrorIs(t, conn.Send("late"), wsclient.ErrClosed)
}
