package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/akhdanrgya/teluhub-client/application/chat"
	"github.com/akhdanrgya/teluhub-client/constant"
	sessionmocks "github.com/akhdanrgya/teluhub-client/mocks/application/session"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/thirdparty/wsclient"
	cerr "github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	sent []interface{}
	done chan struct{}
}

func (c *fakeConn) Send(v interface{}) error { c.sent = append(c.sent, v); return nil }
func (c *fakeConn) Close() error            { return nil }
func (c *fakeConn) Done() <-chan struct{}   { return c.done }
func (c *fakeConn) Err() error              { return nil }
func (c *fakeConn) Connected() bool         { return true }

type fakeDialer struct {
	path      string
	options   int
	onMessage func([]byte)
	conn      *fakeConn
	err       error
}

func (d *fakeDialer) Dial(_ context.Context, path string, onMessage func([]byte), opts ...wsclient.DialOption) (wsclient.Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.path = path
	d.options = len(opts)
	d.onMessage = onMessage
	d.conn = &fakeConn{done: make(chan struct{})}
	return d.conn, nil
}

func signedIn(t *testing.T) *sessionmocks.Session {
	sess := sessionmocks.NewSession(t)
	sess.On("User").Return(&model.User{ID: 3, Username: "sari", ProfileImageURL: "https://cdn.telu.ac.id/sari.png"}).Once()
	sess.On("WithToken", mock.Anything).Return(context.Background()).Once()
	return sess
}

func TestChatApp_Join(t *testing.T) {
	dialer := &fakeDialer{}
	app := chat.NewChatApp(signedIn(t), dialer)

	room, err := app.Join(context.Background(), "order-77")
	require.NoError(t, err)
	assert.Equal(t, "/ws/chat/order-77", dialer.path)
	assert.Equal(t, 1, dialer.options)
	assert.Equal(t, "order-77", room.ID())
}

func TestChatApp_JoinErrors(t *testing.T) {
	tests := []struct {
		name     string
		roomID   string
		session  func(t *testing.T) *sessionmocks.Session
		dialErr  error
		wantCode constant.ErrorType
	}{
		{
			name:   "error: blank room",
			roomID: "  ",
			session: func(t *testing.T) *sessionmocks.Session {
				return sessionmocks.NewSession(t)
			},
			wantCode: constant.ErrInvalidRequest,
		},
		{
			name:   "error: anonymous",
			roomID: "1",
			session: func(t *testing.T) *sessionmocks.Session {
				s := sessionmocks.NewSession(t)
				s.On("User").Return(nil).Once()
				return s
			},
			wantCode: constant.ErrUnauthorize,
		},
		{
			name:   "error: rejected token expires session",
			roomID: "1",
			session: func(t *testing.T) *sessionmocks.Session {
				s := signedIn(t)
				s.On("ExpireOnUnauthorized", mock.Anything, mock.Anything).
					Return(cerr.SetCustomError(constant.ErrSessionExpired)).
					Once()
				return s
			},
			dialErr:  cerr.SetCustomError(constant.ErrUnauthorize),
			wantCode: constant.ErrSessionExpired,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := chat.NewChatApp(tt.session(t), &fakeDialer{err: tt.dialErr})

			_, err := app.Join(context.Background(), tt.roomID)
			var ce cerr.CustomError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, constant.ErrorTypeCode[tt.wantCode], ce.ErrorCode())
		})
	}
}

func TestRoom_SendAndReceive(t *testing.T) {
	dialer := &fakeDialer{}
	room, err := chat.NewChatApp(signedIn(t), dialer).Join(context.Background(), "1")
	require.NoError(t, err)

	assert.Error(t, room.Send("   "))
	assert.Empty(t, dialer.conn.sent)

	require.NoError(t, room.Send("halo kak, masih ada?"))
	require.Len(t, dialer.conn.sent, 1)
	sent := dialer.conn.sent[0].(model.ChatMessage)
	assert.Equal(t, "sari", sent.Sender)
	assert.Equal(t, "https://cdn.telu.ac.id/sari.png", sent.Avatar)
	_, err = uuid.Parse(sent.ID)
	assert.NoError(t, err)

	// history grows from the broadcast only
	assert.Empty(t, room.Messages())
	dialer.onMessage([]byte(`{"id":"a","sender":"budi","content":"masih"}`))
	dialer.onMessage([]byte(`{broken`))
	dialer.onMessage([]byte(`{"id":"b","sender":"sari","content":"oke"}`))

	msgs := room.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "masih", msgs[0].Content)
	assert.False(t, room.Mine(msgs[0]))
	assert.True(t, room.Mine(msgs[1]))
	assert.Equal(t, "masih", (<-room.Incoming()).Content)
}
