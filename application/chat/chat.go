// Package chat joins chat rooms over the push channel. Messages sent here come
// back through the room broadcast like anyone else's.
package chat

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/thirdparty/wsclient"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/akhdanrgya/teluhub-client/utils/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	channelName    = "chat"
	incomingBuffer = 64
)

type Dialer interface {
	Dial(ctx context.Context, path string, onMessage func([]byte), opts ...wsclient.DialOption) (wsclient.Conn, error)
}

type ChatApp interface {
	Join(ctx context.Context, roomID string) (*Room, error)
}

type chatAppImpl struct {
	session session.Session
	dialer  Dialer
}

func NewChatApp(sess session.Session, dialer Dialer) ChatApp {
	return &chatAppImpl{session: sess, dialer: dialer}
}

// Join opens the room channel. The channel does not reconnect.
func (a *chatAppImpl) Join(ctx context.Context, roomID string) (*Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "room id is required")
	}
	user, err := session.RequireRole(a.session)
	if err != nil {
		return nil, err
	}

	room := &Room{
		id:       roomID,
		user:     *user,
		incoming: make(chan model.ChatMessage, incomingBuffer),
	}

	authCtx := a.session.WithToken(ctx)
	conn, err := a.dialer.Dial(authCtx, "/ws/chat/"+url.PathEscape(roomID), room.handleMessage, wsclient.WithoutReconnect())
	if err != nil {
		logger.Error("[Join] error dialer.Dial", zap.String("room", roomID), zap.String("error", err.Error()))
		return nil, a.session.ExpireOnUnauthorized(authCtx, err)
	}
	room.conn = conn
	return room, nil
}

type Room struct {
	id   string
	user model.User
	conn wsclient.Conn

	mu       sync.RWMutex
	messages []model.ChatMessage
	incoming chan model.ChatMessage
}

func (r *Room) ID() string {
	return r.id
}

// Send posts content as the signed-in user.
func (r *Room) Send(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "message is empty")
	}

	msg := model.ChatMessage{
		ID:      uuid.NewString(),
		Sender:  r.user.Username,
		Avatar:  r.user.ProfileImageURL,
		Content: content,
	}
	if err := r.conn.Send(msg); err != nil {
		logger.Error("[Room.Send] error conn.Send", zap.String("room", r.id), zap.String("error", err.Error()))
		return err
	}
	return nil
}

// Messages is the room history since Join, oldest first.
func (r *Room) Messages() []model.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.ChatMessage(nil), r.messages...)
}

// Incoming delivers each message as it arrives. Messages are dropped from
// the channel, not from history, when the reader falls behind.
func (r *Room) Incoming() <-chan model.ChatMessage {
	return r.incoming
}

// Mine reports whether msg was sent by the signed-in user.
func (r *Room) Mine(msg model.ChatMessage) bool {
	return msg.Sender == r.user.Username
}

func (r *Room) Done() <-chan struct{} {
	return r.conn.Done()
}

func (r *Room) Connected() bool {
	return r.conn.Connected()
}

func (r *Room) Close() error {
	return r.conn.Close()
}

func (r *Room) handleMessage(data []byte) {
	var msg model.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.PushMessagesTotal.WithLabelValues(channelName, "malformed").Inc()
		logger.Warn("[Room.handleMessage] malformed message dropped", zap.String("room", r.id), zap.String("error", err.Error()))
		return
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	metrics.PushMessagesTotal.WithLabelValues(channelName, "accepted").Inc()

	select {
	case r.incoming <- msg:
	default:
	}
}
