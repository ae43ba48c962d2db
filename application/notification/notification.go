// Package notification keeps the signed-in user's notification list in sync
// with the backend: an initial fetch, then pushes over WebSocket.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	notifRepo "github.com/akhdanrgya/teluhub-client/repository/notification"
	"github.com/akhdanrgya/teluhub-client/thirdparty/wsclient"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/akhdanrgya/teluhub-client/utils/metrics"
	"go.uber.org/zap"
)

const channelName = "notifications"

type Dialer interface {
	Dial(ctx context.Context, path string, onMessage func([]byte), opts ...wsclient.DialOption) (wsclient.Conn, error)
}

// EventPublisher receives every accepted push. Optional.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n model.Notification) error
}

type Feed struct {
	session   session.Session
	repo      notifRepo.NotificationRepository
	dialer    Dialer
	publisher EventPublisher
	now       func() time.Time

	mu     sync.RWMutex
	items  []model.Notification
	conn   wsclient.Conn
	remove func()
}

// NewFeed registers the feed with the session so that signing out stops it
// and drops the list.
func NewFeed(sess session.Session, repo notifRepo.NotificationRepository, dialer Dialer, publisher EventPublisher) *Feed {
	f := &Feed{
		session:   sess,
		repo:      repo,
		dialer:    dialer,
		publisher: publisher,
		now:       time.Now,
	}
	f.remove = sess.OnAuthChange(f.handleAuthChange)
	return f
}

// Start loads the current list and opens the push channel for the signed-in
// user. A failed initial fetch is logged and does not prevent the channel.
func (f *Feed) Start(ctx context.Context) error {
	user := f.session.User()
	if user == nil {
		return errors.SetCustomError(constant.ErrUnauthorize)
	}

	f.Stop()

	if err := f.Fetch(ctx); err != nil {
		if errors.HasType(err, constant.ErrSessionExpired) {
			return err
		}
		logger.Warn("[Feed.Start] error Fetch", zap.String("error", err.Error()))
	}

	path := fmt.Sprintf("/ws/notifications?user_id=%d", user.ID)
	authCtx := f.session.WithToken(ctx)
	conn, err := f.dialer.Dial(authCtx, path, f.handleMessage)
	if err != nil {
		logger.Error("[Feed.Start] error dialer.Dial", zap.String("error", err.Error()))
		return f.session.ExpireOnUnauthorized(authCtx, err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	return nil
}

// Stop closes the push channel. The list is kept.
func (f *Feed) Stop() {
	f.mu.Lock()
	conn := f.conn
	f.conn = nil
	f.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Close stops the feed, drops the list and detaches it from the session.
// The feed must not be started again afterwards.
func (f *Feed) Close() {
	f.mu.Lock()
	remove := f.remove
	f.remove = nil
	f.mu.Unlock()

	if remove != nil {
		remove()
	}
	f.handleAuthChange(false)
}

// Fetch replaces the list with the backend's.
func (f *Feed) Fetch(ctx context.Context) error {
	authCtx := f.session.WithToken(ctx)
	items, err := f.repo.List(authCtx)
	if err != nil {
		logger.Error("[Feed.Fetch] error repo.List", zap.String("error", err.Error()))
		return f.session.ExpireOnUnauthorized(authCtx, err)
	}

	for i := range items {
		items[i].State = stateOf(items[i].IsRead)
	}

	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// MarkAsRead shows the notification as read at once and reverts it when the
// backend does not confirm.
func (f *Feed) MarkAsRead(ctx context.Context, id uint64) error {
	f.mu.Lock()
	idx := f.indexLocked(id)
	if idx < 0 {
		f.mu.Unlock()
		return errors.SetCustomError(constant.ErrNotFound)
	}
	if f.items[idx].State != constant.Unread {
		f.mu.Unlock()
		return nil
	}
	f.items[idx].State = constant.PendingRead
	f.items[idx].IsRead = true
	f.mu.Unlock()

	authCtx := f.session.WithToken(ctx)
	err := f.repo.MarkRead(authCtx, id)

	f.mu.Lock()
	if idx := f.indexLocked(id); idx >= 0 {
		if err != nil {
			f.items[idx].State = constant.Unread
			f.items[idx].IsRead = false
		} else {
			f.items[idx].State = constant.Read
		}
	}
	f.mu.Unlock()

	if err != nil {
		logger.Error("[Feed.MarkAsRead] error repo.MarkRead", zap.Uint64("id", id), zap.String("error", err.Error()))
		return f.session.ExpireOnUnauthorized(authCtx, err)
	}
	return nil
}

// List returns the notifications newest first.
func (f *Feed) List() []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]model.Notification(nil), f.items...)
}

// UnreadCount counts notifications not read and not pending.
func (f *Feed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, it := range f.items {
		if it.State == constant.Unread {
			n++
		}
	}
	return n
}

func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.conn != nil && f.conn.Connected()
}

func (f *Feed) handleAuthChange(authenticated bool) {
	if authenticated {
		return
	}
	f.Stop()
	f.mu.Lock()
	f.items = nil
	f.mu.Unlock()
}

// pushPayload accepts both snake_case and PascalCase keys.
type pushPayload struct {
	ID             uint64                    `json:"id"`
	UserID         uint64                    `json:"user_id"`
	UserIDAlt      uint64                    `json:"UserID"`
	Type           constant.NotificationType `json:"type"`
	Title          string                    `json:"title"`
	Message        string                    `json:"message"`
	ReferenceID    uint64                    `json:"reference_id"`
	ReferenceIDAlt uint64                    `json:"ReferenceID"`
	IsRead         bool                      `json:"is_read"`
	IsReadAlt      bool                      `json:"IsRead"`
	CreatedAt      *time.Time                `json:"created_at"`
	CreatedAtAlt   *time.Time                `json:"CreatedAt"`
}

func (p pushPayload) notification(now time.Time) model.Notification {
	n := model.Notification{
		ID:          p.ID,
		UserID:      firstNonZero(p.UserID, p.UserIDAlt),
		Type:        p.Type,
		Title:       p.Title,
		Message:     p.Message,
		ReferenceID: firstNonZero(p.ReferenceID, p.ReferenceIDAlt),
		IsRead:      p.IsRead || p.IsReadAlt,
		CreatedAt:   now,
	}
	switch {
	case p.CreatedAt != nil:
		n.CreatedAt = *p.CreatedAt
	case p.CreatedAtAlt != nil:
		n.CreatedAt = *p.CreatedAtAlt
	}
	n.State = stateOf(n.IsRead)
	return n
}

func (f *Feed) handleMessage(data []byte) {
	var p pushPayload
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.PushMessagesTotal.WithLabelValues(channelName, "malformed").Inc()
		logger.Warn("[Feed.handleMessage] malformed payload dropped", zap.String("error", err.Error()))
		return
	}
	if p.ID == 0 {
		metrics.PushMessagesTotal.WithLabelValues(channelName, "malformed").Inc()
		logger.Warn("[Feed.handleMessage] payload without id dropped", zap.ByteString("payload", data))
		return
	}

	n := p.notification(f.now())

	f.mu.Lock()
	if f.indexLocked(n.ID) >= 0 {
		f.mu.Unlock()
		metrics.PushMessagesTotal.WithLabelValues(channelName, "duplicate").Inc()
		return
	}
	f.items = append([]model.Notification{n}, f.items...)
	f.mu.Unlock()

	metrics.PushMessagesTotal.WithLabelValues(channelName, "accepted").Inc()
	logger.Info("[Feed.handleMessage] notification received", zap.Uint64("id", n.ID), zap.String("title", n.Title))

	if f.publisher != nil {
		if err := f.publisher.PublishNotification(context.Background(), n); err != nil {
			logger.Warn("[Feed.handleMessage] error publisher.PublishNotification", zap.String("error", err.Error()))
		}
	}
}

func (f *Feed) indexLocked(id uint64) int {
	for i := range f.items {
		if f.items[i].ID == id {
			return i
		}
	}
	return -1
}

func stateOf(isRead bool) constant.ReadState {
	if isRead {
		return constant.Read
	}
	return constant.Unread
}

func firstNonZero(a, b uint64) uint64 {
	if a != 0 {
		return a
	}
	return b
}
