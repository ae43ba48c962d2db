// Package wsclient opens the backend push channels (notifications, chat rooms)
// over WebSocket with bearer authentication and a bounded reconnect policy.
package wsclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
	ctxutil "github.com/akhdanrgya/teluhub-client/utils/context"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var ErrClosed = stderrors.New("wsclient: channel closed")

type Options struct {
	// ReconnectAttempts is the number of retries after a failed dial or a
	// dropped connection. 0 disables reconnecting.
	ReconnectAttempts int
	ReconnectInterval time.Duration
	HandshakeTimeout  time.Duration
}

// Conn is an open push channel.
type Conn interface {
	Send(v interface{}) error
	Close() error
	Done() <-chan struct{}
	Err() error
	Connected() bool
}

type Client struct {
	baseURL string
	opts    Options
	dialer  *websocket.Dialer
}

// NewClient takes the ws(s) form of the API base URL.
func NewClient(baseURL string, opts Options) *Client {
	if opts.ReconnectAttempts < 0 {
		opts.ReconnectAttempts = 0
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
	}
}

type DialOption func(*Options)

// WithoutReconnect makes the channel give up on the first failure.
func WithoutReconnect() DialOption {
	return func(o *Options) {
		o.ReconnectAttempts = 0
	}
}

// Dial connects to path (relative to the base URL) and calls onMessage for
// every inbound text or binary frame, sequentially, from one goroutine. The
// bearer token is taken from ctx. ctx only bounds the first connection; the
// channel lives until Close or until reconnecting gives up.
func (c *Client) Dial(ctx context.Context, path string, onMessage func([]byte), opts ...DialOption) (Conn, error) {
	o := c.opts
	for _, opt := range opts {
		opt(&o)
	}

	header := http.Header{}
	if tok, ok := ctxutil.GetToken(ctx); ok {
		header.Set("Authorization", "Bearer "+tok)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ch := &channel{
		url:       c.baseURL + path,
		header:    header,
		opts:      o,
		dialer:    c.dialer,
		onMessage: onMessage,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	dialCtx, stop := context.WithCancel(runCtx)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-dialCtx.Done():
		}
	}()

	if err := ch.connect(dialCtx); err != nil {
		cancel()
		return nil, err
	}

	go ch.readLoop(runCtx)
	return ch, nil
}

type channel struct {
	url       string
	header    http.Header
	opts      Options
	dialer    *websocket.Dialer
	onMessage func([]byte)
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	connected atomic.Bool

	writeMu sync.Mutex

	mu   sync.Mutex
	conn *websocket.Conn
	err  error
}

func (ch *channel) policy(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(ch.opts.ReconnectInterval), uint64(ch.opts.ReconnectAttempts))
	return backoff.WithContext(b, ctx)
}

func (ch *channel) connect(ctx context.Context) error {
	op := func() error {
		conn, resp, err := ch.dialer.DialContext(ctx, ch.url, ch.header)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusUnauthorized {
				return backoff.Permanent(errors.SetCustomError(constant.ErrUnauthorize))
			}
			return err
		}
		ch.mu.Lock()
		defer ch.mu.Unlock()
		if ctx.Err() != nil {
			// closed while dialing
			_ = conn.Close()
			return backoff.Permanent(ctx.Err())
		}
		ch.conn = conn
		ch.connected.Store(true)
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("[wsclient.connect] dial failed, retrying",
			zap.String("url", ch.url),
			zap.Duration("wait", wait),
			zap.String("error", err.Error()),
		)
	}

	if err := backoff.RetryNotify(op, ch.policy(ctx), notify); err != nil {
		if ctx.Err() != nil {
			return ErrClosed
		}
		logger.Error("[wsclient.connect] giving up", zap.String("url", ch.url), zap.String("error", err.Error()))
		var ce errors.CustomError
		if stderrors.As(err, &ce) {
			return ce
		}
		return errors.SetCustomError(constant.ErrNetwork)
	}
	logger.Debug("[wsclient.connect] connected", zap.String("url", ch.url))
	return nil
}

func (ch *channel) readLoop(ctx context.Context) {
	defer close(ch.done)

	for {
		ch.mu.Lock()
		conn := ch.conn
		ch.mu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			ch.connected.Store(false)
			if ctx.Err() != nil {
				return
			}
			logger.Warn("[wsclient.readLoop] connection lost", zap.String("url", ch.url), zap.String("error", err.Error()))
			_ = conn.Close()

			if ch.opts.ReconnectAttempts == 0 {
				ch.mu.Lock()
				ch.err = errors.SetCustomError(constant.ErrNetwork)
				ch.mu.Unlock()
				return
			}
			if err := ch.connect(ctx); err != nil {
				if ctx.Err() == nil {
					ch.mu.Lock()
					ch.err = err
					ch.mu.Unlock()
				}
				return
			}
			continue
		}

		ch.onMessage(data)
	}
}

// Send writes v as one JSON text frame.
func (ch *channel) Send(v interface{}) error {
	select {
	case <-ch.done:
		return ErrClosed
	default:
	}

	ch.mu.Lock()
	conn := ch.conn
	ch.mu.Unlock()

	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		logger.Warn("[wsclient.Send] write failed", zap.String("url", ch.url), zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrNetwork)
	}
	return nil
}

// Close stops reconnecting and closes the socket. Safe to call more than once.
func (ch *channel) Close() error {
	ch.closeOnce.Do(func() {
		ch.cancel()

		ch.mu.Lock()
		conn := ch.conn
		ch.mu.Unlock()

		ch.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		ch.writeMu.Unlock()
		_ = conn.Close()
	})
	<-ch.done
	return nil
}

func (ch *channel) Done() <-chan struct{} {
	return ch.done
}

// Err is set when the channel stopped because reconnecting gave up.
func (ch *channel) Err() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.err
}

func (ch *channel) Connected() bool {
	return ch.connected.Load()
}
