package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher relays client events onto a durable topic exchange.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	profile  string
	now      func() time.Time

	mu sync.Mutex
}

func NewPublisher(host string, port int, user, password, exchange, profile string) (*Publisher, error) {
	conn, err := amqp091.Dial(dsn(host, port, user, password))
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareExchange(ch, exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	p := newPublisher(ch, exchange, profile)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange, profile string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange, profile: profile, now: time.Now}
}

func declareExchange(ch *amqp091.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
}

func (p *Publisher) PublishStockUpdate(ctx context.Context, update model.StockUpdate) error {
	return p.publish(ctx, RoutingStockUpdated, update)
}

func (p *Publisher) PublishNotification(ctx context.Context, n model.Notification) error {
	return p.publish(ctx, RoutingNotificationReceived, n)
}

func (p *Publisher) PublishCheckout(ctx context.Context, userID uint64, resp model.CheckoutResponse) error {
	return p.publish(ctx, RoutingCheckoutCompleted, CheckoutMessage{
		OrderID:   resp.OrderID,
		UserID:    userID,
		SnapToken: resp.SnapToken,
	})
}

func (p *Publisher) publish(ctx context.Context, key string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	now := p.now()
	body, err := json.Marshal(Event{Type: key, Profile: p.profile, OccurredAt: now, Data: raw})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Type:        key,
			Timestamp:   now,
			Body:        body,
		},
	)
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
