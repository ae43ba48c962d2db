package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer tails the event exchange through an exclusive, auto-deleted queue.
type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	queue   string
}

// NewConsumer binds a private queue to exchange for each routing key pattern.
// No keys means every event.
func NewConsumer(host string, port int, user, password, exchange string, keys ...string) (*Consumer, error) {
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

	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if len(keys) == 0 {
		keys = []string{"#"}
	}
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Start delivers events to handler until ctx is done or the channel closes.
func (c *Consumer) Start(ctx context.Context, handler func(Event)) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				handleDelivery(msg, handler)
			}
		}
	}()

	return nil
}

func handleDelivery(msg amqp091.Delivery, handler func(Event)) {
	var event Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Warn("[Consumer] dropping malformed event",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("error", err.Error()),
		)
		msg.Ack(false)
		return
	}
	if event.Type == "" {
		event.Type = msg.RoutingKey
	}

	handler(event)
	msg.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
