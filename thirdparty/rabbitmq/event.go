package rabbitmq

import (
	"encoding/json"
	"net"
	"net/url"
	"strconv"
	"time"
)

const (
	RoutingStockUpdated         = "stock.updated"
	RoutingNotificationReceived = "notification.received"
	RoutingCheckoutCompleted    = "checkout.completed"
)

// Event is the envelope relayed on the topic exchange.
type Event struct {
	Type       string          `json:"type"`
	Profile    string          `json:"profile,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func (e Event) Decode(out interface{}) error {
	return json.Unmarshal(e.Data, out)
}

// CheckoutMessage is the payload of checkout.completed.
type CheckoutMessage struct {
	OrderID   uint64 `json:"order_id"`
	UserID    uint64 `json:"user_id"`
	SnapToken string `json:"snap_token"`
}

// dsn escapes the credentials so passwords may hold URL delimiters.
func dsn(host string, port int, user, password string) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/",
	}
	return u.String()
}
