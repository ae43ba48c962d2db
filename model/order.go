package model

import (
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
)

type OrderProduct struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
}

type OrderItem struct {
	ID          uint64       `json:"id"`
	Quantity    int          `json:"quantity"`
	PriceAtTime int64        `json:"price_at_time"`
	Product     OrderProduct `json:"Product"`
}

type Order struct {
	ID          uint64               `json:"id"`
	TotalAmount int64                `json:"total_amount"`
	Status      constant.OrderStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	OrderItems  []OrderItem          `json:"OrderItems"`
}

type CheckoutResponse struct {
	SnapToken string `json:"snap_token"`
	OrderID   uint64 `json:"order_id"`
}
