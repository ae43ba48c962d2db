package constant

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Final reports whether the backend will no longer change the status.
func (s OrderStatus) Final() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed
}
