package constant

type NotificationType string

const (
	NotificationTypeOrder NotificationType = "order"
	NotificationTypeChat  NotificationType = "chat"
	NotificationTypeInfo  NotificationType = "info"
)

// ReadState is the local view of a notification's read flag. PendingRead is
// shown as read while the confirmation request is in flight.
type ReadState int

const (
	Unread ReadState = iota
	PendingRead
	Read
)

func (s ReadState) String() string {
	switch s {
	case PendingRead:
		return "pending_read"
	case Read:
		return "read"
	default:
		return "unread"
	}
}
