package model

import (
	"fmt"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
)

type Notification struct {
	ID          uint64                    `json:"id"`
	UserID      uint64                    `json:"user_id"`
	Type        constant.NotificationType `json:"type"`
	Title       string                    `json:"title"`
	Message     string                    `json:"message"`
	ReferenceID uint64                    `json:"reference_id"`
	IsRead      bool                      `json:"is_read"`
	CreatedAt   time.Time                 `json:"created_at"`

	State constant.ReadState `json:"-"`
}

// Link is the in-app path the notification points at, empty for info.
func (n Notification) Link() string {
	switch n.Type {
	case constant.NotificationTypeOrder:
		return fmt.Sprintf("/orders/%d", n.ReferenceID)
	case constant.NotificationTypeChat:
		return fmt.Sprintf("/chat/%d", n.ReferenceID)
	default:
		return ""
	}
}

type ChatMessage struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Avatar  string `json:"avatar,omitempty"`
	Content string `json:"content"`
}
