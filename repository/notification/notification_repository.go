package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
)

type API struct {
	client *api.Client
}

type NotificationRepository interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uint64) error
}

func NewNotificationRepository(client *api.Client) NotificationRepository {
	return &API{client: client}
}

func (a *API) List(ctx context.Context) ([]model.Notification, error) {
	items := make([]model.Notification, 0)
	if err := a.client.Get(ctx, "/notifications", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *API) MarkRead(ctx context.Context, id uint64) error {
	return a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}
