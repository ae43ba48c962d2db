package upload

import (
	"context"

	"github.com/akhdanrgya/teluhub-client/constant"
	"github.com/akhdanrgya/teluhub-client/model"
	"github.com/akhdanrgya/teluhub-client/repository/api"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
)

const imageField = "image"

type API struct {
	client *api.Client
}

type UploadRepository interface {
	UploadImage(ctx context.Context, filename, contentType string, content []byte) (string, error)
}

func NewUploadRepository(client *api.Client) UploadRepository {
	return &API{client: client}
}

// UploadImage stores the image on the backend and returns its public URL.
func (a *API) UploadImage(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	var resp model.UploadResponse
	if err := a.client.Upload(ctx, "/upload/image", imageField, filename, contentType, content, &resp); err != nil {
		return "", err
	}
	if resp.ImageURL == "" {
		return "", errors.SetCustomError(constant.ErrMalformedPayload)
	}
	return resp.ImageURL, nil
}
