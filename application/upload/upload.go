package upload

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/akhdanrgya/teluhub-client/application/session"
	"github.com/akhdanrgya/teluhub-client/constant"
	uploadrepo "github.com/akhdanrgya/teluhub-client/repository/upload"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"go.uber.org/zap"
)

// image types the backend stores
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type UploadApp interface {
	UploadImage(ctx context.Context, filename string, content []byte) (string, error)
}

type UploadAppImpl struct {
	session    session.Session
	uploadRepo uploadrepo.UploadRepository
}

func NewUploadApp(sess session.Session, uploadRepo uploadrepo.UploadRepository) UploadApp {
	return &UploadAppImpl{
		session:    sess,
		uploadRepo: uploadRepo,
	}
}

// UploadImage sends a JPEG, PNG or GIF picture and returns the URL to put in
// a profile or product. The type is sniffed from content, not the name.
func (s *UploadAppImpl) UploadImage(ctx context.Context, filename string, content []byte) (string, error) {
	if _, err := session.RequireRole(s.session); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "image is empty")
	}

	contentType := http.DetectContentType(content)
	if !acceptedTypes[contentType] {
		return "", errors.SetCustomErrorMessage(constant.ErrInvalidRequest, "only JPEG, PNG or GIF images are accepted")
	}

	authCtx := s.session.WithToken(ctx)
	url, err := s.uploadRepo.UploadImage(authCtx, filepath.Base(filename), contentType, content)
	if err != nil {
		logger.Error("[UploadImage] err uploadRepo.UploadImage", zap.String("filename", filename), zap.String("error", err.Error()))
		return "", s.session.ExpireOnUnauthorized(authCtx, err)
	}

	logger.Debug("[UploadImage] stored", zap.String("url", url))
	return url, nil
}
