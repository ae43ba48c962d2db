package context

import (
	"context"

	"github.com/akhdanrgya/teluhub-client/constant"
)

// WithToken attaches the bearer token for outgoing calls. An empty token
// leaves ctx untouched so the request goes out anonymous.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, constant.TokenKey, token)
}

func GetToken(ctx context.Context) (string, bool) {
	v := ctx.Value(constant.TokenKey)
	if v == nil {
		return "", false
	}
	token, ok := v.(string)
	return token, ok && token != ""
}
