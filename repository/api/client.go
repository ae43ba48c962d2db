// Package api is the thin REST wrapper shared by every repository: base URL
// joining, bearer header injection from the request context, JSON bodies and
// status code to error type mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/akhdanrgya/teluhub-client/constant"
	ctxutil "github.com/akhdanrgya/teluhub-client/utils/context"
	"github.com/akhdanrgya/teluhub-client/utils/errors"
	"github.com/akhdanrgya/teluhub-client/utils/logger"
	"github.com/akhdanrgya/teluhub-client/utils/metrics"
	"go.uber.org/zap"
)

// Response is what callers get back when they need more than the decoded body.
type Response struct {
	StatusCode int
	Header     http.Header
	Cookies    []*http.Cookie
	Body       []byte
}

// Cookie returns the value of the named response cookie, empty if absent.
func (r *Response) Cookie(name string) string {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type Client struct {
	baseURL string
	http    *http.Client
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body as JSON and decodes a 2xx answer into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Send(ctx, method, path, body)
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

// Get is Do for GET requests with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Send performs the request and returns the raw response. Non-2xx answers are
// turned into a CustomError; the response is still returned alongside.
func (c *Client) Send(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	if body == nil {
		return c.send(ctx, method, path, nil, "")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error("[api.Send] error marshal body", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return c.send(ctx, method, path, bytes.NewReader(payload), "application/json")
}

// Upload posts content as the single file part field of a multipart form and
// decodes a 2xx answer into out. contentType becomes the part's Content-Type.
func (c *Client) Upload(ctx context.Context, path, field, filename, contentType string, content []byte, out interface{}) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err == nil {
		_, err = part.Write(content)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		logger.Error("[api.Upload] error build form", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	resp, err := c.send(ctx, http.MethodPost, path, &buf, form.FormDataContentType())
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		logger.Error("[api.Send] error build request", zap.String("path", path), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := ctxutil.GetToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveHTTP(method, 0, started)
		logger.Warn("[api.Send] request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("error", err.Error()),
		)
		return nil, errors.SetCustomError(constant.ErrNetwork)
	}
	defer httpResp.Body.Close()
	metrics.ObserveHTTP(method, httpResp.StatusCode, started)

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		logger.Warn("[api.Send] error read body", zap.String("path", path), zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrNetwork)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Cookies:    httpResp.Cookies(),
		Body:       raw,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		logger.Debug("[api.Send] backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", httpResp.StatusCode),
		)
		return resp, statusError(httpResp.StatusCode, raw)
	}
	return resp, nil
}

// Decode unmarshals a successful response body into out.
func Decode(resp *Response, out interface{}) error {
	if out == nil || resp == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		logger.Error("[api.Decode] error unmarshal response", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrMalformedPayload)
	}
	return nil
}

func statusError(status int, raw []byte) error {
	errType, ok := constant.HTTPStatusErrorType[status]
	if !ok {
		errType = constant.ErrInternal
	}

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}

	// only validation style answers carry a message worth showing as-is
	if msg != "" && (errType == constant.ErrInvalidRequest || errType == constant.ErrCredentialExists) {
		return errors.SetCustomErrorMessage(errType, msg)
	}
	return errors.SetCustomError(errType)
}
