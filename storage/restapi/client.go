// Package restapi implements the repositories of the dashboard against the school REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/masomo-dashboard/core"
)

const maxErrorBody = 4 << 10

type (
	// TokenSource provides the bearer token of the logged in user.
	// It returns core.ErrLoginRequired when there is none.
	TokenSource interface {
		Token() (string, error)
	}

	// TokenFunc adapts a function to a TokenSource.
	TokenFunc func() (string, error)
)

func (f TokenFunc) Token() (string, error) { return f() }

type tokenKey struct{}

// WithToken returns a copy of ctx carrying a bearer token. It takes precedence over the
// client TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource           // optional
	Registerer prometheus.Registerer // optional; metrics are not exported when nil
	Transport  http.RoundTripper     // optional
}

// Client sends JSON requests to the API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	metrics *metrics
}

func NewClient(opts Options) (*Client, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(opts.BaseURL, "BaseURL"),
		vala.GreaterThan(int(opts.Timeout), 0, "Timeout"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "configuring api client")
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		tokens:  opts.Tokens,
		metrics: newMetrics(opts.Registerer),
	}, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if token, ok := tokenFromContext(ctx); ok {
		return token, nil
	}
	if c.tokens == nil {
		return "", core.ErrLoginRequired
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", core.ErrLoginRequired
	}
	return token, nil
}

// request describes one call. route is the path template used as metrics label.
type request struct {
	method string
	route  string
	path   string
	auth   bool
	body   interface{}
}

func (r request) op() string {
	return r.method + " " + r.path
}

// do sends req and decodes the response into out (if not nil).
// Any non 2xx status is returned as a *core.RequestError; a 401 on an authenticated call means
// the token was rejected and is reported as core.ErrLoginRequired.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	var token string
	if req.auth {
		var err error
		if token, err = c.token(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		hreq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.metrics.observe(req.method, req.route, "error", time.Since(start))
		return &core.RequestError{Op: req.op(), Err: err}
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()
	c.metrics.observe(req.method, req.route, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && req.auth {
		return errors.Wrap(core.ErrLoginRequired, req.op())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.RequestError{
			Op:         req.op(),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(io.LimitReader(resp.Body, maxErrorBody)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.RequestError{Op: req.op(), StatusCode: resp.StatusCode, Err: errors.Wrap(err, "reading response")}
	}
	if err := decode(data, out); err != nil {
		return &core.RequestError{Op: req.op(), StatusCode: resp.StatusCode, Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// decode reads data into out. Responses may be bare or wrapped in a {"data": ...} envelope.
func decode(data []byte, out interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err == nil {
			if inner, ok := envelope["data"]; ok {
				data = inner
			}
		}
	}
	return json.Unmarshal(data, out)
}

// errorMessage extracts the message of an error response, if any.
func errorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// isStatus reports whether err is a *core.RequestError with one of codes.
func isStatus(err error, codes ...int) bool {
	rErr, ok := errors.Cause(err).(*core.RequestError)
	if !ok {
		return false
	}
	for _, code := range codes {
		if rErr.StatusCode == code {
			return true
		}
	}
	return false
}
