// Package client calls the uniguide REST API.
//
// Calls never fail with an error: every outcome, transport failures included,
// resolves to a core.Envelope and callers branch on its Success flag.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/services/logger"
)

// Session provides the bearer token attached to every request.
type Session interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

type Option func(*Client)

// WithHTTPClient sets the HTTP client doing the requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets where unexpected failures are reported.
func WithLogger(logger core.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

type Client struct {
	base    *url.URL
	session Session
	http    *http.Client
	logger  core.Logger
}

func New(baseURL string, session Session, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "parsing API URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid API URL %q", baseURL)
	}

	c := &Client{
		base:    base,
		session: session,
		http:    http.DefaultClient,
		logger:  logsvc.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromConfig builds a client for the configured API URL and timeout.
func FromConfig(conf *core.Config, session Session, opts ...Option) (*Client, error) {
	opts = append([]Option{WithHTTPClient(&http.Client{Timeout: conf.Client.Timeout})}, opts...)
	return New(conf.Client.APIURL, session, opts...)
}

func (c *Client) Session() Session {
	return c.session
}

// response is what the transport hands over: the raw status and body.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func decodeResponse(_ context.Context, r *http.Response) (interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return response{status: r.StatusCode, body: body}, nil
}

func encodeNothing(context.Context, *http.Request, interface{}) error {
	return nil
}

func (c *Client) authorize(ctx context.Context, r *http.Request) context.Context {
	if c.session == nil {
		return ctx
	}
	if tok := c.session.Token(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	return ctx
}

func (c *Client) endpoint(method, path string, query url.Values, withBody bool) endpoint.Endpoint {
	tgt := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	enc := encodeNothing
	if withBody {
		enc = httptransport.EncodeJSONRequest
	}
	return httptransport.NewClient(method, tgt, enc, decodeResponse,
		httptransport.SetClient(c.http),
		httptransport.ClientBefore(
			httptransport.SetRequestHeader("Accept", "application/json"),
			c.authorize,
		),
	).Endpoint()
}

// call is one API request. op prefixes the log entries of unexpected failures.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
}

// do runs cl and resolves it to an envelope: the decoded body on success,
// the server's message on an error status, NetworkErrorMessage when there is nothing to read.
func do[T any](ctx context.Context, c *Client, cl call, decode func([]byte) (core.Envelope[T], error)) core.Envelope[T] {
	res, err := c.endpoint(cl.method, cl.path, cl.query, cl.body != nil)(ctx, cl.body)
	if err != nil {
		c.logger.Error(fmt.Sprintf("%s: %v", cl.op, err), err)
		return core.Fail[T](core.NetworkErrorMessage)
	}

	resp := res.(response)
	if !resp.ok() {
		return failure[T](resp)
	}

	env, err := decode(resp.body)
	if err != nil {
		c.logger.Error(fmt.Sprintf("%s: decoding response: %v", cl.op, err), err)
		return core.Fail[T](core.NetworkErrorMessage)
	}
	if !env.Success && env.Error == "" {
		env.Error = core.FirstNonEmpty(env.Message, core.NetworkErrorMessage)
	}
	return env
}

// failure reads the server supplied message of an error response.
func failure[T any](resp response) core.Envelope[T] {
	env := core.Fail[T](core.NetworkErrorMessage)

	var body struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp.body, &body); err == nil {
		env.Error = core.FirstNonEmpty(body.Error, body.Message, core.NetworkErrorMessage)
		env.Errors = body.Errors
	}
	return env
}

func decodeEnvelope[T any](body []byte) (core.Envelope[T], error) {
	var env core.Envelope[T]
	err := json.Unmarshal(body, &env)
	return env, err
}

// decodeList accepts every list shape the API has served:
// the envelope, {"events": [...]} and a bare array.
func decodeList[T any](body []byte) (core.Envelope[[]T], error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return core.Envelope[[]T]{}, err
		}
		return core.OKList(items), nil
	}

	var aux struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Events  json.RawMessage `json:"events"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(trimmed), &aux); err != nil {
		return core.Envelope[[]T]{}, err
	}
	if aux.Success != nil && !*aux.Success {
		env := core.Fail[[]T](core.FirstNonEmpty(aux.Error, aux.Message))
		return env, nil
	}

	raw := aux.Data
	if len(raw) == 0 || string(raw) == "null" {
		raw = aux.Events
	}
	var items []T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &items); err != nil {
			return core.Envelope[[]T]{}, err
		}
	}
	env := core.OKList(items)
	env.Message = aux.Message
	return env, nil
}
