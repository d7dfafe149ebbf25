package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benmeehan/sentinel/pkg/identity"
	"github.com/gorilla/schema"
	"github.com/rs/zerolog"
)

// ErrTransport is matched by every failure below the relay's JSON layer.
var ErrTransport = errors.New("relay transport failure")

// maxBodySize caps how much of a relay response is read.
const maxBodySize = 1 << 20

// TransportError wraps network failures and unreadable relay responses.
type TransportError struct {
	Op         string // "read" or "call"
	Name       string // variable or function name
	StatusCode int    // 0 when no response arrived
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("relay %s %q: HTTP %d: %v", e.Op, e.Name, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("relay %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// Response is the relay's JSON object. Only a few keys are ever inspected.
type Response struct {
	StatusCode int
	Fields     map[string]json.RawMessage
}

// Field returns the raw value of key. A JSON null counts as absent.
func (r Response) Field(key string) (json.RawMessage, bool) {
	raw, ok := r.Fields[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// ErrorText returns the relay's own error description, if it sent one.
func (r Response) ErrorText() string {
	for _, key := range []string{"error", "error_description", "info"} {
		raw, ok := r.Field(key)
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

type readQuery struct {
	AccessToken string `schema:"access_token"`
}

type callForm struct {
	AccessToken string `schema:"access_token"`
	Arg         string `schema:"arg"`
}

// Client talks to the cloud relay's device endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	encoder    *schema.Encoder
	logger     zerolog.Logger
}

// NewClient returns a relay client rooted at baseURL (without the /v1 prefix).
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP uses a caller supplied http.Client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		encoder:    schema.NewEncoder(),
		logger:     logger,
	}
}

// GetVariable reads a device variable.
func (c *Client) GetVariable(ctx context.Context, id identity.Identity, variable string) (Response, error) {
	query := url.Values{}
	if err := c.encoder.Encode(readQuery{AccessToken: id.AccessToken()}, query); err != nil {
		return Response{}, &TransportError{Op: "read", Name: variable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.deviceURL(id, variable)+"?"+query.Encode(), nil)
	if err != nil {
		return Response{}, &TransportError{Op: "read", Name: variable, Err: err}
	}

	return c.do(req, "read", variable)
}

// CallFunction calls a device function with a single string argument. The
// argument travels as "arg" and, for older firmware clients, under the
// function's own name.
func (c *Client) CallFunction(ctx context.Context, id identity.Identity, function, argument string) (Response, error) {
	form := url.Values{}
	if err := c.encoder.Encode(callForm{AccessToken: id.AccessToken(), Arg: argument}, form); err != nil {
		return Response{}, &TransportError{Op: "call", Name: function, Err: err}
	}
	form.Set(function, argument)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.deviceURL(id, function), strings.NewReader(form.Encode()))
	if err != nil {
		return Response{}, &TransportError{Op: "call", Name: function, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, "call", function)
}

func (c *Client) deviceURL(id identity.Identity, name string) string {
	return fmt.Sprintf("%s/v1/devices/%s/%s", c.baseURL, url.PathEscape(id.DeviceID()), url.PathEscape(name))
}

func (c *Client) do(req *http.Request, op, name string) (Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Str("name", name).Msg("Relay request failed")
		return Response{}, &TransportError{Op: op, Name: name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{}, &TransportError{Op: op, Name: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug().
		Str("op", op).
		Str("name", name).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Relay responded")

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return Response{}, &TransportError{Op: op, Name: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing response: %w", err)}
	}

	return Response{StatusCode: resp.StatusCode, Fields: fields}, nil
}
