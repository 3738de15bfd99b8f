package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/realangry/schoolweb/core"
)

// TokenSource supplies the current bearer token, or "" when anonymous. The
// token is borrowed read-only per request; it is the session store that
// replaces it wholesale.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a plain func to a TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

type (
	// Options configures the base client shared by all resource clients.
	Options struct {
		BaseURL string
		Tokens  TokenSource
		// OnUnauthorized is invoked exactly once per 401 response, except on
		// the auth boundary itself (a failed login must not force-logout).
		OnUnauthorized func()
		Transport      http.RoundTripper
	}

	// Client dispatches every request of the typed resource clients. The two
	// cross-cutting behaviors (bearer attachment, 401 handling) live in its
	// transport so no call site repeats them.
	Client struct {
		base *url.URL
		http *http.Client

		Auth     *AuthClient
		Users    *UsersClient
		Students *StudentsClient
		Export   *ExportClient
	}
)

func NewClient(opts *Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "restapi: invalid base URL")
	}

	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c := &Client{
		base: base,
		http: &http.Client{
			Transport: &authTransport{
				next:           next,
				tokens:         opts.Tokens,
				onUnauthorized: opts.OnUnauthorized,
			},
		},
	}
	c.Auth = &AuthClient{c: c}
	c.Users = &UsersClient{c: c}
	c.Students = &StudentsClient{c: c}
	c.Export = &ExportClient{c: c}
	return c, nil
}

// authTransport is the interceptor chain.
type authTransport struct {
	next           http.RoundTripper
	tokens         TokenSource
	onUnauthorized func()
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// request phase: attach bearer credential on every outgoing request
	if t.tokens != nil {
		if token := t.tokens.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// response phase: a 401 invalidates the session, once per response; the
	// auth boundary is exempt so a bad login cannot loop into itself
	if resp.StatusCode == http.StatusUnauthorized && t.onUnauthorized != nil && !isAuthBoundary(req.URL.Path) {
		t.onUnauthorized()
	}
	return resp, nil
}

func isAuthBoundary(path string) bool {
	return strings.HasSuffix(path, "/auth/login") || strings.HasSuffix(path, "/auth/register")
}

// apiError is the backend's error body shape.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues one JSON request and decodes the response body into out (when
// non-nil). Errors follow the taxonomy: ConnectionError when no response was
// produced, AuthenticationError on 401, ServerError otherwise, with the
// backend's message verbatim when it sent one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "restapi: encoding request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return errors.Wrap(err, "restapi: building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewConnectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewConnectionError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if resp.StatusCode == http.StatusUnauthorized {
			return core.NewAuthenticationError(apiErr.text())
		}
		return core.NewServerError(resp.StatusCode, apiErr.text())
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "restapi: decoding response")
		}
	}
	return nil
}

// doRaw issues one request and returns the raw response bytes, for binary
// payloads the client must not parse.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), nil)
	if err != nil {
		return nil, errors.Wrap(err, "restapi: building request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.NewConnectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewConnectionError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, core.NewAuthenticationError(apiErr.text())
		}
		return nil, core.NewServerError(resp.StatusCode, apiErr.text())
	}
	return data, nil
}
