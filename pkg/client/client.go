// Package client implements the signed request facade for the private
// mobile API: it composes the default header table, wraps every body in the
// HMAC-signed envelope, and folds auth-related response headers back into
// the shared session state.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/altair-hq/igclient/pkg/httpclient"
	"github.com/altair-hq/igclient/pkg/session"
	"github.com/altair-hq/igclient/pkg/signer"
)

// Tracked response headers the hook folds into session state.
const (
	headerSetWWWClaim     = "x-ig-set-www-claim"
	headerSetAuth         = "ig-set-authorization"
	headerSetPwdKeyID     = "ig-set-password-encryption-key-id"
	headerSetPwdPubKey    = "ig-set-password-encryption-pub-key"
	defaultRequestTimeout = 30 * time.Second
)

// Request describes one call against the API.
type Request struct {
	// URL is the path relative to the API base, e.g. "feed/timeline/".
	URL string
	// Method defaults to GET.
	Method string
	// Headers override entries of the default header table; override wins.
	Headers map[string]string
	// Data overrides/extends the default body fields; override wins. Values
	// must be JSON-serializable.
	Data map[string]any
}

// Client performs authenticated HTTP calls and synchronizes session state
// from each response. It adds no retries, no timeouts beyond the transport's
// own, and no status-based branching; any received JSON is handed back.
type Client struct {
	http  httpclient.Client
	state *session.State
	base  string
	log   Logger

	// now is swappable for tests.
	now func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. a stub server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.base = base
		}
	}
}

// WithLogger attaches a logger for per-request debug output.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a signed client over the given transport and session state.
// The state is shared with the caller and mutated in place by the response
// hook; concurrent Send calls race on it last-write-wins.
func New(transport httpclient.Client, st *session.State, opts ...Option) *Client {
	c := &Client{
		http:  transport,
		state: st,
		base:  signer.BaseURL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(defaultRequestTimeout)
	}
	c.log = ensureLogger(c.log)
	return c
}

// Send issues one signed request and returns the JSON-decoded response
// payload. The session state is updated from the response headers before
// returning, for every completed exchange regardless of HTTP status.
func (c *Client) Send(ctx context.Context, req Request) (json.RawMessage, error) {
	if c == nil || c.state == nil {
		return nil, errors.New("client is not initialized")
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("request url is empty")
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	headers := mergeHeaders(defaultHeaders(c.state, c.now()), req.Headers)

	body := signer.NewFields().Set("_csrfToken", c.state.CSRFToken)
	body.MergeMap(req.Data)
	signed, err := signer.SignData(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method:   method,
		URL:      c.base + strings.TrimPrefix(req.URL, "/"),
		Headers:  headers,
		FormData: signed.FormValues(),
	})
	if err != nil {
		c.log.DebugObj("request failed", "request_meta", map[string]any{
			"method": method,
			"path":   req.URL,
			"error":  err.Error(),
		})
		return nil, &TransportError{Err: err}
	}

	c.applyResponseHeaders(resp.Header())

	c.log.DebugObj("request completed", "request_meta", map[string]any{
		"method": method,
		"path":   req.URL,
		"status": resp.StatusCode(),
	})

	raw := resp.Body()
	if !json.Valid(raw) {
		c.log.WarnObj("response is not valid json", "response_meta", map[string]any{
			"path":   req.URL,
			"status": resp.StatusCode(),
		})
		return nil, &DecodeError{Body: raw, Err: errors.New("response body is not valid JSON")}
	}
	return json.RawMessage(raw), nil
}

// applyResponseHeaders folds the tracked auth headers into session state.
// A field updates only when its header is present with exactly one value;
// absent or multi-valued headers leave the existing value untouched.
func (c *Client) applyResponseHeaders(h http.Header) {
	if h == nil {
		return
	}
	if v, ok := singleHeader(h, headerSetWWWClaim); ok {
		c.state.WWWClaim = v
	}
	if v, ok := singleHeader(h, headerSetAuth); ok {
		c.state.Authorization = v
	}
	if v, ok := singleHeader(h, headerSetPwdKeyID); ok {
		c.state.PasswordEncryptionKeyID = v
	}
	if v, ok := singleHeader(h, headerSetPwdPubKey); ok {
		c.state.PasswordEncryptionPubKey = v
	}
}

func singleHeader(h http.Header, name string) (string, bool) {
	values := h.Values(name)
	if len(values) != 1 {
		return "", false
	}
	return values[0], true
}
