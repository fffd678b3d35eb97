package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/altair-hq/igclient/pkg/httpclient"
	"github.com/altair-hq/igclient/pkg/session"
	"github.com/altair-hq/igclient/pkg/signer"
)

// stubTransport records the outgoing request and replays a canned response.
type stubTransport struct {
	lastReq httpclient.Request
	resp    *stubResponse
	err     error
}

func (s *stubTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubResponse struct {
	body   []byte
	status int
	header http.Header
}

func (s *stubResponse) Body() []byte        { return s.body }
func (s *stubResponse) StatusCode() int     { return s.status }
func (s *stubResponse) Header() http.Header { return s.header }

func okResponse(body string) *stubResponse {
	return &stubResponse{body: []byte(body), status: http.StatusOK, header: http.Header{}}
}

func testState() *session.State {
	st := session.New("someuser", "TestAgent/1.0")
	st.CSRFToken = "csrf-token"
	st.Cookies = session.MapCookies{"mid": "MID-VALUE"}
	return st
}

func TestSendSignsMergedBody(t *testing.T) {
	transport := &stubTransport{resp: okResponse(`{"status":"ok"}`)}
	st := testState()
	c := New(transport, st, WithBaseURL("https://api.test/v1/"))

	out, err := c.Send(context.Background(), Request{
		URL:    "foo",
		Method: "POST",
		Data:   map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if string(out) != `{"status":"ok"}` {
		t.Fatalf("unexpected payload: %s", out)
	}

	if transport.lastReq.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", transport.lastReq.Method)
	}
	if transport.lastReq.URL != "https://api.test/v1/foo" {
		t.Fatalf("unexpected url: %s", transport.lastReq.URL)
	}

	form := transport.lastReq.FormData
	if form["ig_sig_key_version"] != signer.SigKeyVersion {
		t.Fatalf("unexpected sig key version: %s", form["ig_sig_key_version"])
	}

	signedBody := form["signed_body"]
	dot := strings.Index(signedBody, ".")
	if dot != 64 {
		t.Fatalf("signed_body does not start with a 64-char digest: %s", signedBody)
	}
	sig, body := signedBody[:dot], signedBody[dot+1:]
	if sig != signer.Sign(body) {
		t.Fatalf("signature does not verify against body")
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("signed body is not json: %v", err)
	}
	if decoded["_csrfToken"] != st.CSRFToken {
		t.Fatalf("expected csrf token in body, got %v", decoded["_csrfToken"])
	}
	if decoded["x"] != float64(1) {
		t.Fatalf("expected caller field in body, got %v", decoded["x"])
	}
	if len(decoded) != 2 {
		t.Fatalf("unexpected extra body fields: %v", decoded)
	}
}

func TestSendBodyOverrideWins(t *testing.T) {
	transport := &stubTransport{resp: okResponse(`{}`)}
	st := testState()
	c := New(transport, st, WithBaseURL("https://api.test/v1/"))

	if _, err := c.Send(context.Background(), Request{
		URL:  "foo",
		Data: map[string]any{"_csrfToken": "caller-wins"},
	}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	body := transport.lastReq.FormData["signed_body"]
	body = body[strings.Index(body, ".")+1:]
	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("signed body is not json: %v", err)
	}
	if decoded["_csrfToken"] != "caller-wins" {
		t.Fatalf("caller override should win, got %v", decoded["_csrfToken"])
	}
}

func TestSendDefaultHeadersAndOverrides(t *testing.T) {
	transport := &stubTransport{resp: okResponse(`{}`)}
	st := testState()
	st.Authorization = "Bearer IGT:2:prior"
	c := New(transport, st, WithBaseURL("https://api.test/v1/"))

	before := time.Now()
	if _, err := c.Send(context.Background(), Request{
		URL:     "foo",
		Headers: map[string]string{"X-IG-Capabilities": "override", "X-Custom": "extra"},
	}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	after := time.Now()

	h := transport.lastReq.Headers
	if transport.lastReq.Method != http.MethodGet {
		t.Fatalf("expected GET default, got %s", transport.lastReq.Method)
	}
	if h["X-IG-Capabilities"] != "override" {
		t.Fatalf("override should win, got %q", h["X-IG-Capabilities"])
	}
	if h["X-Custom"] != "extra" {
		t.Fatalf("extra header missing")
	}
	if h["X-IG-App-ID"] != signer.AppID {
		t.Fatalf("default header missing, got %q", h["X-IG-App-ID"])
	}
	if h["X-IG-Device-ID"] != st.DeviceUUID || h["X-IG-Android-ID"] != st.DeviceID {
		t.Fatalf("device identity headers wrong: %v", h)
	}
	if h["X-Pigeon-Session-Id"] != st.PigeonSessionID {
		t.Fatalf("pigeon session id header wrong: %q", h["X-Pigeon-Session-Id"])
	}
	if h["X-MID"] != "MID-VALUE" {
		t.Fatalf("mid cookie header wrong: %q", h["X-MID"])
	}
	if h["Authorization"] != "Bearer IGT:2:prior" {
		t.Fatalf("authorization header wrong: %q", h["Authorization"])
	}
	if h["User-Agent"] != "TestAgent/1.0" {
		t.Fatalf("user agent header wrong: %q", h["User-Agent"])
	}
	if h["X-IG-WWW-Claim"] != "0" {
		t.Fatalf("empty claim should default to 0, got %q", h["X-IG-WWW-Claim"])
	}

	raw := h["X-Pigeon-Rawclienttime"]
	if parts := strings.Split(raw, "."); len(parts) != 2 || len(parts[1]) != 3 {
		t.Fatalf("raw client time must have exactly 3 decimal places: %q", raw)
	}
	ts, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		t.Fatalf("raw client time not a float: %q", raw)
	}
	if ts < float64(before.Unix())-1 || ts > float64(after.Unix())+1 {
		t.Fatalf("raw client time %f outside call window", ts)
	}
}

func TestResponseHookUpdatesState(t *testing.T) {
	resp := okResponse(`{"status":"ok"}`)
	resp.header.Set("X-IG-Set-WWW-Claim", "hmac.new-claim")
	resp.header.Set("IG-Set-Authorization", "Bearer IGT:2:new")
	resp.header.Set("IG-Set-Password-Encryption-Key-Id", "87")
	resp.header.Set("IG-Set-Password-Encryption-Pub-Key", "cHViLWtleQ==")

	st := testState()
	c := New(&stubTransport{resp: resp}, st, WithBaseURL("https://api.test/v1/"))

	if _, err := c.Send(context.Background(), Request{URL: "foo"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if st.WWWClaim != "hmac.new-claim" {
		t.Fatalf("www claim not updated: %q", st.WWWClaim)
	}
	if st.Authorization != "Bearer IGT:2:new" {
		t.Fatalf("authorization not updated: %q", st.Authorization)
	}
	if st.PasswordEncryptionKeyID != "87" || st.PasswordEncryptionPubKey != "cHViLWtleQ==" {
		t.Fatalf("password encryption fields not updated: %+v", st)
	}
}

func TestResponseHookLeavesStateWhenHeadersAbsent(t *testing.T) {
	st := testState()
	st.Authorization = "Bearer IGT:2:prior"
	st.WWWClaim = "prior-claim"
	c := New(&stubTransport{resp: okResponse(`{"status":"ok"}`)}, st, WithBaseURL("https://api.test/v1/"))

	if _, err := c.Send(context.Background(), Request{URL: "foo"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if st.Authorization != "Bearer IGT:2:prior" {
		t.Fatalf("authorization should be untouched, got %q", st.Authorization)
	}
	if st.WWWClaim != "prior-claim" {
		t.Fatalf("claim should be untouched, got %q", st.WWWClaim)
	}
}

func TestResponseHookIgnoresMultiValuedHeaders(t *testing.T) {
	resp := okResponse(`{}`)
	resp.header.Add("IG-Set-Authorization", "Bearer IGT:2:first")
	resp.header.Add("IG-Set-Authorization", "Bearer IGT:2:second")

	st := testState()
	st.Authorization = "Bearer IGT:2:prior"
	c := New(&stubTransport{resp: resp}, st, WithBaseURL("https://api.test/v1/"))

	if _, err := c.Send(context.Background(), Request{URL: "foo"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if st.Authorization != "Bearer IGT:2:prior" {
		t.Fatalf("multi-valued header must be ignored, got %q", st.Authorization)
	}
}

func TestResponseHookRunsOnNonJSONAndNon2xx(t *testing.T) {
	resp := &stubResponse{body: []byte("<html>gateway error</html>"), status: http.StatusBadGateway, header: http.Header{}}
	resp.header.Set("IG-Set-Authorization", "Bearer IGT:2:from-error")

	st := testState()
	c := New(&stubTransport{resp: resp}, st, WithBaseURL("https://api.test/v1/"))

	_, err := c.Send(context.Background(), Request{URL: "foo"})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if string(decodeErr.Body) != "<html>gateway error</html>" {
		t.Fatalf("decode error should carry the raw body: %q", decodeErr.Body)
	}
	if st.Authorization != "Bearer IGT:2:from-error" {
		t.Fatalf("hook must run before decode failure is reported, got %q", st.Authorization)
	}
}

func TestSendNon2xxJSONReturnedAsIs(t *testing.T) {
	resp := &stubResponse{body: []byte(`{"message":"login_required","status":"fail"}`), status: http.StatusUnauthorized, header: http.Header{}}
	c := New(&stubTransport{resp: resp}, testState(), WithBaseURL("https://api.test/v1/"))

	out, err := c.Send(context.Background(), Request{URL: "foo"})
	if err != nil {
		t.Fatalf("non-2xx JSON must not error: %v", err)
	}
	if string(out) != `{"message":"login_required","status":"fail"}` {
		t.Fatalf("unexpected payload: %s", out)
	}
}

func TestSendTransportError(t *testing.T) {
	cause := errors.New("connection reset")
	c := New(&stubTransport{err: cause}, testState(), WithBaseURL("https://api.test/v1/"))

	_, err := c.Send(context.Background(), Request{URL: "foo"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must propagate unchanged")
	}
}

func TestSendRejectsEmptyURL(t *testing.T) {
	c := New(&stubTransport{resp: okResponse(`{}`)}, testState())
	if _, err := c.Send(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestSendStripsLeadingSlash(t *testing.T) {
	transport := &stubTransport{resp: okResponse(`{}`)}
	c := New(transport, testState(), WithBaseURL("https://api.test/v1/"))

	if _, err := c.Send(context.Background(), Request{URL: "/foo/bar"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if transport.lastReq.URL != "https://api.test/v1/foo/bar" {
		t.Fatalf("unexpected url: %s", transport.lastReq.URL)
	}
}
