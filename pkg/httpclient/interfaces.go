package httpclient

import (
	"context"
	"net/http"
)

// Request describes one outgoing HTTP exchange. FormData, when present, is
// sent url-encoded as the request body regardless of method.
type Request struct {
	Method   string
	URL      string
	Headers  map[string]string
	FormData map[string]string
}

// Response is a fully-buffered HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
