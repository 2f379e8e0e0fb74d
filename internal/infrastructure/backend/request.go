package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one call to the ERP backend. Path is relative to the
// configured base URL, e.g. "/api/v1/sales/orders/".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is a successful (2xx) answer from the backend.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode %d response: %w", r.StatusCode, err)
	}
	return nil
}

// call is a Request with its body encoded exactly once, so that a replay after
// a token refresh sends identical bytes.
type call struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

func (r Request) prepare() (*call, error) {
	c := &call{
		method: r.Method,
		path:   r.Path,
		query:  r.Query,
		header: r.Header.Clone(),
	}
	if c.method == "" {
		c.method = http.MethodGet
	}
	switch b := r.Body.(type) {
	case nil:
	case []byte:
		c.body = b
	case json.RawMessage:
		c.body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", r.Method, r.Path, err)
		}
		c.body = data
	}
	return c, nil
}
