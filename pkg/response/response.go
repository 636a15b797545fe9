package response

import "net/http"

// Response is the canonical output of a handled request.
type Response struct {
	// Status is the HTTP status code.
	Status int `json:"status"`

	// Body is the response body. Nil when the status is 204 or when the
	// generator produced no value.
	Body any `json:"body,omitempty"`

	// Headers are the response headers. Keys are kept exactly as the
	// last transformation set them; the normalizer itself writes
	// lower-cased keys.
	Headers map[string]string `json:"headers"`
}

// Header names and content types written by the normalizer.
const (
	HeaderContentType = "content-type"

	ContentTypeJSON   = "application/json"
	ContentTypeText   = "text/plain"
	ContentTypeBinary = "application/octet-stream"
)

// New creates a Response with an initialized header map.
func New(status int, body any) *Response {
	return &Response{
		Status:  status,
		Body:    body,
		Headers: make(map[string]string),
	}
}

// WithHeader sets a header and returns the response for chaining.
func (r *Response) WithHeader(name, value string) *Response {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[name] = value
	return r
}

// ContentType returns the content-type header, if set.
func (r *Response) ContentType() string {
	return r.Headers[HeaderContentType]
}

// validStatus reports whether s is a plausible HTTP status code.
func validStatus(s int) bool {
	return s >= 100 && s <= 599
}

// StatusText proxies net/http status text for convenience in adapters.
func StatusText(code int) string {
	return http.StatusText(code)
}
