// Package offline keeps a versioned local copy of the application's assets
// and answers requests from it before falling back to the network.
package offline

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

var (
	// ErrInstallFailed is returned when any precache fetch fails or returns
	// a non-2xx status. Nothing is written in that case.
	ErrInstallFailed = errors.New("precache install failed")
	// ErrInvalidState is returned when a lifecycle step is called out of
	// order.
	ErrInvalidState = errors.New("invalid lifecycle state")
	// ErrNetwork wraps transport failures when no cached copy exists.
	ErrNetwork = errors.New("network request failed")
	// ErrNotFound is returned for unknown cache stores.
	ErrNotFound = errors.New("cache store not found")
)

// ResponseType mirrors the browser classification of a fetched response.
type ResponseType string

const (
	TypeBasic  ResponseType = "basic"  // same origin
	TypeCORS   ResponseType = "cors"   // cross origin, readable
	TypeOpaque ResponseType = "opaque" // cross origin, no-cors
)

// Mode is the request mode, as sent in the Sec-Fetch-Mode header.
type Mode string

const (
	ModeNavigate   Mode = "navigate"
	ModeSameOrigin Mode = "same-origin"
	ModeCORS       Mode = "cors"
	ModeNoCORS     Mode = "no-cors"
)

// Request is an outgoing fetch. URL is the cache key.
type Request struct {
	Method string
	URL    string
	Mode   Mode
	Header http.Header
	Body   io.Reader
}

// Get builds a GET request in cors mode.
func Get(rawURL string) *Request {
	return &Request{Method: http.MethodGet, URL: rawURL, Mode: ModeCORS}
}

// cacheable reports whether the request may be answered from or written to
// the cache at all.
func (r *Request) cacheable() bool {
	if r.Method != "" && r.Method != http.MethodGet {
		return false
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Response is a fully buffered response.
type Response struct {
	URL        string       `json:"url"`
	Status     int          `json:"status"`
	StatusText string       `json:"statusText"`
	Type       ResponseType `json:"type"`
	Header     http.Header  `json:"header"`
	Body       []byte       `json:"-"`
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	c := *r
	c.Header = r.Header.Clone()
	c.Body = bytes.Clone(r.Body)
	return &c
}

// HTTP converts the response for an http.RoundTripper caller.
func (r *Response) HTTP(req *http.Request) *http.Response {
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	status := r.StatusText
	if status == "" {
		status = http.StatusText(r.Status)
	}
	return &http.Response{
		Status:        strconv.Itoa(r.Status) + " " + status,
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
