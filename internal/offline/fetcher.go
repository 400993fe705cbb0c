package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Fetcher performs network requests.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req *Request) (*Response, error)

func (f FetcherFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// NetworkFetcher fetches over net/http and classifies responses against
// the application origin. Client must not route through Transport.
type NetworkFetcher struct {
	Client *http.Client
	// Origin is the application origin, e.g. "https://guide.example". Requests
	// elsewhere are cross-origin.
	Origin string
}

func (f *NetworkFetcher) Fetch(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, req.Body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL, err)
	}
	return &Response{
		URL:        req.URL,
		Status:     resp.StatusCode,
		StatusText: strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))),
		Type:       f.classify(req),
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

func (f *NetworkFetcher) classify(req *Request) ResponseType {
	if f.sameOrigin(req.URL) {
		return TypeBasic
	}
	if req.Mode == ModeNoCORS {
		return TypeOpaque
	}
	return TypeCORS
}

func (f *NetworkFetcher) sameOrigin(raw string) bool {
	if f.Origin == "" {
		return true
	}
	a, err := url.Parse(raw)
	if err != nil {
		return false
	}
	b, err := url.Parse(f.Origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
