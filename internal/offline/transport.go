package offline

import (
	"net/http"
)

// Transport is an http.RoundTripper that sends every request through a
// Manager. The request mode is read from the Sec-Fetch-Mode header and
// defaults to cors. The header itself is not sent upstream.
type Transport struct {
	Manager *Manager
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	mode := Mode(req.Header.Get("Sec-Fetch-Mode"))
	if mode == "" {
		mode = ModeCORS
	}
	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Del("Sec-Fetch-Mode")
	r := &Request{
		Method: req.Method,
		URL:    req.URL.String(),
		Mode:   mode,
		Header: header,
		Body:   req.Body,
	}
	resp, err := t.Manager.Fetch(req.Context(), r)
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}
	return resp.HTTP(req), nil
}
