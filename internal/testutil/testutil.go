// Package testutil contains common utility functions for unit tests.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// FakeClient returns an HTTP client that serves the given pages,
// keyed by URL, and replies 404 to every other request.
func FakeClient(pages map[string][]byte) *http.Client {
	return &http.Client{Transport: &mockRoundTrip{pages: pages}}
}

// RequestLog returns the URLs requested through a client made by
// FakeClient, in order.
func RequestLog(c *http.Client) []string {
	rt, ok := c.Transport.(*mockRoundTrip)
	if !ok {
		return nil
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.log...)
}

type mockRoundTrip struct {
	pages map[string][]byte

	mu  sync.Mutex
	log []string
}

func (r *mockRoundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	r.mu.Lock()
	r.log = append(r.log, url)
	r.mu.Unlock()

	rsp := http.Response{
		Header:  make(http.Header),
		Request: req,
	}
	if body, ok := r.pages[url]; ok {
		rsp.StatusCode = http.StatusOK
		rsp.Status = "200 OK"
		rsp.Body = io.NopCloser(bytes.NewReader(body))
	} else {
		rsp.StatusCode = http.StatusNotFound
		rsp.Status = "404 Not Found"
		rsp.Body = io.NopCloser(strings.NewReader("404 not found"))
	}
	return &rsp, nil
}
