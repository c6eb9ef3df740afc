package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// ContentTypeJSON is the content type the fake sends unless told otherwise.
const ContentTypeJSON = "application/json; charset=utf-8"

// FakeResponse describes the behaviour of a single fake upstream call.
// A ContentType of "-" suppresses the header entirely.
type FakeResponse struct {
	Delay       time.Duration
	Status      int
	ContentType string
	Body        string
}

// FakeSource is an httptest book-search API with a scripted response plan.
// It records every request so tests can assert on the wire format.
type FakeSource struct {
	server    *httptest.Server
	mu        sync.Mutex
	responses []FakeResponse
	index     int
	calls     int
	lastURL   *url.URL
	lastHdr   http.Header
}

// NewFakeSource constructs a new FakeSource with the provided response plan.
// When the number of executed calls exceeds the length of responses, the last
// response is reused.
func NewFakeSource(responses ...FakeResponse) *FakeSource {
	if len(responses) == 0 {
		responses = []FakeResponse{{Status: http.StatusOK, Body: "[]"}}
	}

	fs := &FakeSource{
		responses: responses,
	}

	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := fs.record(r)
		if resp.Delay > 0 {
			timer := time.NewTimer(resp.Delay)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}

		switch resp.ContentType {
		case "":
			w.Header().Set("Content-Type", ContentTypeJSON)
		case "-":
			w.Header()["Content-Type"] = nil
		default:
			w.Header().Set("Content-Type", resp.ContentType)
		}

		w.WriteHeader(status)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	}))

	return fs
}

func (f *FakeSource) record(r *http.Request) FakeResponse {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	u := *r.URL
	f.lastURL = &u
	f.lastHdr = r.Header.Clone()

	if f.index >= len(f.responses) {
		return f.responses[len(f.responses)-1]
	}

	resp := f.responses[f.index]
	f.index++
	return resp
}

// URL returns the base URL for the fake source.
func (f *FakeSource) URL() string {
	if f == nil || f.server == nil {
		return ""
	}
	return f.server.URL
}

// Client returns an http.Client wired to the fake server.
func (f *FakeSource) Client() *http.Client {
	return f.server.Client()
}

// Calls returns the number of requests handled so far.
func (f *FakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequestURI returns the path and raw query of the most recent request.
func (f *FakeSource) LastRequestURI() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastURL == nil {
		return ""
	}
	return f.lastURL.RequestURI()
}

// LastHeader returns a copy of the headers of the most recent request.
func (f *FakeSource) LastHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHdr.Clone()
}

// SetResponses overrides the remaining response plan, resetting the cursor.
func (f *FakeSource) SetResponses(responses ...FakeResponse) {
	if f == nil {
		return
	}
	if len(responses) == 0 {
		responses = []FakeResponse{{Status: http.StatusOK, Body: "[]"}}
	}
	f.mu.Lock()
	f.responses = responses
	f.index = 0
	f.calls = 0
	f.mu.Unlock()
}

// Close terminates the hosted httptest server.
func (f *FakeSource) Close() {
	if f == nil || f.server == nil {
		return
	}
	f.server.Close()
}
