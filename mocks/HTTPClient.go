package mocks

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// HTTPClient is a scripted stand-in for the client's transport. Each Do call
// consumes the next queued response or error; once the script is exhausted
// the last entry repeats. Requests are recorded with their bodies read out,
// so tests can assert on the exact wire bytes.
type HTTPClient struct {
	mu        sync.Mutex
	responses []*http.Response
	errs      []error
	calls     int

	// Requests holds every request Do received, in order, with Body already
	// consumed into Payloads.
	Requests []*http.Request
	Payloads [][]byte
}

// Respond queues a response with the given status, headers and body.
func (m *HTTPClient) Respond(status int, header http.Header, body string) *HTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if header == nil {
		header = http.Header{}
	}
	m.responses = append(m.responses, &http.Response{
		StatusCode:    status,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentLength: int64(len(body)),
	})
	m.errs = append(m.errs, nil)
	return m
}

// Fail queues a transport-level error.
func (m *HTTPClient) Fail(err error) *HTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
	return m
}

// Do records the request and plays back the next scripted result.
func (m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var payload []byte
	if req.Body != nil {
		payload, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	m.Requests = append(m.Requests, req)
	m.Payloads = append(m.Payloads, payload)

	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	if i < 0 {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}
	if m.errs[i] != nil {
		return nil, m.errs[i]
	}
	resp := m.responses[i]
	return &http.Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
	}, nil
}

// CallCount reports how many times Do was invoked.
func (m *HTTPClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
