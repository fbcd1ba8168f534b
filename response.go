package s3kit

import (
	"encoding/xml"
	"io"
	"net/http"
)

// Response is the envelope a successful dispatch returns: status, headers and
// the live body stream. The caller owns the body and may stop reading early;
// Close releases the underlying connection for reuse.
type Response struct {
	StatusCode    int
	Header        http.Header
	Body          io.ReadCloser
	ContentLength int64
}

func newResponse(hr *http.Response) *Response {
	return &Response{
		StatusCode:    hr.StatusCode,
		Header:        hr.Header,
		Body:          hr.Body,
		ContentLength: hr.ContentLength,
	}
}

// drainLimit bounds how much of an abandoned body is drained before close so
// a reused connection is not poisoned by a huge unread payload.
const drainLimit = 1 << 18

// Close drains a bounded amount of the remaining body and closes it.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, drainLimit))
	return r.Body.Close()
}

// Bytes reads the whole body and closes it.
func (r *Response) Bytes() ([]byte, error) {
	defer func() { _ = r.Close() }()
	return io.ReadAll(r.Body)
}

// Text reads the whole body as a string and closes it.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	return string(b), err
}

// DecodeXML unmarshals the body into out and closes it. A malformed document
// surfaces as a DecodeError.
func (r *Response) DecodeXML(out any) error {
	defer func() { _ = r.Close() }()
	if err := xml.NewDecoder(r.Body).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
