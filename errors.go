package s3kit

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is a type that allows for error constants below
type Error string

// Error returns a string representation of the error
func (e Error) Error() string { return string(e) }

const (
	// ErrMissingBucket - the operation requires a bucket name
	ErrMissingBucket = Error("bucket name is required")

	// ErrMissingObject - the operation requires an object name
	ErrMissingObject = Error("object name is required")

	// ErrObjectTooLarge - the body exceeds the 5 TiB multipart ceiling
	ErrObjectTooLarge = Error("object size exceeds the 5TiB maximum")

	// ErrBodyNotReplayable - a streamed body was already consumed and the request cannot be retried or resigned
	ErrBodyNotReplayable = Error("request body stream cannot be replayed")
)

// EncodingError reports input that cannot be canonicalized into a valid
// request - a malformed bucket or object name, or a header that is not
// representable on the wire. It marks a caller bug and is never retried.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return "encoding error: " + e.Err.Error() }

// Unwrap returns the underlying cause.
func (e *EncodingError) Unwrap() error { return e.Err }

// TransportError reports a failure below the protocol: connection refused,
// reset, timeout. Transport errors are retryable under the client policy.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be parsed into the
// expected structured result. The call itself succeeded on the wire.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode error: " + e.Err.Error() }

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// ErrorResponse is the typed form of an S3 error document. It is constructed
// only from a non-2xx response and never mutated afterwards.
type ErrorResponse struct {
	XMLName    xml.Name `xml:"Error"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	Resource   string   `xml:"Resource"`
	RequestID  string   `xml:"RequestId"`
	HostID     string   `xml:"HostId"`
	BucketName string   `xml:"BucketName"`
	Key        string   `xml:"Key"`

	// StatusCode is the HTTP status the document arrived with.
	StatusCode int `xml:"-"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("s3 error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// codes a client may retry: clock-skew rejections and transient service-side
// failures. Everything else is treated conservatively as non-retryable.
var retryableCodes = map[string]struct{}{
	"RequestTimeout":       {},
	"RequestTimeTooSkewed": {},
	"InternalError":        {},
	"SlowDown":             {},
	"ServiceUnavailable":   {},
}

// Retryable reports whether the error code is on the retry allow-list.
func (e *ErrorResponse) Retryable() bool {
	if _, ok := retryableCodes[e.Code]; ok {
		return true
	}
	return e.Code == "" && (e.StatusCode == http.StatusInternalServerError || e.StatusCode == http.StatusServiceUnavailable)
}

// IsAuthExpired reports whether the service rejected the signature for clock
// or expiry reasons, as opposed to the credentials being wrong.
func (e *ErrorResponse) IsAuthExpired() bool {
	switch e.Code {
	case "RequestTimeTooSkewed", "ExpiredToken", "TokenRefreshRequired":
		return true
	}
	return false
}

// maxErrorBody caps how much of an error document is read.
const maxErrorBody = 1 << 20

// responseError decodes an S3 error document from a non-2xx response into an
// *ErrorResponse. Decoding never fails the call: an empty or unparseable body
// degrades to a generic error carrying only the HTTP status. The response
// body is drained and closed.
func responseError(resp *http.Response) *ErrorResponse {
	errResp := &ErrorResponse{StatusCode: resp.StatusCode}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if readErr == nil && len(body) > 0 {
		if xmlErr := xml.Unmarshal(body, errResp); xmlErr == nil && errResp.Code != "" {
			return errResp
		}
	}

	// degrade to a status-only error
	errResp.Code = ""
	errResp.Message = http.StatusText(resp.StatusCode)
	if errResp.Message == "" {
		errResp.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return errResp
}

// IsErrorCode reports whether err is an *ErrorResponse with the given S3
// error code.
func IsErrorCode(err error, code string) bool {
	var er *ErrorResponse
	return errors.As(err, &er) && er.Code == code
}
