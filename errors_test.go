package s3kit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type errorsTestSuite struct {
	suite.Suite
}

func errorDoc(code, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Error>
	<Code>%s</Code>
	<Message>%s</Message>
	<Resource>/my-bucket/my-key</Resource>
	<RequestId>4442587FB7D0A2F9</RequestId>
	<HostId>host-id-value</HostId>
	<BucketName>my-bucket</BucketName>
	<Key>my-key</Key>
</Error>`, code, message)
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func (ts *errorsTestSuite) TestResponseErrorDecodesDocument() {
	er := responseError(httpResponse(404, errorDoc("NoSuchBucket", "The specified bucket does not exist")))

	ts.Equal("NoSuchBucket", er.Code)
	ts.Equal("The specified bucket does not exist", er.Message)
	ts.Equal("/my-bucket/my-key", er.Resource)
	ts.Equal("4442587FB7D0A2F9", er.RequestID)
	ts.Equal("my-bucket", er.BucketName)
	ts.Equal("my-key", er.Key)
	ts.Equal(404, er.StatusCode)
	ts.Contains(er.Error(), "NoSuchBucket")
}

func (ts *errorsTestSuite) TestResponseErrorDegradesOnEmptyBody() {
	er := responseError(httpResponse(500, ""))
	ts.Empty(er.Code)
	ts.Equal(500, er.StatusCode)
	ts.Equal("Internal Server Error", er.Message)
}

func (ts *errorsTestSuite) TestResponseErrorDegradesOnGarbage() {
	er := responseError(httpResponse(503, "<html>load balancer says no</html>"))
	ts.Empty(er.Code)
	ts.Equal(503, er.StatusCode)
}

func (ts *errorsTestSuite) TestRetryable() {
	for _, code := range []string{
		"RequestTimeout", "RequestTimeTooSkewed", "InternalError", "SlowDown", "ServiceUnavailable",
	} {
		ts.True((&ErrorResponse{Code: code}).Retryable(), "code %s should be retryable", code)
	}
	for _, code := range []string{"NoSuchBucket", "NoSuchKey", "AccessDenied", "InvalidAccessKeyId"} {
		ts.False((&ErrorResponse{Code: code}).Retryable(), "code %s should not be retryable", code)
	}

	// undecodable bodies: only plain 500/503 retry
	ts.True((&ErrorResponse{StatusCode: 500}).Retryable())
	ts.True((&ErrorResponse{StatusCode: 503}).Retryable())
	ts.False((&ErrorResponse{StatusCode: 400}).Retryable())
	ts.False((&ErrorResponse{StatusCode: 404}).Retryable())
}

func (ts *errorsTestSuite) TestIsAuthExpired() {
	ts.True((&ErrorResponse{Code: "ExpiredToken"}).IsAuthExpired())
	ts.True((&ErrorResponse{Code: "RequestTimeTooSkewed"}).IsAuthExpired())
	ts.True((&ErrorResponse{Code: "TokenRefreshRequired"}).IsAuthExpired())
	ts.False((&ErrorResponse{Code: "AccessDenied"}).IsAuthExpired())
}

func (ts *errorsTestSuite) TestIsErrorCode() {
	err := error(&ErrorResponse{Code: "NoSuchKey", StatusCode: 404})
	ts.True(IsErrorCode(err, "NoSuchKey"))
	ts.False(IsErrorCode(err, "NoSuchBucket"))

	wrapped := fmt.Errorf("get object: %w", err)
	ts.True(IsErrorCode(wrapped, "NoSuchKey"), "IsErrorCode should see through wrapping")

	ts.False(IsErrorCode(fmt.Errorf("plain"), "NoSuchKey"))
}

func (ts *errorsTestSuite) TestErrorWrapping() {
	cause := fmt.Errorf("connection refused")
	te := &TransportError{Op: "PUT example.com", Err: cause}
	ts.ErrorIs(te, cause)
	ts.Contains(te.Error(), "PUT example.com")

	ee := &EncodingError{Err: ErrMissingBucket}
	ts.ErrorIs(ee, ErrMissingBucket)

	de := &DecodeError{Err: cause}
	ts.ErrorIs(de, cause)
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(errorsTestSuite))
}
