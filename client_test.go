package s3kit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kilnland/s3kit/credentials"
	"github.com/kilnland/s3kit/mocks"
)

// testTime is the fixed signing clock the transport-level tests run under.
var testTime = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, transport *mocks.HTTPClient, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithCredentials(credentials.NewStatic("TESTACCESSKEY", "TESTSECRETKEY", "")),
		WithHTTPClient(transport),
	}, opts...)
	client, err := New("s3.example.com", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	client.now = func() time.Time { return testTime }
	return client
}

type clientTestSuite struct {
	suite.Suite
}

func (ts *clientTestSuite) TestNewDefaults() {
	client, err := New("play.min.io")
	ts.Require().NoError(err)
	ts.Equal("us-east-1", client.Region())
	ts.Equal("https", client.Endpoint().Scheme())
	ts.Equal("play.min.io", client.Endpoint().Host())
	ts.Equal(defaultRetryMax, client.retryMax)
	ts.Equal(int64(DefaultPartSize), client.partSize)
	ts.False(client.virtualHostedStyle)
	ts.NotNil(client.provider)
	ts.NotNil(client.httpClient)
}

func (ts *clientTestSuite) TestNewRejectsBadEndpoint() {
	_, err := New("")
	ts.Error(err)
	_, err = New("ftp://example.com")
	ts.Error(err)
}

func (ts *clientTestSuite) TestOptions() {
	provider := credentials.NewStatic("k", "s", "")
	client, err := New("http://localhost:9000",
		WithRegion("eu-west-2"),
		WithCredentials(provider),
		WithUserAgent("custom-agent/2.0"),
		WithVirtualHostedStyle(),
		WithMultiChunkedEncoding(),
		WithRetryMax(7),
		WithPartSize(64<<20),
	)
	ts.Require().NoError(err)
	ts.Equal("eu-west-2", client.Region())
	ts.False(client.Endpoint().Secure(), "http scheme prefix should disable TLS")
	ts.Equal("custom-agent/2.0", client.userAgent)
	ts.True(client.virtualHostedStyle)
	ts.True(client.multiChunked)
	ts.Equal(7, client.retryMax)
	ts.Equal(int64(64<<20), client.partSize)
}

func (ts *clientTestSuite) TestWithSecure() {
	client, err := New("localhost:9000", WithSecure(false))
	ts.Require().NoError(err)
	ts.Equal("http", client.Endpoint().Scheme())

	// a scheme prefix on the endpoint overrides the option
	client, err = New("https://localhost:9000", WithSecure(false))
	ts.Require().NoError(err)
	ts.Equal("https", client.Endpoint().Scheme())
}

func (ts *clientTestSuite) TestPartSizeFloor() {
	client, err := New("play.min.io", WithPartSize(1024))
	ts.Require().NoError(err)
	ts.Equal(int64(MinPartSize), client.partSize, "part size below the protocol minimum should be raised")
}

func TestClient(t *testing.T) {
	suite.Run(t, new(clientTestSuite))
}
