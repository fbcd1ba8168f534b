package s3kit

import (
	"net/http"
	"time"

	"github.com/kilnland/s3kit/credentials"
	"github.com/kilnland/s3kit/signer"
	"github.com/kilnland/s3kit/utils"
)

// Version is the library version reported in the User-Agent header.
const Version = "1.0.0"

const defaultUserAgent = "s3kit/" + Version + " (+https://github.com/kilnland/s3kit)"

// HTTPClient is the transport capability the executor dispatches through.
// *http.Client satisfies it; tests substitute doubles. Connection pooling,
// TLS and DNS belong to the implementation, not to this library.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an S3-compatible object storage client. It is immutable after New
// returns and safe for concurrent use; concurrent operations share only the
// credential provider and the transport's connection pool.
type Client struct {
	endpoint           utils.Endpoint
	region             string
	provider           credentials.Provider
	httpClient         HTTPClient
	userAgent          string
	virtualHostedStyle bool
	multiChunked       bool
	retryMax           int
	partSize           int64
	signer             *signer.Signer
	secure             bool

	// now is the signing clock; replaced in tests for fixed-timestamp vectors.
	now func() time.Time
}

// Option configures a Client during New.
type Option func(*Client)

// WithRegion sets the region bound into credential scopes.
//
// Default: "us-east-1".
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// WithCredentials sets the credential provider.
//
// Default: environment, then the shared AWS credentials file, behind an
// expiry-aware cache.
func WithCredentials(p credentials.Provider) Option {
	return func(c *Client) { c.provider = p }
}

// WithSecure decides TLS for endpoints given without a scheme prefix. An
// explicit http:// or https:// on the endpoint always wins.
//
// Default: true.
func WithSecure(secure bool) Option {
	return func(c *Client) { c.secure = secure }
}

// WithHTTPClient sets the transport the executor dispatches through.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) { c.userAgent = agent }
}

// WithVirtualHostedStyle addresses buckets as a host prefix
// (bucket.endpoint) instead of a path segment (endpoint/bucket).
//
// Default: path style, which every S3-compatible service accepts.
func WithVirtualHostedStyle() Option {
	return func(c *Client) { c.virtualHostedStyle = true }
}

// WithMultiChunkedEncoding uploads streamed bodies of known length using the
// signed-chunk transfer encoding instead of an unsigned payload, binding
// every byte to the request signature without buffering the stream.
func WithMultiChunkedEncoding() Option {
	return func(c *Client) { c.multiChunked = true }
}

// WithRetryMax caps the number of attempts for retryable failures.
//
// Default: 3.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retryMax = n
		}
	}
}

// WithPartSize sets the multipart part size in bytes. Values below the 5 MiB
// protocol minimum are raised to it.
func WithPartSize(size int64) Option {
	return func(c *Client) {
		c.partSize = max(size, MinPartSize)
	}
}

// New returns a Client for an S3-compatible service at endpoint, which takes
// the form "[http(s)://]host[:port]". A scheme prefix on the endpoint decides
// TLS; a bare host defaults to https.
func New(endpoint string, opts ...Option) (*Client, error) {
	c := &Client{
		region:    "us-east-1",
		userAgent: defaultUserAgent,
		retryMax:  defaultRetryMax,
		partSize:  DefaultPartSize,
		signer:    signer.New(),
		secure:    true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	ep, err := utils.NewEndpoint(endpoint, c.secure)
	if err != nil {
		return nil, err
	}
	c.endpoint = ep

	if c.provider == nil {
		c.provider = credentials.NewCache(credentials.NewChain(
			credentials.NewEnv(),
			credentials.NewFile("", ""),
		))
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c, nil
}

// Endpoint returns the parsed service endpoint.
func (c *Client) Endpoint() utils.Endpoint {
	return c.endpoint
}

// Region returns the default region for operations that do not override it.
func (c *Client) Region() string {
	return c.region
}
