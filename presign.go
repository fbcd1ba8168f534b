package s3kit

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kilnland/s3kit/signer"
)

// Presign produces a URL that grants the bearer the given operation until
// expires elapses. Extra query parameters (response header overrides,
// versionId) are folded into the signature. Expiry is clamped to the
// service's one second to seven day window.
func (c *Client) Presign(ctx context.Context, method, bucket, object string, expires time.Duration, query url.Values) (*url.URL, error) {
	if err := signer.ValidateExpiry(expires); err != nil {
		return nil, err
	}

	r := c.NewRequest(method).Bucket(bucket).Object(object)
	for k, vs := range query {
		for _, v := range vs {
			r = r.Query(k, v)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := r.validate(); err != nil {
		return nil, &EncodingError{Err: err}
	}

	creds, err := c.provider.Retrieve(ctx)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequest(method, r.buildURL().String(), nil)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	scope := signer.Scope{Region: r.region, Service: signer.ServiceS3, Time: c.now()}
	return c.signer.Presign(hreq, creds, scope, expires)
}

// PresignedGetObject produces a URL that downloads the object without
// further authentication.
func (c *Client) PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, query ...url.Values) (*url.URL, error) {
	return c.Presign(ctx, http.MethodGet, bucket, object, expires, firstOpt(query))
}

// PresignedPutObject produces a URL that uploads to the object key without
// further authentication.
func (c *Client) PresignedPutObject(ctx context.Context, bucket, object string, expires time.Duration) (*url.URL, error) {
	return c.Presign(ctx, http.MethodPut, bucket, object, expires, nil)
}

// PresignedHeadObject produces a URL for a HEAD request on the object.
func (c *Client) PresignedHeadObject(ctx context.Context, bucket, object string, expires time.Duration) (*url.URL, error) {
	return c.Presign(ctx, http.MethodHead, bucket, object, expires, nil)
}
