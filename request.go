package s3kit

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/kilnland/s3kit/credentials"
	"github.com/kilnland/s3kit/signer"
	"github.com/kilnland/s3kit/utils"
)

// streamChunkSize is the payload size of each signed chunk in a streaming
// upload.
const streamChunkSize = 64 << 10

// Request accumulates one operation description - method, bucket, object,
// query parameters, headers, body - and is consumed by a single terminal
// Send, SendOK or SendXML call. Builder methods are chainable and record the
// first error for the terminal call to surface, so call sites stay linear.
type Request struct {
	client *Client
	method string
	region string
	bucket string
	object string
	query  url.Values
	header http.Header
	body   Body
	err    error
}

// NewRequest starts a request description for the given HTTP method.
func (c *Client) NewRequest(method string) *Request {
	return &Request{
		client: c,
		method: method,
		region: c.region,
		query:  url.Values{},
		header: http.Header{},
	}
}

// Bucket sets the bucket name.
func (r *Request) Bucket(name string) *Request {
	r.bucket = name
	return r
}

// Object sets the object key.
func (r *Request) Object(name string) *Request {
	r.object = name
	return r
}

// Region overrides the client region for this request.
func (r *Request) Region(region string) *Request {
	r.region = region
	return r
}

// Query adds a query parameter. Operation selectors use an empty value
// (e.g. Query("tagging", "")).
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// QueryString merges a raw query string into the parameter set.
func (r *Request) QueryString(raw string) *Request {
	parsed, err := url.ParseQuery(raw)
	if err != nil {
		return r.fail(fmt.Errorf("parse query string %q: %w", raw, err))
	}
	for k, vs := range parsed {
		for _, v := range vs {
			r.query.Add(k, v)
		}
	}
	return r
}

// Header adds a request header. Invalid header names or values fail the
// request at the terminal call rather than producing an unsignable request.
func (r *Request) Header(key, value string) *Request {
	if !httpguts.ValidHeaderFieldName(key) {
		return r.fail(fmt.Errorf("invalid header name %q", key))
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return r.fail(fmt.Errorf("invalid value for header %q", key))
	}
	r.header.Add(key, value)
	return r
}

// Body sets the request payload.
func (r *Request) Body(body Body) *Request {
	r.body = body
	return r
}

// XMLBody marshals v as the request payload and attaches the Content-MD5
// integrity header the protocol requires on structured writes.
func (r *Request) XMLBody(v any) *Request {
	data, err := xml.Marshal(v)
	if err != nil {
		return r.fail(fmt.Errorf("marshal request body: %w", err))
	}
	r.body = BodyBytes(data)
	r.header.Set("Content-MD5", utils.MD5Base64(data))
	return r
}

// Apply runs fn against the request, allowing conditional builder chains to
// stay inline.
func (r *Request) Apply(fn func(*Request) *Request) *Request {
	return fn(r)
}

func (r *Request) fail(err error) *Request {
	if r.err == nil {
		r.err = &EncodingError{Err: err}
	}
	return r
}

// Send dispatches the request and returns the raw response envelope
// regardless of status, for callers that branch on status themselves.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	return r.send(ctx, false)
}

// SendOK dispatches the request and requires a 2xx status; any other status
// is decoded into an *ErrorResponse.
func (r *Request) SendOK(ctx context.Context) (*Response, error) {
	return r.send(ctx, true)
}

// SendXML dispatches with SendOK semantics and unmarshals the response body
// into out.
func (r *Request) SendXML(ctx context.Context, out any) error {
	resp, err := r.send(ctx, true)
	if err != nil {
		return err
	}
	return resp.DecodeXML(out)
}

// send runs the pipeline: validate, bind host, canonicalize and sign,
// dispatch, classify. Transport failures and allow-listed protocol errors
// are retried with backoff while the body remains replayable.
func (r *Request) send(ctx context.Context, okOnly bool) (*Response, error) {
	if r.err != nil {
		return nil, r.err
	}
	if err := r.validate(); err != nil {
		return nil, &EncodingError{Err: err}
	}

	creds, err := r.client.provider.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve credentials: %w", err)
	}

	u := r.buildURL()
	replayable := !r.body.isStream()

	for attempt := 0; ; attempt++ {
		canRetry := replayable && attempt+1 < r.client.retryMax

		hresp, err := r.attempt(ctx, u, creds)
		if err != nil {
			if canRetry && ctx.Err() == nil {
				if sleepWithContext(ctx, retryBackoff(attempt)) == nil {
					continue
				}
			}
			return nil, &TransportError{Op: r.method + " " + u.Host, Err: err}
		}

		if !okOnly || hresp.StatusCode >= 200 && hresp.StatusCode < 300 {
			return newResponse(hresp), nil
		}

		protoErr := responseError(hresp)
		if protoErr.Retryable() && canRetry {
			if sleepWithContext(ctx, retryBackoff(attempt)) == nil {
				continue
			}
		}
		return nil, protoErr
	}
}

func (r *Request) validate() error {
	if r.object != "" && r.bucket == "" {
		return ErrMissingBucket
	}
	if r.bucket != "" {
		if err := utils.ValidateBucketName(r.bucket); err != nil {
			return err
		}
	}
	if r.object != "" {
		if err := utils.ValidateObjectName(r.object); err != nil {
			return err
		}
	}
	return nil
}

// buildURL binds the bucket and key into a URL using the client's addressing
// style. The query is rendered in canonical order, so the string signed and
// the string sent are byte-identical.
func (r *Request) buildURL() *url.URL {
	ep := r.client.endpoint
	u := &url.URL{Scheme: ep.Scheme(), Host: ep.Host()}

	var path string
	if r.client.virtualHostedStyle && r.bucket != "" {
		u.Host = r.bucket + "." + ep.Host()
		path = "/" + r.object
	} else if r.bucket != "" {
		path = "/" + r.bucket + "/" + r.object
	} else {
		path = "/"
	}
	u.Path = path
	if escaped := utils.EncodePath(path); escaped != path {
		u.RawPath = escaped
	}
	u.RawQuery = signer.EncodeQuery(r.query)
	return u
}

// attempt performs one signed dispatch. Each attempt re-signs with a fresh
// timestamp but the same credential snapshot.
func (r *Request) attempt(ctx context.Context, u *url.URL, creds credentials.Value) (*http.Response, error) {
	hreq, err := http.NewRequestWithContext(ctx, r.method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.header {
		hreq.Header[k] = append([]string(nil), vs...)
	}
	hreq.Header.Set("User-Agent", r.client.userAgent)

	scope := signer.Scope{Region: r.region, Service: signer.ServiceS3, Time: r.client.now()}
	streaming := r.streaming()

	payloadHash := r.payloadHash(streaming)
	hreq.Header.Set(signer.AmzContentSHAKey, payloadHash)

	switch {
	case streaming:
		hreq.Header.Set("Content-Encoding", "aws-chunked")
		hreq.Header.Set(signer.AmzDecodedLengthKey, strconv.FormatInt(r.body.size, 10))
		hreq.ContentLength = signer.ChunkedLength(r.body.size, streamChunkSize)
		hreq.Header.Set("Content-Length", strconv.FormatInt(hreq.ContentLength, 10))
	case r.body.isStream():
		hreq.ContentLength = r.body.size
	default:
		hreq.ContentLength = int64(len(r.body.data))
	}

	sig := r.client.signer.Sign(hreq, creds, scope, payloadHash)

	// The body is attached after signing: a streaming body's chunk chain is
	// seeded by the request signature itself.
	switch {
	case streaming:
		chunks := signer.NewChunkSigner(r.client.signer.Key(creds, scope), scope, sig)
		hreq.Body = io.NopCloser(signer.NewChunkedReader(r.body.reader, streamChunkSize, chunks))
	case r.body.isStream():
		hreq.Body = io.NopCloser(r.body.reader)
	case len(r.body.data) > 0:
		hreq.Body = io.NopCloser(bytes.NewReader(r.body.data))
		hreq.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(r.body.data)), nil
		}
	}

	return r.client.httpClient.Do(hreq)
}

// streaming reports whether the body goes out as signed chunks.
func (r *Request) streaming() bool {
	return r.client.multiChunked && r.body.isStream() && r.body.size >= 0
}

func (r *Request) payloadHash(streaming bool) string {
	switch {
	case streaming:
		return signer.StreamingPayload
	case r.body.isStream():
		return signer.UnsignedPayload
	case len(r.body.data) > 0:
		return signer.SHA256Hex(r.body.data)
	default:
		return signer.EmptySHA256
	}
}
