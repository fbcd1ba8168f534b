package s3kit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kilnland/s3kit/datatype"
)

// BucketOptions carry the cross-cutting bucket request attributes.
type BucketOptions struct {
	// Region overrides the client region for this bucket.
	Region string
	// ExpectedBucketOwner asserts the owning account; mismatches fail with
	// access denied.
	ExpectedBucketOwner string
}

func (c *Client) bucketRequest(method, bucket string, opts BucketOptions) *Request {
	return c.NewRequest(method).
		Bucket(bucket).
		Apply(func(r *Request) *Request {
			if opts.Region != "" {
				r = r.Region(opts.Region)
			}
			if opts.ExpectedBucketOwner != "" {
				r = r.Header("x-amz-expected-bucket-owner", opts.ExpectedBucketOwner)
			}
			return r
		})
}

// MakeBucket creates a bucket. With objectLock set the bucket is created with
// object locking enabled, a property that cannot be switched on later. The
// returned location is the service's Location header for the new bucket.
func (c *Client) MakeBucket(ctx context.Context, bucket string, objectLock bool, opts ...BucketOptions) (string, error) {
	opt := firstOpt(opts)
	region := opt.Region
	if region == "" {
		region = c.region
	}
	resp, err := c.bucketRequest(http.MethodPut, bucket, opt).
		Apply(func(r *Request) *Request {
			if objectLock {
				return r.Header("x-amz-bucket-object-lock-enabled", "true")
			}
			return r
		}).
		XMLBody(datatype.CreateBucketConfiguration{LocationConstraint: region}).
		SendOK(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Close() }()
	return resp.Header.Get("Location"), nil
}

// BucketExists reports whether the bucket exists and the caller may access
// it. A non-2xx status is not an error here; it just means "no".
func (c *Client) BucketExists(ctx context.Context, bucket string, opts ...BucketOptions) (bool, error) {
	resp, err := c.bucketRequest(http.MethodHead, bucket, firstOpt(opts)).Send(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Close() }()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// RemoveBucket deletes an empty bucket.
func (c *Client) RemoveBucket(ctx context.Context, bucket string, opts ...BucketOptions) error {
	resp, err := c.bucketRequest(http.MethodDelete, bucket, firstOpt(opts)).SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// ListBuckets lists every bucket the credentials may see, with the owning
// account.
func (c *Client) ListBuckets(ctx context.Context) ([]datatype.Bucket, datatype.Owner, error) {
	var result datatype.ListAllMyBucketsResult
	if err := c.NewRequest(http.MethodGet).SendXML(ctx, &result); err != nil {
		return nil, datatype.Owner{}, err
	}
	return result.Buckets.Bucket, result.Owner, nil
}

// ListObjectsOptions page and filter a V2 object listing.
type ListObjectsOptions struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	StartAfter        string
	MaxKeys           int
	FetchOwner        bool

	BucketOptions
}

// ListObjects lists one page of a bucket's objects using the V2 listing API.
// Use NextContinuationToken from a truncated result to fetch the next page.
func (c *Client) ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (*datatype.ListBucketResult, error) {
	req := c.bucketRequest(http.MethodGet, bucket, opts.BucketOptions).
		Query("list-type", "2").
		Query("prefix", opts.Prefix).
		Query("delimiter", opts.Delimiter).
		Query("encoding-type", "url")
	if opts.ContinuationToken != "" {
		req = req.Query("continuation-token", opts.ContinuationToken)
	}
	if opts.StartAfter != "" {
		req = req.Query("start-after", opts.StartAfter)
	}
	if opts.MaxKeys > 0 {
		req = req.Query("max-keys", strconv.Itoa(opts.MaxKeys))
	}
	if opts.FetchOwner {
		req = req.Query("fetch-owner", "true")
	}

	var result datatype.ListBucketResult
	if err := req.SendXML(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListObjectVersionsOptions page and filter a version listing.
type ListObjectVersionsOptions struct {
	Prefix          string
	Delimiter       string
	KeyMarker       string
	VersionIDMarker string
	MaxKeys         int

	BucketOptions
}

// ListObjectVersions lists metadata about the versions of a bucket's objects.
func (c *Client) ListObjectVersions(ctx context.Context, bucket string, opts ListObjectVersionsOptions) (*datatype.ListVersionsResult, error) {
	req := c.bucketRequest(http.MethodGet, bucket, opts.BucketOptions).
		Query("versions", "").
		Query("prefix", opts.Prefix).
		Query("delimiter", opts.Delimiter).
		Query("encoding-type", "url")
	if opts.KeyMarker != "" {
		req = req.Query("key-marker", opts.KeyMarker)
	}
	if opts.VersionIDMarker != "" {
		req = req.Query("version-id-marker", opts.VersionIDMarker)
	}
	if opts.MaxKeys > 0 {
		req = req.Query("max-keys", strconv.Itoa(opts.MaxKeys))
	}

	var result datatype.ListVersionsResult
	if err := req.SendXML(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBucketTags returns the bucket's tag set, or nil when the bucket has no
// tags.
func (c *Client) GetBucketTags(ctx context.Context, bucket string, opts ...BucketOptions) (map[string]string, error) {
	var tagging datatype.Tagging
	err := c.bucketRequest(http.MethodGet, bucket, firstOpt(opts)).
		Query("tagging", "").
		SendXML(ctx, &tagging)
	if err != nil {
		if IsErrorCode(err, "NoSuchTagSet") {
			return nil, nil
		}
		return nil, err
	}
	return tagging.Map(), nil
}

// SetBucketTags replaces the bucket's tag set.
func (c *Client) SetBucketTags(ctx context.Context, bucket string, tags map[string]string, opts ...BucketOptions) error {
	resp, err := c.bucketRequest(http.MethodPut, bucket, firstOpt(opts)).
		Query("tagging", "").
		XMLBody(datatype.NewTagging(tags)).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// DeleteBucketTags removes the bucket's tag set.
func (c *Client) DeleteBucketTags(ctx context.Context, bucket string, opts ...BucketOptions) error {
	resp, err := c.bucketRequest(http.MethodDelete, bucket, firstOpt(opts)).
		Query("tagging", "").
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// GetBucketVersioning returns the bucket's versioning configuration.
func (c *Client) GetBucketVersioning(ctx context.Context, bucket string, opts ...BucketOptions) (datatype.VersioningConfiguration, error) {
	var cfg datatype.VersioningConfiguration
	err := c.bucketRequest(http.MethodGet, bucket, firstOpt(opts)).
		Query("versioning", "").
		SendXML(ctx, &cfg)
	return cfg, err
}

// SetBucketVersioning replaces the bucket's versioning configuration.
func (c *Client) SetBucketVersioning(ctx context.Context, bucket string, cfg datatype.VersioningConfiguration, opts ...BucketOptions) error {
	resp, err := c.bucketRequest(http.MethodPut, bucket, firstOpt(opts)).
		Query("versioning", "").
		XMLBody(cfg).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// GetObjectLockConfig returns the bucket's object-lock configuration.
func (c *Client) GetObjectLockConfig(ctx context.Context, bucket string, opts ...BucketOptions) (datatype.ObjectLockConfiguration, error) {
	var cfg datatype.ObjectLockConfiguration
	err := c.bucketRequest(http.MethodGet, bucket, firstOpt(opts)).
		Query("object-lock", "").
		SendXML(ctx, &cfg)
	return cfg, err
}

// SetObjectLockConfig replaces the bucket's object-lock configuration.
func (c *Client) SetObjectLockConfig(ctx context.Context, bucket string, cfg datatype.ObjectLockConfiguration, opts ...BucketOptions) error {
	resp, err := c.bucketRequest(http.MethodPut, bucket, firstOpt(opts)).
		Query("object-lock", "").
		XMLBody(cfg).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// DeleteObjectLockConfig clears the bucket's default object-lock rule by
// writing an empty configuration.
func (c *Client) DeleteObjectLockConfig(ctx context.Context, bucket string, opts ...BucketOptions) error {
	return c.SetObjectLockConfig(ctx, bucket, datatype.ObjectLockConfiguration{ObjectLockEnabled: "Enabled"}, opts...)
}

// firstOpt collapses an optional variadic options argument.
func firstOpt[T any](opts []T) T {
	if len(opts) > 0 {
		return opts[0]
	}
	var zero T
	return zero
}
