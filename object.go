package s3kit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kilnland/s3kit/datatype"
	"github.com/kilnland/s3kit/utils"
)

// ObjectOptions carry the cross-cutting object request attributes.
type ObjectOptions struct {
	Region              string
	ExpectedBucketOwner string
	// VersionID addresses a specific object version on reads and deletes.
	VersionID string
}

// GetObjectOptions configure a download.
type GetObjectOptions struct {
	ObjectOptions
	// Offset and Length select a byte range. A zero Length reads to the end.
	Offset int64
	Length int64
	// ResponseContentType overrides the Content-Type the service responds
	// with.
	ResponseContentType string
}

// PutObjectOptions configure an upload.
type PutObjectOptions struct {
	ObjectOptions
	ContentType string
	// Metadata is stored with the object under x-amz-meta- keys.
	Metadata map[string]string
}

// ObjectStat is the metadata a HEAD on an object yields.
type ObjectStat struct {
	Bucket       string
	Key          string
	ETag         string
	ContentType  string
	VersionID    string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

func (c *Client) objectRequest(method, bucket, object string, opts ObjectOptions) *Request {
	return c.NewRequest(method).
		Bucket(bucket).
		Object(object).
		Apply(func(r *Request) *Request {
			if opts.Region != "" {
				r = r.Region(opts.Region)
			}
			if opts.ExpectedBucketOwner != "" {
				r = r.Header("x-amz-expected-bucket-owner", opts.ExpectedBucketOwner)
			}
			if opts.VersionID != "" {
				r = r.Query("versionId", opts.VersionID)
			}
			return r
		})
}

// GetObject downloads an object. The returned Response's Body is the live
// stream; the caller may stop reading early and Close it without draining.
func (c *Client) GetObject(ctx context.Context, bucket, object string, opts ...GetObjectOptions) (*Response, error) {
	opt := firstOpt(opts)
	req := c.objectRequest(http.MethodGet, bucket, object, opt.ObjectOptions)
	if rng := rangeHeader(opt.Offset, opt.Length); rng != "" {
		req = req.Header("Range", rng)
	}
	if opt.ResponseContentType != "" {
		req = req.Query("response-content-type", opt.ResponseContentType)
	}
	return req.SendOK(ctx)
}

// rangeHeader renders an inclusive byte range, or "" for the whole object.
func rangeHeader(offset, length int64) string {
	switch {
	case length > 0:
		return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	case offset > 0:
		return fmt.Sprintf("bytes=%d-", offset)
	default:
		return ""
	}
}

// PutObject uploads an in-memory body. Bodies above the configured part size
// are transparently split into a multipart upload.
func (c *Client) PutObject(ctx context.Context, bucket, object string, data []byte, opts ...PutObjectOptions) error {
	opt := firstOpt(opts)
	if int64(len(data)) > MaxObjectSize {
		return ErrObjectTooLarge
	}
	if int64(len(data)) > c.partSize {
		return c.putObjectMultipart(ctx, bucket, object, data, opt)
	}
	resp, err := c.objectRequest(http.MethodPut, bucket, object, opt.ObjectOptions).
		Apply(applyPutHeaders(opt)).
		Body(BodyBytes(data)).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// PutObjectStream uploads from a reader. With multi-chunked encoding enabled
// and a known size the body goes out as one signed-chunk request; otherwise
// the stream is accumulated into parts and uploaded as a multipart upload,
// so no unbounded buffering happens either way.
func (c *Client) PutObjectStream(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts ...PutObjectOptions) error {
	opt := firstOpt(opts)
	if size > MaxObjectSize {
		return ErrObjectTooLarge
	}

	if c.multiChunked && size >= 0 {
		resp, err := c.objectRequest(http.MethodPut, bucket, object, opt.ObjectOptions).
			Apply(applyPutHeaders(opt)).
			Body(BodyReader(reader, size)).
			SendOK(ctx)
		if err != nil {
			return err
		}
		return resp.Close()
	}
	return c.putStreamMultipart(ctx, bucket, object, reader, opt)
}

// FPutObject uploads a local file.
func (c *Client) FPutObject(ctx context.Context, bucket, object, path string, opts ...PutObjectOptions) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxObjectSize {
		return ErrObjectTooLarge
	}

	opt := firstOpt(opts)
	if info.Size() <= c.partSize {
		data, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return c.PutObject(ctx, bucket, object, data, opt)
	}
	return c.putStreamMultipart(ctx, bucket, object, file, opt)
}

// FGetObject downloads an object into a local file.
func (c *Client) FGetObject(ctx context.Context, bucket, object, path string, opts ...GetObjectOptions) error {
	resp, err := c.GetObject(ctx, bucket, object, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Close() }()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// StatObject returns an object's metadata, or nil when the object is not
// accessible (missing, or permission denied on HEAD, which carries no error
// body to distinguish the two).
func (c *Client) StatObject(ctx context.Context, bucket, object string, opts ...ObjectOptions) (*ObjectStat, error) {
	resp, err := c.objectRequest(http.MethodHead, bucket, object, firstOpt(opts)).Send(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	stat := &ObjectStat{
		Bucket:      bucket,
		Key:         object,
		ETag:        utils.TrimEtag(resp.Header.Get("Etag")),
		ContentType: resp.Header.Get("Content-Type"),
		VersionID:   resp.Header.Get("x-amz-version-id"),
		Metadata:    map[string]string{},
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
		stat.Size = n
	}
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		stat.LastModified = t
	}
	for name, values := range resp.Header {
		if k, ok := strings.CutPrefix(strings.ToLower(name), "x-amz-meta-"); ok && len(values) > 0 {
			stat.Metadata[k] = values[0]
		}
	}
	return stat, nil
}

// RemoveObject deletes an object, or a specific version when VersionID is
// set.
func (c *Client) RemoveObject(ctx context.Context, bucket, object string, opts ...ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodDelete, bucket, object, firstOpt(opts)).SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// CopySource identifies the source of a server-side copy.
type CopySource struct {
	Bucket    string
	Object    string
	VersionID string
	// MetadataReplace discards the source metadata in favor of the
	// destination options instead of copying it.
	MetadataReplace bool
}

func (s CopySource) header() string {
	src := "/" + s.Bucket + "/" + utils.EncodePath(s.Object)
	if s.VersionID != "" {
		src += "?versionId=" + s.VersionID
	}
	return src
}

// CopyObject copies an object server-side.
func (c *Client) CopyObject(ctx context.Context, bucket, object string, src CopySource, opts ...PutObjectOptions) (*datatype.CopyObjectResult, error) {
	if err := utils.ValidateBucketName(src.Bucket); err != nil {
		return nil, &EncodingError{Err: err}
	}
	opt := firstOpt(opts)
	req := c.objectRequest(http.MethodPut, bucket, object, opt.ObjectOptions).
		Apply(applyPutHeaders(opt)).
		Header("x-amz-copy-source", src.header())
	if src.MetadataReplace {
		req = req.Header("x-amz-metadata-directive", "REPLACE")
	}

	var result datatype.CopyObjectResult
	if err := req.SendXML(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetObjectTags returns the object's tag set.
func (c *Client) GetObjectTags(ctx context.Context, bucket, object string, opts ...ObjectOptions) (map[string]string, error) {
	var tagging datatype.Tagging
	err := c.objectRequest(http.MethodGet, bucket, object, firstOpt(opts)).
		Query("tagging", "").
		SendXML(ctx, &tagging)
	if err != nil {
		return nil, err
	}
	return tagging.Map(), nil
}

// SetObjectTags replaces the object's tag set.
func (c *Client) SetObjectTags(ctx context.Context, bucket, object string, tags map[string]string, opts ...ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodPut, bucket, object, firstOpt(opts)).
		Query("tagging", "").
		XMLBody(datatype.NewTagging(tags)).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// DeleteObjectTags removes the object's tag set.
func (c *Client) DeleteObjectTags(ctx context.Context, bucket, object string, opts ...ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodDelete, bucket, object, firstOpt(opts)).
		Query("tagging", "").
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// GetObjectRetention returns the object's retention lock.
func (c *Client) GetObjectRetention(ctx context.Context, bucket, object string, opts ...ObjectOptions) (datatype.Retention, error) {
	var retention datatype.Retention
	err := c.objectRequest(http.MethodGet, bucket, object, firstOpt(opts)).
		Query("retention", "").
		SendXML(ctx, &retention)
	return retention, err
}

// SetObjectRetention replaces the object's retention lock.
func (c *Client) SetObjectRetention(ctx context.Context, bucket, object string, retention datatype.Retention, opts ...ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodPut, bucket, object, firstOpt(opts)).
		Query("retention", "").
		XMLBody(retention).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// IsObjectLegalHoldEnabled reports whether a legal hold is active on the
// object. An object with no lock configuration reports false rather than an
// error.
func (c *Client) IsObjectLegalHoldEnabled(ctx context.Context, bucket, object string, opts ...ObjectOptions) (bool, error) {
	var hold datatype.LegalHold
	err := c.objectRequest(http.MethodGet, bucket, object, firstOpt(opts)).
		Query("legal-hold", "").
		SendXML(ctx, &hold)
	if err != nil {
		if IsErrorCode(err, "NoSuchObjectLockConfiguration") {
			return false, nil
		}
		return false, err
	}
	return hold.Enabled(), nil
}

// EnableObjectLegalHold places a legal hold on the object.
func (c *Client) EnableObjectLegalHold(ctx context.Context, bucket, object string, opts ...ObjectOptions) error {
	return c.setLegalHold(ctx, bucket, object, true, firstOpt(opts))
}

// DisableObjectLegalHold lifts the object's legal hold.
func (c *Client) DisableObjectLegalHold(ctx context.Context, bucket, object string, opts ...ObjectOptions) error {
	return c.setLegalHold(ctx, bucket, object, false, firstOpt(opts))
}

func (c *Client) setLegalHold(ctx context.Context, bucket, object string, on bool, opts ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodPut, bucket, object, opts).
		Query("legal-hold", "").
		XMLBody(datatype.NewLegalHold(on)).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// applyPutHeaders attaches content type and user metadata headers.
func applyPutHeaders(opt PutObjectOptions) func(*Request) *Request {
	return func(r *Request) *Request {
		if opt.ContentType != "" {
			r = r.Header("Content-Type", opt.ContentType)
		}
		for k, v := range opt.Metadata {
			r = r.Header("x-amz-meta-"+k, v)
		}
		return r
	}
}
