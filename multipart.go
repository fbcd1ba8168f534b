package s3kit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/kilnland/s3kit/datatype"
	"github.com/kilnland/s3kit/utils"
)

const (
	// MinPartSize is the smallest part the service accepts, except for the
	// final part of an upload.
	MinPartSize = 5 << 20
	// DefaultPartSize is the threshold above which PutObject switches to a
	// multipart upload, and the part size it uploads with.
	DefaultPartSize = 16 << 20
	// MaxPartCount is the service's ceiling on parts per upload.
	MaxPartCount = 10000
	// MaxObjectSize is the 5 TiB multipart object ceiling.
	MaxObjectSize = 5 << 40
)

// CreateMultipartUpload starts a multipart upload and returns its upload ID.
func (c *Client) CreateMultipartUpload(ctx context.Context, bucket, object string, opts ...PutObjectOptions) (string, error) {
	opt := firstOpt(opts)
	var result datatype.InitiateMultipartUploadResult
	err := c.objectRequest(http.MethodPost, bucket, object, opt.ObjectOptions).
		Apply(applyPutHeaders(opt)).
		Query("uploads", "").
		SendXML(ctx, &result)
	if err != nil {
		return "", err
	}
	return result.UploadID, nil
}

// UploadPart uploads one part. Part numbers start at 1 and the returned Part
// carries the ETag CompleteMultipartUpload needs.
func (c *Client) UploadPart(ctx context.Context, bucket, object, uploadID string, partNumber int, data []byte, opts ...ObjectOptions) (datatype.Part, error) {
	resp, err := c.objectRequest(http.MethodPut, bucket, object, firstOpt(opts)).
		Query("partNumber", strconv.Itoa(partNumber)).
		Query("uploadId", uploadID).
		Body(BodyBytes(data)).
		SendOK(ctx)
	if err != nil {
		return datatype.Part{}, err
	}
	etag := utils.TrimEtag(resp.Header.Get("Etag"))
	if err := resp.Close(); err != nil {
		return datatype.Part{}, err
	}
	return datatype.Part{PartNumber: partNumber, ETag: etag}, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the final object.
func (c *Client) CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []datatype.Part, opts ...ObjectOptions) (*datatype.CompleteMultipartUploadResult, error) {
	var result datatype.CompleteMultipartUploadResult
	err := c.objectRequest(http.MethodPost, bucket, object, firstOpt(opts)).
		Query("uploadId", uploadID).
		XMLBody(datatype.CompleteMultipartUpload{Parts: parts}).
		SendXML(ctx, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AbortMultipartUpload discards an in-progress upload and its parts.
func (c *Client) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string, opts ...ObjectOptions) error {
	resp, err := c.objectRequest(http.MethodDelete, bucket, object, firstOpt(opts)).
		Query("uploadId", uploadID).
		SendOK(ctx)
	if err != nil {
		return err
	}
	return resp.Close()
}

// putObjectMultipart splits an in-memory body into parts of the client's
// configured size. On any part failure the upload is aborted so the service
// does not accumulate orphan parts.
func (c *Client) putObjectMultipart(ctx context.Context, bucket, object string, data []byte, opt PutObjectOptions) error {
	uploadID, err := c.CreateMultipartUpload(ctx, bucket, object, opt)
	if err != nil {
		return err
	}

	var parts []datatype.Part
	for offset := int64(0); offset < int64(len(data)); offset += c.partSize {
		end := min(offset+c.partSize, int64(len(data)))
		part, err := c.UploadPart(ctx, bucket, object, uploadID, len(parts)+1, data[offset:end], opt.ObjectOptions)
		if err != nil {
			return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, err)
		}
		parts = append(parts, part)
	}

	if _, err := c.CompleteMultipartUpload(ctx, bucket, object, uploadID, parts, opt.ObjectOptions); err != nil {
		return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, err)
	}
	return nil
}

// putStreamMultipart consumes a reader of possibly unknown length, buffering
// one part at a time. A stream that ends within the first part is uploaded
// as a plain single put instead.
func (c *Client) putStreamMultipart(ctx context.Context, bucket, object string, reader io.Reader, opt PutObjectOptions) error {
	buf := make([]byte, c.partSize)
	n, err := io.ReadFull(reader, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return c.PutObject(ctx, bucket, object, buf[:n], opt)
	}
	if err != nil {
		return err
	}

	uploadID, err := c.CreateMultipartUpload(ctx, bucket, object, opt)
	if err != nil {
		return err
	}

	var parts []datatype.Part
	for {
		if len(parts) == MaxPartCount {
			return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, ErrObjectTooLarge)
		}
		part, err := c.UploadPart(ctx, bucket, object, uploadID, len(parts)+1, buf[:n], opt.ObjectOptions)
		if err != nil {
			return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, err)
		}
		parts = append(parts, part)

		n, err = io.ReadFull(reader, buf)
		if err == io.EOF {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, err)
		}
		if err == io.ErrUnexpectedEOF && n == 0 {
			break
		}
		if err == io.ErrUnexpectedEOF {
			part, uerr := c.UploadPart(ctx, bucket, object, uploadID, len(parts)+1, buf[:n], opt.ObjectOptions)
			if uerr != nil {
				return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, uerr)
			}
			parts = append(parts, part)
			break
		}
	}

	if _, err := c.CompleteMultipartUpload(ctx, bucket, object, uploadID, parts, opt.ObjectOptions); err != nil {
		return c.abortAfter(ctx, bucket, object, uploadID, opt.ObjectOptions, err)
	}
	return nil
}

// abortAfter cleans up a failed upload, joining an abort failure onto the
// cause rather than masking it.
func (c *Client) abortAfter(ctx context.Context, bucket, object, uploadID string, opt ObjectOptions, cause error) error {
	if err := c.AbortMultipartUpload(ctx, bucket, object, uploadID, opt); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
