/*
Package s3kit is a client for S3-compatible object storage services: AWS S3
itself, MinIO, and anything else speaking the S3 REST dialect. It owns the
whole request pipeline (Signature Version 4 signing, canonical encoding,
dispatch, retry, and error decoding) with no dependency on a vendor SDK, so
the same client works against any endpoint.

Usage

Construct a client for an endpoint, then call operations on it. Credentials
default to the environment and the shared AWS credentials file, behind an
expiry-aware cache:

	client, err := s3kit.New("play.min.io",
		s3kit.WithRegion("us-east-1"),
		s3kit.WithCredentials(credentials.NewStatic(accessKey, secretKey, "")),
	)
	if err != nil {
		log.Fatal(err)
	}

	err = client.PutObject(ctx, "my-bucket", "hello.txt", []byte("hello"))
	resp, err := client.GetObject(ctx, "my-bucket", "hello.txt")

Operations that return structured results decode the service's XML documents
into the types under the datatype package. Errors the service reports come
back as *ErrorResponse values carrying the service error code; transport
failures come back as *TransportError and are retried with backoff while the
request body remains replayable.

Uploads

PutObject takes in-memory bodies and switches to a multipart upload above the
configured part size. PutObjectStream takes an io.Reader; with
WithMultiChunkedEncoding and a known length it is sent as a single
signed-chunk request, otherwise it is buffered one part at a time into a
multipart upload. FPutObject and FGetObject copy to and from local files.

Presigned URLs

Presign, PresignedGetObject and PresignedPutObject produce URLs that embed
the signature in the query string, granting the bearer one operation for a
bounded time without sharing credentials.
*/
package s3kit
