package signer

import "time"

const (
	// Algorithm is the SigV4 algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// chunkAlgorithm is the string-to-sign prefix for signed chunk payloads.
	chunkAlgorithm = "AWS4-HMAC-SHA256-PAYLOAD"

	// TimeFormat is the long timestamp layout used in X-Amz-Date and the
	// string-to-sign.
	TimeFormat = "20060102T150405Z"

	// ShortTimeFormat is the date-only layout used in the credential scope.
	ShortTimeFormat = "20060102"

	// EmptySHA256 is the hex sha256 of the empty string.
	EmptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// UnsignedPayload marks a request whose body is not bound to the signature.
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	// StreamingPayload marks a request whose body is delivered as signed chunks.
	StreamingPayload = "STREAMING-AWS4-HMAC-SHA256-PAYLOAD"

	// ServiceS3 is the service identifier bound into the credential scope.
	ServiceS3 = "s3"

	scopeTerminator = "aws4_request"

	// MaxPresignExpires is the protocol ceiling for presigned URL lifetimes.
	MaxPresignExpires = 7 * 24 * time.Hour
	// MinPresignExpires is the shortest accepted presigned URL lifetime.
	MinPresignExpires = time.Second
)

// Header and query parameter names the signer reads or emits.
const (
	AmzDateKey          = "X-Amz-Date"
	AmzContentSHAKey    = "X-Amz-Content-Sha256"
	AmzSecurityTokenKey = "X-Amz-Security-Token"
	AmzAlgorithmKey     = "X-Amz-Algorithm"
	AmzCredentialKey    = "X-Amz-Credential"
	AmzExpiresKey       = "X-Amz-Expires"
	AmzSignedHeadersKey = "X-Amz-SignedHeaders"
	AmzSignatureKey     = "X-Amz-Signature"
	AmzDecodedLengthKey = "X-Amz-Decoded-Content-Length"
)
