package utils

import (
	"crypto/md5" //nolint:gosec // Content-MD5 is an integrity check, not a security control
	"encoding/base64"
	"errors"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// ErrBadBucketName constant is returned when a bucket name violates the S3 naming rules
	ErrBadBucketName = "bucket name is invalid - must be 3 to 63 characters of lowercase letters, digits, dots and hyphens, " +
		"may not look like an IP address, and may not begin or end with a dot or hyphen"
	// ErrBadObjectName constant is returned when an object key is empty or too long
	ErrBadObjectName = "object name is invalid - must be a non-empty utf-8 string of at most 1024 bytes"
)

// regex to test whether a bucket name contains only permitted characters
var validBucketChars = regexp.MustCompile(`^[a-z0-9][a-z0-9.\-]+[a-z0-9]$`)

// ValidateBucketName ensures a bucket name satisfies the S3 bucket naming rules.
func ValidateBucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return errors.New(ErrBadBucketName)
	}
	if !validBucketChars.MatchString(name) {
		return errors.New(ErrBadBucketName)
	}
	if strings.Contains(name, "..") || strings.Contains(name, ".-") || strings.Contains(name, "-.") {
		return errors.New(ErrBadBucketName)
	}
	if net.ParseIP(name) != nil {
		return errors.New(ErrBadBucketName)
	}
	return nil
}

// ValidateObjectName ensures an object key is non-empty, valid utf-8 and within the protocol's length cap.
func ValidateObjectName(name string) error {
	if name == "" || len(name) > 1024 || !utf8.ValidString(name) {
		return errors.New(ErrBadObjectName)
	}
	return nil
}

// EncodePath percent-encodes an object key for use in a request path. Unreserved
// characters (alphanumerics and "-._~") pass through and "/" is kept as the key
// separator. Everything else becomes uppercase %XX sequences, one per utf-8 byte.
func EncodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = EncodeValue(s)
	}
	return strings.Join(segments, "/")
}

// EncodeValue percent-encodes a single path segment or query name/value per the
// SigV4 reserved-character rules. Unlike url.QueryEscape, a space becomes "%20"
// and "~" passes through.
func EncodeValue(value string) string {
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0xf])
	}
	return sb.String()
}

const upperhex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// TrimEtag removes the surrounding quotes S3 places around entity tags.
func TrimEtag(etag string) string {
	return strings.Trim(etag, `"`)
}

// MD5Base64 returns the base64 md5 digest of data, the form the Content-MD5
// header requires.
func MD5Base64(data []byte) string {
	sum := md5.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
