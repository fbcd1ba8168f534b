package s3kit

import (
	"io"
	"strings"
)

// Body describes a request payload. The zero value is an empty body; the
// other shapes are in-memory bytes or a lazy stream of known or unknown
// length. In-memory bodies are hashed into the signature and replayed freely
// on retry; streams are consumed once and sent unsigned or chunk-signed.
type Body struct {
	data   []byte
	reader io.Reader
	size   int64
}

// BodyBytes wraps an in-memory payload.
func BodyBytes(p []byte) Body {
	return Body{data: p, size: int64(len(p))}
}

// BodyString wraps an in-memory string payload.
func BodyString(s string) Body {
	return BodyBytes([]byte(s))
}

// BodyReader wraps a lazy byte stream. Pass size -1 when the length is
// unknown.
func BodyReader(r io.Reader, size int64) Body {
	if sr, ok := r.(*strings.Reader); ok && size < 0 {
		size = int64(sr.Len())
	}
	return Body{reader: r, size: size}
}

func (b Body) isStream() bool {
	return b.reader != nil
}

func (b Body) isEmpty() bool {
	return b.reader == nil && len(b.data) == 0
}

// Size returns the payload length in bytes, or -1 when unknown.
func (b Body) Size() int64 {
	return b.size
}
