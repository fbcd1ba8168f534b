package signer

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// ChunkSigner folds chunk payloads into the chained signature sequence of a
// streaming upload. Each signature covers the previous one, so chunks are
// inherently ordered; a ChunkSigner must not be shared across uploads.
type ChunkSigner struct {
	key      []byte
	datetime string
	scope    string
	previous string
}

// NewChunkSigner seeds a chunk chain from the request's signing key, scope
// and seed (Authorization header) signature.
func NewChunkSigner(key []byte, scope Scope, seedSignature string) *ChunkSigner {
	return &ChunkSigner{
		key:      key,
		datetime: scope.Time.UTC().Format(TimeFormat),
		scope:    scope.Credential(),
		previous: seedSignature,
	}
}

// Next returns the signature for chunk and advances the chain. The final,
// zero-length chunk is signed by calling Next(nil).
func (cs *ChunkSigner) Next(chunk []byte) string {
	sig := SignatureHex(cs.key, strings.Join([]string{
		chunkAlgorithm,
		cs.datetime,
		cs.scope,
		cs.previous,
		EmptySHA256,
		SHA256Hex(chunk),
	}, "\n"))
	cs.previous = sig
	return sig
}

const (
	chunkSignatureHeader = ";chunk-signature="
	chunkTrailerLen      = len("\r\n")
	// per-chunk overhead beyond the payload and the hex length prefix
	chunkOverhead = len(chunkSignatureHeader) + 64 + 2*chunkTrailerLen
)

// ChunkedLength returns the wire length of a body of decodedLength bytes once
// framed into signed chunks of chunkSize.
func ChunkedLength(decodedLength, chunkSize int64) int64 {
	var total int64
	remaining := decodedLength
	for remaining > 0 {
		n := min(remaining, chunkSize)
		total += int64(len(strconv.FormatInt(n, 16))+chunkOverhead) + n
		remaining -= n
	}
	// terminator chunk: "0" + signature header + trailing CRLF pair
	return total + int64(1+chunkOverhead)
}

// chunkedReader frames an underlying stream into signed chunks:
//
//	hex(len);chunk-signature=<sig>\r\n<payload>\r\n
//
// terminated by a signed zero-length chunk.
type chunkedReader struct {
	src       io.Reader
	signer    *ChunkSigner
	chunkSize int
	buf       []byte
	frame     bytes.Buffer
	done      bool
	err       error
}

// NewChunkedReader wraps src in the signed-chunk transfer encoding. The
// returned reader yields the exact byte sequence to place on the wire for a
// request signed with x-amz-content-sha256 STREAMING-AWS4-HMAC-SHA256-PAYLOAD.
func NewChunkedReader(src io.Reader, chunkSize int, cs *ChunkSigner) io.Reader {
	return &chunkedReader{
		src:       src,
		signer:    cs,
		chunkSize: chunkSize,
		buf:       make([]byte, chunkSize),
	}
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	for r.frame.Len() == 0 {
		if r.err != nil {
			return 0, r.err
		}
		if r.done {
			r.err = io.EOF
			return 0, io.EOF
		}
		if err := r.nextFrame(); err != nil {
			r.err = err
			return 0, err
		}
	}
	return r.frame.Read(p)
}

// nextFrame stages one signed chunk, or the terminator once the source is
// drained.
func (r *chunkedReader) nextFrame() error {
	n, err := io.ReadFull(r.src, r.buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		r.done = true
	default:
		return err
	}

	if n > 0 {
		r.writeFrame(r.buf[:n])
	}
	if r.done {
		r.writeFrame(nil)
		r.frame.WriteString("\r\n")
	}
	return nil
}

func (r *chunkedReader) writeFrame(payload []byte) {
	r.frame.WriteString(strconv.FormatInt(int64(len(payload)), 16))
	r.frame.WriteString(chunkSignatureHeader)
	r.frame.WriteString(r.signer.Next(payload))
	r.frame.WriteString("\r\n")
	if len(payload) > 0 {
		r.frame.Write(payload)
		r.frame.WriteString("\r\n")
	}
}
