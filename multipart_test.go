package s3kit

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	fs "github.com/dsoprea/go-utility/v2/filesystem"
	"github.com/stretchr/testify/suite"

	"github.com/kilnland/s3kit/datatype"
	"github.com/kilnland/s3kit/mocks"
)

// seekableStream returns a non-bytes.Reader stream over data, so the stream
// paths are exercised with the same buffer type the transfer code sees from
// arbitrary sources.
func seekableStream(t *testing.T, data []byte) *fs.SeekableBuffer {
	t.Helper()
	buf := fs.NewSeekableBuffer()
	if _, err := buf.Write(data); err != nil {
		t.Fatalf("write stream buffer: %v", err)
	}
	if _, err := buf.Seek(0, 0); err != nil {
		t.Fatalf("rewind stream buffer: %v", err)
	}
	return buf
}

const initiateDoc = `<InitiateMultipartUploadResult>
	<Bucket>my-bucket</Bucket>
	<Key>big.bin</Key>
	<UploadId>upload-123</UploadId>
</InitiateMultipartUploadResult>`

const completeDoc = `<CompleteMultipartUploadResult>
	<Location>https://s3.example.com/my-bucket/big.bin</Location>
	<Bucket>my-bucket</Bucket>
	<Key>big.bin</Key>
	<ETag>&quot;final-etag&quot;</ETag>
</CompleteMultipartUploadResult>`

func etagHeader(etag string) http.Header {
	return http.Header{"Etag": {`"` + etag + `"`}}
}

type multipartTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (ts *multipartTestSuite) SetupTest() {
	ts.ctx = context.Background()
}

func (ts *multipartTestSuite) TestLifecycle() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, initiateDoc).
		Respond(200, etagHeader("part-1"), "").
		Respond(200, nil, completeDoc)
	client := newTestClient(ts.T(), transport)

	uploadID, err := client.CreateMultipartUpload(ts.ctx, "my-bucket", "big.bin", PutObjectOptions{ContentType: "application/octet-stream"})
	ts.Require().NoError(err)
	ts.Equal("upload-123", uploadID)
	ts.Equal(http.MethodPost, transport.Requests[0].Method)
	ts.Equal("uploads=", transport.Requests[0].URL.RawQuery)
	ts.Equal("application/octet-stream", transport.Requests[0].Header.Get("Content-Type"))

	part, err := client.UploadPart(ts.ctx, "my-bucket", "big.bin", uploadID, 1, []byte("part data"))
	ts.Require().NoError(err)
	ts.Equal(datatype.Part{PartNumber: 1, ETag: "part-1"}, part)
	q := transport.Requests[1].URL.Query()
	ts.Equal("1", q.Get("partNumber"))
	ts.Equal("upload-123", q.Get("uploadId"))

	result, err := client.CompleteMultipartUpload(ts.ctx, "my-bucket", "big.bin", uploadID, []datatype.Part{part})
	ts.Require().NoError(err)
	ts.Equal(`"final-etag"`, result.ETag)
	body := string(transport.Payloads[2])
	ts.Contains(body, "<CompleteMultipartUpload>")
	ts.Contains(body, "<PartNumber>1</PartNumber>")
	ts.Contains(body, "<ETag>part-1</ETag>")
}

func (ts *multipartTestSuite) TestAbort() {
	transport := (&mocks.HTTPClient{}).Respond(204, nil, "")
	client := newTestClient(ts.T(), transport)

	ts.Require().NoError(client.AbortMultipartUpload(ts.ctx, "my-bucket", "big.bin", "upload-123"))
	ts.Equal(http.MethodDelete, transport.Requests[0].Method)
	ts.Equal("uploadId=upload-123", transport.Requests[0].URL.RawQuery)
}

func (ts *multipartTestSuite) TestPutObjectAutoMultipart() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, initiateDoc).
		Respond(200, etagHeader("p1"), "").
		Respond(200, etagHeader("p2"), "").
		Respond(200, etagHeader("p3"), "").
		Respond(200, nil, completeDoc)
	client := newTestClient(ts.T(), transport)
	client.partSize = MinPartSize

	// two full parts and a short tail
	data := bytes.Repeat([]byte("m"), 2*MinPartSize+100)
	ts.Require().NoError(client.PutObject(ts.ctx, "my-bucket", "big.bin", data))

	ts.Equal(5, transport.CallCount())
	ts.Len(transport.Payloads[1], MinPartSize)
	ts.Len(transport.Payloads[2], MinPartSize)
	ts.Len(transport.Payloads[3], 100)

	complete := string(transport.Payloads[4])
	ts.Contains(complete, "<PartNumber>3</PartNumber>")
	ts.Contains(complete, "<ETag>p3</ETag>")
}

func (ts *multipartTestSuite) TestPutObjectAbortsOnPartFailure() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, initiateDoc).
		Respond(200, etagHeader("p1"), "").
		Respond(403, nil, errorDoc("AccessDenied", "Access Denied")).
		Respond(204, nil, "") // abort
	client := newTestClient(ts.T(), transport)
	client.partSize = MinPartSize

	data := bytes.Repeat([]byte("m"), 2*MinPartSize)
	err := client.PutObject(ts.ctx, "my-bucket", "big.bin", data)
	ts.True(IsErrorCode(err, "AccessDenied"), "got %v", err)

	ts.Equal(4, transport.CallCount())
	last := transport.Requests[3]
	ts.Equal(http.MethodDelete, last.Method, "a failed upload should be aborted")
	ts.Equal("uploadId=upload-123", last.URL.RawQuery)
}

func (ts *multipartTestSuite) TestPutObjectStreamShortStreamSinglePut() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, "")
	client := newTestClient(ts.T(), transport)

	err := client.PutObjectStream(ts.ctx, "my-bucket", "small.bin", bytes.NewReader([]byte("tiny")), -1)
	ts.Require().NoError(err)
	ts.Equal(1, transport.CallCount(), "a stream ending within one part should go out as a plain put")
	ts.Equal([]byte("tiny"), transport.Payloads[0])
}

func (ts *multipartTestSuite) TestPutObjectStreamUnknownLengthMultipart() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, initiateDoc).
		Respond(200, etagHeader("p1"), "").
		Respond(200, etagHeader("p2"), "").
		Respond(200, nil, completeDoc)
	client := newTestClient(ts.T(), transport)
	client.partSize = MinPartSize

	data := bytes.Repeat([]byte("s"), MinPartSize+512)
	err := client.PutObjectStream(ts.ctx, "my-bucket", "big.bin", seekableStream(ts.T(), data), -1)
	ts.Require().NoError(err)

	ts.Equal(4, transport.CallCount())
	ts.Len(transport.Payloads[1], MinPartSize)
	ts.Len(transport.Payloads[2], 512)
	ts.Contains(string(transport.Payloads[3]), "<PartNumber>2</PartNumber>")
}

func (ts *multipartTestSuite) TestPutObjectStreamExactPartBoundary() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, initiateDoc).
		Respond(200, etagHeader("p1"), "").
		Respond(200, nil, completeDoc)
	client := newTestClient(ts.T(), transport)
	client.partSize = MinPartSize

	data := bytes.Repeat([]byte("s"), MinPartSize)
	err := client.PutObjectStream(ts.ctx, "my-bucket", "big.bin", bytes.NewReader(data), -1)
	ts.Require().NoError(err)

	ts.Equal(3, transport.CallCount(), "an exact-boundary stream should upload one part and complete")
	ts.Len(transport.Payloads[1], MinPartSize)
}

func TestMultipart(t *testing.T) {
	suite.Run(t, new(multipartTestSuite))
}
