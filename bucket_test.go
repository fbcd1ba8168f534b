package s3kit

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kilnland/s3kit/datatype"
	"github.com/kilnland/s3kit/mocks"
)

type bucketTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (ts *bucketTestSuite) SetupTest() {
	ts.ctx = context.Background()
}

func (ts *bucketTestSuite) TestMakeBucket() {
	transport := (&mocks.HTTPClient{}).Respond(200, http.Header{"Location": {"/new-bucket"}}, "")
	client := newTestClient(ts.T(), transport, WithRegion("eu-west-2"))

	location, err := client.MakeBucket(ts.ctx, "new-bucket", false)
	ts.Require().NoError(err)
	ts.Equal("/new-bucket", location)

	sent := transport.Requests[0]
	ts.Equal(http.MethodPut, sent.Method)
	ts.Empty(sent.Header.Get("x-amz-bucket-object-lock-enabled"))
	ts.Contains(string(transport.Payloads[0]), "<LocationConstraint>eu-west-2</LocationConstraint>")
}

func (ts *bucketTestSuite) TestMakeBucketWithObjectLock() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, "")
	client := newTestClient(ts.T(), transport)

	_, err := client.MakeBucket(ts.ctx, "locked-bucket", true)
	ts.Require().NoError(err)
	ts.Equal("true", transport.Requests[0].Header.Get("x-amz-bucket-object-lock-enabled"))
}

func (ts *bucketTestSuite) TestBucketExists() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, "")
	client := newTestClient(ts.T(), transport)

	ok, err := client.BucketExists(ts.ctx, "my-bucket")
	ts.Require().NoError(err)
	ts.True(ok)
	ts.Equal(http.MethodHead, transport.Requests[0].Method)
}

func (ts *bucketTestSuite) TestBucketExistsNo() {
	transport := (&mocks.HTTPClient{}).Respond(404, nil, "")
	client := newTestClient(ts.T(), transport)

	ok, err := client.BucketExists(ts.ctx, "absent-bucket")
	ts.Require().NoError(err, "a missing bucket is an answer, not an error")
	ts.False(ok)
}

func (ts *bucketTestSuite) TestListBuckets() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, `<?xml version="1.0" encoding="UTF-8"?>
<ListAllMyBucketsResult>
	<Owner><ID>owner-id</ID><DisplayName>owner</DisplayName></Owner>
	<Buckets>
		<Bucket><Name>alpha</Name><CreationDate>2024-01-15T08:30:00.000Z</CreationDate></Bucket>
		<Bucket><Name>beta</Name><CreationDate>2024-06-01T12:00:00.000Z</CreationDate></Bucket>
	</Buckets>
</ListAllMyBucketsResult>`)
	client := newTestClient(ts.T(), transport)

	buckets, owner, err := client.ListBuckets(ts.ctx)
	ts.Require().NoError(err)
	ts.Equal("owner-id", owner.ID)
	ts.Require().Len(buckets, 2)
	ts.Equal("alpha", buckets[0].Name)
	ts.Equal("beta", buckets[1].Name)
	ts.Equal(2024, buckets[0].CreationDate.Year())
}

func (ts *bucketTestSuite) TestListObjects() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult>
	<Name>my-bucket</Name>
	<Prefix>photos/</Prefix>
	<KeyCount>2</KeyCount>
	<MaxKeys>1000</MaxKeys>
	<IsTruncated>true</IsTruncated>
	<NextContinuationToken>token-next</NextContinuationToken>
	<Contents>
		<Key>photos/cat.jpg</Key>
		<LastModified>2024-06-01T12:00:00.000Z</LastModified>
		<ETag>&quot;etag-1&quot;</ETag>
		<Size>1024</Size>
		<StorageClass>STANDARD</StorageClass>
	</Contents>
	<Contents>
		<Key>photos/dog.jpg</Key>
		<LastModified>2024-06-02T12:00:00.000Z</LastModified>
		<ETag>&quot;etag-2&quot;</ETag>
		<Size>2048</Size>
		<StorageClass>STANDARD</StorageClass>
	</Contents>
	<CommonPrefixes><Prefix>photos/raw/</Prefix></CommonPrefixes>
</ListBucketResult>`)
	client := newTestClient(ts.T(), transport)

	result, err := client.ListObjects(ts.ctx, "my-bucket", ListObjectsOptions{Prefix: "photos/"})
	ts.Require().NoError(err)
	ts.True(result.IsTruncated)
	ts.Equal("token-next", result.NextContinuationToken)
	ts.Require().Len(result.Contents, 2)
	ts.Equal("photos/cat.jpg", result.Contents[0].Key)
	ts.Equal(int64(2048), result.Contents[1].Size)
	ts.Require().Len(result.CommonPrefixes, 1)
	ts.Equal("photos/raw/", result.CommonPrefixes[0].Prefix)

	q := transport.Requests[0].URL.Query()
	ts.Equal("2", q.Get("list-type"))
	ts.Equal("photos/", q.Get("prefix"))
	ts.Equal("url", q.Get("encoding-type"))
}

func (ts *bucketTestSuite) TestListObjectsPagination() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, "<ListBucketResult></ListBucketResult>")
	client := newTestClient(ts.T(), transport)

	_, err := client.ListObjects(ts.ctx, "my-bucket", ListObjectsOptions{
		ContinuationToken: "token-1",
		StartAfter:        "photos/cat.jpg",
		MaxKeys:           50,
		FetchOwner:        true,
	})
	ts.Require().NoError(err)

	q := transport.Requests[0].URL.Query()
	ts.Equal("token-1", q.Get("continuation-token"))
	ts.Equal("photos/cat.jpg", q.Get("start-after"))
	ts.Equal("50", q.Get("max-keys"))
	ts.Equal("true", q.Get("fetch-owner"))
}

func (ts *bucketTestSuite) TestListObjectVersions() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, `<ListVersionsResult>
	<Name>my-bucket</Name>
	<Version>
		<Key>doc.txt</Key>
		<VersionId>v2</VersionId>
		<IsLatest>true</IsLatest>
		<LastModified>2024-06-02T12:00:00.000Z</LastModified>
		<ETag>&quot;e2&quot;</ETag>
		<Size>10</Size>
	</Version>
	<DeleteMarker>
		<Key>old.txt</Key>
		<VersionId>v9</VersionId>
		<IsLatest>true</IsLatest>
		<LastModified>2024-06-03T12:00:00.000Z</LastModified>
	</DeleteMarker>
</ListVersionsResult>`)
	client := newTestClient(ts.T(), transport)

	result, err := client.ListObjectVersions(ts.ctx, "my-bucket", ListObjectVersionsOptions{})
	ts.Require().NoError(err)
	ts.Require().Len(result.Versions, 1)
	ts.Equal("v2", result.Versions[0].VersionID)
	ts.True(result.Versions[0].IsLatest)
	ts.Require().Len(result.DeleteMarkers, 1)
	ts.Equal("old.txt", result.DeleteMarkers[0].Key)
}

func (ts *bucketTestSuite) TestGetBucketTags() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil,
		`<Tagging><TagSet><Tag><Key>env</Key><Value>prod</Value></Tag><Tag><Key>team</Key><Value>core</Value></Tag></TagSet></Tagging>`)
	client := newTestClient(ts.T(), transport)

	tags, err := client.GetBucketTags(ts.ctx, "my-bucket")
	ts.Require().NoError(err)
	ts.Equal(map[string]string{"env": "prod", "team": "core"}, tags)
}

func (ts *bucketTestSuite) TestGetBucketTagsNone() {
	transport := (&mocks.HTTPClient{}).Respond(404, nil, errorDoc("NoSuchTagSet", "The TagSet does not exist"))
	client := newTestClient(ts.T(), transport)

	tags, err := client.GetBucketTags(ts.ctx, "my-bucket")
	ts.Require().NoError(err, "an untagged bucket should read as nil, not fail")
	ts.Nil(tags)
}

func (ts *bucketTestSuite) TestBucketVersioning() {
	transport := (&mocks.HTTPClient{}).
		Respond(200, nil, "").
		Respond(200, nil, `<VersioningConfiguration><Status>Enabled</Status></VersioningConfiguration>`)
	client := newTestClient(ts.T(), transport)

	err := client.SetBucketVersioning(ts.ctx, "my-bucket", datatype.VersioningConfiguration{Status: datatype.VersioningEnabled})
	ts.Require().NoError(err)
	ts.Contains(string(transport.Payloads[0]), "<Status>Enabled</Status>")

	cfg, err := client.GetBucketVersioning(ts.ctx, "my-bucket")
	ts.Require().NoError(err)
	ts.True(cfg.Enabled())
}

func (ts *bucketTestSuite) TestObjectLockConfig() {
	transport := (&mocks.HTTPClient{}).Respond(200, nil, "")
	client := newTestClient(ts.T(), transport)

	cfg := datatype.NewObjectLockConfiguration(datatype.RetentionGovernance, 30)
	ts.Require().NoError(client.SetObjectLockConfig(ts.ctx, "my-bucket", cfg))

	body := string(transport.Payloads[0])
	ts.Contains(body, "<ObjectLockEnabled>Enabled</ObjectLockEnabled>")
	ts.Contains(body, "<Mode>GOVERNANCE</Mode>")
	ts.Contains(body, "<Days>30</Days>")
	ts.Equal("object-lock=", transport.Requests[0].URL.RawQuery)
}

func TestBucket(t *testing.T) {
	suite.Run(t, new(bucketTestSuite))
}
