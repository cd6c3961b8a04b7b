package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	awsrequest "github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...awsrequest.Option) (*s3.PutObjectOutput, error) {
	f.input = input
	return &s3.PutObjectOutput{}, nil
}

func TestS3Upload(t *testing.T) {
	fake := &fakeS3{}
	store := &S3{S3Bucket: "vecinal-uploads", S3Region: "us-east-1", S3Client: fake}

	url, err := store.Upload(context.Background(), "members/CON-AAAA111122/photo.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://vecinal-uploads.s3.us-east-1.amazonaws.com/members/CON-AAAA111122/photo.jpg", url)

	require.NotNil(t, fake.input)
	assert.Equal(t, "vecinal-uploads", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.StringValue(fake.input.ContentType))
	body, err := io.ReadAll(fake.input.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestDiscardUpload(t *testing.T) {
	url, err := Discard{}.Upload(context.Background(), "news/doc.pdf", "application/pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "file://news/doc.pdf", url)
}
