package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3 stores uploads in a single bucket and composes the public object URL
// from bucket and region.
type S3 struct {
	S3Bucket string
	S3Region string
	S3Client s3iface.S3API
}

// NewS3 builds an S3 store with a fresh session for the given region.
func NewS3(bucket, region string) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &S3{
		S3Bucket: bucket,
		S3Region: region,
		S3Client: s3.New(sess),
	}, nil
}

func (s *S3) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	buffer, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        aws.ReadSeekCloser(bytes.NewReader(buffer)),
	}
	if _, err := s.S3Client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("cannot put object(%s) to S3(%s): %w", key, s.S3Bucket, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.S3Bucket, s.S3Region, key), nil
}
