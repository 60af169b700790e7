package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const SignedUrlExpiry = 10 * time.Minute

// S3Repository allows for the server to interface with S3
type S3Repository struct {
	s3_session *s3Session
}

// Writes an object to the S3 bucket from a reader. The reader should be seekable so the
// request can be signed without TLS.
func (s *S3Repository) WriteObjectReader(ctx context.Context, reader io.Reader, objectName string) error {
	_, err := s.s3_session.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3_session.bucket),
		Key:         aws.String(objectName),
		Body:        reader,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("couldn't upload file %v to %v:%v: %w",
			objectName, s.s3_session.bucket, objectName, err)
	}

	return nil
}

// GetSignedUrl responds with a presigned URL for objectPath in the bucket, valid for 10 minutes
func (s *S3Repository) GetSignedUrl(ctx context.Context, objectPath string) (string, error) {
	request, err := s.s3_session.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3_session.bucket),
		Key:    aws.String(objectPath),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = SignedUrlExpiry
	})
	if err != nil {
		return "", fmt.Errorf("couldn't get a presigned request to get %v:%v: %w", s.s3_session.bucket, objectPath, err)
	}

	return request.URL, nil
}

func (s *S3Repository) Bucket() string {
	return s.s3_session.bucket
}
