package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Session struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
}

// NewS3Session creates one connection to AWS S3 that is shared by every export.
// Static credentials are used when both keys are given, otherwise the default AWS credential chain.
// A non-empty endpoint points the client at an S3 compatible server using path style addressing.
func NewS3Session(ctx context.Context, accessKey string, secretKey string, region string, bucket string, endpoint string) (*S3Repository, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	session := &s3Session{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        bucket,
	}
	return &S3Repository{
		s3_session: session,
	}, nil
}
