// Package storage issues presigned upload URLs for recipe images.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadURLExpiry is how long a presigned upload URL stays valid.
const UploadURLExpiry = 15 * time.Minute

// PresignedURL is a time-limited URL a client can PUT an object to.
type PresignedURL struct {
	URL       string
	ExpiresAt time.Time
}

// Presigner issues presigned PUT URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (PresignedURL, error)
}

// S3Options configures an S3Presigner.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Presigner presigns uploads against S3 or an S3-compatible server such as MinIO.
type S3Presigner struct {
	bucket string
	client *s3.PresignClient
	now    func() time.Time
}

// NewS3Presigner builds a presign client from static credentials. Signing is
// local, so no request reaches the server until the client uploads.
func NewS3Presigner(ctx context.Context, opts S3Options) (*S3Presigner, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Presigner{
		bucket: opts.Bucket,
		client: s3.NewPresignClient(client),
		now:    time.Now,
	}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string) (PresignedURL, error) {
	issuedAt := p.now()

	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return PresignedURL{}, fmt.Errorf("presigning upload for %s: %w", key, err)
	}

	return PresignedURL{URL: req.URL, ExpiresAt: issuedAt.Add(UploadURLExpiry)}, nil
}
