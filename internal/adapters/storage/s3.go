// Package storage stores uploaded product images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	"github.com/neptunetech/storefront/internal/platform/config"
)

// PresignExpiry is how long a presigned download URL stays valid.
const PresignExpiry = 7 * 24 * time.Hour

// Uploader is the part of *manager.Uploader used here.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Presigner is the part of *s3.PresignClient used here.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Storage struct {
	client        *s3.Client
	uploader      Uploader
	presigner     Presigner
	bucket        string
	publicBaseURL string
}

var _ gateways.ObjectStorage = (*S3Storage)(nil)

// NewS3Storage builds the client from the S3_* settings. Static credentials are
// used when both keys are set, otherwise the default AWS credential chain.
func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	s := NewStorage(manager.NewUploader(client), s3.NewPresignClient(client), cfg.S3Bucket, cfg.S3PublicBaseURL)
	s.client = client
	return s, nil
}

func NewStorage(uploader Uploader, presigner Presigner, bucket, publicBaseURL string) *S3Storage {
	return &S3Storage{
		uploader:      uploader,
		presigner:     presigner,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// CheckBucket verifies the bucket exists and is reachable.
func (s *S3Storage) CheckBucket(ctx context.Context) error {
	if s.client == nil {
		return errors.New("s3 client not configured")
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return fmt.Errorf("bucket '%s' does not exist", s.bucket)
		}
		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}
	return nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string, progress gateways.ProgressFunc) (string, error) {
	if s.bucket == "" {
		return "", errors.New("s3 bucket not configured")
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          &progressReader{r: body, total: size, progress: progress},
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", describeErr("upload "+key, err)
	}
	return key, nil
}

func (s *S3Storage) ResolveDownloadURL(ctx context.Context, reference string) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + reference, nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(reference),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", describeErr("presign "+reference, err)
	}
	return req.URL, nil
}

func describeErr(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("s3 %s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("s3 %s: %w", op, err)
}

// progressReader reports cumulative bytes as the uploader consumes the body.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	progress gateways.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read, p.total)
		}
	}
	return n, err
}
