// Package storage is the file-storage collaborator. The core only ever needs
// to remove attachment objects that an edit orphaned; uploads and serving
// belong to a separate service.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const deleteTimeout = 5 * time.Second

// AttachmentStore deletes stored attachment objects.
type AttachmentStore interface {
	Delete(ctx context.Context, ref string) error
}

// S3Config holds the S3-compatible storage settings.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // optional, for S3-compatible providers
}

// S3Store deletes attachments from an S3-compatible bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// Delete removes one attachment. ref may be a bare object key or a full URL;
// the object key is its path component.
func (s *S3Store) Delete(ctx context.Context, ref string) error {
	key := objectKey(ref)
	if key == "" {
		return fmt.Errorf("storage: empty attachment reference")
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

func objectKey(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	return strings.TrimPrefix(ref, "/")
}
