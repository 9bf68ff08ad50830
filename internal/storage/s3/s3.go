// Package s3 implements storage.Storage against S3-compatible object
// stores, including MinIO through path-style addressing.
package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Geeks-Solutions/exmedias/internal/storage"
)

// Config holds the connection settings for an S3-compatible store.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Storage implements storage.Storage backed by an S3 bucket.
type Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

// New creates an S3 storage client. Path-style addressing keeps it
// compatible with MinIO and other non-AWS endpoints.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithBaseEndpoint(cfg.Endpoint),
		awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AccessKey,
					SecretAccessKey: cfg.SecretKey,
				}, nil
			})),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket),
	}, nil
}

// Upload writes the object and returns its key with the public URL. Private
// objects get the private canned ACL and are only readable via SignedURL.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(input.Key),
		Body:          input.Data,
		ContentType:   aws.String(input.ContentType),
		ContentLength: aws.Int64(input.Size),
		ACL:           acl(input.Private),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: fmt.Sprintf("%s/%s", s.baseURL, input.Key),
	}, nil
}

// Delete removes the object. Missing keys are not an error: S3 deletes are
// idempotent and the metadata row is the source of truth.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// SetPrivacy rewrites the object ACL to match the requested visibility.
func (s *Storage) SetPrivacy(ctx context.Context, key string, private bool) error {
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		ACL:    acl(private),
	})
	if err != nil {
		return fmt.Errorf("set object acl: %w", err)
	}
	return nil
}

// SignedURL generates a presigned GET URL so private objects stay readable
// without streaming bytes through the service.
func (s *Storage) SignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	result, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign object url: %w", err)
	}
	return result.URL, nil
}

func acl(private bool) types.ObjectCannedACL {
	if private {
		return types.ObjectCannedACLPrivate
	}
	return types.ObjectCannedACLPublicRead
}
