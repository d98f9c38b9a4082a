// Package blobstore stores video blobs in S3-compatible object storage and
// hands back presigned download links.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options configures the S3 connection.
type Options struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
	URLValidity  time.Duration
}

// Seams for tests.
var (
	putObjectFunc = func(ctx context.Context, client *s3.Client, input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return client.PutObject(ctx, input)
	}
	presignGetFunc = func(ctx context.Context, presigner *s3.PresignClient, input *s3.GetObjectInput, validity time.Duration) (string, error) {
		out, err := presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(validity))
		if err != nil {
			return "", err
		}
		return out.URL, nil
	}
)

// S3Store uploads blobs and presigns GET links for them.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	opts      Options
}

func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.RootUser, opts.RootPassword, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		opts:      opts,
	}, nil
}

// Upload stores the blob under key and returns a presigned download URL.
func (s *S3Store) Upload(ctx context.Context, key string, contentType string, data io.Reader) (string, error) {
	_, err := putObjectFunc(ctx, s.client, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading blob: %w", err)
	}

	url, err := presignGetFunc(ctx, s.presigner, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}, s.opts.URLValidity)
	if err != nil {
		return "", fmt.Errorf("error presigning blob url: %w", err)
	}

	return url, nil
}
