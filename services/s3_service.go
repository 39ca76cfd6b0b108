package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 5 * time.Minute

// BlobStore stores uploaded files and hands out presigned URLs.
type BlobStore interface {
	// Put stores body under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// S3API is the subset of *s3.Client used for uploads.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Presigner is the subset of *s3.PresignClient used for presigned URLs.
type S3Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3BlobStore struct {
	Client    S3API
	Presigner S3Presigner
	Bucket    string

	// BaseURL prefixes object keys to form public URLs.
	BaseURL string
}

// NewS3BlobStore builds a blob store on one bucket. With publicBaseURL
// empty, URLs use the virtual-hosted bucket endpoint of region.
func NewS3BlobStore(client *s3.Client, bucket, region, publicBaseURL string) *S3BlobStore {
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3BlobStore{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		BaseURL:   base,
	}
}

func (b *S3BlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := b.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket '%s': %w", key, b.Bucket, err)
	}
	return b.publicURL(key), nil
}

// PresignPut generates a presigned URL for uploading a file
func (b *S3BlobStore) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := b.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload of %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignGet generates a presigned URL for reading a file
func (b *S3BlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := b.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign read of %s: %w", key, err)
	}
	return req.URL, nil
}

func (b *S3BlobStore) publicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.BaseURL + "/" + strings.Join(segments, "/")
}
