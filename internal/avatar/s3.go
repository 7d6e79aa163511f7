package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/redmonkez12/go-accounts-api/internal/config"
)

const keyPrefix = "avatars/"

// ObjectAPI is the part of the S3 client the storage needs
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Storage uploads avatars to an S3 compatible bucket
type S3Storage struct {
	client    ObjectAPI
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, cfg config.AvatarConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StorageWithClient(client, cfg), nil
}

func NewS3StorageWithClient(client ObjectAPI, cfg config.AvatarConfig) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: publicBaseURL(cfg),
	}
}

func publicBaseURL(cfg config.AvatarConfig) string {
	switch {
	case cfg.S3PublicURL != "":
		return strings.TrimRight(cfg.S3PublicURL, "/")
	case cfg.S3Endpoint != "":
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

func (s *S3Storage) Save(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if key == "" || strings.Contains(key, "/") {
		return "", ErrInvalidKey
	}

	// buffered so the SDK gets a seekable body with a known length
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}

	objectKey := keyPrefix + key
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.publicURL + "/" + objectKey, nil
}

// Delete removes the object behind a URL returned by Save
func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/"+keyPrefix)
	if !ok || key == "" || strings.Contains(key, "/") {
		return ErrInvalidKey
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
