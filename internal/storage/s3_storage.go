package storage

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pythonegrove/codesamples/internal/config"
)

// IPhotoStorage turns stored listing photo keys into URLs a browser can load.
type IPhotoStorage interface {
	PhotoURL(ctx context.Context, key string) (string, error)
	PhotoURLs(ctx context.Context, keys []string) []string
}

// s3Storage implements IPhotoStorage.
type s3Storage struct {
	baseURL       string
	bucket        string
	ttl           time.Duration
	presignClient *s3.PresignClient
}

// NewS3Storage creates a photo URL resolver.
// With IMAGE_BASE_S3_URL set, URLs are the base joined with the key. Otherwise, when a
// bucket is configured, each URL is a presigned GET valid for PhotoURLTTL.
func NewS3Storage(cfg *config.Config) (IPhotoStorage, error) {
	s := &s3Storage{
		baseURL: strings.TrimSuffix(cfg.ImageBaseS3URL, "/"),
		bucket:  cfg.AwsS3Bucket,
		ttl:     cfg.PhotoURLTTL,
	}
	if s.baseURL != "" || s.bucket == "" {
		return s, nil
	}

	opts := []func(*aws_config.LoadOptions) error{aws_config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)))
	}
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.presignClient = s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return s, nil
}

func isAbsoluteURL(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") || strings.HasPrefix(key, "//")
}

// PhotoURL resolves one photo key. Absolute URLs are returned unchanged.
func (s *s3Storage) PhotoURL(ctx context.Context, key string) (string, error) {
	if key == "" || isAbsoluteURL(key) {
		return key, nil
	}
	key = strings.TrimPrefix(key, "/")

	switch {
	case s.baseURL != "":
		return s.baseURL + "/" + key, nil
	case s.presignClient != nil:
		req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s.ttl))
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned GET URL for key %s: %w", key, err)
		}
		return req.URL, nil
	default:
		return "/" + key, nil
	}
}

// PhotoURLs resolves keys in order, dropping the ones that fail.
func (s *s3Storage) PhotoURLs(ctx context.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		u, err := s.PhotoURL(ctx, key)
		if err != nil {
			log.Printf("Photo URL for %s failed: %v", key, err)
			continue
		}
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
