package service

import (
	"context"
	"fmt"
	"time"

	"insightlink/backend/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Storage issues presigned URLs against any S3-compatible backend. The
// validity window is the only access control on the URL itself, so servable
// links get common.AccessURLValidity and admin preview of banned content
// gets the much shorter common.BannedAccessURLValidity.
type Storage struct {
	presign *s3.PresignClient
	bucket  string
}

func NewStorage(ctx context.Context) (*Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(common.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			common.S3AccessKey,
			common.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if common.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(common.S3Endpoint)
		}
	})

	return &Storage{
		presign: s3.NewPresignClient(client),
		bucket:  common.S3Bucket,
	}, nil
}

// NewStorageKey returns a bucket key partitioned by date, one per upload.
func NewStorageKey(userID int64) string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

// PresignedPutURL issues a short-lived upload URL for the given key.
func (s *Storage) PresignedPutURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(common.UploadURLValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignedGetURL issues a download URL valid for the given window.
func (s *Storage) PresignedGetURL(ctx context.Context, key string, validity time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
