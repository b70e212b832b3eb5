package config

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// ImageStore uploads generated recipe images to S3 so they can be shared by link
type ImageStore struct {
	Client     *s3.Client
	BucketName string
}

// NewImageStore initializes the S3 client from the default AWS credential chain
func NewImageStore(ctx context.Context, cfg *Config) (*ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}
	return &ImageStore{Client: s3.NewFromConfig(awsCfg), BucketName: cfg.S3Bucket}, nil
}

// ImageKey is the object key for a recipe image
func ImageKey(recipeID, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	case "image/gif":
		ext = ".gif"
	}
	return path.Join("recipes", recipeID+ext)
}

// Upload stores image under a key derived from recipeID and returns the key
func (s *ImageStore) Upload(ctx context.Context, recipeID string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}
	contentType := http.DetectContentType(image)
	key := ImageKey(recipeID, contentType)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(image))),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload %s", key)
	}
	return key, nil
}

// GeneratePresignedURL generates a presigned URL for the given object key with the specified expiration time
func (s *ImageStore) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", errors.Wrapf(err, "failed to presign %s", objectKey)
	}
	return presigned.URL, nil
}
