package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/logging"
)

// S3Storage stores binary media assets on an S3-compatible service. It is an
// explicitly constructed client; credentials come from the standard AWS
// environment at construction time, never from package-level state.
type S3Storage struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
}

// NewS3Storage configures an uploader and deleter targeting the provided
// object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Storage{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
	}, nil
}

// Upload pushes the file at localPath to the bucket under a fresh key and
// returns its durable public URL. The local file is removed on both the
// success and failure paths; callers hand over ownership of it.
func (s *S3Storage) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn("failed to remove temp upload", "path", localPath, "error", err)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	key := uuid.NewString() + strings.ToLower(filepath.Ext(localPath))

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Delete removes the remote object identified by a URL previously returned
// from Upload. Unknown URLs are ignored so that records pointing at foreign
// assets never fail deletion.
func (s *S3Storage) Delete(ctx context.Context, assetURL string) error {
	if assetURL == "" {
		return nil
	}

	key, ok := strings.CutPrefix(assetURL, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}

	return nil
}
