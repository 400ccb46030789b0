package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/semmidev/vigil/internal/config"
)

// S3Storage mirrors the local backup tree into a bucket. Object keys are
// "<prefix>/<application>/<filename>" so per-application retention can act
// on remote copies as well.
type S3Storage struct {
	client   *s3.Client
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
}

func NewS3(cfg *appconfig.UploadTarget) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &S3Storage{
		client:   client,
		uploader: s3manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Storage) key(remoteName string) string {
	return path.Join(s.prefix, remoteName)
}

func (s *S3Storage) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	key := s.key(remoteName)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (s *S3Storage) List(ctx context.Context) ([]string, error) {
	var files []string
	if err := s.walk(ctx, func(key string, _ time.Time) {
		files = append(files, key)
	}); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *S3Storage) Delete(ctx context.Context, remoteName string) error {
	key := s.key(remoteName)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3Storage) GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error) {
	var oldFiles []string
	if err := s.walk(ctx, func(key string, lastModified time.Time) {
		if lastModified.Before(cutoffTime) {
			oldFiles = append(oldFiles, key)
		}
	}); err != nil {
		return nil, err
	}
	return oldFiles, nil
}

// walk pages through every object under the prefix and reports names with
// the prefix stripped back off.
func (s *S3Storage) walk(ctx context.Context, visit func(name string, lastModified time.Time)) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &s.prefix,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list S3 objects: %w", err)
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(strings.TrimPrefix(*obj.Key, s.prefix), "/")
			if name == "" {
				continue
			}
			visit(name, *obj.LastModified)
		}
	}

	return nil
}
