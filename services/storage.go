// File: /services/storage.go
package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"convoy-api/config"
	"convoy-api/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStorage persists uploaded files and hands out their public URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error)
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket, path string) error
}

// MinioStorage talks to any S3-compatible store.
type MinioStorage struct {
	client        *minio.Client
	publicBaseURL string
}

func NewMinioStorage(cfg *config.Config) (*MinioStorage, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	base := cfg.StoragePublicURL
	if base == "" {
		scheme := "http"
		if cfg.StorageUseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.StorageEndpoint
	}

	return &MinioStorage{client: client, publicBaseURL: strings.TrimRight(base, "/")}, nil
}

// EnsureBuckets creates missing buckets and makes them publicly readable.
func (s *MinioStorage) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}

		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		if err := s.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return fmt.Errorf("failed to set policy on bucket %s: %w", bucket, err)
		}
		utils.Logger.Info("created storage bucket", "bucket", bucket)
	}
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func (s *MinioStorage) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return info.Key, nil
}

func (s *MinioStorage) PublicURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.publicBaseURL + "/" + bucket + "/" + strings.Join(segments, "/")
}

func (s *MinioStorage) Remove(ctx context.Context, bucket, path string) error {
	if err := s.client.RemoveObject(ctx, bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// PathFromPublicURL recovers the object path from a public URL: everything
// after the bucket segment.
func PathFromPublicURL(publicURL, bucket string) (string, bool) {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" {
		return "", false
	}

	parts := strings.Split(u.Path, "/")
	for i, part := range parts {
		if part == bucket && i < len(parts)-1 {
			return strings.Join(parts[i+1:], "/"), true
		}
	}
	return "", false
}
