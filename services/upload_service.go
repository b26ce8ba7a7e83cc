// File: /services/upload_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"convoy-api/models"
	"convoy-api/observability"
)

const DefaultMaxUploadMB = 5.0

var DefaultAllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// UploadFile is a file received from a client.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type UploadOptions struct {
	MaxSizeInMB  float64
	AllowedTypes []string
	// Path overrides the generated {unix-millis}-{name} key.
	Path string
}

func (o UploadOptions) withDefaults() UploadOptions {
	if o.MaxSizeInMB <= 0 {
		o.MaxSizeInMB = DefaultMaxUploadMB
	}
	if len(o.AllowedTypes) == 0 {
		o.AllowedTypes = DefaultAllowedImageTypes
	}
	return o
}

type UploadService struct {
	storage ObjectStorage
	now     func() time.Time
}

func NewUploadService(storage ObjectStorage) *UploadService {
	return &UploadService{storage: storage, now: time.Now}
}

// Validate checks type and size without touching storage.
func (s *UploadService) Validate(file UploadFile, opts UploadOptions) error {
	opts = opts.withDefaults()

	allowed := false
	for _, t := range opts.AllowedTypes {
		if file.ContentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		observability.UploadsRejected.WithLabelValues("invalid_type").Inc()
		return models.NewAppError(models.CodeInvalidType, fmt.Sprintf(
			"File type %s not allowed. Allowed types: %s",
			file.ContentType, strings.Join(opts.AllowedTypes, ", "),
		))
	}

	sizeInMB := float64(file.Size) / (1024 * 1024)
	if sizeInMB > opts.MaxSizeInMB {
		observability.UploadsRejected.WithLabelValues("too_large").Inc()
		return models.NewAppError(models.CodeTooLarge, fmt.Sprintf(
			"File size (%.2fMB) exceeds limit of %gMB", sizeInMB, opts.MaxSizeInMB,
		))
	}
	return nil
}

// UploadWithValidation validates the file, stores it under bucket and
// returns its public URL.
func (s *UploadService) UploadWithValidation(ctx context.Context, file UploadFile, bucket string, opts UploadOptions) (string, error) {
	if err := s.Validate(file, opts); err != nil {
		return "", err
	}

	key := opts.Path
	if key == "" {
		key = fmt.Sprintf("%d-%s", s.now().UnixMilli(), baseName(file.Name))
	}

	stored, err := s.storage.Upload(ctx, bucket, key, file.Content, file.Size, file.ContentType)
	if err != nil {
		return "", err
	}
	return s.storage.PublicURL(bucket, stored), nil
}

// Remove deletes an object previously returned by UploadWithValidation.
func (s *UploadService) Remove(ctx context.Context, bucket, publicURL string) error {
	objectPath, ok := PathFromPublicURL(publicURL, bucket)
	if !ok {
		return fmt.Errorf("url %q is not in bucket %s", publicURL, bucket)
	}
	return s.storage.Remove(ctx, bucket, objectPath)
}

func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
