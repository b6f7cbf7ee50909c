package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinIOConfig configures the object store
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL overrides the scheme://endpoint prefix of returned URLs
	PublicURL string
}

// MinIOStorage keeps media in an S3-compatible bucket
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    zerolog.Logger
}

// NewMinIOStorage connects to the endpoint and creates the bucket when missing
func NewMinIOStorage(ctx context.Context, cfg MinIOConfig, logger zerolog.Logger) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("Created media bucket")
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With().Str("component", "minio").Logger(),
	}, nil
}

// SaveFile uploads to folder/yyyy/mm/<uuid><ext>
func (s *MinIOStorage) SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	if fileHeader == nil {
		return "", ErrUnsupportedMedia
	}
	contentType, err := DetectContentType(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	now := time.Now()
	objectName := fmt.Sprintf("%s/%d/%02d/%s%s", folder, now.Year(), now.Month(), uuid.New().String(), extension(fileHeader))

	_, err = s.client.PutObject(ctx, s.bucket, objectName, file, fileHeader.Size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-filename": fileHeader.Filename,
			"uploaded-at":       now.Format(time.RFC3339),
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("object", objectName).Msg("Failed to upload object")
		return "", fmt.Errorf("failed to upload to object store: %w", err)
	}

	return s.objectURL(objectName), nil
}

// DeleteFile removes the object behind a URL returned by SaveFile
func (s *MinIOStorage) DeleteFile(ctx context.Context, fileURL string) error {
	objectName := s.objectName(fileURL)
	if objectName == "" {
		return fmt.Errorf("invalid file url: %s", fileURL)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from object store: %w", err)
	}
	return nil
}

func (s *MinIOStorage) objectURL(objectName string) string {
	return s.publicURL + "/" + s.bucket + "/" + objectName
}

func (s *MinIOStorage) objectName(fileURL string) string {
	prefix := s.publicURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(fileURL, prefix)
}
