package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LogoStorage struct {
	bucket
}

func NewLogoStorage(ctx context.Context, storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*LogoStorage, error) {
	b, err := storage.openBucket(ctx, bucketName, presignedTTL)
	if err != nil {
		return nil, err
	}
	return &LogoStorage{bucket: b}, nil
}

// UploadLogo writes under a fresh key each time so stale presigned URLs never show the new logo.
func (s *LogoStorage) UploadLogo(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".bin"
		}
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	objectKey := fmt.Sprintf("courses/%s/logo-%d%s", courseID, time.Now().UnixNano(), ext)
	if err := s.put(ctx, objectKey, reader, size, contentType); err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *LogoStorage) GetLogoURL(ctx context.Context, objectKey string) (string, error) {
	return s.presign(ctx, objectKey)
}

func (s *LogoStorage) DeleteLogo(ctx context.Context, objectKey string) error {
	return s.remove(ctx, objectKey)
}
