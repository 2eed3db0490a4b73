package minio_storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client *minio.Client
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorage{client: client}, nil
}

// bucket is one private bucket whose objects are read through presigned URLs.
type bucket struct {
	client       *minio.Client
	name         string
	presignedTTL time.Duration
}

func (s *MinioStorage) openBucket(ctx context.Context, name string, presignedTTL time.Duration) (bucket, error) {
	exists, err := s.client.BucketExists(ctx, name)
	if err != nil {
		return bucket{}, fmt.Errorf("error checking bucket %s: %w", name, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
			return bucket{}, fmt.Errorf("error creating bucket %s: %w", name, err)
		}
	}
	return bucket{client: s.client, name: name, presignedTTL: presignedTTL}, nil
}

func (b bucket) put(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.name, objectKey, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", b.name, objectKey, err)
	}
	return nil
}

func (b bucket) presign(ctx context.Context, objectKey string) (string, error) {
	u, err := b.client.PresignedGetObject(ctx, b.name, objectKey, b.presignedTTL, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (b bucket) remove(ctx context.Context, objectKey string) error {
	return b.client.RemoveObject(ctx, b.name, objectKey, minio.RemoveObjectOptions{})
}
