package minio_storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProofStorage keeps payment screenshots. They are private; admins read them
// through short-lived presigned URLs.
type ProofStorage struct {
	bucket
}

func NewProofStorage(ctx context.Context, storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*ProofStorage, error) {
	b, err := storage.openBucket(ctx, bucketName, presignedTTL)
	if err != nil {
		return nil, err
	}
	return &ProofStorage{bucket: b}, nil
}

// UploadProof stores an already encoded image under the owner's prefix.
func (s *ProofStorage) UploadProof(ctx context.Context, ownerID uuid.UUID, data []byte, contentType, ext string) (string, error) {
	objectKey := fmt.Sprintf("proofs/%s/%s%s", ownerID, uuid.NewString(), ext)
	if err := s.put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *ProofStorage) ProofURL(ctx context.Context, objectKey string) (string, error) {
	return s.presign(ctx, objectKey)
}

func (s *ProofStorage) DeleteProof(ctx context.Context, objectKey string) error {
	return s.remove(ctx, objectKey)
}
