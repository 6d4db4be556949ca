package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaService stores uploaded media in object storage. Object keys are
// prefixed with the tenant, so one tenant's uploads can never collide with
// or enumerate another's.
type MediaService interface {
	Upload(ctx context.Context, tenantID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	PresignedURL(ctx context.Context, tenantID uuid.UUID, objectName string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, tenantID uuid.UUID, objectName string) error
	EnsureBucket(ctx context.Context) error
}

type mediaService struct {
	client *minio.Client
	bucket string
}

func NewMediaService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (MediaService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &mediaService{client: client, bucket: bucket}, nil
}

func objectKey(tenantID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s%s", tenantID.String(), uuid.NewString(), path.Ext(filename))
}

func (m *mediaService) Upload(ctx context.Context, tenantID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(tenantID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *mediaService) PresignedURL(ctx context.Context, tenantID uuid.UUID, objectName string, expiry time.Duration) (string, error) {
	// Refuse to sign keys outside the tenant's prefix.
	if !isTenantObject(tenantID, objectName) {
		return "", fmt.Errorf("object %q does not belong to tenant %s", objectName, tenantID)
	}
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *mediaService) Delete(ctx context.Context, tenantID uuid.UUID, objectName string) error {
	if !isTenantObject(tenantID, objectName) {
		return fmt.Errorf("object %q does not belong to tenant %s", objectName, tenantID)
	}
	return m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
}

func (m *mediaService) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func isTenantObject(tenantID uuid.UUID, objectName string) bool {
	prefix := tenantID.String() + "/"
	return len(objectName) > len(prefix) && objectName[:len(prefix)] == prefix
}
