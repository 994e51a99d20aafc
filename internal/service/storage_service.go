package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAvatarSize    = 5 * 1024 * 1024
	presignedURLTTL  = 15 * time.Minute
	avatarPathPrefix = "avatars"
)

var (
	ErrFileTooBig      = errors.New("file size exceeds 5MB limit")
	ErrInvalidFileType = errors.New("only JPEG and PNG images are allowed")

	allowedAvatarTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
	}
)

// StorageService stages avatar objects. Callers own the cleanup-on-failure
// contract: an object uploaded mid-flow must be deleted when the flow fails.
type StorageService interface {
	UploadAvatar(ctx context.Context, file io.Reader, fileSize int64, contentType string) (string, error)
	DeleteAvatar(ctx context.Context, objectKey string) error
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type MinIOStorageService struct {
	client *minio.Client
	bucket string
}

func NewMinIOStorageService(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	svc := &MinIOStorageService{client: client, bucket: bucket}
	if err := svc.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *MinIOStorageService) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

func (s *MinIOStorageService) UploadAvatar(ctx context.Context, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fileSize > maxAvatarSize {
		return "", ErrFileTooBig
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedAvatarTypes[ct]
	if !ok {
		return "", ErrInvalidFileType
	}

	objectKey := fmt.Sprintf("%s/%s%s", avatarPathPrefix, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType: ct,
	})
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return objectKey, nil
}

// DisabledStorageService stands in when object storage is not configured:
// uploads are rejected, deletes and URL lookups are no-ops.
type DisabledStorageService struct{}

func (DisabledStorageService) UploadAvatar(context.Context, io.Reader, int64, string) (string, error) {
	return "", errors.New("object storage is not configured")
}

func (DisabledStorageService) DeleteAvatar(context.Context, string) error { return nil }

func (DisabledStorageService) AvatarURL(context.Context, string) (string, error) { return "", nil }

func (s *MinIOStorageService) DeleteAvatar(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}

func (s *MinIOStorageService) AvatarURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", nil
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, presignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign avatar url: %w", err)
	}
	return presigned.String(), nil
}
