package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vietanh2810/stand-portal-api/internal/config"
)

// Object is an uploaded file.
type Object struct {
	URL  string
	Name string
}

type MinioStore struct {
	client *minio.Client
	bucket string
	conf   *config.MinioConfig
}

func NewMinioStore(conf *config.MinioConfig) (*MinioStore, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New -> %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: conf.Bucket,
		conf:   conf,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s.client.BucketExists -> %w", err)
	}

	if !exists {
		if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s.client.MakeBucket -> %w", err)
		}
	}

	return nil
}

// Upload stores r under prefix with a random object name that keeps the
// original extension, and returns its public URL.
func (s *MinioStore) Upload(ctx context.Context, prefix, fileName string, r io.Reader, size int64, contentType string) (Object, error) {
	objectName := ObjectName(prefix, fileName)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("s.client.PutObject -> %w", err)
	}

	return Object{
		URL:  s.publicURL(objectName),
		Name: fileName,
	}, nil
}

func (s *MinioStore) publicURL(objectName string) string {
	protocol := "http"
	if s.conf.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.conf.Endpoint, s.bucket, objectName)
}

// ObjectName builds "<prefix>/<uuid><ext>" with a lower-cased extension.
func ObjectName(prefix, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
}
