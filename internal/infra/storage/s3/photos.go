package s3

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"
	"sync"

	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNotConfigured = errs.New("photo storage is not configured")

type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// PhotoStore keeps check-out photos in an S3-compatible bucket under
// returns/<reservation id>/.
type PhotoStore struct {
	bucket         string
	client         objectStore
	logger         *slog.Logger
	bucketInitOnce sync.Once
	bucketInitErr  error
}

func NewPhotoStore(cfg config.StorageConfig, logger *slog.Logger) (*PhotoStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errs.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errs.New("s3: bucket is required")
	}

	client, err := minio.New(parseEndpoint(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Wrap(err, "s3: create client")
	}
	return &PhotoStore{bucket: bucket, client: client, logger: logger}, nil
}

func (s *PhotoStore) PutReturnPhoto(ctx context.Context, reservationID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	if body == nil {
		return "", errs.New("s3: photo body is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}

	key := objectKey(reservationID, contentType)
	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", errs.Wrap(err, "s3: put object")
	}

	s.logger.InfoContext(ctx, "return photo stored",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.String("reservation_id", reservationID.String()))
	return key, nil
}

func (s *PhotoStore) ensureBucket(ctx context.Context) error {
	s.bucketInitOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketInitErr = errs.Wrap(err, "s3: check bucket")
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.bucketInitErr = errs.Wrap(err, "s3: create bucket")
		}
	})
	return s.bucketInitErr
}

func objectKey(reservationID uuid.UUID, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	default:
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join("returns", reservationID.String(), uuid.NewString()+ext)
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopPhotoStore fails every upload; used when no bucket is configured.
type NoopPhotoStore struct{}

func (NoopPhotoStore) PutReturnPhoto(context.Context, uuid.UUID, string, int64, io.Reader) (string, error) {
	return "", ErrNotConfigured
}
