package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/veridian-legal/discovery-backend/internal/pkg/ctxutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

// BucketService stores raw discovery uploads. Keys are bucket-relative; the
// intake stage writes to a staging key first and promotes via CopyObject only
// after extraction succeeds, so a failed extraction never clobbers the
// previously stored file.
type BucketService interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	CopyObject(ctx context.Context, srcKey, dstKey string) error
	DeleteFile(ctx context.Context, key string) error
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	serviceLog := log.With("service", "BucketService")

	bucketName := strings.TrimSpace(os.Getenv("DISCOVERY_GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing DISCOVERY_GCS_BUCKET_NAME")
	}

	client, err := storage.NewClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	return &bucketService{
		log:           serviceLog,
		storageClient: client,
		bucketName:    bucketName,
	}, nil
}

func (s *bucketService) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	if key == "" {
		return fmt.Errorf("storage key required")
	}
	ctx = ctxutil.Default(ctx)

	w := s.storageClient.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *bucketService) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key required")
	}
	r, err := s.storageClient.Bucket(s.bucketName).Object(key).NewReader(ctxutil.Default(ctx))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return r, nil
}

func (s *bucketService) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	if srcKey == "" || dstKey == "" {
		return fmt.Errorf("source and destination keys required")
	}
	ctx = ctxutil.Default(ctx)
	bkt := s.storageClient.Bucket(s.bucketName)
	src := bkt.Object(srcKey)
	dst := bkt.Object(dstKey)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

func (s *bucketService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.storageClient.Bucket(s.bucketName).Object(key).Delete(ctxutil.Default(ctx))
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
