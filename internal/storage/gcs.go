package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ObjectStore stores bytes under a key and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type GCSClient struct {
	client     *storage.Client
	bucketName string
}

func NewGCSClient(ctx context.Context, bucketName, projectID, credentialsPath string) (*GCSClient, error) {
	var client *storage.Client
	var err error

	if credentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client for project %q: %w", projectID, err)
	}

	return &GCSClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Put uploads data under key. A failed write cancels the upload so no
// partial object is committed.
func (g *GCSClient) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := g.client.Bucket(g.bucketName).Object(key).NewWriter(writeCtx)
	writer.ContentType = contentType
	if writer.ContentType == "" {
		writer.ContentType = "application/pdf"
	}
	writer.CacheControl = "private, max-age=0"
	if len(data) < googleapi.DefaultUploadChunkSize {
		writer.ChunkSize = 0
	}

	if _, err := writer.Write(data); err != nil {
		cancel()
		_ = writer.Close()
		return "", fmt.Errorf("failed to write %s to GCS: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s in GCS: %w", key, err)
	}

	return PublicURL(g.bucketName, key), nil
}

func (g *GCSClient) Close() error {
	return g.client.Close()
}

func PublicURL(bucketName, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName)
}

// SignedObjectName is the key of a document generated by the service.
func SignedObjectName(contractID string, at time.Time) string {
	return fmt.Sprintf("contracts/%s/signed_%d.pdf", contractID, at.UnixMilli())
}

// UploadedObjectName is the key of a signed PDF uploaded by staff.
func UploadedObjectName(contractID string, at time.Time) string {
	return fmt.Sprintf("contracts/%s/signed_upload_%d.pdf", contractID, at.UnixMilli())
}
