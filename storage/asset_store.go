package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"MashFM/config"

	"github.com/minio/minio-go/v7"
)

// Object key prefixes inside the bucket.
const (
	sourcePrefix  = "sources/"
	mixdownPrefix = "mixdowns/"
	stemPrefix    = "stems/"
)

// AssetStore reads and writes audio objects in the shared bucket.
type AssetStore struct {
	client *minio.Client
	bucket string
}

// NewAssetStore wraps the shared client. Returns an error before InitMinio.
func NewAssetStore() (*AssetStore, error) {
	client := GetMinioClient()
	if client == nil {
		return nil, fmt.Errorf("minio client not initialized")
	}
	return &AssetStore{client: client, bucket: config.Load().MinioBucket}, nil
}

// PutSource stores an uploaded source file under sources/<assetID><ext>.
func (s *AssetStore) PutSource(ctx context.Context, assetID, filename string, data []byte) (string, error) {
	key := sourcePrefix + assetID + strings.ToLower(path.Ext(filename))
	return s.put(ctx, key, filename, data)
}

// PutMixdown stores a rendered WAV under mixdowns/<mixdownID>.wav.
func (s *AssetStore) PutMixdown(ctx context.Context, mixdownID string, wav []byte) (string, error) {
	key := mixdownPrefix + mixdownID + ".wav"
	return s.put(ctx, key, key, wav)
}

// PutStem stores a separated stem under stems/<assetID>/<stem>.wav.
func (s *AssetStore) PutStem(ctx context.Context, assetID, stem string, data []byte) (string, error) {
	key := stemPrefix + assetID + "/" + stem + ".wav"
	return s.put(ctx, key, key, data)
}

func (s *AssetStore) put(ctx context.Context, key, filename string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: inferContentType(filename)})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return key, nil
}

// Get reads an object fully into memory.
func (s *AssetStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes an object.
func (s *AssetStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

// BucketUsage sums object sizes per top-level prefix, for the minio command.
func BucketUsage(ctx context.Context) (map[string]int64, error) {
	client := GetMinioClient()
	if client == nil {
		return nil, fmt.Errorf("minio client not initialized")
	}
	bucket := config.Load().MinioBucket

	usage := make(map[string]int64)
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		prefix := obj.Key
		if i := strings.Index(obj.Key, "/"); i >= 0 {
			prefix = obj.Key[:i+1]
		}
		usage[prefix] += obj.Size
	}
	return usage, nil
}

func inferContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a", ".aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}
